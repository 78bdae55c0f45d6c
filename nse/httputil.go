package nse

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"github.com/bhavbook/bhavbook"
)

// http utils to deal with the exchange archives

// browserAgent is sent on every request: the exchange archives reject the Go
// default agent outright.
const browserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// diskCache implements a simple disk cache for HTTP responses. Historical
// bhavcopies never change, so a cache hit is always valid; the key still
// rotates daily so today's partial files expire.
type diskCache struct {
	base http.RoundTripper
}

func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	key := fmt.Sprintf("%s %s %s", bhavbook.Today().String(), req.Method, req.URL.String())
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	cachedResp, err := c.get(key, req)
	if err == nil { // Cache hit
		return cachedResp, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v%v %v", resp.Request.Method, resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		log.Printf("cache write err (ignored): %v", err)
	}
	return resp, nil
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(os.TempDir(), key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(os.TempDir(), key))
	if err != nil {
		return err
	}
	_, err = f.Write(content)
	f.Close()
	return err
}

// Daily returns a client with a disk cache expiring every day.
func Daily() *http.Client {
	client := new(http.Client)
	client.Timeout = 30 * time.Second
	client.Transport = &diskCache{http.DefaultTransport}
	return client
}

// wget performs a GET with browser headers and a retry loop. Throttling
// responses (429/503) back off exponentially before retrying; anything else
// fails immediately.
func wget(client *http.Client, addr string) ([]byte, error) {
	backoff := 30 * time.Second
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		req, err := http.NewRequest(http.MethodGet, addr, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", browserAgent)
		req.Header.Set("Accept", "*/*")

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
			lastErr = fmt.Errorf("cannot http GET %s: %s", addr, resp.Status)
			log.Printf("throttled by %s, pausing %s", resp.Request.URL.Host, backoff)
			time.Sleep(backoff + time.Duration(rand.Intn(1000))*time.Millisecond)
			backoff *= 2
		default:
			return nil, fmt.Errorf("cannot http GET %s: %s", addr, resp.Status)
		}
	}
	return nil, lastErr
}

// jwget performs an HTTP GET request and unmarshals the JSON response into
// the provided data structure.
func jwget(client *http.Client, addr string, data any) error {
	body, err := wget(client, addr)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}
