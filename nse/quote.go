package nse

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Quote returns the last traded price for an NSE symbol from the exchange's
// intraday quote API. Unlike the bhavcopy this moves during the session;
// it is a convenience for eyeballing, the books only ever use closes.
func Quote(client *http.Client, symbol string) (float64, error) {
	if client == nil {
		client = Daily()
	}
	addr := "https://www.nseindia.com/api/quote-equity?symbol=" + strings.ToUpper(symbol)

	var jobj any
	if err := jwget(client, addr, &jobj); err != nil {
		return math.NaN(), fmt.Errorf("error retrieving quote for %q: %w", symbol, err)
	}

	path := "$.priceInfo.lastPrice"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return math.NaN(), fmt.Errorf("error parsing quote for %q: %q %w", symbol, path, err)
	}
	// jsonpath is never clear about whether it returns a list of one answer
	// or a single answer; keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	val, ok := jval.(float64)
	if !ok {
		// sometimes the API returns the value as a string, comma-grouped
		sval, ok := jval.(string)
		if !ok {
			return math.NaN(), fmt.Errorf("quote for %q is neither a float nor a string: %v", symbol, jval)
		}
		sval = strings.ReplaceAll(sval, ",", "")
		val, err = strconv.ParseFloat(sval, 64)
		if err != nil {
			return math.NaN(), fmt.Errorf("quote for %q is an invalid string %q: %w", symbol, sval, err)
		}
	}
	if val == 0 {
		return math.NaN(), fmt.Errorf("empty quote for %q", symbol)
	}
	return val, nil
}
