package bhavbook

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"math"
	"slices"
	"sort"
	"strings"
)

// PriceTable holds closing prices for a set of tickers, one History per
// ticker. It is filled before a walk (by the nse fetcher or from the cached
// price file) and only read during it.
type PriceTable struct {
	tickers []string
	index   map[string]*History
}

// NewPriceTable returns an empty price table.
func NewPriceTable() *PriceTable {
	return &PriceTable{index: make(map[string]*History)}
}

// Has reports whether the table knows anything about a ticker.
func (t *PriceTable) Has(ticker string) bool {
	_, ok := t.index[ticker]
	return ok
}

// Append records a closing price for (ticker, day). An existing point for
// that day is overwritten, the last data wins.
func (t *PriceTable) Append(ticker string, on Date, close float64) {
	h, ok := t.index[ticker]
	if !ok {
		h = &History{}
		t.index[ticker] = h
		t.tickers = append(t.tickers, ticker)
		sort.Strings(t.tickers)
	}
	h.Append(on, close)
}

// Get returns the closing price for (ticker, day). Absent ticker, absent
// day and a stored NaN all collapse to ok=false: the caller cannot and must
// not distinguish them, there is simply no price.
func (t *PriceTable) Get(ticker string, on Date) (float64, bool) {
	h, ok := t.index[ticker]
	if !ok {
		return 0, false
	}
	v, ok := h.Get(on)
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Resolve implements Resolver over the in-memory table. It never errors:
// an in-memory lookup has no failure mode beyond "no price".
func (t *PriceTable) Resolve(ticker string, on Date) (float64, bool, error) {
	v, ok := t.Get(ticker, on)
	return v, ok, nil
}

// Latest returns the most recent known date and price for a ticker.
func (t *PriceTable) Latest(ticker string) (Date, float64, bool) {
	h, ok := t.index[ticker]
	if !ok || h.Len() == 0 {
		return Date{}, 0, false
	}
	on, v := h.Latest()
	return on, v, true
}

// Tickers returns the known tickers in alphabetical order.
func (t *PriceTable) Tickers() []string { return slices.Clone(t.tickers) }

// Series iterates over the (date, close) points of one ticker.
func (t *PriceTable) Series(ticker string) iter.Seq2[Date, float64] {
	h, ok := t.index[ticker]
	if !ok {
		return func(yield func(Date, float64) bool) {}
	}
	return h.Values()
}

// Resolver resolves a closing price for a (ticker, day) pair. ok=false means
// no price is available, which the valuation step recovers from locally by
// substituting the lot's cost per share. A non-nil error is a lookup
// *failure* and degrades the whole day instead.
type Resolver interface {
	Resolve(ticker string, on Date) (price float64, ok bool, err error)
}

var _ Resolver = (*PriceTable)(nil)

// --- price file import/export ---
//
// The price table persists as a JSONL file, one ticker per line, the history
// as a date-keyed object. Human readable, git friendly, trivially mergeable.

type jprices struct {
	Ticker  string             `json:"ticker"`
	History map[string]float64 `json:"history"`
}

// DecodePriceTable reads a price table from its JSONL form.
func DecodePriceTable(r io.Reader) (*PriceTable, error) {
	t := NewPriceTable()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var jp jprices
		if err := json.Unmarshal(line, &jp); err != nil {
			return nil, fmt.Errorf("cannot parse price line %q: %w", string(line), err)
		}
		for day, close := range jp.History {
			on, err := ParseDate(day)
			if err != nil {
				return nil, fmt.Errorf("price table for %q: %w", jp.Ticker, err)
			}
			t.Append(jp.Ticker, on, close)
		}
	}
	return t, scanner.Err()
}

// EncodePriceTable writes the table in its JSONL form, tickers in
// alphabetical order so the file diffs cleanly.
func EncodePriceTable(w io.Writer, t *PriceTable) error {
	for _, ticker := range t.tickers {
		jp := jprices{Ticker: ticker, History: make(map[string]float64)}
		for on, close := range t.index[ticker].Values() {
			if math.IsNaN(close) {
				// A NaN is "no price" and JSON cannot carry it anyway.
				continue
			}
			jp.History[on.String()] = close
		}
		data, err := json.Marshal(jp)
		if err != nil {
			return fmt.Errorf("cannot encode prices for %q: %w", ticker, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return err
		}
	}
	return nil
}
