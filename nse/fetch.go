package nse

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/bhavbook/bhavbook"
)

// fetchWorkers bounds the concurrent bhavcopy downloads. The archives
// throttle aggressively; a small pool is faster than a large one.
const fetchWorkers = 4

// Request describes one instrument to price: its ticker and the company
// name the legacy BSE files are keyed by.
type Request struct {
	Ticker string
	Name   string
}

// Source is a price table plus the set of sessions it actually covers. It
// resolves prices for the walk, and reports a hard error for uncovered days
// so the walk takes its carry-forward path instead of mispricing the whole
// book at cost.
type Source struct {
	Table   *bhavbook.PriceTable
	covered map[bhavbook.Date]bool
}

// NewSource wraps an already loaded price table, deriving coverage from the
// dates the table has at least one price for.
func NewSource(table *bhavbook.PriceTable) *Source {
	s := &Source{Table: table, covered: make(map[bhavbook.Date]bool)}
	for _, ticker := range table.Tickers() {
		for on := range table.Series(ticker) {
			s.covered[on] = true
		}
	}
	return s
}

// Covers reports whether the source has data for a session.
func (s *Source) Covers(on bhavbook.Date) bool { return s.covered[on] }

// LastCovered returns the most recent covered session, if any.
func (s *Source) LastCovered() (last bhavbook.Date, ok bool) {
	for on := range s.covered {
		if !ok || last.Before(on) {
			last, ok = on, true
		}
	}
	return last, ok
}

// Resolve implements bhavbook.Resolver.
func (s *Source) Resolve(ticker string, on bhavbook.Date) (float64, bool, error) {
	if !s.covered[on] {
		return 0, false, fmt.Errorf("no bhavcopy data for %s", on)
	}
	return s.Table.Resolve(ticker, on)
}

var _ bhavbook.Resolver = (*Source)(nil)

// FetchRange downloads the bhavcopies for every session in the range and
// fills the source's table with the requested instruments' closes.
//
// Days are fetched by a small worker pool; each day is independent.
// Exchange holidays and failed downloads leave the day uncovered, which is
// all the walk needs to know. Sundays are never requested. A rename book
// maps each present-day symbol to the symbol in use on the fetched day, so
// renamed instruments keep an unbroken price history.
func (s *Source) FetchRange(client *http.Client, r bhavbook.Range, requests []Request, renames bhavbook.RenameBook) {
	if client == nil {
		client = Daily()
	}

	var mu sync.Mutex // guards s.Table and s.covered
	var wg sync.WaitGroup
	sem := make(chan struct{}, fetchWorkers)

	for day := range r.Days() {
		if day.Weekday() == time.Sunday {
			continue
		}
		if s.Covers(day) {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(day bhavbook.Date) {
			defer wg.Done()
			defer func() { <-sem }()

			bhav, err := FetchDay(client, day)
			if err != nil {
				log.Printf("skipping %s: %v", day, err)
				return
			}

			mu.Lock()
			defer mu.Unlock()
			for _, req := range requests {
				ticker := historicalTicker(req.Ticker, renames, day)
				v, ok := bhav.Lookup(ticker, req.Name)
				if !ok {
					// Fetched but absent: record the absence so the day
					// still counts as covered for this instrument.
					v = math.NaN()
				}
				s.Table.Append(req.Ticker, day, v)
			}
			s.covered[day] = true
		}(day)
	}
	wg.Wait()
}

// historicalTicker rewrites a present-day ticker to the symbol the exchange
// listed it under on the given day, keeping the market suffix.
func historicalTicker(ticker string, renames bhavbook.RenameBook, on bhavbook.Date) string {
	symbol, suffix := ticker, ""
	if n := len(ticker); n > 3 && (ticker[n-3:] == ".NS" || ticker[n-3:] == ".BO") {
		symbol, suffix = ticker[:n-3], ticker[n-3:]
	}
	return renames.SymbolOn(symbol, on) + suffix
}
