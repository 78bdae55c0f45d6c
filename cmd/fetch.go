package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/bhavbook/bhavbook"
	"github.com/bhavbook/bhavbook/nse"
	"github.com/google/subcommands"
)

type fetchCmd struct {
	start string
	end   string
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "download bhavcopy closes into the price table" }
func (*fetchCmd) Usage() string {
	return `bvb fetch [-s <start_date>] [-e <end_date>]

  Downloads the NSE and BSE bhavcopies for every day of the range and
  stores the closing prices of the held securities in the price table.
  Days already covered are skipped, so re-running is cheap. Without -s the
  fetch resumes after the last covered day (or starts at the earliest
  acquisition). Without -e it stops at yesterday.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "Start date. Defaults to resuming after the last covered day.")
	f.StringVar(&c.end, "e", "", "End date. Defaults to yesterday.")
}

func (c *fetchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	holdings, err := DecodeHoldings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if len(holdings) == 0 {
		fmt.Fprintf(os.Stderr, "No holdings in %q, nothing to fetch.\n", bookPath(*holdingsFile))
		return subcommands.ExitFailure
	}
	table, err := DecodePriceTable()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	renames, err := DecodeRenameBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	src := nse.NewSource(table)
	rng, err := fetchRange(c.start, c.end, src, holdings)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if rng.To.Before(rng.From) {
		fmt.Fprintln(os.Stderr, "The price table is already up to date.")
		return subcommands.ExitSuccess
	}

	src.FetchRange(nse.Daily(), rng, requests(holdings), renames)

	if err := EncodePriceTable(table); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Fetched %s into %s\n", rng, bookPath(*pricesFile))
	return subcommands.ExitSuccess
}

// requests lists one fetch request per distinct ticker in the holdings.
// The company name rides along for the pre-2024 BSE bhavcopies which
// carry no symbols.
func requests(holdings bhavbook.Holdings) []nse.Request {
	seen := make(map[string]bool)
	var reqs []nse.Request
	for _, l := range holdings {
		ticker := l.Ticker()
		if seen[ticker] {
			continue
		}
		seen[ticker] = true
		reqs = append(reqs, nse.Request{Ticker: ticker, Name: l.Name})
	}
	return reqs
}

func fetchRange(start, end string, src *nse.Source, holdings bhavbook.Holdings) (bhavbook.Range, error) {
	var from, to bhavbook.Date
	var err error

	switch {
	case start != "":
		from, err = bhavbook.ParseDate(start)
		if err != nil {
			return bhavbook.Range{}, fmt.Errorf("invalid start date: %w", err)
		}
	default:
		if last, ok := src.LastCovered(); ok {
			from = last.Add(1)
		} else {
			from = earliestAcquisition(holdings)
		}
	}

	switch {
	case end != "":
		to, err = bhavbook.ParseDate(end)
		if err != nil {
			return bhavbook.Range{}, fmt.Errorf("invalid end date: %w", err)
		}
	default:
		to = bhavbook.Today().Add(-1)
	}
	return bhavbook.Range{From: from, To: to}, nil
}
