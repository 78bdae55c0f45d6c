package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/bhavbook/bhavbook"
	"github.com/bhavbook/bhavbook/nse"
	"github.com/bhavbook/bhavbook/renderer"
	"github.com/google/subcommands"
)

type walkCmd struct {
	start string
	end   string
}

func (*walkCmd) Name() string     { return "walk" }
func (*walkCmd) Synopsis() string { return "valuate the portfolio day by day and extend the books" }
func (*walkCmd) Usage() string {
	return `bvb walk [-s <start_date>] [-e <end_date>]

  Walks every calendar day of the range, valuating each lot against the
  price table, and appends the resulting NAV rows, audit observations and
  trades to the books. Without -s the walk resumes the day after the last
  ledger row (or starts at the earliest acquisition). Without -e it stops
  at yesterday, the last day with a published bhavcopy.

  Run "bvb fetch" first to fill the price table for the range.
`
}

func (c *walkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "Start date. Defaults to resuming after the last ledger row.")
	f.StringVar(&c.end, "e", "", "End date. Defaults to yesterday.")
}

func (c *walkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	holdings, err := DecodeHoldings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if len(holdings) == 0 {
		fmt.Fprintf(os.Stderr, "No holdings in %q, nothing to walk.\n", bookPath(*holdingsFile))
		return subcommands.ExitFailure
	}
	actions, err := DecodeActionBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	table, err := DecodePriceTable()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	prior, err := DecodeLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	trail, err := DecodeTrail()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	trades, err := DecodeTradeLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	rng, err := walkRange(c.start, c.end, prior, holdings)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if rng.To.Before(rng.From) {
		fmt.Fprintln(os.Stderr, "The books are already up to date.")
		return subcommands.ExitSuccess
	}

	w := bhavbook.NewWalk(holdings, actions, nse.NewSource(table), prior)
	w.Progress = func(done, total int) {
		fmt.Fprintf(os.Stderr, "\rwalking %s: %d/%d days", rng, done, total)
	}
	if err := w.Run(rng); err != nil {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(os.Stderr)

	merged := bhavbook.Merge(prior, w.Ledger)
	if err := EncodeLedger(merged); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := EncodeTrail(bhavbook.MergeTrail(trail, w.Trail)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := EncodeTradeLog(bhavbook.MergeTradeLog(trades, w.Trades)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := EncodeHoldings(holdings); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderLedgerSummary(merged))
	return subcommands.ExitSuccess
}

// walkRange resolves the walk window: explicit flags win, otherwise the
// walk resumes the day after the last persisted ledger row, or starts at
// the earliest acquisition on a fresh book. The default end is yesterday,
// the last day with a published bhavcopy.
func walkRange(start, end string, prior *bhavbook.Ledger, holdings bhavbook.Holdings) (bhavbook.Range, error) {
	var from, to bhavbook.Date
	var err error

	switch {
	case start != "":
		from, err = bhavbook.ParseDate(start)
		if err != nil {
			return bhavbook.Range{}, fmt.Errorf("invalid start date: %w", err)
		}
	default:
		if last, ok := prior.LastDate(); ok {
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

func earliestAcquisition(holdings bhavbook.Holdings) bhavbook.Date {
	earliest := holdings[0].Acquired
	for _, l := range holdings[1:] {
		if l.Acquired.Before(earliest) {
			earliest = l.Acquired
		}
	}
	return earliest
}
