package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bhavbook/bhavbook"
	"github.com/bhavbook/bhavbook/renderer"
	"github.com/google/subcommands"
)

type pivotCmd struct {
	broker string
	end    string
	months int
	csv    bool
}

func (*pivotCmd) Name() string     { return "pivot" }
func (*pivotCmd) Synopsis() string { return "per-security profit and loss over trailing windows" }
func (*pivotCmd) Usage() string {
	return `bvb pivot [-b <broker>] [-e <end_date>] [-m <months>] [-csv]

  Computes the per-security profit and loss for a broker between two
  snapshots of the audit trail. Without -m, reports over the standard
  trailing windows (1, 3, 6, 9 and 12 months). Window boundaries snap to
  the nearest recorded day at or before the requested date. With -csv,
  writes the reports as CSV to stdout instead of markdown.
`
}

func (c *pivotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.broker, "b", bhavbook.Overall, "Broker to report on.")
	f.StringVar(&c.end, "e", "", "End date of the window. Defaults to the last recorded day.")
	f.IntVar(&c.months, "m", 0, "Window length in months. 0 reports all standard windows.")
	f.BoolVar(&c.csv, "csv", false, "Write the reports as CSV to stdout instead of markdown.")
}

func (c *pivotCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	end, ok := trail.LastDate()
	if !ok {
		fmt.Fprintln(os.Stderr, "The audit trail is empty, run \"bvb walk\" first.")
		return subcommands.ExitFailure
	}
	if c.end != "" {
		end, err = bhavbook.ParseDate(c.end)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid end date: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	durations := bhavbook.Durations
	if c.months > 0 {
		durations = []int{c.months}
	}

	var reports []*bhavbook.PivotReport
	for _, months := range durations {
		report, err := bhavbook.NewPivotReport(trail, trades, c.broker, end.AddMonths(-months), end)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot compute the %d-month pivot: %v\n", months, err)
			return subcommands.ExitFailure
		}
		reports = append(reports, report)
	}

	if c.csv {
		if err := bhavbook.EncodePivotReports(os.Stdout, reports...); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	var b strings.Builder
	for _, report := range reports {
		b.WriteString(renderer.RenderPivot(report))
		b.WriteString("\n")
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
