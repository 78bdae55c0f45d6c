package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/bhavbook/bhavbook"
	"github.com/bhavbook/bhavbook/renderer"
	"github.com/google/subcommands"
)

type holdingsCmd struct {
	csv bool
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "show the holdings book" }
func (*holdingsCmd) Usage() string {
	return `bvb holdings [-csv]

  Shows every lot in the holdings book, open lots first, with the last
  stamped price and value. With -csv, writes the book in its own CSV
  format to stdout instead.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.csv, "csv", false, "Write the holdings CSV to stdout instead of markdown.")
}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	holdings, err := DecodeHoldings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if len(holdings) == 0 {
		fmt.Fprintf(os.Stderr, "No holdings in %q.\n", bookPath(*holdingsFile))
		return subcommands.ExitFailure
	}

	if c.csv {
		if err := bhavbook.EncodeHoldings(os.Stdout, holdings); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderHoldings(holdings))
	return subcommands.ExitSuccess
}
