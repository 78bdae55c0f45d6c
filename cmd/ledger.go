package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/bhavbook/bhavbook/renderer"
	"github.com/google/subcommands"
)

type ledgerCmd struct {
	broker string
}

func (*ledgerCmd) Name() string     { return "ledger" }
func (*ledgerCmd) Synopsis() string { return "show the NAV ledger" }
func (*ledgerCmd) Usage() string {
	return `bvb ledger [-b <broker>]

  Shows the NAV ledger. Without -b, the latest row of every broker.
  With -b, every row of that broker ("Overall" aggregates all brokers).
`
}

func (c *ledgerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.broker, "b", "", "Broker whose full ledger to show.")
}

func (c *ledgerCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if len(ledger.Brokers()) == 0 {
		fmt.Fprintln(os.Stderr, "The ledger is empty, run \"bvb walk\" first.")
		return subcommands.ExitFailure
	}

	if c.broker == "" {
		printMarkdown(renderer.RenderLedgerSummary(ledger))
		return subcommands.ExitSuccess
	}
	if len(ledger.Rows(c.broker)) == 0 {
		fmt.Fprintf(os.Stderr, "No ledger rows for broker %q. Known brokers: %v\n", c.broker, ledger.Brokers())
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderLedger(ledger, c.broker))
	return subcommands.ExitSuccess
}
