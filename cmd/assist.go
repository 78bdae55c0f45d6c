package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bhavbook/bhavbook/agent"
	"github.com/google/subcommands"
)

type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "start an interactive session with the AI assistant" }
func (*assistCmd) Usage() string {
	return `bvb assist [<question>...]

  Starts an interactive session with the AI assistant over the portfolio
  books. Any arguments are asked as the first question. Type "bye" to
  leave. The Gemini API key is read from the environment.
`
}

func (*assistCmd) SetFlags(f *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	books, err := loadBooks()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	a := agent.New(os.Stdout, os.Stdin, books)
	if err := a.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := a.Run(ctx, strings.Join(f.Args(), " ")); err != nil {
		fmt.Fprintln(os.Stderr, "Assistant failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func loadBooks() (*agent.Books, error) {
	holdings, err := DecodeHoldings()
	if err != nil {
		return nil, err
	}
	ledger, err := DecodeLedger()
	if err != nil {
		return nil, err
	}
	trail, err := DecodeTrail()
	if err != nil {
		return nil, err
	}
	trades, err := DecodeTradeLog()
	if err != nil {
		return nil, err
	}
	actions, err := DecodeActionBook()
	if err != nil {
		return nil, err
	}
	return &agent.Books{
		Holdings: holdings,
		Ledger:   ledger,
		Trail:    trail,
		Trades:   trades,
		Actions:  actions,
	}, nil
}
