package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/bhavbook/bhavbook/nse"
	"github.com/google/subcommands"
)

type quoteCmd struct{}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "fetch the intraday NSE quote for symbols" }
func (*quoteCmd) Usage() string {
	return `bvb quote <symbol> [<symbol>...]

  Fetches the last traded price of each symbol from the NSE quote API.
  Symbols are NSE symbols without any exchange suffix (e.g. RELIANCE).
`
}

func (*quoteCmd) SetFlags(f *flag.FlagSet) {}

func (c *quoteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: bvb quote <symbol> [<symbol>...]")
		return subcommands.ExitUsageError
	}

	client := nse.Daily()
	status := subcommands.ExitSuccess
	for _, symbol := range f.Args() {
		symbol = strings.ToUpper(strings.TrimSuffix(strings.TrimSuffix(symbol, ".NS"), ".BO"))
		price, err := nse.Quote(client, symbol)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", symbol, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("%s: %.2f\n", symbol, price)
	}
	return status
}
