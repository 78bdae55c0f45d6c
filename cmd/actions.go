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

type actionsCmd struct {
	parse string
}

func (*actionsCmd) Name() string     { return "actions" }
func (*actionsCmd) Synopsis() string { return "list or import corporate actions" }
func (*actionsCmd) Usage() string {
	return `bvb actions [-parse <cfca_file>]

  Lists the recorded corporate actions. With -parse, reads an exchange
  CF-CA announcement file, extracts the face-value splits and
  consolidations, and merges them into the action book. Announcements
  whose ratio cannot be extracted are skipped with a warning; they never
  reach the books.
`
}

func (c *actionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.parse, "parse", "", "CF-CA announcement file to import actions from.")
}

func (c *actionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	book, err := DecodeActionBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.parse == "" {
		if book.Len() == 0 {
			fmt.Fprintln(os.Stderr, "No corporate actions recorded.")
			return subcommands.ExitSuccess
		}
		printMarkdown(renderer.RenderActions(book))
		return subcommands.ExitSuccess
	}

	feed, err := os.Open(c.parse)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open CF-CA file: %v\n", err)
		return subcommands.ExitFailure
	}
	defer feed.Close()
	parsed, err := bhavbook.DecodeActionFeed(feed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot parse CF-CA file: %v\n", err)
		return subcommands.ExitFailure
	}

	merged, added := mergeActions(book, parsed)
	if added == 0 {
		fmt.Fprintln(os.Stderr, "No new actions found.")
		return subcommands.ExitSuccess
	}
	if err := EncodeActionBook(merged); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Added %d actions to %s\n", added, bookPath(*actionsFile))
	return subcommands.ExitSuccess
}

// mergeActions folds the parsed feed into the existing book, dropping
// announcements already recorded.
func mergeActions(book, parsed *bhavbook.ActionBook) (*bhavbook.ActionBook, int) {
	seen := make(map[bhavbook.Action]bool)
	actions := book.Actions()
	for _, a := range actions {
		seen[a] = true
	}
	added := 0
	for _, a := range parsed.Actions() {
		if seen[a] {
			continue
		}
		seen[a] = true
		actions = append(actions, a)
		added++
	}
	return bhavbook.NewActionBook(actions...), added
}
