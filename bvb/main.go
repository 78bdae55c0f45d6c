package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/bhavbook/bhavbook/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
)

func main() {
	completion()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion wires shell completion for the subcommand names. It is a
// no-op unless the shell is asking for completions, in which case it
// answers and exits.
func completion() {
	sub := make(map[string]*complete.Command, len(cmd.Commands))
	for _, c := range cmd.Commands {
		sub[c.Name()] = &complete.Command{}
	}
	(&complete.Command{Sub: sub}).Complete("bvb")
}
