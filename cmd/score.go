package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/aviadkim/holdex"
	"github.com/aviadkim/holdex/renderer"
	"github.com/google/subcommands"
)

// scoreCmd holds the flags for the 'score' subcommand.
type scoreCmd struct {
	tuning
	file     string
	target   float64
	currency string
}

func (*scoreCmd) Name() string     { return "score" }
func (*scoreCmd) Synopsis() string { return "extract and score against a known portfolio total" }
func (*scoreCmd) Usage() string {
	return `hx score -target <total> [-c <currency>] [-f <file>]

  Runs the extraction and reports the accuracy of the reconstructed total
  against the declared portfolio total.
`
}

func (c *scoreCmd) SetFlags(f *flag.FlagSet) {
	c.tuning.setFlags(f)
	f.StringVar(&c.file, "f", "-", "statement text file, '-' for stdin")
	f.Float64Var(&c.target, "target", 0, "expected portfolio total to score against")
	f.StringVar(&c.currency, "c", "USD", "currency of the target total")
}

func (c *scoreCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.target == 0 {
		fmt.Fprintln(os.Stderr, "Error: -target is required")
		return subcommands.ExitUsageError
	}
	text, err := readDocument(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading document: %v\n", err)
		return subcommands.ExitFailure
	}

	res := holdex.New(c.config()).ExtractAgainst(text, holdex.M(c.target, c.currency))
	printMarkdown(renderer.SummaryMarkdown(res))
	return subcommands.ExitSuccess
}
