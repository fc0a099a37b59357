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

// mergeCmd holds the flags for the 'merge' subcommand.
type mergeCmd struct {
	tuning
	file       string
	candidates string
	target     float64
	currency   string
}

func (*mergeCmd) Name() string { return "merge" }
func (*mergeCmd) Synopsis() string {
	return "extract and blend pre-resolved candidate holdings into the result"
}
func (*mergeCmd) Usage() string {
	return `hx merge -candidates <file.jsonl> [-f <file>] [-target <total>]

  Runs the extraction and reconciles the candidate holdings (for instance the
  output of 'hx vision') under the usual duplicate-merge rule: the higher
  confidence entry wins.
`
}

func (c *mergeCmd) SetFlags(f *flag.FlagSet) {
	c.tuning.setFlags(f)
	f.StringVar(&c.file, "f", "-", "statement text file, '-' for stdin")
	f.StringVar(&c.candidates, "candidates", "", "JSONL file of pre-resolved holdings")
	f.Float64Var(&c.target, "target", 0, "expected portfolio total to score against")
	f.StringVar(&c.currency, "c", "USD", "currency of the target total")
}

func (c *mergeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.candidates == "" {
		fmt.Fprintln(os.Stderr, "Error: -candidates is required")
		return subcommands.ExitUsageError
	}

	cf, err := os.Open(c.candidates)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening candidates file: %v\n", err)
		return subcommands.ExitFailure
	}
	defer cf.Close()
	candidates, err := holdex.ImportHoldings(cf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading candidates: %v\n", err)
		return subcommands.ExitFailure
	}

	text, err := readDocument(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading document: %v\n", err)
		return subcommands.ExitFailure
	}

	var target *holdex.Money
	if c.target != 0 {
		m := holdex.M(c.target, c.currency)
		target = &m
	}

	res := holdex.New(c.config()).ExtractBlend(text, candidates, target)
	printMarkdown(renderer.ResultMarkdown(res))
	return subcommands.ExitSuccess
}
