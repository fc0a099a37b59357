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

// extractCmd holds the flags for the 'extract' subcommand.
type extractCmd struct {
	tuning
	file   string
	format string
}

func (*extractCmd) Name() string     { return "extract" }
func (*extractCmd) Synopsis() string { return "extract holdings from a statement text dump" }
func (*extractCmd) Usage() string {
	return `hx extract [-f <file>] [-o markdown|csv|jsonl]

  Reads the linearized statement text (file or stdin), reconstructs the
  holdings and prints them in the requested format.
`
}

func (c *extractCmd) SetFlags(f *flag.FlagSet) {
	c.tuning.setFlags(f)
	f.StringVar(&c.file, "f", "-", "statement text file, '-' for stdin")
	f.StringVar(&c.format, "o", "markdown", "output format: markdown, csv or jsonl")
}

func (c *extractCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	text, err := readDocument(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading document: %v\n", err)
		return subcommands.ExitFailure
	}

	res := holdex.New(c.config()).Extract(text)

	switch c.format {
	case "markdown":
		printMarkdown(renderer.ResultMarkdown(res))
	case "csv":
		if err := holdex.ExportCSV(os.Stdout, res); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing csv: %v\n", err)
			return subcommands.ExitFailure
		}
	case "jsonl":
		if err := holdex.ExportHoldings(os.Stdout, res.Holdings); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing jsonl: %v\n", err)
			return subcommands.ExitFailure
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q\n", c.format)
		return subcommands.ExitUsageError
	}
	return subcommands.ExitSuccess
}
