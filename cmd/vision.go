package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/aviadkim/holdex"
	"github.com/aviadkim/holdex/vision"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// visionCmd holds the flags for the 'vision' subcommand.
type visionCmd struct {
	file  string
	model string
}

func (*visionCmd) Name() string { return "vision" }
func (*visionCmd) Synopsis() string {
	return "ask Gemini to propose holdings from the statement text"
}
func (*visionCmd) Usage() string {
	return `hx vision [-f <file>] [-model <name>]

  Sends the statement text to Gemini and prints the proposed holdings as
  JSONL, ready for 'hx merge -candidates'.
`
}

func (c *visionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "-", "statement text file, '-' for stdin")
	f.StringVar(&c.model, "model", "", "Gemini model name, empty for the default")
}

func (c *visionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	text, err := readDocument(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading document: %v\n", err)
		return subcommands.ExitFailure
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	holdings, err := vision.Extractor{Model: c.model}.Extract(ctx, client, text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error extracting with vision: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := holdex.ExportHoldings(os.Stdout, holdings); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing jsonl: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
