// Package cmd implements the CLI application to extract holdings from
// statement text.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/aviadkim/holdex"
	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

// Commands is the list a main package registers with its commander.
var Commands = []subcommands.Command{
	&extractCmd{},
	&scoreCmd{},
	&mergeCmd{},
	&visionCmd{},
	&checkCmd{},
	&quoteCmd{},
}

// tuning carries the engine flags shared by the extracting subcommands.
type tuning struct {
	nameWindow     int
	valueWindow    int
	skipCheckDigit bool
}

func (t *tuning) setFlags(f *flag.FlagSet) {
	f.IntVar(&t.nameWindow, "name-window", 10, "lines searched before an anchor for the security name")
	f.IntVar(&t.valueWindow, "value-window", 10, "lines searched after an anchor for the market value")
	f.BoolVar(&t.skipCheckDigit, "skip-check-digit", false, "accept identifier-shaped codes without ISIN check digit validation")
}

func (t *tuning) config() holdex.Config {
	cfg := holdex.DefaultConfig()
	cfg.NameWindow = t.nameWindow
	cfg.ValueWindow = t.valueWindow
	cfg.SkipCheckDigit = t.skipCheckDigit
	return cfg
}

// readDocument reads the statement text from the given file, or from stdin
// when the path is "-" or empty.
func readDocument(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("cannot read document from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read document %q: %w", path, err)
	}
	return string(data), nil
}

// printMarkdown renders markdown for the terminal; on rendering trouble the
// raw markdown is still printed.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
