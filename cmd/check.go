package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/aviadkim/holdex"
	"github.com/google/subcommands"
)

// checkCmd validates identifiers from the command line.
type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "validate ISIN grammar and check digit" }
func (*checkCmd) Usage() string {
	return `hx check <isin> [<isin>...]

  Validates each identifier against the ISIN grammar, check digit included.
`
}

func (*checkCmd) SetFlags(_ *flag.FlagSet) {}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one identifier is required")
		return subcommands.ExitUsageError
	}
	status := subcommands.ExitSuccess
	for _, isin := range f.Args() {
		if err := holdex.ValidateISIN(isin); err != nil {
			fmt.Printf("%s: %v\n", isin, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("%s: ok\n", isin)
	}
	return status
}
