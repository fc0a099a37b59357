package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/aviadkim/holdex/quotes"
	"github.com/google/subcommands"
)

// quoteCmd holds the flags for the 'quote' subcommand.
type quoteCmd struct {
	isin  string
	price float64
}

func (*quoteCmd) Name() string { return "quote" }
func (*quoteCmd) Synopsis() string {
	return "fetch the live Tradegate quote for an ISIN and compare to an extracted price"
}
func (*quoteCmd) Usage() string {
	return `hx quote -isin <isin> [-price <extracted unit price>]

  Fetches the latest traded price and, when an extracted price is given,
  reports the relative deviation. Large deviations hint at a misread value.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.isin, "isin", "", "identifier to quote")
	f.Float64Var(&c.price, "price", 0, "extracted unit price to compare against")
}

func (c *quoteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.isin == "" {
		fmt.Fprintln(os.Stderr, "Error: -isin is required")
		return subcommands.ExitUsageError
	}

	latest, err := quotes.Latest(c.isin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching quote: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s last: %.4f EUR\n", c.isin, latest)

	if c.price != 0 {
		dev, err := quotes.Deviation(c.price, c.isin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error computing deviation: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("deviation from extracted %.4f: %s\n", c.price, dev)
	}
	return subcommands.ExitSuccess
}
