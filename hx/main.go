package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/aviadkim/holdex/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command tree for shell completion.
var completion = &complete.Command{
	Sub: map[string]*complete.Command{
		"extract": {Flags: map[string]complete.Predictor{
			"f": predict.Files("*"),
			"o": predict.Set{"markdown", "csv", "jsonl"},
		}},
		"score": {Flags: map[string]complete.Predictor{
			"f":      predict.Files("*"),
			"target": predict.Nothing,
			"c":      predict.Nothing,
		}},
		"merge": {Flags: map[string]complete.Predictor{
			"f":          predict.Files("*"),
			"candidates": predict.Files("*.jsonl"),
		}},
		"vision": {Flags: map[string]complete.Predictor{
			"f":     predict.Files("*"),
			"model": predict.Nothing,
		}},
		"check": {},
		"quote": {Flags: map[string]complete.Predictor{
			"isin":  predict.Nothing,
			"price": predict.Nothing,
		}},
	},
}

func main() {
	completion.Complete("hx")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
