package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"tangled.org/atscan.net/urlcheck/cmd/urlcheck/commands"
	"tangled.org/atscan.net/urlcheck/internal/types"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "urlcheck",
		Short: "URL phishing verdict engine",
		Long: `urlcheck - URL phishing verdict engine

Assigns a verdict (safe, suspicious, phishing) to URLs using a learned
classifier when a model artifact is available, and a set of heuristic
rules otherwise.`,

		Example: `  urlcheck serve --websocket
  urlcheck check http://paypal-login.example
  urlcheck check --file urls.txt --json
  urlcheck features http://a-b.com
  urlcheck detector run all --file urls.txt
  urlcheck model info phishing_model.json`,

		Version:       commands.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("model", types.MODEL_FILE, "Path to the model artifact (plain or zstd-compressed JSON)")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress informational output")

	cmd.AddCommand(commands.NewServeCommand())
	cmd.AddCommand(commands.NewCheckCommand())
	cmd.AddCommand(commands.NewFeaturesCommand())
	cmd.AddCommand(commands.NewDetectorCommand())
	cmd.AddCommand(commands.NewModelCommand())
	cmd.AddCommand(commands.NewVersionCommand())

	return cmd
}
