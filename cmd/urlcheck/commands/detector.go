package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"tangled.org/atscan.net/urlcheck/detector"
)

func NewDetectorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "detector",
		Aliases: []string{"detect", "rules"},
		Short:   "Inspect and run heuristic rules",
		Long: `Inspect and run heuristic rules

The heuristic classifier flags a URL when any of its rules matches.

Built-in rules:
  • at_sign    - URL contains '@'
  • hyphen     - URL contains '-'
  • digit_run  - URL contains a run of 4 or more digits
  • noop       - Benchmark detector (returns no matches)`,

		Example: `  # List available detectors
  urlcheck detector list

  # Run every heuristic rule over a URL list
  urlcheck detector run all --file urls.txt > matches.csv

  # Get detector info
  urlcheck detector info digit_run`,
	}

	cmd.AddCommand(newDetectorListCommand())
	cmd.AddCommand(newDetectorRunCommand())
	cmd.AddCommand(newDetectorInfoCommand())

	return cmd
}

// ============================================================================
// DETECTOR LIST
// ============================================================================

func newDetectorListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available detectors",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			registry := detector.DefaultRegistry()

			fmt.Printf("Available detectors:\n\n")
			for _, d := range registry.List() {
				fmt.Printf("  %-12s %s (v%s)\n", d.Name(), d.Description(), d.Version())
			}
			fmt.Printf("\nUse 'urlcheck detector info <name>' for details\n")

			return nil
		},
	}
}

// ============================================================================
// DETECTOR RUN
// ============================================================================

func newDetectorRunCommand() *cobra.Command {
	var (
		file       string
		confidence float64
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "run <detector|all> [detector...] [flags]",
		Short: "Run detector(s) and output CSV matches",
		Long: `Run one or more detectors over a URL list and output CSV matches

Columns: index,detector,reason,category,confidence,url
Index is the zero-based position of the URL in the input. A per-rule
summary is written to stderr.`,

		Example: `  # Run all heuristic rules
  urlcheck detector run all --file urls.txt

  # Only the at-sign rule, from stdin
  cat urls.txt | urlcheck detector run at_sign

  # Raise the confidence floor
  urlcheck detector run all -f urls.txt --confidence 0.6`,

		Args: cobra.MinimumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			registry := detector.DefaultRegistry()

			names, err := resolveDetectorNames(registry, args)
			if err != nil {
				return err
			}

			urls, err := readURLs(nil, file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			config := detector.DefaultConfig()
			config.MinConfidence = confidence
			if workers > 0 {
				config.Workers = workers
			}

			quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
			runner := detector.NewRunner(registry, config, &commandLogger{quiet: quiet})

			all, err := runner.RunMultipleDetectors(cmd.Context(), names, urls)
			if err != nil {
				return err
			}

			w := csv.NewWriter(cmd.OutOrStdout())
			w.Write([]string{"index", "detector", "reason", "category", "confidence", "url"})

			for _, name := range names {
				for _, res := range all[name] {
					if res.Match == nil {
						continue
					}
					w.Write([]string{
						strconv.Itoa(res.Index),
						res.DetectorName,
						res.Match.Reason,
						res.Match.Category,
						strconv.FormatFloat(res.Match.Confidence, 'f', 2, 64),
						res.URL,
					})
				}
			}
			w.Flush()
			if err := w.Error(); err != nil {
				return err
			}

			if !quiet {
				printDetectorSummary(names, all, len(urls))
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read URLs from file, one per line (- for stdin)")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "Minimum confidence threshold")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of parallel workers (0 = default)")

	return cmd
}

// resolveDetectorNames expands "all" to the heuristic rule set
func resolveDetectorNames(registry *detector.Registry, args []string) ([]string, error) {
	var names []string
	for _, arg := range args {
		if arg == "all" {
			for _, d := range detector.HeuristicDetectors() {
				names = append(names, d.Name())
			}
			continue
		}
		if _, err := registry.Get(arg); err != nil {
			return nil, err
		}
		names = append(names, arg)
	}
	return names, nil
}

func printDetectorSummary(names []string, all map[string][]*detector.Result, total int) {
	fmt.Fprintf(os.Stderr, "\nScanned %s URLs\n", formatNumber(total))

	for _, name := range names {
		stats := detector.CalculateStats(all[name], total)
		fmt.Fprintf(os.Stderr, "  %-12s %s matches (%.2f%%)\n",
			name, formatNumber(stats.MatchedCount), stats.MatchRate*100)

		reasons := make([]string, 0, len(stats.ByReason))
		for reason := range stats.ByReason {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)

		for _, reason := range reasons {
			fmt.Fprintf(os.Stderr, "    %-22s %d\n", reason, stats.ByReason[reason])
		}
	}
}

// ============================================================================
// DETECTOR INFO
// ============================================================================

func newDetectorInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <detector-name>",
		Short: "Show detailed detector information",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			registry := detector.DefaultRegistry()
			d, err := registry.Get(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Detector: %s\n", d.Name())
			fmt.Printf("Version: %s\n", d.Version())
			fmt.Printf("Description: %s\n", d.Description())

			inHeuristic := false
			for _, h := range detector.HeuristicDetectors() {
				if h.Name() == d.Name() {
					inHeuristic = true
					break
				}
			}
			fmt.Printf("Heuristic rule: %v\n\n", inHeuristic)

			fmt.Printf("Usage examples:\n")
			fmt.Printf("  # Run over a URL list and save\n")
			fmt.Printf("  urlcheck detector run %s --file urls.txt > matches.csv\n\n", d.Name())

			return nil
		},
	}
}
