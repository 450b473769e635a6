package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"tangled.org/atscan.net/urlcheck/features"
	"tangled.org/atscan.net/urlcheck/internal/storage"
	"tangled.org/atscan.net/urlcheck/model"
)

func NewModelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect and package model artifacts",
		Long: `Inspect and package model artifacts

A model artifact is a JSON document ("format": "urlcheck-model") holding
either logistic regression coefficients or a flattened decision tree.
Artifacts may be zstd-compressed; compression is detected on load.`,

		Example: `  # Show what serve would load
  urlcheck model info phishing_model.json

  # Compress an artifact
  urlcheck model pack phishing_model.json phishing_model.json.zst

  # Decompress it again
  urlcheck model pack --no-compress phishing_model.json.zst phishing_model.json`,
	}

	cmd.AddCommand(newModelInfoCommand())
	cmd.AddCommand(newModelPackCommand())

	return cmd
}

// ============================================================================
// MODEL INFO
// ============================================================================

func newModelInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info [path]",
		Short: "Validate an artifact and show its contents",
		Long: `Validate an artifact and show its contents

Defaults to the --model path. Exits with an error when the artifact would
not load, which is when serve falls back to heuristic rules.`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Root().PersistentFlags().GetString("model")
			if len(args) == 1 {
				path = args[0]
			}

			file, err := storage.NewArtifacts(nil).Read(path)
			if err != nil {
				return err
			}

			c, art, err := model.Decode(file.Data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			fmt.Printf("Artifact: %s\n", path)
			fmt.Printf("  Format:      %s v%d\n", art.Format, art.Version)
			fmt.Printf("  Kind:        %s\n", c.Kind())
			fmt.Printf("  Features:    %d", c.NumFeatures())
			if c.NumFeatures() != len(features.Names) {
				fmt.Printf(" (extractor produces %d, every prediction will fail)", len(features.Names))
			}
			fmt.Printf("\n")
			fmt.Printf("  Compressed:  %v\n", file.Compressed)
			fmt.Printf("  File size:   %s\n", formatBytes(file.FileSize))
			if file.Compressed {
				fmt.Printf("  Content:     %s (%.1fx)\n", formatBytes(file.ContentSize),
					float64(file.ContentSize)/float64(file.FileSize))
			}
			fmt.Printf("  SHA-256:     %s\n", file.ContentHash)

			switch m := c.(type) {
			case *model.Logistic:
				fmt.Printf("\nLogistic regression:\n")
				for i, w := range art.Logistic.Weights {
					fmt.Printf("  %-14s %+.6f\n", featureName(i), w)
				}
				fmt.Printf("  %-14s %+.6f\n", "intercept", art.Logistic.Intercept)
			case *model.Tree:
				fmt.Printf("\nDecision tree:\n")
				fmt.Printf("  Nodes: %s\n", formatNumber(len(art.Tree.Nodes)))
				fmt.Printf("  Depth: %d\n", m.Depth())
			}

			return nil
		},
	}
}

func featureName(i int) string {
	if i < len(features.Names) {
		return features.Names[i]
	}
	return fmt.Sprintf("x[%d]", i)
}

// ============================================================================
// MODEL PACK
// ============================================================================

func newModelPackCommand() *cobra.Command {
	var (
		noCompress bool
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "pack <input> <output>",
		Short: "Validate and (de)compress an artifact",
		Long: `Validate and (de)compress an artifact

The input may be plain or compressed. It is decoded and validated before
anything is written, so a packed artifact always loads.`,

		Args: cobra.ExactArgs(2),

		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]

			if !force && storage.FileExists(out) {
				return fmt.Errorf("%s already exists (use --force to overwrite)", out)
			}

			quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
			artifacts := storage.NewArtifacts(&commandLogger{quiet: quiet})

			file, err := artifacts.Read(in)
			if err != nil {
				return err
			}

			if _, _, err := model.Decode(file.Data); err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}

			contentHash, _, size, err := artifacts.Write(out, file.Data, !noCompress)
			if err != nil {
				return err
			}

			mode := "compressed"
			if noCompress {
				mode = "plain"
			}

			fmt.Fprintf(os.Stderr, "✓ Wrote %s artifact %s (%s → %s)\n",
				mode, out, formatBytes(file.FileSize), formatBytes(size))
			fmt.Fprintf(os.Stderr, "  SHA-256: %s\n", contentHash)

			if !strings.HasSuffix(out, ".zst") && !noCompress && !quiet {
				fmt.Fprintf(os.Stderr, "  Note: compression is detected from content, the .zst suffix is optional\n")
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&noCompress, "no-compress", false, "Write plain JSON")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite the output file")

	return cmd
}
