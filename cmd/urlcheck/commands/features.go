package commands

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"tangled.org/atscan.net/urlcheck/features"
)

func NewFeaturesCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "features <url> [url...]",
		Short: "Print the feature vector the model sees",
		Long: `Print the feature vector the model sees

Features, in order: ` + fmt.Sprint(features.Names) + `
Length counts characters, not bytes. The input is trimmed first, as the
engine does.`,

		Example: `  urlcheck features http://a-b.com
  urlcheck features --json http://user@example.com`,

		Args: cobra.MinimumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			for _, raw := range args {
				url := strings.TrimSpace(raw)
				v := features.Extract(url)

				if jsonOut {
					data, err := json.Marshal(map[string]interface{}{
						"url":      url,
						"features": v.Map(),
						"vector":   v.Slice(),
					})
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s\n", data)
					continue
				}

				fmt.Fprintf(out, "%s\n", url)
				for i, name := range features.Names {
					fmt.Fprintf(out, "  %-14s %g\n", name, v[i])
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSONL")

	return cmd
}
