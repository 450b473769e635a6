package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/jmespath/go-jmespath"
	"github.com/spf13/cobra"
	"tangled.org/atscan.net/urlcheck/cmd/urlcheck/ui"
	"tangled.org/atscan.net/urlcheck/detector"
	"tangled.org/atscan.net/urlcheck/engine"
)

// checkChunk is how many URLs are evaluated between progress updates
const checkChunk = 256

func NewCheckCommand() *cobra.Command {
	var (
		file       string
		jsonOut    bool
		query      string
		explain    bool
		workers    int
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:     "check [url...] [flags]",
		Aliases: []string{"eval"},
		Short:   "Evaluate URLs from the command line",
		Long: `Evaluate URLs from the command line

URLs come from arguments, from --file (one per line, "-" for stdin), or
from stdin when it is not a terminal. Blank lines and lines starting
with # are skipped.

Output formats:
  table - verdict, confidence, method and URL per line (default)
  json  - one JSON result per line (--json)
  query - JMESPath expression evaluated on each JSON result (--query);
          null results are skipped`,

		Example: `  # Single URL
  urlcheck check http://paypal-secure-login.example

  # Many URLs from a file, as JSONL
  urlcheck check --file urls.txt --json

  # Only the URLs judged phishing
  urlcheck check --file urls.txt --query "verdict == 'phishing' && url || null"

  # Show which heuristic rules fired
  urlcheck check --explain http://user@1234.example

  # Pipe from another tool
  cat urls.txt | urlcheck check --json`,

		RunE: func(cmd *cobra.Command, args []string) error {
			urls, err := readURLs(args, file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			var compiled *jmespath.JMESPath
			if query != "" {
				compiled, err = jmespath.Compile(query)
				if err != nil {
					return fmt.Errorf("invalid JMESPath expression: %w", err)
				}
			}

			eng, _ := getEngine(&EngineOptions{Cmd: cmd, Workers: workers})

			quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
			showProgress := !noProgress && !quiet && len(urls) > checkChunk && isTTY(os.Stderr)

			items := evaluateWithProgress(cmd.Context(), eng, urls, showProgress)

			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush()

			opts := checkOutputOptions{
				json:    jsonOut,
				query:   compiled,
				explain: explain,
				color:   !jsonOut && compiled == nil && isTTY(os.Stdout),
			}

			counts, err := writeCheckResults(out, eng.Heuristic(), items, opts)
			if err != nil {
				return err
			}

			if !quiet {
				out.Flush()
				fmt.Fprintf(os.Stderr, "\n%s URLs (%s) | safe: %d | suspicious: %d | phishing: %d | errors: %d\n",
					formatNumber(len(items)), eng.State(),
					counts[engine.VerdictSafe], counts[engine.VerdictSuspicious],
					counts[engine.VerdictPhishing], counts[""])
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read URLs from file, one per line (- for stdin)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSONL")
	cmd.Flags().StringVar(&query, "query", "", "JMESPath expression applied to each JSON result")
	cmd.Flags().BoolVar(&explain, "explain", false, "Include heuristic rule matches")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of parallel workers (0 = CPU count)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress bar")

	return cmd
}

// evaluateWithProgress runs the batch in chunks so the bar can advance
func evaluateWithProgress(ctx context.Context, eng *engine.Engine, urls []string, showProgress bool) []engine.BatchItem {
	if !showProgress {
		return eng.EvaluateBatch(ctx, urls)
	}

	progress := ui.NewProgressBar(len(urls))
	items := make([]engine.BatchItem, 0, len(urls))

	for start := 0; start < len(urls); start += checkChunk {
		end := min(start+checkChunk, len(urls))
		items = append(items, eng.EvaluateBatch(ctx, urls[start:end])...)
		progress.Set(len(items))
	}
	progress.Finish()

	return items
}

type checkOutputOptions struct {
	json    bool
	query   *jmespath.JMESPath
	explain bool
	color   bool
}

// checkRecord is the JSON form of one check result
type checkRecord struct {
	URL        string      `json:"url"`
	Verdict    string      `json:"verdict,omitempty"`
	Confidence float64     `json:"confidence,omitempty"`
	Method     string      `json:"detection_method,omitempty"`
	Error      string      `json:"error,omitempty"`
	Rules      []ruleMatch `json:"rules,omitempty"`
}

type ruleMatch struct {
	Reason     string  `json:"reason"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Note       string  `json:"note,omitempty"`
}

func newCheckRecord(h *detector.Heuristic, item engine.BatchItem, explain bool) checkRecord {
	if item.Err != nil {
		return checkRecord{URL: item.Input, Error: item.Err.Error()}
	}

	rec := checkRecord{
		URL:        item.Result.URL,
		Verdict:    string(item.Result.Verdict),
		Confidence: item.Result.Confidence,
		Method:     string(item.Result.Method),
	}

	if explain {
		for _, m := range h.Explain(item.Result.URL) {
			rec.Rules = append(rec.Rules, ruleMatch{
				Reason:     m.Reason,
				Category:   m.Category,
				Confidence: m.Confidence,
				Note:       m.Note,
			})
		}
	}

	return rec
}

// writeCheckResults renders items and returns counts per verdict ("" counts errors)
func writeCheckResults(w io.Writer, h *detector.Heuristic, items []engine.BatchItem, opts checkOutputOptions) (map[engine.Verdict]int, error) {
	counts := make(map[engine.Verdict]int)

	for _, item := range items {
		rec := newCheckRecord(h, item, opts.explain)
		counts[engine.Verdict(rec.Verdict)]++

		switch {
		case opts.query != nil:
			if err := writeQueryResult(w, opts.query, rec); err != nil {
				return nil, err
			}
		case opts.json:
			data, err := json.Marshal(rec)
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(w, "%s\n", data)
		default:
			writeTableRow(w, rec, opts.color)
		}
	}

	return counts, nil
}

func writeQueryResult(w io.Writer, compiled *jmespath.JMESPath, rec checkRecord) error {
	// JMESPath works on generic JSON values
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	result, err := compiled.Search(doc)
	if err != nil || result == nil {
		return nil
	}

	out, err := json.Marshal(result)
	if err != nil {
		return nil
	}
	fmt.Fprintf(w, "%s\n", out)
	return nil
}

func writeTableRow(w io.Writer, rec checkRecord, color bool) {
	var (
		colorReset = ""
		colorDim   = ""
		colorMark  = ""
	)

	if color {
		colorReset = "\033[0m"
		colorDim = "\033[2m"
		switch engine.Verdict(rec.Verdict) {
		case engine.VerdictSafe:
			colorMark = "\033[32m" // Green
		case engine.VerdictSuspicious:
			colorMark = "\033[33m" // Yellow
		case engine.VerdictPhishing:
			colorMark = "\033[1;31m" // Bright red + bold
		default:
			colorMark = "\033[35m" // Magenta
		}
	}

	if rec.Error != "" {
		fmt.Fprintf(w, "%s%-10s%s  %-4s  %-9s  %q %s(%s)%s\n",
			colorMark, "error", colorReset, "-", "-", rec.URL, colorDim, rec.Error, colorReset)
		return
	}

	fmt.Fprintf(w, "%s%-10s%s  %.2f  %-9s  %s\n",
		colorMark, rec.Verdict, colorReset, rec.Confidence, rec.Method, rec.URL)

	for _, r := range rec.Rules {
		fmt.Fprintf(w, "            %s↳ %s (%s, %.2f)", colorDim, r.Reason, r.Category, r.Confidence)
		if r.Note != "" {
			fmt.Fprintf(w, ": %s", r.Note)
		}
		fmt.Fprintf(w, "%s\n", colorReset)
	}
}
