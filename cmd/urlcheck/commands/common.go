package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"tangled.org/atscan.net/urlcheck/engine"
	"tangled.org/atscan.net/urlcheck/internal/types"
	"tangled.org/atscan.net/urlcheck/model"
)

// EngineOptions controls how commands build the decision engine
type EngineOptions struct {
	Cmd       *cobra.Command
	ModelPath string // overrides --model when set
	Workers   int
}

// getEngine loads the model named by --model and builds an engine around it
func getEngine(opts *EngineOptions) (*engine.Engine, *commandLogger) {
	quiet, _ := opts.Cmd.Root().PersistentFlags().GetBool("quiet")
	logger := &commandLogger{quiet: quiet}

	path := opts.ModelPath
	if path == "" {
		path, _ = opts.Cmd.Root().PersistentFlags().GetString("model")
	}

	config := engine.DefaultConfig()
	if opts.Workers > 0 {
		config.Workers = opts.Workers
	}

	adapter := model.NewAdapter(path, logger)
	return engine.New(adapter, nil, config, logger), logger
}

// readURLs collects URLs from args, a file ("-" for stdin), or stdin when
// neither is given and stdin is not a terminal. Blank lines and lines
// starting with # are skipped.
func readURLs(args []string, file string, stdin io.Reader) ([]string, error) {
	urls := append([]string(nil), args...)

	var r io.Reader
	switch {
	case file == "-":
		r = stdin
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open URL list: %w", err)
		}
		defer f.Close()
		r = f
	case len(args) == 0:
		if f, ok := stdin.(*os.File); ok && isTTY(f) {
			return nil, fmt.Errorf("no URLs given (pass them as arguments, --file, or stdin)")
		}
		r = stdin
	}

	if r != nil {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			urls = append(urls, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read URL list: %w", err)
		}
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("no URLs given")
	}

	return urls, nil
}

func isTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Formatting helpers

func formatBytes(bytes int64) string {
	const unit = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

// commandLogger adapts to types.Logger
type commandLogger struct {
	quiet bool
}

var _ types.Logger = (*commandLogger)(nil)

func (l *commandLogger) Printf(format string, v ...interface{}) {
	if !l.quiet {
		fmt.Fprintf(os.Stderr, format+"\n", v...)
	}
}

func (l *commandLogger) Println(v ...interface{}) {
	if !l.quiet {
		fmt.Fprintln(os.Stderr, v...)
	}
}
