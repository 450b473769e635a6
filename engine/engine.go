// Package engine decides a verdict for a URL, preferring the learned model
// when one was loaded and falling back to the rule heuristic otherwise.
package engine

import (
	"errors"
	"runtime"
	"strings"

	"tangled.org/atscan.net/urlcheck/detector"
	"tangled.org/atscan.net/urlcheck/features"
	"tangled.org/atscan.net/urlcheck/model"
)

// ErrInvalidInput is returned for empty or whitespace-only URLs
var ErrInvalidInput = errors.New("URL is required")

// Logger interface
type Logger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// Config configures the engine
type Config struct {
	Workers int // batch evaluation concurrency
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Workers: runtime.NumCPU(),
	}
}

// Engine is safe for concurrent use; nothing it holds changes after New.
type Engine struct {
	adapter   *model.Adapter
	heuristic *detector.Heuristic
	state     State
	config    *Config
	logger    Logger
}

// New builds an engine. The detection state is fixed here from the
// adapter's availability. A nil heuristic uses detector.DefaultHeuristic.
func New(adapter *model.Adapter, heuristic *detector.Heuristic, config *Config, logger Logger) *Engine {
	if heuristic == nil {
		heuristic = detector.DefaultHeuristic()
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Workers < 1 {
		config.Workers = 1
	}

	state := StateHeuristicOnly
	if adapter.Available() {
		state = StateModelActive
	}

	return &Engine{
		adapter:   adapter,
		heuristic: heuristic,
		state:     state,
		config:    config,
		logger:    logger,
	}
}

// State returns the detection path chosen at construction
func (e *Engine) State() State {
	return e.state
}

// ModelLoaded reports whether the learned classifier is in use
func (e *Engine) ModelLoaded() bool {
	return e.state == StateModelActive
}

// ModelInfo describes the loaded (or missing) model
func (e *Engine) ModelInfo() model.Info {
	return e.adapter.Info()
}

// Heuristic returns the fallback classifier
func (e *Engine) Heuristic() *detector.Heuristic {
	return e.heuristic
}

// Evaluate classifies a single URL
func (e *Engine) Evaluate(raw string) (*Result, error) {
	url := strings.TrimSpace(raw)
	if url == "" {
		return nil, ErrInvalidInput
	}

	if e.state == StateModelActive {
		return e.evaluateModel(url), nil
	}
	return e.evaluateHeuristic(url), nil
}

func (e *Engine) evaluateModel(url string) *Result {
	// A failed prediction still reports ml-model: no valid label was
	// produced, but the model path is the one that ran.
	result := &Result{
		URL:        url,
		Verdict:    VerdictSafe,
		Confidence: ConfidenceSafe,
		Method:     MethodModel,
	}

	label, err := e.adapter.Predict(features.Extract(url))
	if err != nil {
		if e.logger != nil {
			e.logger.Printf("Model error: %v", err)
		}
		return result
	}

	if label == model.LabelPhishing {
		result.Verdict = VerdictPhishing
		result.Confidence = ConfidencePhishing
	}

	return result
}

func (e *Engine) evaluateHeuristic(url string) *Result {
	if e.heuristic.LooksSuspicious(url) {
		return &Result{
			URL:        url,
			Verdict:    VerdictSuspicious,
			Confidence: ConfidenceSuspicious,
			Method:     MethodHeuristic,
		}
	}

	return &Result{
		URL:        url,
		Verdict:    VerdictSafe,
		Confidence: ConfidenceSafe,
		Method:     MethodHeuristic,
	}
}
