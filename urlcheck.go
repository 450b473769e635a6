// Package urlcheck assigns phishing verdicts to URLs. It is a thin
// convenience layer over the engine, model and detector packages.
package urlcheck

import (
	"context"

	"tangled.org/atscan.net/urlcheck/engine"
	"tangled.org/atscan.net/urlcheck/features"
	"tangled.org/atscan.net/urlcheck/model"
)

// Re-export commonly used types for convenience
type (
	Result    = engine.Result
	Verdict   = engine.Verdict
	Method    = engine.Method
	State     = engine.State
	BatchItem = engine.BatchItem
	Engine    = engine.Engine
	ModelInfo = model.Info
	Vector    = features.Vector
)

// Re-export constants
const (
	VerdictSafe       = engine.VerdictSafe
	VerdictSuspicious = engine.VerdictSuspicious
	VerdictPhishing   = engine.VerdictPhishing

	MethodHeuristic = engine.MethodHeuristic
	MethodModel     = engine.MethodModel
)

// ErrInvalidInput is returned for empty or whitespace-only URLs
var ErrInvalidInput = engine.ErrInvalidInput

// Checker provides a high-level API for URL evaluation
type Checker struct {
	eng *Engine
}

// New creates a Checker. The model is loaded once here; if it cannot be
// loaded the Checker uses heuristic rules for its whole lifetime.
func New(opts ...Option) *Checker {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var adapter *model.Adapter
	if cfg.classifier != nil {
		adapter = model.NewAdapterWithClassifier(cfg.classifier)
	} else {
		adapter = model.NewAdapter(cfg.modelPath, cfg.logger)
	}

	return &Checker{eng: engine.New(adapter, cfg.heuristic, cfg.engine, cfg.logger)}
}

// Check evaluates a single URL
func (c *Checker) Check(url string) (*Result, error) {
	return c.eng.Evaluate(url)
}

// CheckAll evaluates urls concurrently; items keep input order
func (c *Checker) CheckAll(ctx context.Context, urls []string) []BatchItem {
	return c.eng.EvaluateBatch(ctx, urls)
}

// ModelLoaded reports whether the learned classifier is in use
func (c *Checker) ModelLoaded() bool {
	return c.eng.ModelLoaded()
}

// ModelInfo describes the loaded (or missing) model
func (c *Checker) ModelInfo() ModelInfo {
	return c.eng.ModelInfo()
}

// Engine returns the underlying decision engine (e.g. for server.New)
func (c *Checker) Engine() *Engine {
	return c.eng
}

// Features returns the feature vector the model would see for url
func Features(url string) Vector {
	return features.Extract(url)
}
