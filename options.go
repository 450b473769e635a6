package urlcheck

import (
	"tangled.org/atscan.net/urlcheck/detector"
	"tangled.org/atscan.net/urlcheck/engine"
	"tangled.org/atscan.net/urlcheck/internal/types"
	"tangled.org/atscan.net/urlcheck/model"
)

type config struct {
	modelPath  string
	classifier model.Classifier
	heuristic  *detector.Heuristic
	engine     *engine.Config
	logger     Logger
}

func defaultConfig() *config {
	return &config{
		modelPath: types.MODEL_FILE,
		engine:    engine.DefaultConfig(),
		logger:    types.NopLogger{},
	}
}

// Option configures the Checker
type Option func(*config)

// WithModelPath sets the artifact loaded at construction
func WithModelPath(path string) Option {
	return func(c *config) {
		c.modelPath = path
	}
}

// WithClassifier uses an in-memory classifier instead of loading an artifact
func WithClassifier(classifier model.Classifier) Option {
	return func(c *config) {
		c.classifier = classifier
	}
}

// WithoutModel forces heuristic-only operation
func WithoutModel() Option {
	return func(c *config) {
		c.modelPath = ""
		c.classifier = nil
	}
}

// WithDetectors replaces the heuristic rule set
func WithDetectors(detectors ...detector.Detector) Option {
	return func(c *config) {
		c.heuristic = detector.NewHeuristic(detectors...)
	}
}

// WithWorkers bounds batch evaluation concurrency
func WithWorkers(n int) Option {
	return func(c *config) {
		c.engine.Workers = n
	}
}

// WithLogger sets a custom logger
func WithLogger(logger Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Logger interface
type Logger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}
