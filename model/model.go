// Package model owns the optional learned URL classifier: loading it from an
// artifact on disk once, and isolating callers from its runtime failures.
package model

import "errors"

// Label is a binary classifier output
type Label int

const (
	LabelSafe     Label = 0
	LabelPhishing Label = 1
)

var (
	// ErrModelUnavailable means no classifier was acquired at startup
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrPredictionFailure wraps any failure raised while predicting
	ErrPredictionFailure = errors.New("prediction failed")

	// ErrFeatureShape is returned by classifiers given a vector of the wrong length
	ErrFeatureShape = errors.New("incompatible feature shape")
)

// Classifier is a loaded binary classifier
type Classifier interface {
	// Kind names the model family (e.g. "logistic", "tree")
	Kind() string

	// NumFeatures is the input width the model was trained on
	NumFeatures() int

	// Predict returns 0 (safe) or 1 (phishing)
	Predict(x []float64) (int, error)
}

// Logger interface
type Logger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}
