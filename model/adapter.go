package model

import (
	"errors"
	"fmt"

	"tangled.org/atscan.net/urlcheck/features"
	"tangled.org/atscan.net/urlcheck/internal/storage"
)

// Adapter holds the classifier acquired at startup, if any. It is never
// reloaded; an adapter that failed to load stays unavailable.
type Adapter struct {
	classifier Classifier
	info       Info
	loadErr    error
}

// Info describes the adapter state for status reporting
type Info struct {
	Loaded     bool   `json:"loaded"`
	Path       string `json:"path,omitempty"`
	Kind       string `json:"kind,omitempty"`
	NFeatures  int    `json:"n_features,omitempty"`
	SHA256     string `json:"sha256,omitempty"`
	Compressed bool   `json:"compressed,omitempty"`
	Error      string `json:"error,omitempty"`
}

// LoadFile reads an artifact (plain or zstd-compressed JSON) and builds its classifier
func LoadFile(path string) (Classifier, *storage.ArtifactFile, error) {
	file, err := storage.NewArtifacts(nil).Read(path)
	if err != nil {
		return nil, nil, err
	}

	c, _, err := Decode(file.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, file, nil
}

// NewAdapter attempts to load the artifact at path. Failure is not an
// error: the adapter is returned unavailable and the cause is kept.
func NewAdapter(path string, logger Logger) *Adapter {
	a := &Adapter{info: Info{Path: path}}

	if path == "" {
		a.loadErr = fmt.Errorf("%w: no model path configured", ErrModelUnavailable)
	} else {
		c, file, err := LoadFile(path)
		if err != nil {
			a.loadErr = fmt.Errorf("%w: %w", ErrModelUnavailable, err)
		} else {
			a.classifier = c
			a.info.Loaded = true
			a.info.Kind = c.Kind()
			a.info.NFeatures = c.NumFeatures()
			a.info.SHA256 = file.ContentHash
			a.info.Compressed = file.Compressed
		}
	}

	if a.loadErr != nil {
		a.info.Error = a.loadErr.Error()
	}

	if logger != nil {
		if a.Available() {
			logger.Printf("Model loaded successfully (%s, %d features) from %s", a.info.Kind, a.info.NFeatures, path)
		} else {
			logger.Printf("Model not loaded, using heuristic rules: %v", a.loadErr)
		}
	}

	return a
}

// NewAdapterWithClassifier wraps an already constructed classifier. A nil
// classifier yields an unavailable adapter.
func NewAdapterWithClassifier(c Classifier) *Adapter {
	if c == nil {
		err := fmt.Errorf("%w: no classifier provided", ErrModelUnavailable)
		return &Adapter{loadErr: err, info: Info{Error: err.Error()}}
	}

	return &Adapter{
		classifier: c,
		info: Info{
			Loaded:    true,
			Kind:      c.Kind(),
			NFeatures: c.NumFeatures(),
		},
	}
}

// Available reports whether a classifier was acquired
func (a *Adapter) Available() bool {
	return a != nil && a.classifier != nil
}

// LoadError returns why the adapter is unavailable (nil if available)
func (a *Adapter) LoadError() error {
	if a == nil {
		return ErrModelUnavailable
	}
	return a.loadErr
}

// Info returns a snapshot of the adapter state
func (a *Adapter) Info() Info {
	if a == nil {
		return Info{Error: ErrModelUnavailable.Error()}
	}
	return a.info
}

// Predict runs the classifier on v. Classifier errors, panics and
// out-of-range labels come back wrapped in ErrPredictionFailure.
func (a *Adapter) Predict(v features.Vector) (label Label, err error) {
	if !a.Available() {
		return LabelSafe, ErrModelUnavailable
	}

	defer func() {
		if r := recover(); r != nil {
			label = LabelSafe
			err = fmt.Errorf("%w: classifier panic: %v", ErrPredictionFailure, r)
		}
	}()

	raw, perr := a.classifier.Predict(v.Slice())
	if perr != nil {
		return LabelSafe, fmt.Errorf("%w: %w", ErrPredictionFailure, perr)
	}

	switch Label(raw) {
	case LabelSafe, LabelPhishing:
		return Label(raw), nil
	default:
		return LabelSafe, fmt.Errorf("%w: label %d outside {0, 1}", ErrPredictionFailure, raw)
	}
}

// IsPredictionFailure reports whether err came from a failed prediction
func IsPredictionFailure(err error) bool {
	return errors.Is(err, ErrPredictionFailure)
}
