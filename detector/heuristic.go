package detector

import "context"

// Heuristic is the model-free fallback classifier. A URL looks suspicious
// when any of its detectors matches; it carries no confidence of its own.
type Heuristic struct {
	detectors []Detector
}

// HeuristicDetectors returns the fallback rules in evaluation order
func HeuristicDetectors() []Detector {
	return []Detector{
		NewAtSignDetector(),
		NewHyphenDetector(),
		NewDigitRunDetector(),
	}
}

// NewHeuristic builds a heuristic over the given detectors
func NewHeuristic(detectors ...Detector) *Heuristic {
	return &Heuristic{detectors: detectors}
}

// DefaultHeuristic returns the built-in at_sign/hyphen/digit_run heuristic
func DefaultHeuristic() *Heuristic {
	return NewHeuristic(HeuristicDetectors()...)
}

// LooksSuspicious reports whether any rule matches url
func (h *Heuristic) LooksSuspicious(url string) bool {
	ctx := context.Background()
	for _, d := range h.detectors {
		match, err := d.Detect(ctx, url)
		if err == nil && match != nil {
			return true
		}
	}
	return false
}

// Explain returns every match for url, in rule order
func (h *Heuristic) Explain(url string) []*Match {
	ctx := context.Background()
	var matches []*Match
	for _, d := range h.detectors {
		match, err := d.Detect(ctx, url)
		if err == nil && match != nil {
			matches = append(matches, match)
		}
	}
	return matches
}

// Detectors returns the rules backing the heuristic
func (h *Heuristic) Detectors() []Detector {
	out := make([]Detector, len(h.detectors))
	copy(out, h.detectors)
	return out
}
