// detector/builtin.go
package detector

import (
	"context"
	"regexp"
	"strings"
)

// NoOpDetector is an empty detector for speed testing
type NoOpDetector struct{}

func NewNoOpDetector() *NoOpDetector {
	return &NoOpDetector{}
}

func (d *NoOpDetector) Name() string { return "noop" }
func (d *NoOpDetector) Description() string {
	return "Empty detector for benchmarking (always returns no match)"
}
func (d *NoOpDetector) Version() string { return "1.0.0" }

func (d *NoOpDetector) Detect(ctx context.Context, url string) (*Match, error) {
	return nil, nil
}

// AtSignDetector flags URLs containing '@', which browsers treat as a
// userinfo separator and phishers use to hide the real host
type AtSignDetector struct{}

func NewAtSignDetector() *AtSignDetector {
	return &AtSignDetector{}
}

func (d *AtSignDetector) Name() string { return "at_sign" }
func (d *AtSignDetector) Description() string {
	return "Detects '@' anywhere in the URL (userinfo host obfuscation)"
}
func (d *AtSignDetector) Version() string { return "1.0.0" }

func (d *AtSignDetector) Detect(ctx context.Context, url string) (*Match, error) {
	idx := strings.Index(url, "@")
	if idx < 0 {
		return nil, nil
	}

	return &Match{
		Reason:     "at_sign_present",
		Category:   "obfuscation",
		Confidence: 0.80,
		Note:       "URL contains '@'; text before it may disguise the real host",
		Metadata: map[string]interface{}{
			"position": idx,
			"count":    strings.Count(url, "@"),
		},
	}, nil
}

// HyphenDetector flags URLs containing '-', common in lookalike domains
// such as paypal-secure-login.com
type HyphenDetector struct{}

func NewHyphenDetector() *HyphenDetector {
	return &HyphenDetector{}
}

func (d *HyphenDetector) Name() string { return "hyphen" }
func (d *HyphenDetector) Description() string {
	return "Detects '-' anywhere in the URL (lookalike domain pattern)"
}
func (d *HyphenDetector) Version() string { return "1.0.0" }

func (d *HyphenDetector) Detect(ctx context.Context, url string) (*Match, error) {
	count := strings.Count(url, "-")
	if count == 0 {
		return nil, nil
	}

	return &Match{
		Reason:     "hyphen_present",
		Category:   "lookalike",
		Confidence: 0.50,
		Note:       "URL contains hyphens",
		Metadata: map[string]interface{}{
			"count": count,
		},
	}, nil
}

// DigitRunDetector flags runs of consecutive decimal digits (any script),
// typical of raw IP hosts and generated paths
type DigitRunDetector struct {
	minRun  int
	pattern *regexp.Regexp
}

func NewDigitRunDetector() *DigitRunDetector {
	return &DigitRunDetector{
		minRun:  4,
		pattern: regexp.MustCompile(`\p{Nd}{4,}`),
	}
}

func (d *DigitRunDetector) Name() string { return "digit_run" }
func (d *DigitRunDetector) Description() string {
	return "Detects runs of 4 or more consecutive digits"
}
func (d *DigitRunDetector) Version() string { return "1.0.0" }

func (d *DigitRunDetector) Detect(ctx context.Context, url string) (*Match, error) {
	run := d.pattern.FindString(url)
	if run == "" {
		return nil, nil
	}

	return &Match{
		Reason:     "digit_run",
		Category:   "generated",
		Confidence: 0.60,
		Note:       "URL contains a long run of digits",
		Metadata: map[string]interface{}{
			"run":     run,
			"min_run": d.minRun,
		},
	}, nil
}
