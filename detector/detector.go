// detector/detector.go
package detector

import (
	"context"
	"time"
)

// Detector represents a rule-based URL check
type Detector interface {
	// Name returns the detector's unique identifier
	Name() string

	// Description returns a human-readable description
	Description() string

	// Detect analyzes a URL and returns a match result (nil if clean)
	Detect(ctx context.Context, url string) (*Match, error)

	// Version returns the detector version
	Version() string
}

// Match represents a positive detection
type Match struct {
	Reason     string                 // Short identifier (e.g., "at_sign_present")
	Category   string                 // Broader category (e.g., "obfuscation")
	Confidence float64                // 0.0 to 1.0
	Note       string                 // Optional human-readable explanation
	Metadata   map[string]interface{} // Additional context
}

// Result represents the outcome of running a detector on a URL
type Result struct {
	Index        int
	URL          string
	Match        *Match // nil if no match
	Error        error
	DetectorName string
	DetectedAt   time.Time
}

// Config holds runner configuration
type Config struct {
	MinConfidence float64
	Parallel      bool
	Workers       int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		MinConfidence: 0.0,
		Parallel:      true,
		Workers:       4,
	}
}
