package detector_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tangled.org/atscan.net/urlcheck/detector"
)

// ====================================================================================
// HEURISTIC TESTS
// ====================================================================================

func TestHeuristicLooksSuspicious(t *testing.T) {
	h := detector.DefaultHeuristic()

	tests := []struct {
		url  string
		want bool
	}{
		{"http://example.org/page", false},
		{"http://a.com", false},
		{"", false},
		{"http://a-b.com", true},
		{"http://user@evil.com", true},
		{"1234", true},
		{"http://example.com/123", false},
		{"http://example.com/12a34", false},
		{"http://198.51.100.7/", false},
		{"http://login.example.com/2024/verify", true},
		{"http://example.com/٠١٢٣", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := h.LooksSuspicious(tt.url); got != tt.want {
				t.Errorf("LooksSuspicious(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestHeuristicProperties(t *testing.T) {
	h := detector.DefaultHeuristic()

	t.Run("AtSignAlwaysSuspicious", func(t *testing.T) {
		for _, u := range []string{"@", "a@b", "http://example.org/@", strings.Repeat("x", 500) + "@"} {
			if !h.LooksSuspicious(u) {
				t.Errorf("%q contains @ but not flagged", u)
			}
		}
	})

	t.Run("DigitRunAlwaysSuspicious", func(t *testing.T) {
		for _, u := range []string{"1234", "x00000y", "http://example.org/?id=98765"} {
			if !h.LooksSuspicious(u) {
				t.Errorf("%q contains 4+ digit run but not flagged", u)
			}
		}
	})
}

func TestHeuristicExplain(t *testing.T) {
	h := detector.DefaultHeuristic()

	matches := h.Explain("http://a-b.com@evil/12345")
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}

	wantReasons := []string{"at_sign_present", "hyphen_present", "digit_run"}
	for i, m := range matches {
		if m.Reason != wantReasons[i] {
			t.Errorf("match %d reason = %s, want %s", i, m.Reason, wantReasons[i])
		}
	}

	if len(h.Explain("http://example.org/page")) != 0 {
		t.Error("clean URL should have no matches")
	}
}

type failingDetector struct{}

func (failingDetector) Name() string        { return "failing" }
func (failingDetector) Description() string { return "always errors" }
func (failingDetector) Version() string     { return "0.0.1" }
func (failingDetector) Detect(ctx context.Context, url string) (*detector.Match, error) {
	return nil, errors.New("boom")
}

func TestHeuristicIgnoresDetectorErrors(t *testing.T) {
	h := detector.NewHeuristic(failingDetector{})
	if h.LooksSuspicious("http://a-b.com") {
		t.Error("erroring detector should not flag URL")
	}
}

// ====================================================================================
// BUILTIN DETECTOR TESTS
// ====================================================================================

func TestBuiltinDetectors(t *testing.T) {
	ctx := context.Background()

	t.Run("DigitRunMetadata", func(t *testing.T) {
		d := detector.NewDigitRunDetector()
		match, err := d.Detect(ctx, "http://x.com/abc123456def")
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		if match == nil {
			t.Fatal("expected match")
		}
		if match.Metadata["run"] != "123456" {
			t.Errorf("run = %v, want 123456", match.Metadata["run"])
		}
	})

	t.Run("HyphenCount", func(t *testing.T) {
		d := detector.NewHyphenDetector()
		match, _ := d.Detect(ctx, "a-b-c")
		if match == nil || match.Metadata["count"] != 2 {
			t.Errorf("expected hyphen count 2, got %+v", match)
		}
	})

	t.Run("NoOpNeverMatches", func(t *testing.T) {
		d := detector.NewNoOpDetector()
		match, err := d.Detect(ctx, "http://a-b.com@1234")
		if match != nil || err != nil {
			t.Error("noop detector should never match")
		}
	})

	t.Run("ConfidenceInRange", func(t *testing.T) {
		for _, d := range detector.HeuristicDetectors() {
			match, _ := d.Detect(ctx, "http://a-b.com@1234")
			if match == nil {
				t.Errorf("%s: expected match", d.Name())
				continue
			}
			if match.Confidence < 0 || match.Confidence > 1 {
				t.Errorf("%s: confidence %v out of range", d.Name(), match.Confidence)
			}
		}
	})
}

// ====================================================================================
// REGISTRY TESTS
// ====================================================================================

func TestRegistry(t *testing.T) {
	t.Run("DefaultRegistry", func(t *testing.T) {
		r := detector.DefaultRegistry()
		names := r.Names()
		want := []string{"at_sign", "digit_run", "hyphen", "noop"}

		if len(names) != len(want) {
			t.Fatalf("names = %v, want %v", names, want)
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("names[%d] = %s, want %s", i, names[i], want[i])
			}
		}

		list := r.List()
		if list[0].Name() != "at_sign" {
			t.Errorf("List should be sorted, first = %s", list[0].Name())
		}
	})

	t.Run("DuplicateRegistration", func(t *testing.T) {
		r := detector.NewRegistry()
		if err := r.Register(detector.NewHyphenDetector()); err != nil {
			t.Fatalf("first register failed: %v", err)
		}
		if err := r.Register(detector.NewHyphenDetector()); err == nil {
			t.Error("expected error on duplicate registration")
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		r := detector.NewRegistry()
		if _, err := r.Get("nope"); err == nil {
			t.Error("expected error for unknown detector")
		}
	})
}

// ====================================================================================
// RUNNER TESTS
// ====================================================================================

type testLogger struct {
	t *testing.T
}

func (l *testLogger) Printf(format string, v ...interface{}) {
	l.t.Logf(format, v...)
}

func TestRunner(t *testing.T) {
	urls := []string{
		"http://example.org/page",
		"http://a-b.com",
		"http://user@evil.com",
		"http://c-d-e.net",
		"http://safe.example",
	}

	for _, parallel := range []bool{false, true} {
		name := "Sequential"
		if parallel {
			name = "Parallel"
		}

		t.Run(name, func(t *testing.T) {
			config := detector.DefaultConfig()
			config.Parallel = parallel
			config.Workers = 3

			runner := detector.NewRunner(detector.DefaultRegistry(), config, &testLogger{t: t})
			results, err := runner.RunOnURLs(context.Background(), "hyphen", urls)
			if err != nil {
				t.Fatalf("RunOnURLs failed: %v", err)
			}

			if len(results) != 2 {
				t.Fatalf("expected 2 matches, got %d", len(results))
			}
			if results[0].Index != 1 || results[1].Index != 3 {
				t.Errorf("results not ordered by input index: %d, %d", results[0].Index, results[1].Index)
			}
			if results[0].DetectorName != "hyphen" {
				t.Errorf("detector name = %s", results[0].DetectorName)
			}
		})
	}

	t.Run("MinConfidenceFilter", func(t *testing.T) {
		config := detector.DefaultConfig()
		config.MinConfidence = 0.9

		runner := detector.NewRunner(detector.DefaultRegistry(), config, nil)
		results, err := runner.RunOnURLs(context.Background(), "hyphen", urls)
		if err != nil {
			t.Fatalf("RunOnURLs failed: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("expected hyphen matches filtered out, got %d", len(results))
		}
	})

	t.Run("UnknownDetector", func(t *testing.T) {
		runner := detector.NewRunner(detector.DefaultRegistry(), nil, nil)
		if _, err := runner.RunOnURLs(context.Background(), "nope", urls); err == nil {
			t.Error("expected error for unknown detector")
		}
	})

	t.Run("MultipleDetectorsAndStats", func(t *testing.T) {
		runner := detector.NewRunner(detector.DefaultRegistry(), nil, nil)
		all, err := runner.RunMultipleDetectors(context.Background(), []string{"hyphen", "at_sign"}, urls)
		if err != nil {
			t.Fatalf("RunMultipleDetectors failed: %v", err)
		}

		if len(all["at_sign"]) != 1 {
			t.Errorf("at_sign matches = %d, want 1", len(all["at_sign"]))
		}

		stats := detector.CalculateStats(all["hyphen"], len(urls))
		if stats.MatchedCount != 2 {
			t.Errorf("matched = %d, want 2", stats.MatchedCount)
		}
		if stats.ByCategory["lookalike"] != 2 {
			t.Errorf("lookalike = %d, want 2", stats.ByCategory["lookalike"])
		}
		if stats.MatchRate != 0.4 {
			t.Errorf("match rate = %v, want 0.4", stats.MatchRate)
		}
	})
}
