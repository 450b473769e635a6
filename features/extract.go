// Package features turns a raw URL string into the fixed numeric summary
// consumed by learned classifiers.
package features

import (
	"strings"
	"unicode/utf8"

	"tangled.org/atscan.net/urlcheck/internal/types"
)

// Vector field positions
const (
	Length = iota
	DotCount
	HyphenCount
	HasAtSign
)

// Names lists the vector fields in order
var Names = [types.FEATURE_COUNT]string{"length", "dot_count", "hyphen_count", "has_at_sign"}

// Vector is the feature summary of a single URL
type Vector [types.FEATURE_COUNT]float64

// Extract computes the feature vector for url. Every input, including the
// empty string, produces a complete vector.
func Extract(url string) Vector {
	var v Vector
	v[Length] = float64(utf8.RuneCountInString(url))
	v[DotCount] = float64(strings.Count(url, "."))
	v[HyphenCount] = float64(strings.Count(url, "-"))
	if strings.Contains(url, "@") {
		v[HasAtSign] = 1
	}
	return v
}

// Slice returns a copy of the vector as a slice
func (v Vector) Slice() []float64 {
	out := make([]float64, len(v))
	copy(out, v[:])
	return out
}

// Map returns the vector keyed by field name
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, len(v))
	for i, name := range Names {
		m[name] = v[i]
	}
	return m
}
