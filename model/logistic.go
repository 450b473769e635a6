package model

import (
	"fmt"
	"math"
)

// Logistic is a logistic regression classifier
type Logistic struct {
	nFeatures int
	weights   []float64
	intercept float64
	threshold float64
}

func (m *Logistic) Kind() string     { return KindLogistic }
func (m *Logistic) NumFeatures() int { return m.nFeatures }

// Probability returns P(phishing | x)
func (m *Logistic) Probability(x []float64) (float64, error) {
	if len(x) != m.nFeatures {
		return 0, fmt.Errorf("%w: got %d features, model expects %d", ErrFeatureShape, len(x), m.nFeatures)
	}

	z := m.intercept
	for i, w := range m.weights {
		z += w * x[i]
	}

	return 1 / (1 + math.Exp(-z)), nil
}

func (m *Logistic) Predict(x []float64) (int, error) {
	p, err := m.Probability(x)
	if err != nil {
		return 0, err
	}
	if p >= m.threshold {
		return 1, nil
	}
	return 0, nil
}
