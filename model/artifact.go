package model

import (
	"fmt"

	"github.com/goccy/go-json"
	"tangled.org/atscan.net/urlcheck/internal/types"
)

// Model families
const (
	KindLogistic = "logistic"
	KindTree     = "tree"
)

// Artifact is the on-disk model document
type Artifact struct {
	Format    string          `json:"format"`
	Version   int             `json:"version"`
	Kind      string          `json:"kind"`
	NFeatures int             `json:"n_features"`
	Logistic  *LogisticParams `json:"logistic,omitempty"`
	Tree      *TreeParams     `json:"tree,omitempty"`
}

// LogisticParams holds logistic regression coefficients
type LogisticParams struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Threshold float64   `json:"threshold,omitempty"`
}

// TreeParams holds a flattened decision tree, root at index 0
type TreeParams struct {
	Nodes []TreeNode `json:"nodes"`
}

// TreeNode is a split (x[Feature] <= Threshold goes Left) or a leaf
type TreeNode struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Label     int     `json:"label,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
}

// Decode parses and validates an artifact document and builds its classifier
func Decode(data []byte) (Classifier, *Artifact, error) {
	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, nil, fmt.Errorf("corrupt artifact: %w", err)
	}

	c, err := art.Build()
	if err != nil {
		return nil, nil, err
	}

	return c, &art, nil
}

// Encode serializes an artifact
func (a *Artifact) Encode() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// Build validates the artifact and returns its classifier
func (a *Artifact) Build() (Classifier, error) {
	if a.Format != types.MODEL_FORMAT {
		return nil, fmt.Errorf("incompatible artifact: format %q, want %q", a.Format, types.MODEL_FORMAT)
	}
	if a.Version != types.MODEL_VERSION {
		return nil, fmt.Errorf("incompatible artifact: version %d not supported (want %d)", a.Version, types.MODEL_VERSION)
	}
	if a.NFeatures < 1 {
		return nil, fmt.Errorf("invalid artifact: n_features must be positive, got %d", a.NFeatures)
	}

	switch a.Kind {
	case KindLogistic:
		return a.buildLogistic()
	case KindTree:
		return a.buildTree()
	default:
		return nil, fmt.Errorf("incompatible artifact: unknown kind %q", a.Kind)
	}
}

func (a *Artifact) buildLogistic() (*Logistic, error) {
	p := a.Logistic
	if p == nil {
		return nil, fmt.Errorf("invalid artifact: logistic parameters missing")
	}
	if len(p.Weights) != a.NFeatures {
		return nil, fmt.Errorf("invalid artifact: %d weights for %d features", len(p.Weights), a.NFeatures)
	}

	threshold := p.Threshold
	if threshold == 0 {
		threshold = 0.5
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("invalid artifact: threshold %v outside (0, 1)", threshold)
	}

	weights := make([]float64, len(p.Weights))
	copy(weights, p.Weights)

	return &Logistic{
		nFeatures: a.NFeatures,
		weights:   weights,
		intercept: p.Intercept,
		threshold: threshold,
	}, nil
}

func (a *Artifact) buildTree() (*Tree, error) {
	p := a.Tree
	if p == nil || len(p.Nodes) == 0 {
		return nil, fmt.Errorf("invalid artifact: tree has no nodes")
	}

	n := len(p.Nodes)
	for i, node := range p.Nodes {
		if node.Leaf {
			if node.Label != 0 && node.Label != 1 {
				return nil, fmt.Errorf("invalid artifact: node %d has label %d", i, node.Label)
			}
			continue
		}
		if node.Feature < 0 || node.Feature >= a.NFeatures {
			return nil, fmt.Errorf("invalid artifact: node %d splits on feature %d of %d", i, node.Feature, a.NFeatures)
		}
		if node.Left <= i || node.Left >= n || node.Right <= i || node.Right >= n {
			return nil, fmt.Errorf("invalid artifact: node %d has children %d/%d out of order", i, node.Left, node.Right)
		}
	}

	nodes := make([]TreeNode, n)
	copy(nodes, p.Nodes)

	return &Tree{nFeatures: a.NFeatures, nodes: nodes}, nil
}
