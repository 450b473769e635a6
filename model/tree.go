package model

import "fmt"

// Tree is a binary decision tree classifier
type Tree struct {
	nFeatures int
	nodes     []TreeNode
}

func (m *Tree) Kind() string     { return KindTree }
func (m *Tree) NumFeatures() int { return m.nFeatures }

func (m *Tree) Predict(x []float64) (int, error) {
	if len(x) != m.nFeatures {
		return 0, fmt.Errorf("%w: got %d features, model expects %d", ErrFeatureShape, len(x), m.nFeatures)
	}

	// Children always have larger indices than their parent, so this terminates
	i := 0
	for {
		node := m.nodes[i]
		if node.Leaf {
			return node.Label, nil
		}
		if x[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}

// Depth returns the longest root-to-leaf path length
func (m *Tree) Depth() int {
	depth := make([]int, len(m.nodes))
	deepest := 0
	for i, node := range m.nodes {
		if depth[i] > deepest {
			deepest = depth[i]
		}
		if node.Leaf {
			continue
		}
		depth[node.Left] = depth[i] + 1
		depth[node.Right] = depth[i] + 1
	}
	return deepest
}
