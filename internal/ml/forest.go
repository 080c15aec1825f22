package ml

import (
	"fmt"
)

// Forest objectives
const (
	ObjectiveRegression     = "regression"
	ObjectiveClassification = "classification"
)

// Tree is one exported decision tree in parallel-array form. A node is a leaf
// when ChildrenLeft is -1. Value holds the leaf output: one element for
// regression, one weight per class for classification.
type Tree struct {
	ChildrenLeft  []int       `mapstructure:"children_left" json:"children_left"`
	ChildrenRight []int       `mapstructure:"children_right" json:"children_right"`
	Feature       []int       `mapstructure:"feature" json:"feature"`
	Threshold     []float64   `mapstructure:"threshold" json:"threshold"`
	Value         [][]float64 `mapstructure:"value" json:"value"`
}

// ForestModel evaluates an ensemble of exported decision trees.
// Regression averages leaf values; classification sums leaf class weights and
// returns the index of the heaviest class.
type ForestModel struct {
	Objective string `mapstructure:"objective" json:"objective"`
	Features  int    `mapstructure:"n_features" json:"n_features"`
	Trees     []Tree `mapstructure:"trees" json:"trees"`
}

func (f *ForestModel) validate() error {
	if f.Objective != ObjectiveRegression && f.Objective != ObjectiveClassification {
		return fmt.Errorf("forest objective must be %q or %q, got %q", ObjectiveRegression, ObjectiveClassification, f.Objective)
	}
	if f.Features <= 0 {
		return fmt.Errorf("forest n_features must be positive")
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}

	width := -1
	for t, tree := range f.Trees {
		n := len(tree.ChildrenLeft)
		if n == 0 {
			return fmt.Errorf("tree %d has no nodes", t)
		}
		if len(tree.ChildrenRight) != n || len(tree.Feature) != n || len(tree.Threshold) != n || len(tree.Value) != n {
			return fmt.Errorf("tree %d has mismatched node arrays", t)
		}
		for node := 0; node < n; node++ {
			left, right := tree.ChildrenLeft[node], tree.ChildrenRight[node]
			if left == -1 {
				if width == -1 {
					width = len(tree.Value[node])
				}
				if len(tree.Value[node]) != width || width == 0 {
					return fmt.Errorf("tree %d leaf %d has %d outputs, expected %d", t, node, len(tree.Value[node]), width)
				}
				continue
			}
			// children must come after their parent, which also rules out cycles
			if left <= node || left >= n || right <= node || right >= n {
				return fmt.Errorf("tree %d node %d has invalid children (%d, %d)", t, node, left, right)
			}
			if tree.Feature[node] < 0 || tree.Feature[node] >= f.Features {
				return fmt.Errorf("tree %d node %d splits on feature %d", t, node, tree.Feature[node])
			}
		}
	}

	if f.Objective == ObjectiveRegression && width != 1 {
		return fmt.Errorf("regression forest leaves must hold one value, got %d", width)
	}
	return nil
}

func (t *Tree) leaf(x []float64) []float64 {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

func (f *ForestModel) Predict(x []float64) (float64, error) {
	if len(x) != f.Features {
		return 0, fmt.Errorf("forest expects %d features, got %d", f.Features, len(x))
	}

	if f.Objective == ObjectiveRegression {
		sum := 0.0
		for i := range f.Trees {
			sum += f.Trees[i].leaf(x)[0]
		}
		return sum / float64(len(f.Trees)), nil
	}

	var weights []float64
	for i := range f.Trees {
		leaf := f.Trees[i].leaf(x)
		if weights == nil {
			weights = make([]float64, len(leaf))
		}
		total := 0.0
		for _, w := range leaf {
			total += w
		}
		// each tree votes with its normalized leaf distribution
		for k, w := range leaf {
			if total > 0 {
				weights[k] += w / total
			}
		}
	}

	best := 0
	for k, w := range weights {
		if w > weights[best] {
			best = k
		}
	}
	return float64(best), nil
}
