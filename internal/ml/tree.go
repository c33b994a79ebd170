package ml

import (
	"math/rand"
	"slices"
)

// treeConfig bounds the growth of a single decision tree.
type treeConfig struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int
}

type treeNode struct {
	leaf      bool
	dist      [NumClasses]float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// decisionTree is a CART classification tree using Gini impurity.
type decisionTree struct {
	root        *treeNode
	importances []float64
}

func gini(counts [NumClasses]int, n int) float64 {
	if n == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		g -= p * p
	}
	return g
}

type split struct {
	feature   int
	threshold float64
	impurity  float64 // weighted child impurity
	ok        bool
}

type valueLabel struct {
	v     float64
	label int
}

// fitTree grows a tree on the rows listed in samples (duplicates allowed).
func fitTree(X [][]float64, y []int, samples []int, cfg treeConfig, rng *rand.Rand) *decisionTree {
	d := len(X[0])
	t := &decisionTree{importances: make([]float64, d)}
	t.root = t.grow(X, y, samples, 0, cfg, rng)
	return t
}

func (t *decisionTree) grow(X [][]float64, y []int, samples []int, depth int, cfg treeConfig, rng *rand.Rand) *treeNode {
	var counts [NumClasses]int
	for _, i := range samples {
		counts[y[i]]++
	}
	n := len(samples)
	node := &treeNode{}
	for c := range counts {
		node.dist[c] = float64(counts[c]) / float64(n)
	}

	impurity := gini(counts, n)
	if impurity == 0 || depth >= cfg.maxDepth || n < cfg.minSamplesSplit || n < 2*cfg.minSamplesLeaf {
		node.leaf = true
		return node
	}

	best := t.bestSplit(X, y, samples, counts, cfg, rng)
	if !best.ok || best.impurity >= impurity {
		node.leaf = true
		return node
	}

	var left, right []int
	for _, i := range samples {
		if X[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	t.importances[best.feature] += float64(n) * (impurity - best.impurity)

	node.feature = best.feature
	node.threshold = best.threshold
	node.left = t.grow(X, y, left, depth+1, cfg, rng)
	node.right = t.grow(X, y, right, depth+1, cfg, rng)
	return node
}

func (t *decisionTree) bestSplit(X [][]float64, y []int, samples []int, total [NumClasses]int, cfg treeConfig, rng *rand.Rand) split {
	d := len(X[0])
	features := rng.Perm(d)
	if cfg.maxFeatures > 0 && cfg.maxFeatures < d {
		features = features[:cfg.maxFeatures]
	}

	n := len(samples)
	best := split{}
	pairs := make([]valueLabel, n)

	for _, f := range features {
		for k, i := range samples {
			pairs[k] = valueLabel{v: X[i][f], label: y[i]}
		}
		slices.SortFunc(pairs, func(a, b valueLabel) int {
			switch {
			case a.v < b.v:
				return -1
			case a.v > b.v:
				return 1
			}
			return a.label - b.label
		})

		var left [NumClasses]int
		for k := 0; k < n-1; k++ {
			left[pairs[k].label]++
			if pairs[k].v == pairs[k+1].v {
				continue
			}
			nl := k + 1
			nr := n - nl
			if nl < cfg.minSamplesLeaf || nr < cfg.minSamplesLeaf {
				continue
			}
			var right [NumClasses]int
			for c := range right {
				right[c] = total[c] - left[c]
			}
			imp := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(n)
			if !best.ok || imp < best.impurity {
				best = split{
					feature:   f,
					threshold: (pairs[k].v + pairs[k+1].v) / 2,
					impurity:  imp,
					ok:        true,
				}
			}
		}
	}
	return best
}

func (t *decisionTree) proba(x []float64) [NumClasses]float64 {
	node := t.root
	for !node.leaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.dist
}
