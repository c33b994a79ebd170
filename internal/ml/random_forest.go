package ml

import (
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RandomForest is a bagged ensemble of depth-bounded decision trees.
// Each tree draws from its own generator seeded from Seed and the tree
// index, so the result does not depend on goroutine scheduling.
type RandomForest struct {
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	Bootstrap       bool
	Seed            int64

	trees       []*decisionTree
	importances []float64
}

func NewRandomForest(cfg ForestConfig, seed int64) *RandomForest {
	return &RandomForest{
		Trees:           cfg.Trees,
		MaxDepth:        cfg.MaxDepth,
		MinSamplesSplit: cfg.MinSamplesSplit,
		MinSamplesLeaf:  cfg.MinSamplesLeaf,
		Bootstrap:       cfg.Bootstrap,
		Seed:            seed,
	}
}

func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	d, err := checkTrainingSet(X, y)
	if err != nil {
		return err
	}

	cfg := treeConfig{
		maxDepth:        rf.MaxDepth,
		minSamplesSplit: max(rf.MinSamplesSplit, 2),
		minSamplesLeaf:  max(rf.MinSamplesLeaf, 1),
		maxFeatures:     max(int(math.Sqrt(float64(d))), 1),
	}
	if cfg.maxDepth <= 0 {
		cfg.maxDepth = math.MaxInt
	}

	trees := make([]*decisionTree, max(rf.Trees, 1))
	n := len(X)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range trees {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(rf.Seed + int64(i)*7919))
			samples := make([]int, n)
			for k := range samples {
				if rf.Bootstrap {
					samples[k] = rng.Intn(n)
				} else {
					samples[k] = k
				}
			}
			trees[i] = fitTree(X, y, samples, cfg, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	importances := make([]float64, d)
	for _, t := range trees {
		var total float64
		for _, v := range t.importances {
			total += v
		}
		if total == 0 {
			continue
		}
		for j, v := range t.importances {
			importances[j] += v / total
		}
	}
	var sum float64
	for _, v := range importances {
		sum += v
	}
	if sum > 0 {
		for j := range importances {
			importances[j] /= sum
		}
	}

	rf.trees = trees
	rf.importances = importances
	return nil
}

func (rf *RandomForest) PredictProba(x []float64) []float64 {
	proba := make([]float64, NumClasses)
	if len(rf.trees) == 0 {
		return proba
	}
	for _, t := range rf.trees {
		dist := t.proba(x)
		for c := range proba {
			proba[c] += dist[c]
		}
	}
	for c := range proba {
		proba[c] /= float64(len(rf.trees))
	}
	return proba
}

func (rf *RandomForest) Predict(x []float64) int {
	return Argmax(rf.PredictProba(x))
}

// FeatureImportances returns the mean impurity decrease per feature, normalised to sum to 1.
func (rf *RandomForest) FeatureImportances() []float64 {
	out := make([]float64, len(rf.importances))
	copy(out, rf.importances)
	return out
}
