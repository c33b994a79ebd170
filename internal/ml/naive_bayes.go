package ml

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// GaussianNB is a Gaussian naive Bayes classifier.
type GaussianNB struct {
	// VarSmoothing is the fraction of the largest feature variance added to
	// every per-class variance.
	VarSmoothing float64

	logPrior [NumClasses]float64
	present  [NumClasses]bool
	dists    [NumClasses][]distuv.Normal
	fitted   bool
}

// NewGaussianNB returns an unfitted classifier.
func NewGaussianNB(varSmoothing float64) *GaussianNB {
	return &GaussianNB{VarSmoothing: varSmoothing}
}

func (nb *GaussianNB) Fit(X [][]float64, y []int) error {
	d, err := checkTrainingSet(X, y)
	if err != nil {
		return err
	}

	col := make([]float64, 0, len(X))
	maxVar := 0.0
	for j := 0; j < d; j++ {
		col = col[:0]
		for _, row := range X {
			col = append(col, row[j])
		}
		if _, v := stat.PopMeanVariance(col, nil); v > maxVar {
			maxVar = v
		}
	}
	epsilon := nb.VarSmoothing * maxVar
	if epsilon == 0 {
		epsilon = 1e-12
	}

	counts := classCounts(y)
	n := float64(len(y))
	for c := 0; c < NumClasses; c++ {
		nb.present[c] = counts[c] > 0
		nb.dists[c] = nil
		if !nb.present[c] {
			nb.logPrior[c] = math.Inf(-1)
			continue
		}
		nb.logPrior[c] = math.Log(float64(counts[c]) / n)

		nb.dists[c] = make([]distuv.Normal, d)
		for j := 0; j < d; j++ {
			col = col[:0]
			for i, row := range X {
				if y[i] == c {
					col = append(col, row[j])
				}
			}
			mean, variance := stat.PopMeanVariance(col, nil)
			nb.dists[c][j] = distuv.Normal{Mu: mean, Sigma: math.Sqrt(variance + epsilon)}
		}
	}

	nb.fitted = true
	return nil
}

func (nb *GaussianNB) PredictProba(x []float64) []float64 {
	proba := make([]float64, NumClasses)
	if !nb.fitted {
		return proba
	}

	jll := make([]float64, 0, NumClasses)
	idx := make([]int, 0, NumClasses)
	for c := 0; c < NumClasses; c++ {
		if !nb.present[c] {
			continue
		}
		ll := nb.logPrior[c]
		for j, v := range x {
			ll += nb.dists[c][j].LogProb(v)
		}
		jll = append(jll, ll)
		idx = append(idx, c)
	}

	norm := floats.LogSumExp(jll)
	for i, c := range idx {
		proba[c] = math.Exp(jll[i] - norm)
	}
	return proba
}

func (nb *GaussianNB) Predict(x []float64) int {
	return Argmax(nb.PredictProba(x))
}
