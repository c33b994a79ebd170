package ml

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// CVResult holds per-fold accuracies and their population mean and standard deviation.
type CVResult struct {
	Scores []float64
	Mean   float64
	Std    float64
}

// InsufficientClassError is returned when a class cannot populate every fold.
type InsufficientClassError struct {
	Class int
	Have  int
	Need  int
}

func (e *InsufficientClassError) Error() string {
	return fmt.Sprintf("class %d has %d examples, need at least %d", e.Class, e.Have, e.Need)
}

// StratifiedKFold splits sample indices into k test folds that preserve
// class proportions. Indices of each class are dealt round-robin in input
// order, so the split is deterministic.
func StratifiedKFold(y []int, k int) ([][]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("k must be at least 2, got %d", k)
	}
	counts := classCounts(y)
	for c, have := range counts {
		if have < k {
			return nil, &InsufficientClassError{Class: c, Have: have, Need: k}
		}
	}

	folds := make([][]int, k)
	next := 0
	for c := 0; c < NumClasses; c++ {
		for i, label := range y {
			if label != c {
				continue
			}
			folds[next%k] = append(folds[next%k], i)
			next++
		}
	}
	return folds, nil
}

// CrossValidate fits a fresh classifier per fold and scores accuracy on the
// held-out fold. ctx is checked between folds.
func CrossValidate(ctx context.Context, newModel func() Classifier, X [][]float64, y []int, k int) (*CVResult, error) {
	if _, err := checkTrainingSet(X, y); err != nil {
		return nil, err
	}
	folds, err := StratifiedKFold(y, k)
	if err != nil {
		return nil, err
	}

	inTest := make([]int, len(y))
	for f, idx := range folds {
		for _, i := range idx {
			inTest[i] = f
		}
	}

	scores := make([]float64, k)
	for f, test := range folds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		trainX := make([][]float64, 0, len(y)-len(test))
		trainY := make([]int, 0, len(y)-len(test))
		for i := range y {
			if inTest[i] != f {
				trainX = append(trainX, X[i])
				trainY = append(trainY, y[i])
			}
		}

		model := newModel()
		if err := model.Fit(trainX, trainY); err != nil {
			return nil, fmt.Errorf("fold %d: %w", f, err)
		}
		scores[f] = Accuracy(model, X, y, test)
	}

	mean, std := stat.PopMeanStdDev(scores, nil)
	return &CVResult{Scores: scores, Mean: mean, Std: std}, nil
}

// Accuracy is the fraction of rows in idx that model labels correctly.
func Accuracy(model Classifier, X [][]float64, y []int, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	correct := 0
	for _, i := range idx {
		if model.Predict(X[i]) == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(idx))
}
