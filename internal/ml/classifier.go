// Package ml implements the classifiers of the match-outcome ensemble
// together with feature scaling and stratified cross-validation.
//
// Every classifier works on dense float64 rows and integer class labels in
// [0, NumClasses). Probability vectors always have NumClasses entries in
// class-index order, even when a class was absent from the training data.
package ml

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// NumClasses is the number of outcome classes every classifier reports.
const NumClasses = 3

var (
	ErrNotFitted     = errors.New("classifier not fitted")
	ErrEmptyInput    = errors.New("empty training set")
	ErrShapeMismatch = errors.New("feature and label counts differ")
)

// Classifier is the contract shared by the ensemble members.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(x []float64) int
	PredictProba(x []float64) []float64
}

// FeatureImporter is implemented by classifiers that expose feature importances.
type FeatureImporter interface {
	FeatureImportances() []float64
}

// Member pairs an ensemble slot name with a constructor for fresh, unfitted instances.
type Member struct {
	Name string
	New  func() Classifier
}

// Argmax returns the index of the largest probability; ties resolve to the lowest index.
func Argmax(p []float64) int {
	if len(p) == 0 {
		return 0
	}
	return floats.MaxIdx(p)
}

func checkTrainingSet(X [][]float64, y []int) (int, error) {
	if len(X) == 0 {
		return 0, ErrEmptyInput
	}
	if len(X) != len(y) {
		return 0, fmt.Errorf("%w: %d rows, %d labels", ErrShapeMismatch, len(X), len(y))
	}
	d := len(X[0])
	for i, row := range X {
		if len(row) != d {
			return 0, fmt.Errorf("row %d has %d features, want %d", i, len(row), d)
		}
	}
	for i, label := range y {
		if label < 0 || label >= NumClasses {
			return 0, fmt.Errorf("row %d: label %d out of range", i, label)
		}
	}
	return d, nil
}

func classCounts(y []int) [NumClasses]int {
	var counts [NumClasses]int
	for _, label := range y {
		counts[label]++
	}
	return counts
}
