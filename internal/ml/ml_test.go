package ml

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clusters returns perClass rows per class. Feature 0 and 1 separate the
// classes, feature 2 is noise.
func clusters(perClass int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	var X [][]float64
	var y []int
	for i := 0; i < perClass; i++ {
		for c := 0; c < NumClasses; c++ {
			X = append(X, []float64{
				float64(c)*5 + rng.NormFloat64(),
				-float64(c)*5 + rng.NormFloat64(),
				rng.NormFloat64() * 3,
			})
			y = append(y, c)
		}
	}
	return X, y
}

func allMembers() []Member {
	return DefaultEnsembleConfig().Members(0)
}

func TestStandardScaler(t *testing.T) {
	X := [][]float64{{1, 10, 7}, {2, 20, 7}, {3, 30, 7}, {4, 40, 7}}
	var s StandardScaler
	scaled, err := s.FitTransform(X)
	require.NoError(t, err)

	for j := 0; j < 2; j++ {
		var sum, sq float64
		for _, row := range scaled {
			sum += row[j]
			sq += row[j] * row[j]
		}
		assert.InDelta(t, 0, sum/4, 1e-12)
		assert.InDelta(t, 1, sq/4, 1e-12)
	}
	assert.Equal(t, 1.0, s.Scale[2], "constant column keeps unit scale")
	assert.Equal(t, 0.0, scaled[0][2])

	before := append([]float64(nil), s.Mean...)
	s.Transform([]float64{100, 100, 100})
	assert.Equal(t, before, s.Mean, "Transform must not refit")
}

func TestStandardScaler_Empty(t *testing.T) {
	var s StandardScaler
	assert.ErrorIs(t, s.Fit(nil), ErrEmptyInput)
	assert.False(t, s.Fitted())
}

func TestClassifiers_SeparableClusters(t *testing.T) {
	X, y := clusters(30, 1)

	for _, m := range allMembers() {
		t.Run(m.Name, func(t *testing.T) {
			model := m.New()
			require.NoError(t, model.Fit(X, y))

			assert.Equal(t, 0, model.Predict([]float64{0, 0, 0}))
			assert.Equal(t, 1, model.Predict([]float64{5, -5, 0}))
			assert.Equal(t, 2, model.Predict([]float64{10, -10, 0}))

			all := make([]int, len(y))
			for i := range all {
				all[i] = i
			}
			assert.GreaterOrEqual(t, Accuracy(model, X, y, all), 0.9)

			p := model.PredictProba([]float64{2.5, -2.5, 1})
			require.Len(t, p, NumClasses)
			var sum float64
			for _, v := range p {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
				sum += v
			}
			assert.InDelta(t, 1, sum, 1e-9)
		})
	}
}

func TestClassifiers_AbsentClassHasZeroProbability(t *testing.T) {
	X, y := clusters(20, 2)
	var twoX [][]float64
	var twoY []int
	for i, label := range y {
		if label != 1 {
			twoX = append(twoX, X[i])
			twoY = append(twoY, label)
		}
	}

	nb := NewGaussianNB(1e-8)
	require.NoError(t, nb.Fit(twoX, twoY))
	assert.Equal(t, 0.0, nb.PredictProba([]float64{5, -5, 0})[1])

	rf := NewRandomForest(DefaultEnsembleConfig().RandomForest, 7)
	require.NoError(t, rf.Fit(twoX, twoY))
	assert.Equal(t, 0.0, rf.PredictProba([]float64{5, -5, 0})[1])
}

func TestClassifiers_RejectBadInput(t *testing.T) {
	for _, m := range allMembers() {
		model := m.New()
		assert.ErrorIs(t, model.Fit(nil, nil), ErrEmptyInput, m.Name)
		assert.ErrorIs(t, model.Fit([][]float64{{1}, {2}}, []int{0}), ErrShapeMismatch, m.Name)
		assert.Error(t, model.Fit([][]float64{{1}}, []int{5}), m.Name)
	}
}

func TestUnfittedClassifierReturnsZeroVector(t *testing.T) {
	for _, m := range allMembers() {
		p := m.New().PredictProba([]float64{1, 2, 3})
		assert.Equal(t, []float64{0, 0, 0}, p, m.Name)
	}
}

func TestRandomForest_DeterministicPerSeed(t *testing.T) {
	X, y := clusters(15, 3)
	cfg := DefaultEnsembleConfig().RandomForest
	x := []float64{2.4, -2.6, 0.5}

	a := NewRandomForest(cfg, 42)
	b := NewRandomForest(cfg, 42)
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))
	assert.Equal(t, a.PredictProba(x), b.PredictProba(x))
	assert.Equal(t, a.FeatureImportances(), b.FeatureImportances())
}

func TestRandomForest_FeatureImportances(t *testing.T) {
	X, y := clusters(30, 4)
	rf := NewRandomForest(DefaultEnsembleConfig().RandomForest, 42)
	require.NoError(t, rf.Fit(X, y))

	imp := rf.FeatureImportances()
	require.Len(t, imp, 3)
	var sum float64
	for _, v := range imp {
		sum += v
	}
	assert.InDelta(t, 1, sum, 1e-9)
	assert.Less(t, imp[2], imp[0]+imp[1], "noise feature should matter least")
}

func TestLogisticRegression_Finite(t *testing.T) {
	X, y := clusters(10, 5)
	lr := NewLogisticRegression(DefaultEnsembleConfig().LogisticRegression)
	require.NoError(t, lr.Fit(X, y))
	for _, v := range lr.PredictProba([]float64{1e3, -1e3, 0}) {
		assert.False(t, math.IsNaN(v))
	}
}

func TestStratifiedKFold(t *testing.T) {
	y := make([]int, 0, 45)
	for i := 0; i < 25; i++ {
		y = append(y, 0)
	}
	for i := 0; i < 10; i++ {
		y = append(y, 1, 2)
	}

	folds, err := StratifiedKFold(y, 5)
	require.NoError(t, err)
	require.Len(t, folds, 5)

	seen := make(map[int]bool)
	for _, fold := range folds {
		var counts [NumClasses]int
		for _, i := range fold {
			assert.False(t, seen[i], "index %d in two folds", i)
			seen[i] = true
			counts[y[i]]++
		}
		assert.Equal(t, [NumClasses]int{5, 2, 2}, counts)
	}
	assert.Len(t, seen, len(y))
}

func TestStratifiedKFold_TooFewInClass(t *testing.T) {
	y := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 2, 2, 2}
	_, err := StratifiedKFold(y, 5)

	var ice *InsufficientClassError
	require.True(t, errors.As(err, &ice))
	assert.Equal(t, 2, ice.Class)
	assert.Equal(t, 3, ice.Have)
}

func TestCrossValidate(t *testing.T) {
	X, y := clusters(20, 6)
	for _, m := range allMembers() {
		res, err := CrossValidate(context.Background(), m.New, X, y, 5)
		require.NoError(t, err, m.Name)
		assert.Len(t, res.Scores, 5)
		assert.GreaterOrEqual(t, res.Mean, 0.85, m.Name)
		assert.GreaterOrEqual(t, res.Std, 0.0)
	}
}

func TestCrossValidate_Cancelled(t *testing.T) {
	X, y := clusters(10, 7)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CrossValidate(ctx, allMembers()[0].New, X, y, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestArgmaxTiesToLowestIndex(t *testing.T) {
	assert.Equal(t, 0, Argmax([]float64{0.4, 0.4, 0.2}))
	assert.Equal(t, 1, Argmax([]float64{0.2, 0.4, 0.4}))
	assert.Equal(t, 2, Argmax([]float64{0.1, 0.2, 0.7}))
}

func BenchmarkRandomForestFit(b *testing.B) {
	X, y := clusters(30, 9)
	cfg := DefaultEnsembleConfig().RandomForest
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		rf := NewRandomForest(cfg, int64(i))
		if err := rf.Fit(X, y); err != nil {
			b.Fatal(err)
		}
	}
}
