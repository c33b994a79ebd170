package logic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vartificial/match-predictor/internal/models"
)

func TestFallback_HomeForfeit(t *testing.T) {
	// Goals and shots are irrelevant once a side reaches the threshold.
	for _, stats := range []models.RawMatchStats{
		{HomeRedCards: 5},
		{HomeGoals: 6, HomeShots: 30, HomeShotsOnTarget: 20, HomeRedCards: 7},
		{HomeRedCards: 5, AwayRedCards: 5},
	} {
		preds := FallbackPredictor{}.Predict(stats)
		require.Len(t, preds, 3)

		// Ranked by confidence: 97, 96, 95.
		assert.Equal(t, "Logistic Regression", preds[0].ModelName)
		assert.Equal(t, 97.0, preds[0].Confidence)
		assert.Equal(t, []float64{0.01, 0.02, 0.97}, preds[0].Probabilities)
		assert.Equal(t, "Random Forest", preds[1].ModelName)
		assert.Equal(t, 96.0, preds[1].Confidence)
		assert.Equal(t, "Naive Bayes", preds[2].ModelName)
		assert.Equal(t, 95.0, preds[2].Confidence)
		assert.Equal(t, []float64{0.02, 0.03, 0.95}, preds[2].Probabilities)

		for _, p := range preds {
			assert.Equal(t, models.AwayWin, p.Outcome)
			assert.Equal(t, models.SourceFallback, p.Source)
			assert.Zero(t, p.ModelAccuracy)
		}
	}
}

func TestFallback_AwayForfeit(t *testing.T) {
	preds := FallbackPredictor{}.Predict(models.RawMatchStats{AwayGoals: 4, AwayRedCards: 5})
	require.Len(t, preds, 3)
	for _, p := range preds {
		assert.Equal(t, models.HomeWin, p.Outcome)
	}
	assert.Equal(t, []float64{0.97, 0.02, 0.01}, preds[0].Probabilities)
	assert.Equal(t, []float64{0.95, 0.03, 0.02}, preds[2].Probabilities)
}

func TestFallback_WeightedScore(t *testing.T) {
	tests := []struct {
		name  string
		stats models.RawMatchStats
		want  models.Outcome
		proba []float64
	}{
		{
			name:  "level match is a draw",
			stats: models.RawMatchStats{HomeGoals: 1, AwayGoals: 1, HomeShots: 10, AwayShots: 10, HomeShotsOnTarget: 5, AwayShotsOnTarget: 5},
			want:  models.Draw,
			proba: []float64{0.15, 0.70, 0.15},
		},
		{
			name:  "home dominance",
			stats: models.RawMatchStats{HomeGoals: 2, AwayGoals: 1, HomeShots: 15, AwayShots: 10, HomeShotsOnTarget: 8, AwayShotsOnTarget: 5},
			want:  models.HomeWin,
			proba: []float64{0.82, 0.13, 0.05},
		},
		{
			name:  "away dominance",
			stats: models.RawMatchStats{HomeGoals: 0, AwayGoals: 2, HomeShots: 6, AwayShots: 12, HomeShotsOnTarget: 2, AwayShotsOnTarget: 6},
			want:  models.AwayWin,
			proba: []float64{0.05, 0.13, 0.82},
		},
		{
			// 3 goals ahead, but four red cards scale home down to 20%.
			name:  "red cards penalise the home side",
			stats: models.RawMatchStats{HomeGoals: 3, HomeShots: 10, HomeShotsOnTarget: 5, AwayShots: 8, AwayShotsOnTarget: 4, HomeRedCards: 4},
			want:  models.AwayWin,
			proba: []float64{0.05, 0.13, 0.82},
		},
		{
			// diff of exactly 3 stays inside the draw zone.
			name:  "margin boundary",
			stats: models.RawMatchStats{HomeShots: 3},
			want:  models.Draw,
			proba: []float64{0.15, 0.70, 0.15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preds := FallbackPredictor{}.Predict(tt.stats)
			require.Len(t, preds, 3)
			for _, p := range preds {
				assert.Equal(t, tt.want, p.Outcome)
				assert.Equal(t, tt.proba, p.Probabilities)
			}
			assert.Equal(t, []float64{85, 83, 82}, []float64{preds[0].Confidence, preds[1].Confidence, preds[2].Confidence})
			assert.Equal(t, []string{"Random Forest", "Logistic Regression", "Naive Bayes"},
				[]string{preds[0].ModelName, preds[1].ModelName, preds[2].ModelName})
		})
	}
}

func TestFallback_Pure(t *testing.T) {
	stats := models.RawMatchStats{HomeGoals: 2, AwayGoals: 2, HomeShots: 9, AwayShots: 11, HomeShotsOnTarget: 4, AwayShotsOnTarget: 6, AwayRedCards: 1}
	first := FallbackPredictor{}.Predict(stats)

	// Mutating a result must not leak into later calls.
	first[0].Probabilities[0] = 42

	second := FallbackPredictor{}.Predict(stats)
	third := FallbackPredictor{}.Predict(stats)
	assert.Equal(t, second, third)
	assert.NotEqual(t, 42.0, second[0].Probabilities[0])
}

func TestWeightedScore(t *testing.T) {
	assert.Equal(t, 23.0, weightedScore(2, 9, 4, 0))
	assert.InDelta(t, 18.4, weightedScore(2, 9, 4, 1), 1e-9)
	assert.InDelta(t, 2.3, weightedScore(2, 9, 4, 5), 1e-9)
	assert.InDelta(t, 2.3, weightedScore(2, 9, 4, 9), 1e-9)
}

func TestFallback_LargeCountsKeepSign(t *testing.T) {
	tests := []struct {
		name  string
		stats models.RawMatchStats
		want  models.Outcome
	}{
		{"home goals past int overflow point", models.RawMatchStats{HomeGoals: math.MaxInt64/3 + 1}, models.HomeWin},
		{"away goals at max int", models.RawMatchStats{AwayGoals: math.MaxInt64}, models.AwayWin},
		{"home shots on target at max int", models.RawMatchStats{HomeShots: math.MaxInt64, HomeShotsOnTarget: math.MaxInt64}, models.HomeWin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preds := FallbackPredictor{}.Predict(tt.stats)
			require.Len(t, preds, 3)
			for _, p := range preds {
				assert.Equal(t, tt.want, p.Outcome)
			}
		})
	}
	assert.Greater(t, weightedScore(math.MaxInt64/3+1, 0, 0, 0), 0.0)
}
