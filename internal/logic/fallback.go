package logic

import (
	"github.com/vartificial/match-predictor/internal/ml"
	"github.com/vartificial/match-predictor/internal/models"
)

// RedCardThreshold is the red-card count at which a side is treated as
// having forfeited the match.
const RedCardThreshold = 5

// Draw margin for the weighted score comparison.
const scoreMargin = 3.0

type fallbackSlot struct {
	confidence    float64
	probabilities []float64
}

// Tier 1 slots, by ensemble position, for a home forfeit. The away
// forfeit mirrors them.
var forfeitSlots = [3]fallbackSlot{
	{95, []float64{0.02, 0.03, 0.95}},
	{96, []float64{0.01, 0.03, 0.96}},
	{97, []float64{0.01, 0.02, 0.97}},
}

var scoreConfidences = [3]float64{82, 85, 83}

var scoreProbabilities = map[models.Outcome][]float64{
	models.HomeWin: {0.82, 0.13, 0.05},
	models.Draw:    {0.15, 0.70, 0.15},
	models.AwayWin: {0.05, 0.13, 0.82},
}

var memberNames = [3]string{ml.NaiveBayesName, ml.RandomForestName, ml.LogisticRegressionName}

// FallbackPredictor is a deterministic rule-based predictor used while no
// ensemble is trained. It is a pure function of the stats.
type FallbackPredictor struct{}

func (FallbackPredictor) Predict(stats models.RawMatchStats) []models.Prediction {
	var preds []models.Prediction
	switch {
	case stats.HomeRedCards >= RedCardThreshold:
		preds = forfeitPredictions(models.AwayWin)
	case stats.AwayRedCards >= RedCardThreshold:
		preds = forfeitPredictions(models.HomeWin)
	default:
		preds = scorePredictions(stats)
	}
	rank(preds)
	return preds
}

func forfeitPredictions(winner models.Outcome) []models.Prediction {
	preds := make([]models.Prediction, len(memberNames))
	for i, name := range memberNames {
		slot := forfeitSlots[i]
		proba := append([]float64(nil), slot.probabilities...)
		if winner == models.HomeWin {
			proba[0], proba[2] = proba[2], proba[0]
		}
		preds[i] = fallbackPrediction(name, winner, slot.confidence, proba)
	}
	return preds
}

func scorePredictions(s models.RawMatchStats) []models.Prediction {
	home := weightedScore(s.HomeGoals, s.HomeShots, s.HomeShotsOnTarget, s.HomeRedCards)
	away := weightedScore(s.AwayGoals, s.AwayShots, s.AwayShotsOnTarget, s.AwayRedCards)

	outcome := models.Draw
	switch diff := home - away; {
	case diff > scoreMargin:
		outcome = models.HomeWin
	case diff < -scoreMargin:
		outcome = models.AwayWin
	}

	preds := make([]models.Prediction, len(memberNames))
	for i, name := range memberNames {
		proba := append([]float64(nil), scoreProbabilities[outcome]...)
		preds[i] = fallbackPrediction(name, outcome, scoreConfidences[i], proba)
	}
	return preds
}

// weightedScore is 3 per goal, 1 per shot and 2 per shot on target,
// scaled down by 20% per red card to a floor of 10%.
func weightedScore(goals, shots, onTarget, reds int) float64 {
	penalty := max(0.1, 1-0.2*float64(reds))
	return (3*float64(goals) + float64(shots) + 2*float64(onTarget)) * penalty
}

func fallbackPrediction(name string, outcome models.Outcome, confidence float64, proba []float64) models.Prediction {
	return models.Prediction{
		ModelName:     name,
		Outcome:       outcome,
		Confidence:    confidence,
		ModelAccuracy: 0,
		Probabilities: proba,
		Source:        models.SourceFallback,
	}
}
