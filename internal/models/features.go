package models

// FeatureCount is the dimensionality of a FeatureVector.
const FeatureCount = 6

// FeatureNames names the FeatureVector components in order.
var FeatureNames = []string{
	"goal_diff",
	"shot_diff",
	"shot_efficiency_diff",
	"home_shot_accuracy",
	"away_shot_accuracy",
	"red_card_diff",
}

// FeatureVector holds the derived signals fed to the classifiers.
type FeatureVector struct {
	GoalDiff           float64 `json:"goal_diff"`
	ShotDiff           float64 `json:"shot_diff"`
	ShotEfficiencyDiff float64 `json:"shot_efficiency_diff"`
	HomeShotAccuracy   float64 `json:"home_shot_accuracy"`
	AwayShotAccuracy   float64 `json:"away_shot_accuracy"`
	// RedCardDiff is positive when the away side has more red cards.
	RedCardDiff float64 `json:"red_card_diff"`
}

// ExtractFeatures derives the feature vector from raw stats. Operands are
// converted before subtracting, so any non-negative int is accepted.
// Shot counts are floored at 1 in the accuracy denominators, so a side
// with no shots has accuracy 0.
func ExtractFeatures(s RawMatchStats) FeatureVector {
	homeAcc := float64(s.HomeShotsOnTarget) / float64(max(s.HomeShots, 1))
	awayAcc := float64(s.AwayShotsOnTarget) / float64(max(s.AwayShots, 1))

	return FeatureVector{
		GoalDiff:           float64(s.HomeGoals) - float64(s.AwayGoals),
		ShotDiff:           float64(s.HomeShots) - float64(s.AwayShots),
		ShotEfficiencyDiff: homeAcc - awayAcc,
		HomeShotAccuracy:   homeAcc,
		AwayShotAccuracy:   awayAcc,
		RedCardDiff:        float64(s.AwayRedCards) - float64(s.HomeRedCards),
	}
}

// Slice returns the features in FeatureNames order.
func (f FeatureVector) Slice() []float64 {
	return []float64{
		f.GoalDiff,
		f.ShotDiff,
		f.ShotEfficiencyDiff,
		f.HomeShotAccuracy,
		f.AwayShotAccuracy,
		f.RedCardDiff,
	}
}

// FeatureMatrix extracts features and labels for a set of examples.
func FeatureMatrix(examples []TrainingExample) ([][]float64, []int) {
	X := make([][]float64, len(examples))
	y := make([]int, len(examples))
	for i, ex := range examples {
		X[i] = ExtractFeatures(ex.Stats).Slice()
		y[i] = int(ex.Outcome)
	}
	return X, y
}
