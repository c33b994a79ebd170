package logic

import (
	"math"
	"sort"

	"github.com/vartificial/match-predictor/internal/ml"
	"github.com/vartificial/match-predictor/internal/models"
)

// Predictor produces one prediction per ensemble slot, most confident first.
type Predictor interface {
	Predict(stats models.RawMatchStats) []models.Prediction
}

// TrainedPredictor serves predictions from a fitted ensemble.
type TrainedPredictor struct {
	state *EnsembleState
}

func NewTrainedPredictor(state *EnsembleState) *TrainedPredictor {
	return &TrainedPredictor{state: state}
}

func (p *TrainedPredictor) Predict(stats models.RawMatchStats) []models.Prediction {
	x := p.state.Scaler.Transform(models.ExtractFeatures(stats).Slice())

	preds := make([]models.Prediction, 0, len(p.state.Models))
	for _, m := range p.state.Models {
		proba := m.Model.PredictProba(x)
		class := ml.Argmax(proba)
		preds = append(preds, models.Prediction{
			ModelName:     m.Name,
			Outcome:       models.Outcome(class),
			Confidence:    round(proba[class]*100, 1),
			ModelAccuracy: round(m.Record.Accuracy, 3),
			Probabilities: roundAll(proba, 4),
			Source:        models.SourceEnsemble,
		})
	}

	rank(preds)
	return preds
}

// rank orders predictions by confidence, highest first. Equal confidences
// keep their slot order.
func rank(preds []models.Prediction) {
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Confidence > preds[j].Confidence
	})
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func roundAll(vs []float64, places int) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = round(v, places)
	}
	return out
}
