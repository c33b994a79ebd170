package logic

import (
	"time"

	"github.com/vartificial/match-predictor/internal/ml"
	"github.com/vartificial/match-predictor/internal/models"
)

// FittedModel is one ensemble slot after training.
type FittedModel struct {
	Name   string
	Model  ml.Classifier
	Record models.ModelRecord
}

// EnsembleState is an immutable snapshot of a completed training run.
// It is published as a whole and never modified afterwards.
type EnsembleState struct {
	RunID           string
	Iteration       int
	Scaler          *ml.StandardScaler
	Models          []FittedModel // Naive Bayes, Random Forest, Logistic Regression
	TrainingSamples int
	TrainedAt       time.Time
	Duration        time.Duration
}

// Records returns the model records rounded for reporting.
func (s *EnsembleState) Records() []models.ModelRecord {
	out := make([]models.ModelRecord, len(s.Models))
	for i, m := range s.Models {
		r := m.Record
		r.Accuracy = round(r.Accuracy, 3)
		r.Std = round(r.Std, 3)
		r.Precision = round(r.Precision, 3)
		r.F1Score = round(r.F1Score, 3)
		if r.FeatureImportances != nil {
			imp := make(map[string]float64, len(r.FeatureImportances))
			for k, v := range r.FeatureImportances {
				imp[k] = round(v, 3)
			}
			r.FeatureImportances = imp
		}
		out[i] = r
	}
	return out
}

// Report describes the run that produced the state.
func (s *EnsembleState) Report() *models.TrainingReport {
	return &models.TrainingReport{
		RunID:           s.RunID,
		Iteration:       s.Iteration,
		TrainingSamples: s.TrainingSamples,
		Duration:        s.Duration,
		TrainedAt:       s.TrainedAt,
		Models:          s.Records(),
	}
}
