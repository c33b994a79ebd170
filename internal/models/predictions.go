package models

import "time"

// PredictionSource distinguishes trained-classifier output from the heuristic fallback.
type PredictionSource string

const (
	SourceEnsemble PredictionSource = "ensemble"
	SourceFallback PredictionSource = "fallback"
)

// Prediction is one ensemble member's forecast.
type Prediction struct {
	ModelName     string           `json:"modelName"`
	Outcome       Outcome          `json:"outcome"`
	Confidence    float64          `json:"confidence"`    // 0-100, one decimal
	ModelAccuracy float64          `json:"modelAccuracy"` // cross-validated, context only
	Probabilities []float64        `json:"probabilities"` // Home Win, Draw, Away Win
	Source        PredictionSource `json:"source"`
}

// ModelRecord summarises a fitted classifier.
// Precision and F1 are accuracy +/- 0.01, kept for compatibility with
// existing consumers; they are not measured.
type ModelRecord struct {
	Name               string             `json:"name"`
	Accuracy           float64            `json:"accuracy"`
	Std                float64            `json:"std"`
	Precision          float64            `json:"precision"`
	F1Score            float64            `json:"f1Score"`
	FeatureImportances map[string]float64 `json:"featureImportances,omitempty"`
}

// TrainingReport describes one completed training run.
type TrainingReport struct {
	RunID           string        `json:"run_id"`
	Iteration       int           `json:"iteration"`
	TrainingSamples int           `json:"training_samples"`
	Duration        time.Duration `json:"duration_ns"`
	TrainedAt       time.Time     `json:"trained_at"`
	Models          []ModelRecord `json:"models"`
}

// PredictionResult is the body of a successful predict call.
type PredictionResult struct {
	Success     bool         `json:"success"`
	Predictions []Prediction `json:"predictions"`
}

// ModelsReport is the body of the model performance endpoint.
type ModelsReport struct {
	Models          []ModelRecord `json:"models"`
	TrainingSamples int           `json:"training_samples"`
	Features        []string      `json:"features"`
}

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status        string `json:"status"`
	ModelsTrained bool   `json:"models_trained"`
	ModelCount    int    `json:"model_count"`
}

// PredictionEvent is a telemetry record for one served prediction.
type PredictionEvent struct {
	RequestID  string           `json:"request_id"`
	RunID      string           `json:"run_id"`
	Iteration  int              `json:"iteration"`
	Source     PredictionSource `json:"source"`
	ModelName  string           `json:"model_name"`
	Outcome    Outcome          `json:"outcome"`
	Confidence float64          `json:"confidence"`
	Stats      RawMatchStats    `json:"stats"`
	Timestamp  time.Time        `json:"timestamp"`
}
