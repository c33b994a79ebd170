package logic

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vartificial/match-predictor/internal/models"
)

// PredictionService is the application surface used by the HTTP layer,
// the scheduler and the CLI.
type PredictionService interface {
	Predict(ctx context.Context, stats models.RawMatchStats) ([]models.Prediction, error)
	ModelPerformance(ctx context.Context) (*models.ModelsReport, error)
	Status() models.HealthStatus
	Train(ctx context.Context, examples []models.TrainingExample) (*models.TrainingReport, error)
	TrainRows(ctx context.Context, rows [][]float64) (*models.TrainingReport, error)
	Retrain(ctx context.Context) (*models.TrainingReport, error)
}

// EventRecorder receives telemetry for served predictions. Enqueue must not block.
type EventRecorder interface {
	Enqueue(event models.PredictionEvent) bool
}

// PredictionCache stores ranked predictions for a training run and input.
// Misses and backend failures are indistinguishable to callers.
type PredictionCache interface {
	Get(ctx context.Context, key string) ([]models.Prediction, bool)
	Set(ctx context.Context, key string, preds []models.Prediction)
}

// RedisClient defines the interface for Redis client
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}
