package logic

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vartificial/match-predictor/internal/corpus"
	"github.com/vartificial/match-predictor/internal/models"
)

// ServiceConfig wires a Service. Cache and Recorder are optional.
type ServiceConfig struct {
	Trainer  *Trainer
	Source   corpus.Source
	Cache    PredictionCache
	Recorder EventRecorder
	Logger   *zap.Logger
}

// Service owns the published ensemble. A nil state means untrained, in
// which case predictions come from the fallback.
type Service struct {
	trainer  *Trainer
	source   corpus.Source
	cache    PredictionCache
	recorder EventRecorder
	logger   *zap.SugaredLogger

	state     atomic.Pointer[EnsembleState]
	trainMu   sync.Mutex
	iteration int
	fallback  FallbackPredictor
}

func NewPredictionService(cfg ServiceConfig) *Service {
	if cfg.Source == nil {
		cfg.Source = corpus.EmbeddedSource{}
	}
	return &Service{
		trainer:  cfg.Trainer,
		source:   cfg.Source,
		cache:    cfg.Cache,
		recorder: cfg.Recorder,
		logger:   cfg.Logger.Sugar(),
	}
}

// Predict ranks one prediction per ensemble slot, most confident first.
// Without a trained ensemble it serves the heuristic fallback instead of
// failing.
func (s *Service) Predict(ctx context.Context, stats models.RawMatchStats) ([]models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	state := s.state.Load()
	if state == nil {
		preds := s.fallback.Predict(stats)
		fallbackServed.Inc()
		s.logger.Infow("Serving fallback prediction", "source", models.SourceFallback, "outcome", preds[0].Outcome.String())
		s.observe(nil, stats, preds)
		return preds, nil
	}

	key := cacheKey(state.RunID, stats)
	if s.cache != nil {
		if preds, ok := s.cache.Get(ctx, key); ok {
			s.observe(state, stats, preds)
			return preds, nil
		}
	}

	preds := NewTrainedPredictor(state).Predict(stats)
	if s.cache != nil {
		s.cache.Set(ctx, key, preds)
	}
	s.observe(state, stats, preds)
	return preds, nil
}

func (s *Service) observe(state *EnsembleState, stats models.RawMatchStats, preds []models.Prediction) {
	for _, p := range preds {
		predictionsServed.WithLabelValues(string(p.Source), p.ModelName, p.Outcome.String()).Inc()
	}
	if s.recorder == nil {
		return
	}

	requestID := uuid.NewString()
	now := time.Now().UTC()
	for _, p := range preds {
		ev := models.PredictionEvent{
			RequestID:  requestID,
			Source:     p.Source,
			ModelName:  p.ModelName,
			Outcome:    p.Outcome,
			Confidence: p.Confidence,
			Stats:      stats,
			Timestamp:  now,
		}
		if state != nil {
			ev.RunID = state.RunID
			ev.Iteration = state.Iteration
		}
		s.recorder.Enqueue(ev)
	}
}

// ModelPerformance reports the published models. It returns ErrNotTrained
// before the first successful training run.
func (s *Service) ModelPerformance(ctx context.Context) (*models.ModelsReport, error) {
	state := s.state.Load()
	if state == nil {
		return nil, ErrNotTrained
	}
	return &models.ModelsReport{
		Models:          state.Records(),
		TrainingSamples: state.TrainingSamples,
		Features:        append([]string(nil), models.FeatureNames...),
	}, nil
}

func (s *Service) Status() models.HealthStatus {
	return models.HealthStatus{
		Status:        "healthy",
		ModelsTrained: s.state.Load() != nil,
		ModelCount:    len(memberNames),
	}
}

// Trained reports whether an ensemble is published.
func (s *Service) Trained() bool {
	return s.state.Load() != nil
}

// Train fits a new ensemble and publishes it atomically. On failure the
// previously published ensemble, if any, keeps serving.
func (s *Service) Train(ctx context.Context, examples []models.TrainingExample) (*models.TrainingReport, error) {
	s.trainMu.Lock()
	defer s.trainMu.Unlock()

	state, err := s.trainer.Fit(ctx, examples, s.iteration)
	if err != nil {
		s.logger.Errorw("Training failed", "iteration", s.iteration, "samples", len(examples), "error", err)
		return nil, err
	}

	s.iteration++
	s.state.Store(state)

	s.logger.Infow("Ensemble published",
		"run_id", state.RunID,
		"iteration", state.Iteration,
		"samples", state.TrainingSamples,
		"duration", state.Duration,
	)
	return state.Report(), nil
}

// TrainRows trains on labelled numeric rows: eight raw-stat columns
// followed by the outcome code.
func (s *Service) TrainRows(ctx context.Context, rows [][]float64) (*models.TrainingReport, error) {
	examples, err := corpus.FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("invalid training rows: %w", err)
	}
	return s.Train(ctx, examples)
}

// Retrain reloads the configured corpus source and trains on it.
func (s *Service) Retrain(ctx context.Context) (*models.TrainingReport, error) {
	examples, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus from %s: %w", s.source.Name(), err)
	}
	s.logger.Infow("Corpus loaded", "source", s.source.Name(), "samples", len(examples))
	return s.Train(ctx, examples)
}

var _ PredictionService = (*Service)(nil)
