package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vartificial/match-predictor/internal/ml"
	"github.com/vartificial/match-predictor/internal/models"
)

// DefaultTrainingTimeout bounds a training run when no timeout is configured.
const DefaultTrainingTimeout = 30 * time.Second

// Trainer fits the three-model ensemble on a labelled corpus.
type Trainer struct {
	config  ml.EnsembleConfig
	timeout time.Duration
	logger  *zap.SugaredLogger
}

func NewTrainer(cfg ml.EnsembleConfig, timeout time.Duration, logger *zap.Logger) *Trainer {
	if cfg.Folds < 2 {
		cfg.Folds = ml.DefaultEnsembleConfig().Folds
	}
	if timeout <= 0 {
		timeout = DefaultTrainingTimeout
	}
	return &Trainer{config: cfg, timeout: timeout, logger: logger.Sugar()}
}

// Fit trains a fresh ensemble. iteration selects the forest seed.
// Nothing is shared with previously returned states.
func (t *Trainer) Fit(ctx context.Context, examples []models.TrainingExample, iteration int) (*EnsembleState, error) {
	if err := t.checkClassCounts(examples); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	X, y := models.FeatureMatrix(examples)

	scaler := &ml.StandardScaler{}
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		return nil, fmt.Errorf("fit scaler: %w", err)
	}

	members := t.config.Members(iteration)
	fitted := make([]FittedModel, len(members))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range members {
		i, m := i, m
		g.Go(func() error {
			cv, err := ml.CrossValidate(gctx, m.New, scaled, y, t.config.Folds)
			if err != nil {
				return fmt.Errorf("cross-validate %s: %w", m.Name, err)
			}
			if err := gctx.Err(); err != nil {
				return err
			}

			model := m.New()
			if err := model.Fit(scaled, y); err != nil {
				return fmt.Errorf("fit %s: %w", m.Name, err)
			}

			fitted[i] = FittedModel{Name: m.Name, Model: model, Record: newModelRecord(m.Name, model, cv)}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			trainingRuns.WithLabelValues("timeout").Inc()
			return nil, &TrainingTimeoutError{Timeout: t.timeout, Err: err}
		}
		trainingRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	state := &EnsembleState{
		RunID:           uuid.NewString(),
		Iteration:       iteration,
		Scaler:          scaler,
		Models:          fitted,
		TrainingSamples: len(examples),
		TrainedAt:       time.Now().UTC(),
		Duration:        time.Since(start),
	}

	trainingRuns.WithLabelValues("success").Inc()
	trainingDuration.Observe(state.Duration.Seconds())
	for _, m := range fitted {
		cvAccuracy.WithLabelValues(m.Name).Set(m.Record.Accuracy)
		t.logger.Infow("Model trained",
			"run_id", state.RunID,
			"model", m.Name,
			"accuracy", m.Record.Accuracy,
			"std", m.Record.Std,
		)
	}

	return state, nil
}

// checkClassCounts requires two full folds' worth of examples per class.
func (t *Trainer) checkClassCounts(examples []models.TrainingExample) error {
	var counts [models.NumOutcomes]int
	for _, ex := range examples {
		if ex.Outcome.Valid() {
			counts[ex.Outcome]++
		}
	}
	need := 2 * t.config.Folds
	for _, o := range models.Outcomes {
		if counts[o] < need {
			trainingRuns.WithLabelValues("insufficient_data").Inc()
			return &DataInsufficientError{Class: o, Have: counts[o], Need: need}
		}
	}
	return nil
}

// newModelRecord summarises a fitted model. Precision and F1 are reported
// as accuracy +0.01 and -0.01; they are not measured separately.
func newModelRecord(name string, model ml.Classifier, cv *ml.CVResult) models.ModelRecord {
	rec := models.ModelRecord{
		Name:      name,
		Accuracy:  cv.Mean,
		Std:       cv.Std,
		Precision: cv.Mean + 0.01,
		F1Score:   cv.Mean - 0.01,
	}
	if fi, ok := model.(ml.FeatureImporter); ok {
		imp := fi.FeatureImportances()
		if len(imp) == models.FeatureCount {
			rec.FeatureImportances = make(map[string]float64, len(imp))
			for i, v := range imp {
				rec.FeatureImportances[models.FeatureNames[i]] = v
			}
		}
	}
	return rec
}
