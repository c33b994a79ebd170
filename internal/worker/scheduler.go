package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/vartificial/match-predictor/internal/models"
)

// Retrainer reloads the corpus and publishes a new ensemble.
type Retrainer interface {
	Retrain(ctx context.Context) (*models.TrainingReport, error)
}

// Scheduler retrains the ensemble on a cron schedule. A run that is still
// in progress when the next one fires causes that tick to be skipped.
type Scheduler struct {
	cron      *cron.Cron
	retrainer Retrainer
	timeout   time.Duration
	logger    *zap.SugaredLogger
}

// NewScheduler registers the retrain job. spec is a standard five-field
// cron expression or a descriptor such as "@every 6h".
func NewScheduler(spec string, retrainer Retrainer, timeout time.Duration, logger *zap.Logger) (*Scheduler, error) {
	log := logger.Sugar()
	clog := cronLogger{log: log}
	s := &Scheduler{
		cron:      cron.New(cron.WithLogger(clog), cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog))),
		retrainer: retrainer,
		timeout:   timeout,
		logger:    log,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid retrain schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Infow("Retrain scheduled", "next", e.Next)
	}
}

// Stop waits for a running retrain to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
	}
}

func (s *Scheduler) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	report, err := s.retrainer.Retrain(ctx)
	if err != nil {
		s.logger.Errorw("Scheduled retrain failed", "error", err)
		return
	}
	s.logger.Infow("Scheduled retrain complete",
		"run_id", report.RunID,
		"iteration", report.Iteration,
		"samples", report.TrainingSamples,
	)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
