// Package worker runs the background machinery of the predictor: a
// buffered pool that batches prediction telemetry into ClickHouse and a
// cron scheduler that retrains the ensemble.
//
// The pool decouples request handling from database writes:
// - Load shedding when the queue is full
// - Batch inserts for efficient ClickHouse writes
// - Graceful shutdown with flush guarantees
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/vartificial/match-predictor/internal/models"
)

// Prometheus metrics
var (
	eventsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_predictor_telemetry_ingested_total",
		Help: "Total number of prediction events accepted by the pool",
	})

	eventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_predictor_telemetry_processed_total",
		Help: "Total number of prediction events written to ClickHouse",
	})

	eventsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_predictor_telemetry_failed_total",
		Help: "Total number of prediction events that failed to write",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "match_predictor_telemetry_queue_depth",
		Help: "Current depth of the telemetry queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_predictor_telemetry_batch_duration_seconds",
		Help:    "Duration of batch inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})

	eventsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_predictor_telemetry_load_shed_total",
		Help: "Total number of prediction events dropped due to load shedding",
	})
)

const insertPredictionLog = `
	INSERT INTO match_predictor.predictions_log (
		timestamp, request_id, run_id, iteration, source, model_name, outcome, confidence,
		home_goals, away_goals, home_shots, away_shots,
		home_shots_on_target, away_shots_on_target, home_red_cards, away_red_cards
	)`

// BatchConn is the part of a ClickHouse connection the pool writes through.
type BatchConn interface {
	PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error)
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	ClickHouse    BatchConn
	Logger        *zap.Logger
}

// Pool manages a pool of workers that persist prediction telemetry.
type Pool struct {
	config   PoolConfig
	jobQueue chan models.PredictionEvent
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
	stopOnce sync.Once
	mu       sync.RWMutex
	stopped  bool
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan models.PredictionEvent, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop drains the queue, flushes every worker's batch and waits for them.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping worker pool...")

		p.mu.Lock()
		p.stopped = true
		close(p.jobQueue)
		p.mu.Unlock()

		p.wg.Wait()
		if p.cancel != nil {
			p.cancel()
		}
		p.logger.Info("Worker pool stopped")
	})
}

// Enqueue adds an event without blocking. It returns false and sheds the
// event when the queue is full or the pool has stopped.
func (p *Pool) Enqueue(event models.PredictionEvent) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		eventsLoadShed.Inc()
		return false
	}

	select {
	case p.jobQueue <- event:
		eventsIngested.Inc()
		return true
	default:
		eventsLoadShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker processes jobs from the queue in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]models.PredictionEvent, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.processBatch(batch); err != nil {
			p.logger.Errorw("Batch processing failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			eventsFailed.Add(float64(len(batch)))
		} else {
			p.logger.Debugw("Batch processed", "worker", id, "batchSize", len(batch), "duration", time.Since(start))
			eventsProcessed.Add(float64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case event, ok := <-p.jobQueue:
			if !ok {
				// Channel closed, flush remaining
				flush()
				return
			}

			batch = append(batch, event)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}

// processBatch writes a batch of events to ClickHouse.
func (p *Pool) processBatch(batch []models.PredictionEvent) error {
	if len(batch) == 0 {
		return nil
	}

	// Detached from the pool context so shutdown flushes still land.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, insertPredictionLog)
	if err != nil {
		return err
	}

	for _, ev := range batch {
		s := ev.Stats
		err := chBatch.Append(
			ev.Timestamp,
			ev.RequestID,
			ev.RunID,
			uint32(ev.Iteration),
			string(ev.Source),
			ev.ModelName,
			ev.Outcome.String(),
			ev.Confidence,
			statValue(s.HomeGoals),
			statValue(s.AwayGoals),
			statValue(s.HomeShots),
			statValue(s.AwayShots),
			statValue(s.HomeShotsOnTarget),
			statValue(s.AwayShotsOnTarget),
			statValue(s.HomeRedCards),
			statValue(s.AwayRedCards),
		)
		if err != nil {
			p.logger.Warnw("Failed to append event to batch", "error", err, "request_id", ev.RequestID)
			continue
		}
	}

	if err := chBatch.Send(); err != nil {
		p.logger.Errorw("Failed to send batch to ClickHouse", "error", err, "batchSize", len(batch))
		return err
	}
	return nil
}

// reportQueueDepth periodically updates the queue depth metric
func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}

// statValue maps a match statistic onto its UInt64 column; negatives clamp to 0.
func statValue(n int) uint64 {
	if n < 0 {
		return 0
	}
	return uint64(n)
}
