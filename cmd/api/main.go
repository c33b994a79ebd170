package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vartificial/match-predictor/internal/config"
	"github.com/vartificial/match-predictor/internal/corpus"
	"github.com/vartificial/match-predictor/internal/handlers"
	"github.com/vartificial/match-predictor/internal/logic"
	"github.com/vartificial/match-predictor/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if err := run(cfg, logger); err != nil {
		sugar.Fatalw("Server exited", "error", err)
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sugar := logger.Sugar()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ensembleCfg, err := config.LoadEnsembleConfig(cfg.ModelConfigPath)
	if err != nil {
		return err
	}

	hcfg := handlers.Config{
		AdminToken: cfg.AdminToken,
		Logger:     logger,
	}
	scfg := logic.ServiceConfig{
		Trainer: logic.NewTrainer(ensembleCfg, cfg.TrainingTimeout, logger),
		Logger:  logger,
	}

	// Corpus source: Postgres, then file, then the embedded reference set.
	switch {
	case cfg.CorpusPostgresURL != "":
		pool, err := pgxpool.New(ctx, cfg.CorpusPostgresURL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		scfg.Source = corpus.PostgresSource{Pool: pool}
		hcfg.Postgres = pool
	case cfg.CorpusPath != "":
		scfg.Source = corpus.FileSource{Path: cfg.CorpusPath}
	default:
		scfg.Source = corpus.EmbeddedSource{}
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		scfg.Cache = logic.NewRedisCache(rdb, cfg.PredictionCacheTTL, logger)
	}

	if cfg.ClickHouseURL != "" {
		opts, err := clickhouse.ParseDSN(cfg.ClickHouseURL)
		if err != nil {
			return fmt.Errorf("parse CLICKHOUSE_URL: %w", err)
		}
		ch, err := clickhouse.Open(opts)
		if err != nil {
			return fmt.Errorf("connect clickhouse: %w", err)
		}
		defer ch.Close()

		pool := worker.NewPool(worker.PoolConfig{
			WorkerCount:   cfg.WorkerCount,
			QueueSize:     cfg.QueueSize,
			BatchSize:     cfg.BatchSize,
			FlushInterval: cfg.FlushInterval,
			ClickHouse:    ch,
			Logger:        logger,
		})
		pool.Start(ctx)
		defer pool.Stop()

		scfg.Recorder = pool
		hcfg.Telemetry = pool
		hcfg.ClickHouse = ch
	}

	svc := logic.NewPredictionService(scfg)
	hcfg.Prediction = svc

	// A failed startup train leaves the fallback serving.
	if report, err := svc.Retrain(ctx); err != nil {
		sugar.Warnw("Initial training failed, serving fallback predictions", "error", err)
	} else {
		sugar.Infow("Initial training complete", "run_id", report.RunID, "samples", report.TrainingSamples, "duration", report.Duration)
	}

	if cfg.RetrainSchedule != "" {
		sched, err := worker.NewScheduler(cfg.RetrainSchedule, svc, cfg.TrainingTimeout, logger)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.TrainingTimeout)
			defer cancel()
			sched.Stop(stopCtx)
		}()
	}

	h := handlers.New(hcfg)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h.Router(cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("Server listening", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sugar.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
