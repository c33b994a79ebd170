package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vartificial/match-predictor/internal/ml"
)

type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Training
	CorpusPath        string // empty selects the embedded corpus
	CorpusPostgresURL string // takes precedence over CorpusPath
	ModelConfigPath   string
	TrainingTimeout   time.Duration
	RetrainSchedule   string // cron expression, empty disables

	// Prediction cache
	RedisURL           string
	PredictionCacheTTL time.Duration

	// Telemetry worker pool
	ClickHouseURL string
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration

	// Auth
	AdminToken string
}

// Load loads configuration from environment variables.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  getEnv("ENV", "development"),

		CorpusPath:        getEnv("CORPUS_PATH", ""),
		CorpusPostgresURL: getEnv("CORPUS_POSTGRES_URL", ""),
		ModelConfigPath:   getEnv("MODEL_CONFIG_PATH", ""),
		TrainingTimeout:   getEnvDuration("TRAINING_TIMEOUT", 30*time.Second),
		RetrainSchedule:   getEnv("RETRAIN_SCHEDULE", ""),

		RedisURL:           getEnv("REDIS_URL", ""),
		PredictionCacheTTL: getEnvDuration("PREDICTION_CACHE_TTL", 10*time.Minute),

		ClickHouseURL: getEnv("CLICKHOUSE_URL", ""),
		WorkerCount:   getEnvInt("WORKER_COUNT", 2),
		QueueSize:     getEnvInt("QUEUE_SIZE", 10000),
		BatchSize:     getEnvInt("BATCH_SIZE", 500),
		FlushInterval: getEnvDuration("FLUSH_INTERVAL", 1*time.Second),

		AdminToken: getEnv("ADMIN_TOKEN", ""),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	rawOrigins := strings.Split(origins, ",")
	for _, o := range rawOrigins {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Admin endpoints must be protected outside development
	if cfg.Env == "production" {
		var err error
		if cfg.AdminToken, err = getEnvRequired("ADMIN_TOKEN"); err != nil {
			return nil, err
		}
	}

	if cfg.TrainingTimeout <= 0 {
		return nil, fmt.Errorf("TRAINING_TIMEOUT must be positive, got %s", cfg.TrainingTimeout)
	}

	return cfg, nil
}

// LoadEnsembleConfig reads model hyperparameters from a YAML file. Keys
// that are absent keep their defaults; an empty path returns the defaults.
func LoadEnsembleConfig(path string) (ml.EnsembleConfig, error) {
	cfg := ml.DefaultEnsembleConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read model config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse model config %s: %w", path, err)
	}

	if cfg.Folds < 2 {
		return cfg, fmt.Errorf("model config: folds must be at least 2, got %d", cfg.Folds)
	}
	if cfg.RandomForest.Trees < 1 {
		return cfg, fmt.Errorf("model config: random_forest.trees must be positive")
	}
	if cfg.LogisticRegression.C <= 0 {
		return cfg, fmt.Errorf("model config: logistic_regression.c must be positive")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
