package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/vartificial/match-predictor/internal/logic"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// TelemetryQueue reports the backlog of the prediction telemetry pool
type TelemetryQueue interface {
	QueueDepth() int
}

// PgConn is the part of the PostgreSQL pool used for schema installation
// and corpus seeding
type PgConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// CHConn is the part of the ClickHouse connection used for schema installation
type CHConn interface {
	Exec(ctx context.Context, query string, args ...any) error
	Ping(ctx context.Context) error
}

// Config wires a Handler. Telemetry, Postgres and ClickHouse are optional.
type Config struct {
	Prediction    logic.PredictionService
	Telemetry     TelemetryQueue
	Postgres      PgConn
	ClickHouse    CHConn
	AdminToken    string
	MigrationsDir string
	Logger        *zap.Logger
}

type Handler struct {
	prediction    logic.PredictionService
	telemetry     TelemetryQueue
	pg            PgConn
	ch            CHConn
	adminTokenSum string
	migrations    string
	logger        *zap.SugaredLogger
	validate      *validator.Validate
}

func New(cfg Config) *Handler {
	h := &Handler{
		prediction: cfg.Prediction,
		telemetry:  cfg.Telemetry,
		pg:         cfg.Postgres,
		ch:         cfg.ClickHouse,
		migrations: cfg.MigrationsDir,
		logger:     cfg.Logger.Sugar(),
		validate:   newValidator(),
	}
	if h.migrations == "" {
		h.migrations = "migrations"
	}
	if cfg.AdminToken != "" {
		h.adminTokenSum = hashToken(cfg.AdminToken)
	}
	return h
}
