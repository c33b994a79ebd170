package handlers

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vartificial/match-predictor/internal/models"
)

// MockPredictionService
type MockPredictionService struct {
	PredictFunc          func(ctx context.Context, stats models.RawMatchStats) ([]models.Prediction, error)
	ModelPerformanceFunc func(ctx context.Context) (*models.ModelsReport, error)
	TrainFunc            func(ctx context.Context, examples []models.TrainingExample) (*models.TrainingReport, error)
	TrainRowsFunc        func(ctx context.Context, rows [][]float64) (*models.TrainingReport, error)
	RetrainFunc          func(ctx context.Context) (*models.TrainingReport, error)
	Trained              bool
}

func (m *MockPredictionService) Predict(ctx context.Context, stats models.RawMatchStats) ([]models.Prediction, error) {
	if m.PredictFunc != nil {
		return m.PredictFunc(ctx, stats)
	}
	return []models.Prediction{}, nil
}

func (m *MockPredictionService) ModelPerformance(ctx context.Context) (*models.ModelsReport, error) {
	if m.ModelPerformanceFunc != nil {
		return m.ModelPerformanceFunc(ctx)
	}
	return &models.ModelsReport{}, nil
}

func (m *MockPredictionService) Status() models.HealthStatus {
	return models.HealthStatus{Status: "healthy", ModelsTrained: m.Trained, ModelCount: 3}
}

func (m *MockPredictionService) Train(ctx context.Context, examples []models.TrainingExample) (*models.TrainingReport, error) {
	if m.TrainFunc != nil {
		return m.TrainFunc(ctx, examples)
	}
	return &models.TrainingReport{}, nil
}

func (m *MockPredictionService) TrainRows(ctx context.Context, rows [][]float64) (*models.TrainingReport, error) {
	if m.TrainRowsFunc != nil {
		return m.TrainRowsFunc(ctx, rows)
	}
	return &models.TrainingReport{}, nil
}

func (m *MockPredictionService) Retrain(ctx context.Context) (*models.TrainingReport, error) {
	if m.RetrainFunc != nil {
		return m.RetrainFunc(ctx)
	}
	return &models.TrainingReport{}, nil
}

type MockTelemetryQueue struct {
	Depth int
}

func (m *MockTelemetryQueue) QueueDepth() int { return m.Depth }

type MockPgConn struct {
	QueryFunc func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	ExecFunc  func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	PingErr   error
	Inserts   int
}

func (m *MockPgConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql, args...)
	}
	return &MockCountRows{}, nil
}

func (m *MockPgConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if strings.Contains(sql, "INSERT INTO training_matches") {
		m.Inserts++
	}
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (m *MockPgConn) Ping(ctx context.Context) error { return m.PingErr }

// MockCountRows yields a single count(*) row.
type MockCountRows struct {
	pgx.Rows
	Count int
	done  bool
}

func (m *MockCountRows) Next() bool {
	if m.done {
		return false
	}
	m.done = true
	return true
}

func (m *MockCountRows) Scan(dest ...any) error {
	*(dest[0].(*int)) = m.Count
	return nil
}

func (m *MockCountRows) Close()     {}
func (m *MockCountRows) Err() error { return nil }

type MockCHConn struct {
	Statements []string
	ExecErr    error
	PingErr    error
}

func (m *MockCHConn) Exec(ctx context.Context, query string, args ...any) error {
	m.Statements = append(m.Statements, query)
	return m.ExecErr
}

func (m *MockCHConn) Ping(ctx context.Context) error { return m.PingErr }
