package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/vartificial/match-predictor/internal/models"
)

// MockClickHouseConn records every batch that is sent.
type MockClickHouseConn struct {
	mu      sync.Mutex
	Queries []string
	Rows    [][]interface{}
	SendErr error
	sent    int
}

func (m *MockClickHouseConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()
	return &MockBatch{conn: m}, nil
}

func (m *MockClickHouseConn) RowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Rows)
}

func (m *MockClickHouseConn) Sent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent
}

type MockBatch struct {
	driver.Batch
	conn *MockClickHouseConn
	rows [][]interface{}
}

func (m *MockBatch) Append(v ...interface{}) error {
	m.rows = append(m.rows, v)
	return nil
}

func (m *MockBatch) Send() error {
	m.conn.mu.Lock()
	defer m.conn.mu.Unlock()
	if m.conn.SendErr != nil {
		return m.conn.SendErr
	}
	m.conn.Rows = append(m.conn.Rows, m.rows...)
	m.conn.sent++
	return nil
}

// MockRetrainer counts retrain calls.
type MockRetrainer struct {
	mu    sync.Mutex
	calls int
	Fail  bool
}

func (m *MockRetrainer) Retrain(ctx context.Context) (*models.TrainingReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Fail {
		return nil, errors.New("corpus unavailable")
	}
	return &models.TrainingReport{RunID: "run", Iteration: m.calls - 1}, nil
}

func (m *MockRetrainer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
