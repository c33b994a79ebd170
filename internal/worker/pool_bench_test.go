package worker

import (
	"testing"

	"go.uber.org/zap"

	"github.com/vartificial/match-predictor/internal/models"
)

func BenchmarkProcessBatch(b *testing.B) {
	p := NewPool(PoolConfig{ClickHouse: &MockClickHouseConn{}, Logger: zap.NewNop()})

	batch := make([]models.PredictionEvent, 500)
	for i := range batch {
		batch[i] = testEvent("bench")
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := p.processBatch(batch); err != nil {
			b.Fatal(err)
		}
	}
}
