package worker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestPool_RaceCondition(t *testing.T) {
	conn := &MockClickHouseConn{}
	p := NewPool(PoolConfig{
		WorkerCount:   2,
		QueueSize:     1000,
		BatchSize:     10,
		FlushInterval: 10 * time.Millisecond,
		ClickHouse:    conn,
		Logger:        zap.NewNop(),
	})
	p.Start(context.Background())

	var accepted sync.WaitGroup
	var mu sync.Mutex
	total := 0

	producers := 10
	eventsPerProducer := 100
	for i := 0; i < producers; i++ {
		accepted.Add(1)
		go func(i int) {
			defer accepted.Done()
			for j := 0; j < eventsPerProducer; j++ {
				if p.Enqueue(testEvent(fmt.Sprintf("req-%d-%d", i, j))) {
					mu.Lock()
					total++
					mu.Unlock()
				}
				if j%10 == 0 {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}

	// Stop races the producers on purpose.
	go func() {
		time.Sleep(20 * time.Millisecond)
		p.Stop()
	}()
	accepted.Wait()
	p.Stop()

	mu.Lock()
	defer mu.Unlock()
	if conn.RowCount() != total {
		t.Errorf("accepted %d events but wrote %d", total, conn.RowCount())
	}
}
