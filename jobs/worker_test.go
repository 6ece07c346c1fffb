package jobs

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPoolRunsJobs(t *testing.T) {
	pool := NewWorkerPool(2)

	var ran int64
	for i := 0; i < 5; i++ {
		err := pool.Submit(Job{
			ID:   "job",
			Name: "test",
			Execute: func() error {
				atomic.AddInt64(&ran, 1)
				return nil
			},
		})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt64(&ran) < 5 {
		select {
		case <-deadline:
			t.Fatalf("only %d of 5 jobs ran", atomic.LoadInt64(&ran))
		case <-time.After(10 * time.Millisecond):
		}
	}
	pool.Stop()
}

func TestWorkerPoolRejectsAfterStop(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Stop()

	if err := pool.Submit(Job{ID: "late", Name: "test", Execute: func() error { return nil }}); err == nil {
		t.Errorf("expected submit to fail after stop")
	}
}
