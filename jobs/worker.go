package jobs

import (
	"fmt"
	"log"
	"sync"
)

// Job is a unit of background work, such as an ingest pull or a rollup
// refresh after an upload.
type Job struct {
	ID      string
	Name    string
	Execute func() error
}

// WorkerPool runs maintenance jobs off the request path
type WorkerPool struct {
	workerCount int
	jobQueue    chan Job
	wg          sync.WaitGroup
	stopOnce    sync.Once
	done        chan struct{}
}

// NewWorkerPool creates and starts a worker pool
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	pool := &WorkerPool{
		workerCount: workerCount,
		jobQueue:    make(chan Job, workerCount*2),
		done:        make(chan struct{}),
	}

	for i := 0; i < workerCount; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	return pool
}

// worker processes jobs from the queue. Only failures are logged; routine
// chores run quiet.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			if err := job.Execute(); err != nil {
				log.Printf("Worker %d: %s job %s failed: %v", id, job.Name, job.ID, err)
			}
		case <-p.done:
			return
		}
	}
}

// Submit adds a job to the queue
func (p *WorkerPool) Submit(job Job) error {
	select {
	case <-p.done:
		return fmt.Errorf("worker pool is shutting down")
	default:
	}
	select {
	case p.jobQueue <- job:
		return nil
	case <-p.done:
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Stop shuts down the worker pool. Queued jobs that have not started are
// dropped; a Submit racing with Stop gets an error instead of a panic, so
// the queue channel is never closed.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
	})
}

// QueueSize returns the current number of jobs in queue
func (p *WorkerPool) QueueSize() int {
	return len(p.jobQueue)
}
