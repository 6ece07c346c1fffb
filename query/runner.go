package query

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultTimeout bounds a single summary run
const DefaultTimeout = 5 * time.Minute

var (
	// ErrTimedOut is the terminal error for runs that hit the deadline
	ErrTimedOut = errors.New("the report request timed out")
	// ErrCancelled is the terminal error for runs cancelled by the caller
	// or superseded by a newer run
	ErrCancelled = errors.New("the report request was cancelled")
)

// Progress is a monotonic completion signal emitted while a run executes
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Task performs the actual fetch-and-aggregate work. It must honour ctx and
// may call progress as often as it likes; stale and out-of-order progress is
// filtered by the runner.
type Task func(ctx context.Context, progress func(current, total int)) (interface{}, error)

// Result is the single terminal outcome of a run. Exactly one of Data or
// Err is meaningful.
type Result struct {
	Generation uint64
	Data       interface{}
	Err        error
}

// Runner serialises summary runs for one view. Every Start bumps a
// monotonic generation and cancels the previous run; consumers check
// IsLatest before applying a result, so a slow old response can never
// overwrite a newer one.
type Runner struct {
	mu      sync.Mutex
	latest  uint64
	cancel  context.CancelFunc
	timeout time.Duration
}

// NewRunner creates a runner. A non-positive timeout falls back to
// DefaultTimeout.
func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{timeout: timeout}
}

// Start launches task under a fresh generation, superseding any run still in
// flight. Progress callbacks are suppressed once the generation goes stale.
// The returned channel delivers exactly one Result.
func (r *Runner) Start(parent context.Context, task Task, onProgress func(Progress)) (uint64, <-chan Result) {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.latest++
	gen := r.latest
	ctx, cancel := context.WithTimeout(parent, r.timeout)
	r.cancel = cancel
	r.mu.Unlock()

	results := make(chan Result, 1)

	go func() {
		defer cancel()

		lastCurrent := -1
		progress := func(current, total int) {
			if onProgress == nil || !r.IsLatest(gen) {
				return
			}
			// Keep progress monotonic even if the task reports loosely
			if current <= lastCurrent {
				return
			}
			lastCurrent = current
			onProgress(Progress{Current: current, Total: total})
		}

		data, err := task(ctx, progress)
		if err != nil {
			err = classify(ctx, err)
		}
		results <- Result{Generation: gen, Data: data, Err: err}
	}()

	return gen, results
}

// Cancel aborts the run in flight, if any
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}

// IsLatest reports whether gen is still the newest generation. Consumers
// discard results and progress from stale generations.
func (r *Runner) IsLatest(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return gen == r.latest
}

// Generation returns the newest generation number
func (r *Runner) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ErrTimedOut
	case errors.Is(ctx.Err(), context.Canceled):
		return ErrCancelled
	}
	return err
}

// TerminalState names the single terminal state for a run error
func TerminalState(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, ErrTimedOut):
		return "timed_out"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	}
	return "failed"
}
