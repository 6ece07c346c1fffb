package query

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStaleRunIsSuperseded(t *testing.T) {
	r := NewRunner(time.Second)

	slowStarted := make(chan struct{})
	slow := func(ctx context.Context, progress func(int, int)) (interface{}, error) {
		close(slowStarted)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	fast := func(ctx context.Context, progress func(int, int)) (interface{}, error) {
		return "fresh", nil
	}

	genSlow, slowResults := r.Start(context.Background(), slow, nil)
	<-slowStarted
	genFast, fastResults := r.Start(context.Background(), fast, nil)

	if genFast <= genSlow {
		t.Fatalf("generations not monotonic: %d then %d", genSlow, genFast)
	}

	slowRes := <-slowResults
	if r.IsLatest(slowRes.Generation) {
		t.Errorf("superseded run still reported as latest")
	}
	if !errors.Is(slowRes.Err, ErrCancelled) {
		t.Errorf("superseded run error = %v, want ErrCancelled", slowRes.Err)
	}

	fastRes := <-fastResults
	if !r.IsLatest(fastRes.Generation) {
		t.Errorf("newest run should be latest")
	}
	if fastRes.Err != nil || fastRes.Data != "fresh" {
		t.Errorf("newest run result = %v, %v", fastRes.Data, fastRes.Err)
	}
}

func TestTimeout(t *testing.T) {
	r := NewRunner(20 * time.Millisecond)

	task := func(ctx context.Context, progress func(int, int)) (interface{}, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, results := r.Start(context.Background(), task, nil)

	select {
	case res := <-results:
		if !errors.Is(res.Err, ErrTimedOut) {
			t.Errorf("error = %v, want ErrTimedOut", res.Err)
		}
		if TerminalState(res.Err) != "timed_out" {
			t.Errorf("terminal state = %s", TerminalState(res.Err))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not terminate after timeout")
	}
}

func TestUserCancel(t *testing.T) {
	r := NewRunner(time.Minute)

	started := make(chan struct{})
	task := func(ctx context.Context, progress func(int, int)) (interface{}, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, results := r.Start(context.Background(), task, nil)
	<-started
	r.Cancel()

	res := <-results
	if !errors.Is(res.Err, ErrCancelled) {
		t.Errorf("error = %v, want ErrCancelled", res.Err)
	}
	if TerminalState(res.Err) != "cancelled" {
		t.Errorf("terminal state = %s", TerminalState(res.Err))
	}
}

func TestProgressMonotonicAndSingleTerminal(t *testing.T) {
	r := NewRunner(time.Second)

	task := func(ctx context.Context, progress func(int, int)) (interface{}, error) {
		progress(1, 3)
		progress(1, 3) // duplicate must be dropped
		progress(2, 3)
		progress(3, 3)
		return "done", nil
	}

	var seen []Progress
	_, results := r.Start(context.Background(), task, func(p Progress) {
		seen = append(seen, p)
	})

	res := <-results
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	if len(seen) != 3 {
		t.Fatalf("progress events = %d, want 3 (duplicates dropped)", len(seen))
	}
	for i := 1; i < len(seen); i++ {
		if seen[i].Current <= seen[i-1].Current {
			t.Errorf("progress not monotonic: %+v", seen)
		}
	}

	if TerminalState(res.Err) != "completed" {
		t.Errorf("terminal state = %s, want completed", TerminalState(res.Err))
	}
}

func TestTaskFailure(t *testing.T) {
	r := NewRunner(time.Second)
	boom := errors.New("storage unavailable")

	task := func(ctx context.Context, progress func(int, int)) (interface{}, error) {
		return nil, boom
	}

	_, results := r.Start(context.Background(), task, nil)
	res := <-results
	if !errors.Is(res.Err, boom) {
		t.Errorf("error = %v, want original failure", res.Err)
	}
	if TerminalState(res.Err) != "failed" {
		t.Errorf("terminal state = %s, want failed", TerminalState(res.Err))
	}
}
