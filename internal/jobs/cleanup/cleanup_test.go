package cleanup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeEvictor struct {
	mu      sync.Mutex
	calls   int
	evicted int
	err     error
}

func (f *fakeEvictor) EvictIdle(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.evicted, f.err
}

func (f *fakeEvictor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestRunEvictsIdleSessions(t *testing.T) {
	evictor := &fakeEvictor{evicted: 3}
	job := New(evictor, time.Minute, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run cleanup job: %v", err)
	}
	if evictor.callCount() != 1 {
		t.Fatalf("expected one eviction pass, got %d", evictor.callCount())
	}
}

func TestRunWrapsEvictorError(t *testing.T) {
	cause := errors.New("boom")
	err := New(&fakeEvictor{err: cause}, 0, nil).Run(context.Background())
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if err := New(nil, 0, nil).Run(context.Background()); err != nil {
		t.Fatalf("job without registry must be a no-op, got %v", err)
	}
}

func TestLoopRunsUntilCancelled(t *testing.T) {
	evictor := &fakeEvictor{err: errors.New("transient")}
	job := New(evictor, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Loop(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for evictor.callCount() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected repeated passes, got %d", evictor.callCount())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("loop did not stop after cancel")
	}
}
