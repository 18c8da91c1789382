package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/riskibarqy/pickem-league/internal/usecase"
)

type countingRunner struct {
	calls atomic.Int32
	ran   chan struct{}
	err   error
}

func (r *countingRunner) RunLockSweep(ctx context.Context) (usecase.LockSweepJobResult, error) {
	r.calls.Add(1)
	defer func() {
		select {
		case r.ran <- struct{}{}:
		default:
		}
	}()
	if _, ok := ctx.Deadline(); !ok {
		return usecase.LockSweepJobResult{}, errors.New("sweep context has no deadline")
	}
	if r.err != nil {
		return usecase.LockSweepJobResult{}, r.err
	}
	return usecase.LockSweepJobResult{
		Sweep:       usecase.LockSweepResult{LockedGames: 1, LockedSlots: 2},
		QueuedCount: 1,
	}, nil
}

func TestScheduler_RunsSweepImmediately(t *testing.T) {
	t.Parallel()

	runner := &countingRunner{ran: make(chan struct{}, 1)}
	s, err := New(runner, Config{Interval: time.Minute, Clock: clockwork.NewFakeClock()}, logging.NewNop())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer func() {
		if err := s.Stop(); err != nil {
			t.Fatalf("stop: %v", err)
		}
	}()

	select {
	case <-runner.ran:
	case <-time.After(5 * time.Second):
		t.Fatalf("lock sweep did not run")
	}

	jobs := s.s.Jobs()
	if len(jobs) != 1 || jobs[0].Name() != lockSweepJobName {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
}

func TestScheduler_SweepSwallowsErrors(t *testing.T) {
	t.Parallel()

	runner := &countingRunner{ran: make(chan struct{}, 1), err: errors.New("db down")}
	s, err := New(runner, Config{Interval: time.Minute, RunTimeout: time.Second}, logging.NewNop())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	s.sweep()
	s.sweep()
	if got := runner.calls.Load(); got != 2 {
		t.Fatalf("expected 2 sweep calls, got %d", got)
	}
}

func TestNew_RequiresRunner(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, Config{}, logging.NewNop()); err == nil {
		t.Fatalf("expected error for nil runner")
	}
}
