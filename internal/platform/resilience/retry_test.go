package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		AttemptTimeout:  time.Second,
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	result := Retry(context.Background(), fastPolicy(3), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("upstream 503")
		}
		return "ok", nil
	})

	if !result.OK() {
		t.Fatalf("expected success, got %s: %v", result.Outcome, result.Err)
	}
	if result.Value != "ok" {
		t.Fatalf("unexpected value: %q", result.Value)
	}
	if result.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", result.Attempts)
	}
}

func TestRetry_ExhaustedIsTransient(t *testing.T) {
	t.Parallel()

	upstream := errors.New("timeout")
	result := Retry(context.Background(), fastPolicy(2), func(context.Context) (int, error) {
		return 0, upstream
	})

	if result.Outcome != OutcomeTransient {
		t.Fatalf("expected transient outcome, got %s", result.Outcome)
	}
	if result.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", result.Attempts)
	}
	if !errors.Is(result.Err, upstream) {
		t.Fatalf("expected upstream error, got %v", result.Err)
	}
}

func TestRetry_PermanentStopsImmediately(t *testing.T) {
	t.Parallel()

	notFound := errors.New("game not found")
	calls := 0
	result := Retry(context.Background(), fastPolicy(5), func(context.Context) (int, error) {
		calls++
		return 0, Permanent(notFound)
	})

	if result.Outcome != OutcomePermanent {
		t.Fatalf("expected permanent outcome, got %s", result.Outcome)
	}
	if calls != 1 || result.Attempts != 1 {
		t.Fatalf("expected a single attempt, got calls=%d attempts=%d", calls, result.Attempts)
	}
	if !errors.Is(result.Err, notFound) {
		t.Fatalf("expected wrapped cause, got %v", result.Err)
	}
}

func TestRetry_AttemptContextHasDeadline(t *testing.T) {
	t.Parallel()

	result := Retry(context.Background(), fastPolicy(1), func(ctx context.Context) (bool, error) {
		_, ok := ctx.Deadline()
		return ok, nil
	})
	if !result.OK() || !result.Value {
		t.Fatalf("expected attempt context to carry a deadline")
	}
}

func TestNormalizeRetryPolicy_Defaults(t *testing.T) {
	t.Parallel()

	got := NormalizeRetryPolicy(RetryPolicy{})
	if got != DefaultRetryPolicy() {
		t.Fatalf("unexpected normalized policy: %+v", got)
	}
}

func TestNormalizeRetryPolicy_MaxInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		policy RetryPolicy
		want   time.Duration
	}{
		{name: "zero uses default", policy: RetryPolicy{InitialInterval: 250 * time.Millisecond}, want: 5 * time.Second},
		{name: "zero with large initial", policy: RetryPolicy{InitialInterval: 8 * time.Second}, want: 8 * time.Second},
		{name: "below initial scales up", policy: RetryPolicy{InitialInterval: time.Second, MaxInterval: 500 * time.Millisecond}, want: 8 * time.Second},
		{name: "explicit kept", policy: RetryPolicy{InitialInterval: time.Second, MaxInterval: 3 * time.Second}, want: 3 * time.Second},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := NormalizeRetryPolicy(tc.policy)
			if got.MaxInterval != tc.want {
				t.Fatalf("max interval = %v, want %v", got.MaxInterval, tc.want)
			}
		})
	}
}
