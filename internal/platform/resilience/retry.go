package resilience

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v5"
)

// Outcome is the tagged result of a retried call.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeTransient Outcome = "transient"
	OutcomePermanent Outcome = "permanent"
)

type RetryResult[T any] struct {
	Value    T
	Outcome  Outcome
	Attempts int
	Err      error
}

func (r RetryResult[T]) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Retry runs op until it succeeds, returns a Permanent error, or the attempt budget is spent.
// Each attempt gets its own context bounded by AttemptTimeout. Retry never returns an error
// directly; callers branch on the Outcome.
func Retry[T any](ctx context.Context, policy RetryPolicy, op func(context.Context) (T, error)) RetryResult[T] {
	policy = NormalizeRetryPolicy(policy)

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = policy.InitialInterval
	expo.MaxInterval = policy.MaxInterval
	expo.RandomizationFactor = 0.2

	attempts := 0
	permanent := false
	value, err := backoff.Retry(ctx, func() (T, error) {
		attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, policy.AttemptTimeout)
		defer cancel()
		v, opErr := op(attemptCtx)
		// backoff unwraps permanent errors before returning them.
		permanent = isPermanent(opErr)
		return v, opErr
	},
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(policy.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
	)

	result := RetryResult[T]{Value: value, Attempts: attempts, Err: err}
	switch {
	case err == nil:
		result.Outcome = OutcomeSuccess
	case permanent && ctx.Err() == nil:
		result.Outcome = OutcomePermanent
	default:
		result.Outcome = OutcomeTransient
	}
	return result
}

func isPermanent(err error) bool {
	var permanent *backoff.PermanentError
	return errors.As(err, &permanent)
}
