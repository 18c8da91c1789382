package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrConflict              = errors.New("conflict")

	// ErrTransientProvider marks a stats fetch that failed after all retries.
	ErrTransientProvider = errors.New("stats provider transient failure")
	// ErrUsageAlreadyRecorded is returned when a usage record already exists for the key.
	ErrUsageAlreadyRecorded = errors.New("usage already recorded")
	ErrBackfillNotEnabled   = errors.New("backfill not enabled for week")
	// ErrWeekBackfilled is a conflict for callers of ScoreWeek; scheduled score jobs treat it as done.
	ErrWeekBackfilled = fmt.Errorf("%w: week was backfilled", ErrConflict)
)
