package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/usage"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
)

// UsageLedger owns the one-and-done rule. Records are created once and never updated.
type UsageLedger struct {
	repo   usage.Repository
	logger *logging.Logger
	now    func() time.Time
}

func NewUsageLedger(repo usage.Repository, logger *logging.Logger) *UsageLedger {
	if logger == nil {
		logger = logging.Default()
	}
	return &UsageLedger{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// HasUsed returns the first week the player was used, if any.
func (l *UsageLedger) HasUsed(ctx context.Context, key usage.Key) (int, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UsageLedger.HasUsed")
	defer span.End()

	if err := key.Validate(); err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	record, exists, err := l.repo.Get(ctx, key)
	if err != nil {
		return 0, false, fmt.Errorf("get usage record: %w", err)
	}
	if !exists {
		return 0, false, nil
	}
	return record.FirstUsedWeek, true, nil
}

// RecordFirstUse creates the usage record for key. When one already exists it is left
// untouched, logged, and returned together with ErrUsageAlreadyRecorded.
func (l *UsageLedger) RecordFirstUse(ctx context.Context, key usage.Key, week int) (usage.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UsageLedger.RecordFirstUse")
	defer span.End()

	record, created, err := l.claim(ctx, key, week)
	if err != nil {
		return usage.Record{}, err
	}
	if !created {
		l.logger.WarnContext(ctx, "usage record already exists, keeping first write",
			"league_id", key.LeagueID,
			"season", key.Season,
			"participant_id", key.ParticipantID,
			"player_id", key.PlayerID,
			"first_used_week", record.FirstUsedWeek,
			"attempted_week", week,
		)
		return record, ErrUsageAlreadyRecorded
	}
	return record, nil
}

// Claim is the create-if-absent primitive used by scoring and backfill. The returned
// record is whichever write won.
func (l *UsageLedger) Claim(ctx context.Context, key usage.Key, week int) (usage.Record, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UsageLedger.Claim")
	defer span.End()

	return l.claim(ctx, key, week)
}

func (l *UsageLedger) ListByParticipant(ctx context.Context, leagueID string, season int, participantID string) ([]usage.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UsageLedger.ListByParticipant")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	participantID = strings.TrimSpace(participantID)
	if leagueID == "" || participantID == "" || season <= 0 {
		return nil, fmt.Errorf("%w: league id, season and participant id are required", ErrInvalidInput)
	}
	items, err := l.repo.ListByParticipant(ctx, leagueID, season, participantID)
	if err != nil {
		return nil, fmt.Errorf("list usage records: %w", err)
	}
	return items, nil
}

func (l *UsageLedger) claim(ctx context.Context, key usage.Key, week int) (usage.Record, bool, error) {
	if err := key.Validate(); err != nil {
		return usage.Record{}, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if week <= 0 {
		return usage.Record{}, false, fmt.Errorf("%w: week must be > 0", ErrInvalidInput)
	}

	record, created, err := l.repo.CreateIfAbsent(ctx, usage.Record{
		Key:           key,
		FirstUsedWeek: week,
		RecordedAt:    l.now().UTC(),
	})
	if err != nil {
		return usage.Record{}, false, fmt.Errorf("create usage record: %w", err)
	}
	return record, created, nil
}

func isUsageAlreadyRecorded(err error) bool {
	return errors.Is(err, ErrUsageAlreadyRecorded)
}
