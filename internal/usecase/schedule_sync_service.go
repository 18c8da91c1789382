package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
)

// ScheduleSyncService copies the provider's week schedule into Game records. Existing
// games only take kickoff and status corrections.
type ScheduleSyncService struct {
	gameRepo game.Repository
	provider StatsProvider
	logger   *logging.Logger
	now      func() time.Time
}

func NewScheduleSyncService(gameRepo game.Repository, provider StatsProvider, logger *logging.Logger) *ScheduleSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScheduleSyncService{
		gameRepo: gameRepo,
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// SyncWeek returns the number of games written.
func (s *ScheduleSyncService) SyncWeek(ctx context.Context, season, weekNo int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleSyncService.SyncWeek")
	defer span.End()

	if season <= 0 || weekNo <= 0 {
		return 0, fmt.Errorf("%w: season and week must be > 0", ErrInvalidInput)
	}
	if s.provider == nil {
		return 0, fmt.Errorf("%w: stats provider is not configured", ErrDependencyUnavailable)
	}

	scheduled, err := s.provider.FetchWeekSchedule(ctx, season, weekNo)
	if err != nil {
		return 0, fmt.Errorf("fetch week schedule season=%d week=%d: %w", season, weekNo, err)
	}

	now := s.now().UTC()
	written := 0
	for _, item := range scheduled {
		next := game.Game{
			ID:         strings.TrimSpace(item.GameID),
			Season:     season,
			Week:       weekNo,
			HomeTeamID: strings.TrimSpace(item.HomeTeamID),
			AwayTeamID: strings.TrimSpace(item.AwayTeamID),
			KickoffAt:  item.KickoffAt.UTC(),
			Status:     item.Status,
			UpdatedAt:  now,
		}
		if next.Status == "" {
			next.Status = game.StatusScheduled
		}
		if err := next.Validate(); err != nil {
			s.logger.WarnContext(ctx, "skip invalid scheduled game", "game_id", item.GameID, "error", err)
			continue
		}

		current, exists, err := s.gameRepo.GetByID(ctx, next.ID)
		if err != nil {
			return written, fmt.Errorf("get game: %w", err)
		}
		if exists {
			if current.KickoffAt.Equal(next.KickoffAt) && current.Status == next.Status {
				continue
			}
			// Teams never change after creation.
			next.HomeTeamID = current.HomeTeamID
			next.AwayTeamID = current.AwayTeamID
		}
		if err := s.gameRepo.Upsert(ctx, next); err != nil {
			return written, fmt.Errorf("upsert game: %w", err)
		}
		written++
	}

	s.logger.InfoContext(ctx, "week schedule synced",
		"season", season,
		"week", weekNo,
		"fetched", len(scheduled),
		"written", written,
	)
	return written, nil
}
