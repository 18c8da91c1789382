package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/pick"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
)

type LockSweepConfig struct {
	LockLead time.Duration
	// Lookback bounds how far past kickoff a game is still swept.
	Lookback time.Duration
}

// LockedWeek groups the slots a sweep locked for one league week.
type LockedWeek struct {
	LeagueID    string    `json:"league_id"`
	Week        int       `json:"week"`
	GameIDs     []string  `json:"game_ids"`
	Slots       int       `json:"slots"`
	LastKickoff time.Time `json:"last_kickoff"`
}

type LockSweepResult struct {
	SweptAt      time.Time    `json:"swept_at"`
	GamesInRange int          `json:"games_in_range"`
	LockedGames  int          `json:"locked_games"`
	LockedSlots  int          `json:"locked_slots"`
	Weeks        []LockedWeek `json:"weeks"`
}

// LockSweepService flips open slots to locked once their game passes the lock threshold.
// Locking is one way and re-running is a no-op for slots already locked.
type LockSweepService struct {
	gameRepo game.Repository
	pickRepo pick.Repository
	cfg      LockSweepConfig
	logger   *logging.Logger
	now      func() time.Time
}

func NewLockSweepService(gameRepo game.Repository, pickRepo pick.Repository, cfg LockSweepConfig, logger *logging.Logger) *LockSweepService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.LockLead <= 0 {
		cfg.LockLead = defaultLockLead
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 7 * 24 * time.Hour
	}
	return &LockSweepService{
		gameRepo: gameRepo,
		pickRepo: pickRepo,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *LockSweepService) SweepLocks(ctx context.Context) (LockSweepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LockSweepService.SweepLocks")
	defer span.End()

	now := s.now().UTC()
	result := LockSweepResult{SweptAt: now}

	games, err := s.gameRepo.ListKickoffBetween(ctx, now.Add(-s.cfg.Lookback), now.Add(s.cfg.LockLead))
	if err != nil {
		return LockSweepResult{}, fmt.Errorf("list games in lock window: %w", err)
	}
	result.GamesInRange = len(games)

	kickoffs := make(map[string]time.Time, len(games))
	lockIDs := make([]string, 0, len(games))
	for _, g := range games {
		// Inclusive at the threshold; submissions at that instant are already racing the lock.
		if g.LockAt(s.cfg.LockLead).After(now) {
			continue
		}
		kickoffs[g.ID] = g.KickoffAt
		lockIDs = append(lockIDs, g.ID)
	}
	result.LockedGames = len(lockIDs)
	if len(lockIDs) == 0 {
		return result, nil
	}

	locked, err := s.pickRepo.LockSlotsForGames(ctx, lockIDs, now)
	if err != nil {
		return LockSweepResult{}, fmt.Errorf("lock slots for games: %w", err)
	}
	result.LockedSlots = len(locked)
	result.Weeks = groupLockedWeeks(locked, kickoffs)

	if len(locked) > 0 {
		s.logger.InfoContext(ctx, "lock sweep locked slots",
			"games", len(lockIDs),
			"slots", len(locked),
			"weeks", len(result.Weeks),
		)
	}
	return result, nil
}

func groupLockedWeeks(slots []pick.LockedSlot, kickoffs map[string]time.Time) []LockedWeek {
	byWeek := make(map[string]*LockedWeek)
	seenGames := make(map[string]map[string]struct{})
	for _, item := range slots {
		key := scoreWeekLockKey(item.LeagueID, item.Week)
		row, ok := byWeek[key]
		if !ok {
			row = &LockedWeek{LeagueID: item.LeagueID, Week: item.Week}
			byWeek[key] = row
			seenGames[key] = make(map[string]struct{})
		}
		row.Slots++
		if _, seen := seenGames[key][item.GameID]; !seen {
			seenGames[key][item.GameID] = struct{}{}
			row.GameIDs = append(row.GameIDs, item.GameID)
		}
		if kickoff := kickoffs[item.GameID]; kickoff.After(row.LastKickoff) {
			row.LastKickoff = kickoff
		}
	}

	out := make([]LockedWeek, 0, len(byWeek))
	for _, row := range byWeek {
		sort.Strings(row.GameIDs)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LeagueID != out[j].LeagueID {
			return out[i].LeagueID < out[j].LeagueID
		}
		return out[i].Week < out[j].Week
	})
	return out
}
