package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/domain/pick"
	"github.com/riskibarqy/pickem-league/internal/domain/scoring"
	"github.com/riskibarqy/pickem-league/internal/domain/usage"
	"github.com/riskibarqy/pickem-league/internal/domain/week"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
)

const (
	EntryStatusScored    = "scored"
	EntryStatusUnchanged = "unchanged"
	EntryStatusErrored   = "errored"
)

type ScoringServiceConfig struct {
	MaxWorkers    int
	SeasonMaxWeek int
}

type ScoreEntryResult struct {
	ParticipantID   string   `json:"participant_id"`
	Status          string   `json:"status"`
	Total           float64  `json:"total"`
	DoublePickSlots []string `json:"double_pick_slots,omitempty"`
	UnscoredSlots   []string `json:"unscored_slots,omitempty"`
	Error           string   `json:"error,omitempty"`
}

type ScoreWeekResult struct {
	LeagueID            string             `json:"league_id"`
	Week                int                `json:"week"`
	Participants        int                `json:"participants"`
	Written             int                `json:"written"`
	Unchanged           int                `json:"unchanged"`
	Errored             int                `json:"errored"`
	DoublePicks         int                `json:"double_picks"`
	UnscoredSlots       int                `json:"unscored_slots"`
	GamesFetched        int                `json:"games_fetched"`
	Finalized           bool               `json:"finalized"`
	StandingsRecomputed bool               `json:"standings_recomputed"`
	Entries             []ScoreEntryResult `json:"entries"`
}

type ScoringService struct {
	leagueRepo league.Repository
	gameRepo   game.Repository
	pickRepo   pick.Repository
	scoreRepo  scoring.Repository
	weekRepo   week.Repository
	ledger     *UsageLedger
	standings  *LeagueStandingService
	provider   StatsProvider
	locks      *KeyedMutex
	cfg        ScoringServiceConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewScoringService(
	leagueRepo league.Repository,
	gameRepo game.Repository,
	pickRepo pick.Repository,
	scoreRepo scoring.Repository,
	weekRepo week.Repository,
	ledger *UsageLedger,
	standings *LeagueStandingService,
	provider StatsProvider,
	locks *KeyedMutex,
	cfg ScoringServiceConfig,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	if locks == nil {
		locks = NewKeyedMutex()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}
	if cfg.SeasonMaxWeek <= 0 {
		cfg.SeasonMaxWeek = defaultSeasonMaxWeek
	}

	return &ScoringService{
		leagueRepo: leagueRepo,
		gameRepo:   gameRepo,
		pickRepo:   pickRepo,
		scoreRepo:  scoreRepo,
		weekRepo:   weekRepo,
		ledger:     ledger,
		standings:  standings,
		provider:   provider,
		locks:      locks,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *ScoringService) ListScoresByWeek(ctx context.Context, leagueID string, weekNo int) ([]scoring.Score, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ListScoresByWeek")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if err := validateWeek(weekNo, s.cfg.SeasonMaxWeek); err != nil {
		return nil, err
	}

	items, err := s.scoreRepo.ListByWeek(ctx, leagueID, weekNo)
	if err != nil {
		return nil, fmt.Errorf("list scores by week: %w", err)
	}
	return items, nil
}

// ScoreWeek scores every pick of a league week. Only one run per (league, week) may be in
// flight; a second caller gets ErrConflict. Re-running with unchanged picks and stats
// rewrites nothing. A participant whose ledger or score write fails is reported as errored
// and the rest of the week is still scored.
func (s *ScoringService) ScoreWeek(ctx context.Context, leagueID string, weekNo int) (ScoreWeekResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ScoreWeek")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return ScoreWeekResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if err := validateWeek(weekNo, s.cfg.SeasonMaxWeek); err != nil {
		return ScoreWeekResult{}, err
	}

	lg, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return ScoreWeekResult{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return ScoreWeekResult{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	unlock, ok := s.locks.TryLock(scoreWeekLockKey(leagueID, weekNo))
	if !ok {
		return ScoreWeekResult{}, fmt.Errorf("%w: scoring already running for league=%s week=%d", ErrConflict, leagueID, weekNo)
	}
	defer unlock()

	record, hasRecord, err := s.weekRepo.Get(ctx, leagueID, weekNo)
	if err != nil {
		return ScoreWeekResult{}, fmt.Errorf("get week record: %w", err)
	}
	if hasRecord && record.Status == week.StatusBackfilled {
		return ScoreWeekResult{}, fmt.Errorf("%w: league=%s week=%d", ErrWeekBackfilled, leagueID, weekNo)
	}

	picks, err := s.pickRepo.ListByWeek(ctx, leagueID, weekNo)
	if err != nil {
		return ScoreWeekResult{}, fmt.Errorf("list picks by week: %w", err)
	}

	gameIDs := make([]string, 0, len(picks)*len(pick.AllSlots))
	for _, item := range picks {
		for _, slot := range pick.AllSlots {
			if sp, ok := item.Slot(slot); ok {
				gameIDs = append(gameIDs, sp.GameID)
			}
		}
	}
	gameIDs = uniqueStrings(gameIDs)
	stats := fetchStatsByGame(ctx, s.provider, gameIDs, s.cfg.MaxWorkers)

	result := ScoreWeekResult{
		LeagueID:     leagueID,
		Week:         weekNo,
		Participants: len(picks),
		GamesFetched: len(stats),
		Entries:      make([]ScoreEntryResult, 0, len(picks)),
	}
	for _, item := range picks {
		entry, err := s.scoreParticipant(ctx, lg, item, stats)
		if err != nil {
			s.logger.WarnContext(ctx, "score participant failed",
				"league_id", leagueID,
				"week", weekNo,
				"participant_id", item.ParticipantID,
				"error", err,
			)
			entry = ScoreEntryResult{
				ParticipantID: item.ParticipantID,
				Status:        EntryStatusErrored,
				Error:         err.Error(),
			}
		}
		switch entry.Status {
		case EntryStatusScored:
			result.Written++
		case EntryStatusUnchanged:
			result.Unchanged++
		case EntryStatusErrored:
			result.Errored++
		}
		result.DoublePicks += len(entry.DoublePickSlots)
		result.UnscoredSlots += len(entry.UnscoredSlots)
		result.Entries = append(result.Entries, entry)
	}

	complete := result.UnscoredSlots == 0 && result.Errored == 0
	finalized, err := s.syncGamesAndWeek(ctx, lg.ID, weekNo, gameIDs, stats, complete, record, hasRecord)
	if err != nil {
		return ScoreWeekResult{}, err
	}
	result.Finalized = finalized

	if result.Written > 0 && s.standings != nil {
		if _, err := s.standings.RecomputeStandings(ctx, lg.ID); err != nil {
			return ScoreWeekResult{}, fmt.Errorf("recompute standings: %w", err)
		}
		result.StandingsRecomputed = true
	}

	s.logger.InfoContext(ctx, "week scored",
		"league_id", leagueID,
		"week", weekNo,
		"participants", result.Participants,
		"written", result.Written,
		"unchanged", result.Unchanged,
		"errored", result.Errored,
		"double_picks", result.DoublePicks,
		"unscored_slots", result.UnscoredSlots,
		"finalized", result.Finalized,
	)
	return result, nil
}

func (s *ScoringService) scoreParticipant(ctx context.Context, lg league.League, item pick.Pick, stats map[string]gameStatsFetch) (ScoreEntryResult, error) {
	unlock := s.locks.Lock(participantLockKey(item.LeagueID, item.Week, item.ParticipantID))
	defer unlock()

	entry := ScoreEntryResult{ParticipantID: item.ParticipantID}

	prior, hasPrior, err := s.scoreRepo.Get(ctx, item.LeagueID, item.Week, item.ParticipantID)
	if err != nil {
		return ScoreEntryResult{}, fmt.Errorf("get score: %w", err)
	}

	// A pick with no set slots still gets a zero Score.
	score := scoring.NewScore(item.LeagueID, item.Week, item.ParticipantID, scoring.SourceLive)
	for _, slot := range pick.AllSlots {
		sp, ok := item.Slot(slot)
		if !ok {
			continue
		}

		record, _, err := s.ledger.Claim(ctx, usage.Key{
			LeagueID:      lg.ID,
			Season:        lg.Season,
			ParticipantID: item.ParticipantID,
			PlayerID:      sp.PlayerID,
		}, item.Week)
		if err != nil {
			return ScoreEntryResult{}, fmt.Errorf("claim usage for %s: %w", sp.PlayerID, err)
		}
		if record.FirstUsedWeek != item.Week {
			score.FlagDoublePick(slot)
			continue
		}

		fetched := stats[sp.GameID]
		if fetched.err != nil {
			var keep float64
			if hasPrior {
				keep = prior.SlotPoints[slot]
			}
			score.SetSlot(slot, keep)
			score.MarkUnscored(slot)
			s.logger.WarnContext(ctx, "stats unavailable, slot left unscored",
				"league_id", item.LeagueID,
				"week", item.Week,
				"participant_id", item.ParticipantID,
				"slot", slot,
				"game_id", sp.GameID,
				"error", fetched.err,
			)
			continue
		}

		line, _ := fetched.stats.LineFor(sp.PlayerID)
		score.SetSlot(slot, scoring.Points(line))
	}

	entry.Total = score.Total
	entry.DoublePickSlots = slotStrings(score.DoublePickSlots)
	entry.UnscoredSlots = slotStrings(score.UnscoredSlots)

	if hasPrior && prior.SameResult(score) {
		entry.Status = EntryStatusUnchanged
		return entry, nil
	}

	score.ScoredAt = s.now().UTC()
	if err := s.scoreRepo.Upsert(ctx, score); err != nil {
		return ScoreEntryResult{}, fmt.Errorf("upsert score: %w", err)
	}
	entry.Status = EntryStatusScored
	return entry, nil
}

// syncGamesAndWeek applies provider status corrections and closes the week once every
// picked game is final and nothing is left unscored.
func (s *ScoringService) syncGamesAndWeek(
	ctx context.Context,
	leagueID string,
	weekNo int,
	gameIDs []string,
	stats map[string]gameStatsFetch,
	fullyScored bool,
	record week.Record,
	hasRecord bool,
) (bool, error) {
	if len(gameIDs) == 0 {
		return false, nil
	}
	games, err := s.gameRepo.ListByIDs(ctx, gameIDs)
	if err != nil {
		return false, fmt.Errorf("list games: %w", err)
	}

	allFinal := len(games) == len(gameIDs)
	now := s.now().UTC()
	for _, g := range games {
		fetched, ok := stats[g.ID]
		if ok && fetched.err == nil && fetched.stats.Status != "" && fetched.stats.Status != g.Status {
			g.Status = fetched.stats.Status
			g.UpdatedAt = now
			if err := s.gameRepo.Upsert(ctx, g); err != nil {
				return false, fmt.Errorf("update game status: %w", err)
			}
		}
		if !g.IsFinal() {
			allFinal = false
		}
	}

	if !allFinal || !fullyScored {
		return false, nil
	}
	if hasRecord && record.Status == week.StatusFinal {
		return true, nil
	}
	if err := s.weekRepo.Upsert(ctx, week.Record{
		LeagueID:  leagueID,
		Week:      weekNo,
		Status:    week.StatusFinal,
		UpdatedAt: now,
	}); err != nil {
		return false, fmt.Errorf("mark week final: %w", err)
	}
	return true, nil
}

func slotStrings(items []pick.Slot) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, string(item))
	}
	return out
}
