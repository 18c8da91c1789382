package usecase

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/domain/pick"
	"github.com/riskibarqy/pickem-league/internal/domain/player"
	"github.com/riskibarqy/pickem-league/internal/domain/scoring"
	"github.com/riskibarqy/pickem-league/internal/domain/usage"
	"github.com/riskibarqy/pickem-league/internal/domain/week"
	"github.com/riskibarqy/pickem-league/internal/platform/id"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
)

const (
	backfillStatusSuccess = "success"
	backfillStatusPartial = "partial"
	backfillStatusFailed  = "failed"
)

type BackfillServiceConfig struct {
	MaxWorkers      int
	StatsMaxWorkers int
	SeasonMaxWeek   int
}

type EnableBackfillResult struct {
	LeagueID string `json:"league_id"`
	FromWeek int    `json:"from_week"`
	ToWeek   int    `json:"to_week"`
	Enabled  []int  `json:"enabled_weeks"`
	Skipped  []int  `json:"skipped_final_weeks"`
}

// BackfillSlotEntry names a player by id or by display name. PointsOverride replaces the
// stats lookup for the slot.
type BackfillSlotEntry struct {
	Slot           string
	PlayerID       string
	PlayerName     string
	PointsOverride *float64
}

type BackfillMemberPicks struct {
	ParticipantID string
	Slots         []BackfillSlotEntry
}

type BackfillWeekInput struct {
	LeagueID string
	Week     int
	Members  []BackfillMemberPicks
}

type BackfillEntryResult struct {
	ParticipantID   string   `json:"participant_id"`
	Status          string   `json:"status"`
	Total           float64  `json:"total"`
	SlotsWritten    int      `json:"slots_written"`
	DoublePickSlots []string `json:"double_pick_slots,omitempty"`
	Errors          []string `json:"errors,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

type BackfillWeekResult struct {
	RunID               string                `json:"run_id"`
	LeagueID            string                `json:"league_id"`
	Week                int                   `json:"week"`
	Processed           int                   `json:"processed"`
	SuccessCount        int                   `json:"success_count"`
	PartialCount        int                   `json:"partial_count"`
	FailedCount         int                   `json:"failed_count"`
	WarningCount        int                   `json:"warning_count"`
	StandingsRecomputed bool                  `json:"standings_recomputed"`
	Entries             []BackfillEntryResult `json:"entries"`
}

// ScheduleSyncer fills Game records for a week when none are stored yet.
type ScheduleSyncer interface {
	SyncWeek(ctx context.Context, season, week int) (int, error)
}

type BackfillService struct {
	leagueRepo league.Repository
	playerRepo player.Repository
	gameRepo   game.Repository
	pickRepo   pick.Repository
	scoreRepo  scoring.Repository
	weekRepo   week.Repository
	ledger     *UsageLedger
	standings  *LeagueStandingService
	provider   StatsProvider
	schedule   ScheduleSyncer
	ids        id.Generator
	locks      *KeyedMutex
	cfg        BackfillServiceConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewBackfillService(
	leagueRepo league.Repository,
	playerRepo player.Repository,
	gameRepo game.Repository,
	pickRepo pick.Repository,
	scoreRepo scoring.Repository,
	weekRepo week.Repository,
	ledger *UsageLedger,
	standings *LeagueStandingService,
	provider StatsProvider,
	schedule ScheduleSyncer,
	ids id.Generator,
	locks *KeyedMutex,
	cfg BackfillServiceConfig,
	logger *logging.Logger,
) *BackfillService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if locks == nil {
		locks = NewKeyedMutex()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}
	if cfg.StatsMaxWorkers <= 0 {
		cfg.StatsMaxWorkers = 4
	}
	if cfg.SeasonMaxWeek <= 0 {
		cfg.SeasonMaxWeek = defaultSeasonMaxWeek
	}

	return &BackfillService{
		leagueRepo: leagueRepo,
		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		pickRepo:   pickRepo,
		scoreRepo:  scoreRepo,
		weekRepo:   weekRepo,
		ledger:     ledger,
		standings:  standings,
		provider:   provider,
		schedule:   schedule,
		ids:        ids,
		locks:      locks,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// EnableBackfill opens weeks fromWeek..toWeek for operator backfill. Final weeks are
// never reopened and come back in Skipped.
func (s *BackfillService) EnableBackfill(ctx context.Context, leagueID string, fromWeek, toWeek int) (EnableBackfillResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackfillService.EnableBackfill")
	defer span.End()

	lg, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return EnableBackfillResult{}, err
	}
	if fromWeek < 1 || toWeek < fromWeek || toWeek > s.cfg.SeasonMaxWeek {
		return EnableBackfillResult{}, fmt.Errorf("%w: week range must satisfy 1 <= from <= to <= %d", ErrInvalidInput, s.cfg.SeasonMaxWeek)
	}

	result := EnableBackfillResult{
		LeagueID: lg.ID,
		FromWeek: fromWeek,
		ToWeek:   toWeek,
		Enabled:  make([]int, 0, toWeek-fromWeek+1),
	}
	now := s.now().UTC()
	for w := fromWeek; w <= toWeek; w++ {
		record, exists, err := s.weekRepo.Get(ctx, lg.ID, w)
		if err != nil {
			return EnableBackfillResult{}, fmt.Errorf("get week record: %w", err)
		}
		if exists && record.Status == week.StatusFinal {
			result.Skipped = append(result.Skipped, w)
			continue
		}
		if exists && record.AcceptsBackfill() {
			result.Enabled = append(result.Enabled, w)
			continue
		}
		if err := s.weekRepo.Upsert(ctx, week.Record{
			LeagueID:  lg.ID,
			Week:      w,
			Status:    week.StatusPendingBackfill,
			UpdatedAt: now,
		}); err != nil {
			return EnableBackfillResult{}, fmt.Errorf("create pending week record: %w", err)
		}
		result.Enabled = append(result.Enabled, w)
	}

	s.logger.InfoContext(ctx, "backfill enabled",
		"league_id", lg.ID,
		"from_week", fromWeek,
		"to_week", toWeek,
		"enabled", len(result.Enabled),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

// resolvedSlot is a validated backfill entry ready to be written.
type resolvedSlot struct {
	slot     pick.Slot
	player   player.Player
	game     game.Game
	override *float64
}

type resolvedMember struct {
	participantID string
	slots         []resolvedSlot
	errors        []string
}

// BackfillWeek writes historical picks and scores for one week. Problems with one member
// are reported on that member's entry and never stop the batch.
func (s *BackfillService) BackfillWeek(ctx context.Context, input BackfillWeekInput) (BackfillWeekResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackfillService.BackfillWeek")
	defer span.End()

	lg, err := s.getLeague(ctx, input.LeagueID)
	if err != nil {
		return BackfillWeekResult{}, err
	}
	if err := validateWeek(input.Week, s.cfg.SeasonMaxWeek); err != nil {
		return BackfillWeekResult{}, err
	}
	if len(input.Members) == 0 {
		return BackfillWeekResult{}, fmt.Errorf("%w: at least one member is required", ErrInvalidInput)
	}
	seenMembers := make(map[string]struct{}, len(input.Members))
	for i, member := range input.Members {
		participantID := strings.TrimSpace(member.ParticipantID)
		if participantID == "" {
			return BackfillWeekResult{}, fmt.Errorf("%w: members[%d].participant_id is required", ErrInvalidInput, i)
		}
		if _, dup := seenMembers[participantID]; dup {
			return BackfillWeekResult{}, fmt.Errorf("%w: participant %s appears more than once", ErrInvalidInput, participantID)
		}
		seenMembers[participantID] = struct{}{}
	}

	record, exists, err := s.weekRepo.Get(ctx, lg.ID, input.Week)
	if err != nil {
		return BackfillWeekResult{}, fmt.Errorf("get week record: %w", err)
	}
	if !exists || !record.AcceptsBackfill() {
		return BackfillWeekResult{}, fmt.Errorf("%w: league=%s week=%d", ErrBackfillNotEnabled, lg.ID, input.Week)
	}

	games, err := s.weekGames(ctx, lg.Season, input.Week)
	if err != nil {
		return BackfillWeekResult{}, err
	}
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return BackfillWeekResult{}, fmt.Errorf("list players: %w", err)
	}
	resolver := newPlayerResolver(players)

	members := make([]resolvedMember, 0, len(input.Members))
	statGames := make([]string, 0)
	for _, member := range input.Members {
		resolved := resolveBackfillMember(member, resolver, games)
		for _, item := range resolved.slots {
			if item.override == nil {
				statGames = append(statGames, item.game.ID)
			}
		}
		members = append(members, resolved)
	}
	stats := fetchStatsByGame(ctx, s.provider, statGames, s.cfg.StatsMaxWorkers)

	runID, err := s.ids.NewID()
	if err != nil {
		return BackfillWeekResult{}, fmt.Errorf("generate backfill run id: %w", err)
	}
	result := BackfillWeekResult{
		RunID:    runID,
		LeagueID: lg.ID,
		Week:     input.Week,
		Entries:  make([]BackfillEntryResult, 0, len(members)),
	}

	entries := make(chan BackfillEntryResult, len(members))
	var successCount atomic.Int32
	var partialCount atomic.Int32
	var failedCount atomic.Int32

	pool, err := ants.NewPool(s.cfg.MaxWorkers)
	if err != nil {
		return BackfillWeekResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, member := range members {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			entry := s.backfillMember(ctx, lg, input.Week, member, stats)
			switch entry.Status {
			case backfillStatusSuccess:
				successCount.Add(1)
			case backfillStatusPartial:
				partialCount.Add(1)
			default:
				failedCount.Add(1)
			}
			entries <- entry
		}); err != nil {
			workers.Done()
			workers.Wait()
			return BackfillWeekResult{}, fmt.Errorf("submit backfill member to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(entries)

	for entry := range entries {
		result.WarningCount += len(entry.Warnings)
		result.Entries = append(result.Entries, entry)
	}
	sort.SliceStable(result.Entries, func(i, j int) bool {
		return result.Entries[i].ParticipantID < result.Entries[j].ParticipantID
	})
	result.Processed = len(result.Entries)
	result.SuccessCount = int(successCount.Load())
	result.PartialCount = int(partialCount.Load())
	result.FailedCount = int(failedCount.Load())

	if err := s.weekRepo.Upsert(ctx, week.Record{
		LeagueID:  lg.ID,
		Week:      input.Week,
		Status:    week.StatusBackfilled,
		UpdatedAt: s.now().UTC(),
	}); err != nil {
		return BackfillWeekResult{}, fmt.Errorf("mark week backfilled: %w", err)
	}
	if s.standings != nil {
		if _, err := s.standings.RecomputeStandings(ctx, lg.ID); err != nil {
			return BackfillWeekResult{}, fmt.Errorf("recompute standings: %w", err)
		}
		result.StandingsRecomputed = true
	}

	s.logger.InfoContext(ctx, "backfill week finished",
		"run_id", runID,
		"league_id", lg.ID,
		"week", input.Week,
		"processed", result.Processed,
		"success", result.SuccessCount,
		"partial", result.PartialCount,
		"failed", result.FailedCount,
		"warnings", result.WarningCount,
	)
	return result, nil
}

func (s *BackfillService) backfillMember(
	ctx context.Context,
	lg league.League,
	weekNo int,
	member resolvedMember,
	stats map[string]gameStatsFetch,
) BackfillEntryResult {
	entry := BackfillEntryResult{
		ParticipantID: member.participantID,
		Errors:        append([]string(nil), member.errors...),
	}

	unlock := s.locks.Lock(participantLockKey(lg.ID, weekNo, member.participantID))
	defer unlock()

	fail := func(err error) BackfillEntryResult {
		entry.Errors = append(entry.Errors, err.Error())
		entry.Status = backfillStatusFailed
		s.logger.WarnContext(ctx, "backfill member failed",
			"league_id", lg.ID,
			"week", weekNo,
			"participant_id", member.participantID,
			"error", err,
		)
		return entry
	}

	current, exists, err := s.pickRepo.Get(ctx, lg.ID, weekNo, member.participantID)
	if err != nil {
		return fail(fmt.Errorf("get pick: %w", err))
	}
	if !exists {
		current = pick.New(lg.ID, weekNo, member.participantID)
	}
	prior, hasPrior, err := s.scoreRepo.Get(ctx, lg.ID, weekNo, member.participantID)
	if err != nil {
		return fail(fmt.Errorf("get score: %w", err))
	}

	now := s.now().UTC()
	next := current.Clone()
	submitted := make(map[pick.Slot]resolvedSlot, len(member.slots))
	for _, item := range member.slots {
		if stored, ok := current.Slots[item.slot]; ok && stored.Locked && stored.PlayerID != item.player.ID {
			entry.Errors = append(entry.Errors, fmt.Sprintf("%s: slot already locked with player %s", item.slot, stored.PlayerID))
			continue
		}
		lockedAt := now
		next.Slots[item.slot] = pick.SlotPick{
			PlayerID: item.player.ID,
			GameID:   item.game.ID,
			Locked:   true,
			LockedAt: &lockedAt,
		}
		submitted[item.slot] = item
	}
	written := len(submitted)
	if written == 0 {
		entry.Status = backfillStatusFailed
		return entry
	}
	for slot, sp := range next.Slots {
		if sp.IsSet() && !sp.Locked {
			lockedAt := now
			sp.Locked = true
			sp.LockedAt = &lockedAt
			next.Slots[slot] = sp
		}
	}

	// The pick goes first. A later usage or score failure leaves a locked pick that a rerun
	// of the same member completes; usage claims are create-if-absent.
	next.UpdatedAt = now
	if err := s.pickRepo.Upsert(ctx, next); err != nil {
		return fail(fmt.Errorf("upsert pick: %w", err))
	}

	// Slots kept from the stored pick reuse their prior points unless they were unscored.
	refetch := make([]string, 0)
	for _, slot := range pick.AllSlots {
		sp, ok := next.Slot(slot)
		if _, isSubmitted := submitted[slot]; !ok || isSubmitted {
			continue
		}
		if !hasPrior || !priorScored(prior, slot) {
			if _, fetched := stats[sp.GameID]; !fetched {
				refetch = append(refetch, sp.GameID)
			}
		}
	}
	carriedStats := fetchStatsByGame(ctx, s.provider, uniqueStrings(refetch), 1)

	score := scoring.NewScore(lg.ID, weekNo, member.participantID, scoring.SourceBackfill)
	for _, slot := range pick.AllSlots {
		sp, ok := next.Slot(slot)
		if !ok {
			continue
		}
		item, isSubmitted := submitted[slot]

		record, _, err := s.ledger.Claim(ctx, usage.Key{
			LeagueID:      lg.ID,
			Season:        lg.Season,
			ParticipantID: member.participantID,
			PlayerID:      sp.PlayerID,
		}, weekNo)
		if err != nil {
			return fail(fmt.Errorf("claim usage for %s: %w", sp.PlayerID, err))
		}
		if record.FirstUsedWeek != weekNo {
			entry.Warnings = append(entry.Warnings, fmt.Sprintf("%s: player %s already used in week %d", slot, playerLabel(item, sp), record.FirstUsedWeek))
			score.FlagDoublePick(slot)
			continue
		}

		if isSubmitted && item.override != nil {
			score.SetSlot(slot, scoring.Round1(*item.override))
			continue
		}
		if !isSubmitted && hasPrior && priorScored(prior, slot) {
			score.SetSlot(slot, prior.SlotPoints[slot])
			continue
		}

		fetched, found := stats[sp.GameID]
		if !found {
			fetched = carriedStats[sp.GameID]
		}
		if fetched.err != nil {
			entry.Warnings = append(entry.Warnings, fmt.Sprintf("%s: stats unavailable for game %s", slot, sp.GameID))
			score.SetSlot(slot, 0)
			score.MarkUnscored(slot)
			continue
		}
		line, hasLine := fetched.stats.LineFor(sp.PlayerID)
		if !hasLine {
			entry.Warnings = append(entry.Warnings, fmt.Sprintf("%s: no stats found for player %s", slot, playerLabel(item, sp)))
		}
		score.SetSlot(slot, scoring.Points(line))
	}

	score.ScoredAt = now
	if err := s.scoreRepo.Upsert(ctx, score); err != nil {
		return fail(fmt.Errorf("upsert score: %w", err))
	}

	entry.SlotsWritten = written
	entry.Total = score.Total
	entry.DoublePickSlots = slotStrings(score.DoublePickSlots)
	if len(entry.Errors) > 0 {
		entry.Status = backfillStatusPartial
	} else {
		entry.Status = backfillStatusSuccess
	}
	return entry
}

func priorScored(prior scoring.Score, slot pick.Slot) bool {
	if _, ok := prior.SlotPoints[slot]; !ok {
		return false
	}
	return !slices.Contains(prior.UnscoredSlots, slot)
}

func playerLabel(item resolvedSlot, sp pick.SlotPick) string {
	if item.player.Name != "" {
		return item.player.Name
	}
	return sp.PlayerID
}

// weekGames reads stored games and falls back to a schedule sync when the week is empty.
func (s *BackfillService) weekGames(ctx context.Context, season, weekNo int) ([]game.Game, error) {
	games, err := s.gameRepo.ListByWeek(ctx, season, weekNo)
	if err != nil {
		return nil, fmt.Errorf("list games by week: %w", err)
	}
	if len(games) > 0 || s.schedule == nil {
		return games, nil
	}

	if _, err := s.schedule.SyncWeek(ctx, season, weekNo); err != nil {
		return nil, fmt.Errorf("sync schedule for backfill: %w", err)
	}
	games, err = s.gameRepo.ListByWeek(ctx, season, weekNo)
	if err != nil {
		return nil, fmt.Errorf("list games by week: %w", err)
	}
	return games, nil
}

func (s *BackfillService) getLeague(ctx context.Context, leagueID string) (league.League, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	lg, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	return lg, nil
}

func resolveBackfillMember(member BackfillMemberPicks, resolver *playerResolver, games []game.Game) resolvedMember {
	out := resolvedMember{participantID: strings.TrimSpace(member.ParticipantID)}
	seen := make(map[pick.Slot]struct{}, len(member.Slots))
	for _, entry := range member.Slots {
		slot, ok := pick.ParseSlot(entry.Slot)
		if !ok {
			out.errors = append(out.errors, fmt.Sprintf("invalid slot %q", entry.Slot))
			continue
		}
		if _, dup := seen[slot]; dup {
			out.errors = append(out.errors, fmt.Sprintf("%s: duplicate slot", slot))
			continue
		}
		seen[slot] = struct{}{}

		pl, err := resolver.Resolve(entry.PlayerID, entry.PlayerName)
		if err != nil {
			out.errors = append(out.errors, fmt.Sprintf("%s: %v", slot, err))
			continue
		}
		if !pick.CanFill(slot, pl.Position) {
			out.errors = append(out.errors, fmt.Sprintf("%s: player %s is %s and cannot fill the slot", slot, pl.Name, pl.Position))
			continue
		}

		g, found := gameForTeam(games, pl.TeamID)
		if !found {
			out.errors = append(out.errors, fmt.Sprintf("%s: no matching game for team %s", slot, pl.TeamID))
			continue
		}
		out.slots = append(out.slots, resolvedSlot{
			slot:     slot,
			player:   pl,
			game:     g,
			override: entry.PointsOverride,
		})
	}
	return out
}

func gameForTeam(games []game.Game, teamID string) (game.Game, bool) {
	for _, g := range games {
		if g.HasTeam(teamID) {
			return g, true
		}
	}
	return game.Game{}, false
}
