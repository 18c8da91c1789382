package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/game"
	"github.com/riskibarqy/pickem-league/internal/domain/league"
	"github.com/riskibarqy/pickem-league/internal/domain/pick"
	"github.com/riskibarqy/pickem-league/internal/domain/player"
	"github.com/riskibarqy/pickem-league/internal/domain/usage"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
)

// Per-slot outcomes reported by SubmitPick. Rule violations are results, not errors.
const (
	SlotAccepted  = "accepted"
	SlotUnchanged = "unchanged"

	ReasonInvalidSlot        = "invalid_slot"
	ReasonDuplicateSlot      = "duplicate_slot"
	ReasonSlotLocked         = "slot_locked"
	ReasonPlayerNotFound     = "player_not_found"
	ReasonIneligiblePosition = "ineligible_position"
	ReasonPlayerAlreadyUsed  = "player_already_used"
	ReasonGameNotFound       = "game_not_found"
	ReasonGameNotInWeek      = "game_not_in_week"
	ReasonPlayerNotInGame    = "player_not_in_game"
	ReasonGameLocked         = "game_locked"
)

const defaultLockLead = time.Hour

type SlotSelection struct {
	Slot     string
	PlayerID string
	GameID   string
}

type SubmitPickInput struct {
	LeagueID      string
	Week          int
	ParticipantID string
	Picks         []SlotSelection
}

type SlotOutcome struct {
	Slot     string `json:"slot"`
	PlayerID string `json:"player_id"`
	GameID   string `json:"game_id,omitempty"`
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason"`
}

type SubmitPickResult struct {
	Pick     pick.Pick
	Slots    []SlotOutcome
	Accepted int
	Skipped  int
}

type PickServiceConfig struct {
	LockLead      time.Duration
	SeasonMaxWeek int
}

type PickService struct {
	leagueRepo league.Repository
	playerRepo player.Repository
	gameRepo   game.Repository
	pickRepo   pick.Repository
	ledger     *UsageLedger
	locks      *KeyedMutex
	cfg        PickServiceConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewPickService(
	leagueRepo league.Repository,
	playerRepo player.Repository,
	gameRepo game.Repository,
	pickRepo pick.Repository,
	ledger *UsageLedger,
	locks *KeyedMutex,
	cfg PickServiceConfig,
	logger *logging.Logger,
) *PickService {
	if logger == nil {
		logger = logging.Default()
	}
	if locks == nil {
		locks = NewKeyedMutex()
	}
	if cfg.LockLead <= 0 {
		cfg.LockLead = defaultLockLead
	}
	if cfg.SeasonMaxWeek <= 0 {
		cfg.SeasonMaxWeek = defaultSeasonMaxWeek
	}

	return &PickService{
		leagueRepo: leagueRepo,
		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		pickRepo:   pickRepo,
		ledger:     ledger,
		locks:      locks,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *PickService) GetPick(ctx context.Context, leagueID string, week int, participantID string) (pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.GetPick")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	participantID = strings.TrimSpace(participantID)
	if leagueID == "" || participantID == "" {
		return pick.Pick{}, fmt.Errorf("%w: league id and participant id are required", ErrInvalidInput)
	}
	if err := validateWeek(week, s.cfg.SeasonMaxWeek); err != nil {
		return pick.Pick{}, err
	}

	item, exists, err := s.pickRepo.Get(ctx, leagueID, week, participantID)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("get pick: %w", err)
	}
	if !exists {
		return pick.Pick{}, fmt.Errorf("%w: pick league=%s week=%d participant=%s", ErrNotFound, leagueID, week, participantID)
	}
	return item, nil
}

// ListUsage returns the participant's used players for the league's season, ordered by first week.
func (s *PickService) ListUsage(ctx context.Context, leagueID, participantID string) ([]usage.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.ListUsage")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	lg, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	items, err := s.ledger.ListByParticipant(ctx, lg.ID, lg.Season, participantID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].FirstUsedWeek != items[j].FirstUsedWeek {
			return items[i].FirstUsedWeek < items[j].FirstUsedWeek
		}
		return items[i].PlayerID < items[j].PlayerID
	})
	return items, nil
}

// SubmitPick applies each slot selection independently. A rejected slot never fails the
// call; the caller gets one SlotOutcome per requested slot.
//
// The pick is written before its usage records. When a usage write fails the stored pick
// stays, and resubmitting the same selection records the missing usage.
func (s *PickService) SubmitPick(ctx context.Context, input SubmitPickInput) (SubmitPickResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.SubmitPick")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.ParticipantID = strings.TrimSpace(input.ParticipantID)
	if input.LeagueID == "" || input.ParticipantID == "" {
		return SubmitPickResult{}, fmt.Errorf("%w: league id and participant id are required", ErrInvalidInput)
	}
	if err := validateWeek(input.Week, s.cfg.SeasonMaxWeek); err != nil {
		return SubmitPickResult{}, err
	}
	if len(input.Picks) == 0 {
		return SubmitPickResult{}, fmt.Errorf("%w: at least one slot pick is required", ErrInvalidInput)
	}

	lg, exists, err := s.leagueRepo.GetByID(ctx, input.LeagueID)
	if err != nil {
		return SubmitPickResult{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return SubmitPickResult{}, fmt.Errorf("%w: league=%s", ErrNotFound, input.LeagueID)
	}

	unlock := s.locks.Lock(participantLockKey(input.LeagueID, input.Week, input.ParticipantID))
	defer unlock()

	current, exists, err := s.pickRepo.Get(ctx, input.LeagueID, input.Week, input.ParticipantID)
	if err != nil {
		return SubmitPickResult{}, fmt.Errorf("get pick: %w", err)
	}
	if !exists {
		current = pick.New(input.LeagueID, input.Week, input.ParticipantID)
	}

	now := s.now().UTC()
	next := current.Clone()
	result := SubmitPickResult{Slots: make([]SlotOutcome, 0, len(input.Picks))}
	seen := make(map[pick.Slot]struct{}, len(input.Picks))
	firstUses := make([]string, 0, len(input.Picks))
	unchangedUses := make([]string, 0, len(input.Picks))
	changed := false

	for _, sel := range input.Picks {
		outcome := SlotOutcome{
			Slot:     strings.TrimSpace(sel.Slot),
			PlayerID: strings.TrimSpace(sel.PlayerID),
			GameID:   strings.TrimSpace(sel.GameID),
		}

		slot, ok := pick.ParseSlot(sel.Slot)
		if !ok {
			result.Slots = append(result.Slots, skipSlot(outcome, ReasonInvalidSlot))
			continue
		}
		outcome.Slot = string(slot)
		if _, dup := seen[slot]; dup {
			result.Slots = append(result.Slots, skipSlot(outcome, ReasonDuplicateSlot))
			continue
		}
		seen[slot] = struct{}{}

		decision, err := s.evaluateSlot(ctx, lg, input.Week, input.ParticipantID, next, slot, outcome, now)
		if err != nil {
			return SubmitPickResult{}, err
		}
		result.Slots = append(result.Slots, decision.outcome)
		if !decision.outcome.Accepted {
			continue
		}
		if decision.outcome.Reason == SlotUnchanged {
			unchangedUses = append(unchangedUses, decision.outcome.PlayerID)
			continue
		}

		next.Slots[slot] = pick.SlotPick{PlayerID: decision.outcome.PlayerID, GameID: decision.outcome.GameID}
		changed = true
		if decision.firstUse {
			firstUses = append(firstUses, decision.outcome.PlayerID)
		}
	}

	for _, item := range result.Slots {
		if item.Accepted {
			result.Accepted++
		} else {
			result.Skipped++
		}
	}

	if !changed {
		if err := s.recordUses(ctx, lg, input.ParticipantID, input.Week, nil, unchangedUses); err != nil {
			return SubmitPickResult{}, err
		}
		result.Pick = current
		return result, nil
	}

	next.UpdatedAt = now
	if err := s.pickRepo.Upsert(ctx, next); err != nil {
		return SubmitPickResult{}, fmt.Errorf("upsert pick: %w", err)
	}
	if err := s.recordUses(ctx, lg, input.ParticipantID, input.Week, firstUses, unchangedUses); err != nil {
		return SubmitPickResult{}, err
	}

	s.logger.InfoContext(ctx, "pick submitted",
		"league_id", input.LeagueID,
		"week", input.Week,
		"participant_id", input.ParticipantID,
		"accepted", result.Accepted,
		"skipped", result.Skipped,
	)

	result.Pick = next
	return result, nil
}

// recordUses writes first-use records for newly accepted players and re-claims the
// players of unchanged slots, which fills in a record lost to an earlier failed write.
func (s *PickService) recordUses(ctx context.Context, lg league.League, participantID string, week int, firstUses, unchangedUses []string) error {
	for _, playerID := range firstUses {
		key := usage.Key{LeagueID: lg.ID, Season: lg.Season, ParticipantID: participantID, PlayerID: playerID}
		if _, err := s.ledger.RecordFirstUse(ctx, key, week); err != nil && !isUsageAlreadyRecorded(err) {
			return fmt.Errorf("record first use: %w", err)
		}
	}
	for _, playerID := range unchangedUses {
		key := usage.Key{LeagueID: lg.ID, Season: lg.Season, ParticipantID: participantID, PlayerID: playerID}
		if _, _, err := s.ledger.Claim(ctx, key, week); err != nil {
			return fmt.Errorf("record first use: %w", err)
		}
	}
	return nil
}

type slotDecision struct {
	outcome  SlotOutcome
	firstUse bool
}

func (s *PickService) evaluateSlot(
	ctx context.Context,
	lg league.League,
	week int,
	participantID string,
	current pick.Pick,
	slot pick.Slot,
	outcome SlotOutcome,
	now time.Time,
) (slotDecision, error) {
	existing, hasExisting := current.Slots[slot]
	if hasExisting && existing.Locked {
		return slotDecision{outcome: skipSlot(outcome, ReasonSlotLocked)}, nil
	}
	// The sweep may not have reached this slot yet; the clock still decides.
	if hasExisting && existing.IsSet() {
		prev, found, err := s.gameRepo.GetByID(ctx, existing.GameID)
		if err != nil {
			return slotDecision{}, fmt.Errorf("get current slot game: %w", err)
		}
		if found && prev.IsLocked(now, s.cfg.LockLead) {
			return slotDecision{outcome: skipSlot(outcome, ReasonSlotLocked)}, nil
		}
	}

	pl, exists, err := s.playerRepo.GetByID(ctx, outcome.PlayerID)
	if err != nil {
		return slotDecision{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return slotDecision{outcome: skipSlot(outcome, ReasonPlayerNotFound)}, nil
	}
	if !pick.CanFill(slot, pl.Position) {
		return slotDecision{outcome: skipSlot(outcome, ReasonIneligiblePosition)}, nil
	}

	g, reason, err := s.resolveGame(ctx, lg.Season, week, pl, outcome.GameID)
	if err != nil {
		return slotDecision{}, err
	}
	if reason != "" {
		return slotDecision{outcome: skipSlot(outcome, reason)}, nil
	}
	outcome.GameID = g.ID
	if g.IsLocked(now, s.cfg.LockLead) {
		return slotDecision{outcome: skipSlot(outcome, ReasonGameLocked)}, nil
	}

	if hasExisting && existing.PlayerID == pl.ID && existing.GameID == g.ID {
		outcome.Accepted = true
		outcome.Reason = SlotUnchanged
		return slotDecision{outcome: outcome}, nil
	}

	usedWeek, used, err := s.ledger.HasUsed(ctx, usage.Key{
		LeagueID:      lg.ID,
		Season:        lg.Season,
		ParticipantID: participantID,
		PlayerID:      pl.ID,
	})
	if err != nil {
		return slotDecision{}, err
	}
	if used && usedWeek != week {
		return slotDecision{outcome: skipSlot(outcome, ReasonPlayerAlreadyUsed)}, nil
	}

	outcome.Accepted = true
	outcome.Reason = SlotAccepted
	return slotDecision{outcome: outcome, firstUse: !used}, nil
}

// resolveGame returns the game for a selection. An empty gameID means the player's
// team game in that week.
func (s *PickService) resolveGame(ctx context.Context, season, week int, pl player.Player, gameID string) (game.Game, string, error) {
	if gameID == "" {
		games, err := s.gameRepo.ListByWeek(ctx, season, week)
		if err != nil {
			return game.Game{}, "", fmt.Errorf("list games by week: %w", err)
		}
		for _, g := range games {
			if g.HasTeam(pl.TeamID) {
				return g, "", nil
			}
		}
		return game.Game{}, ReasonGameNotFound, nil
	}

	g, exists, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return game.Game{}, "", fmt.Errorf("get game: %w", err)
	}
	if !exists {
		return game.Game{}, ReasonGameNotFound, nil
	}
	if g.Season != season || g.Week != week {
		return game.Game{}, ReasonGameNotInWeek, nil
	}
	if !g.HasTeam(pl.TeamID) {
		return game.Game{}, ReasonPlayerNotInGame, nil
	}
	return g, "", nil
}

func skipSlot(outcome SlotOutcome, reason string) SlotOutcome {
	outcome.Accepted = false
	outcome.Reason = reason
	return outcome
}

const defaultSeasonMaxWeek = 18

func validateWeek(week, maxWeek int) error {
	if maxWeek <= 0 {
		maxWeek = defaultSeasonMaxWeek
	}
	if week < 1 || week > maxWeek {
		return fmt.Errorf("%w: week must be between 1 and %d", ErrInvalidInput, maxWeek)
	}
	return nil
}
