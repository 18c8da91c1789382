package httpapi

import (
	"time"

	"github.com/riskibarqy/pickem-league/internal/domain/leaguestanding"
	"github.com/riskibarqy/pickem-league/internal/domain/pick"
	"github.com/riskibarqy/pickem-league/internal/domain/scoring"
	"github.com/riskibarqy/pickem-league/internal/domain/usage"
	"github.com/riskibarqy/pickem-league/internal/usecase"
)

type slotSelectionRequest struct {
	Slot     string `json:"slot" validate:"required"`
	PlayerID string `json:"player_id" validate:"required"`
	GameID   string `json:"game_id"`
}

type submitPickRequest struct {
	Picks []slotSelectionRequest `json:"picks" validate:"required,min=1,max=3,dive"`
}

type enableBackfillRequest struct {
	FromWeek int `json:"from_week" validate:"required,min=1"`
	ToWeek   int `json:"to_week" validate:"required,gtefield=FromWeek"`
}

type backfillSlotRequest struct {
	Slot           string   `json:"slot" validate:"required"`
	PlayerID       string   `json:"player_id" validate:"required_without=PlayerName"`
	PlayerName     string   `json:"player_name" validate:"required_without=PlayerID"`
	PointsOverride *float64 `json:"points_override"`
}

type backfillMemberRequest struct {
	ParticipantID string                `json:"participant_id" validate:"required"`
	Slots         []backfillSlotRequest `json:"slots" validate:"required,min=1,dive"`
}

type backfillWeekRequest struct {
	Members []backfillMemberRequest `json:"members" validate:"required,min=1,dive"`
}

// internalJobRequest is the shared body of QStash deliveries and manual job calls.
type internalJobRequest struct {
	LeagueID string `json:"league_id"`
	Week     int    `json:"week"`
}

type scoreWeekJobRequest struct {
	LeagueID string `validate:"required"`
	Week     int    `validate:"required,min=1"`
}

type recomputeStandingsJobRequest struct {
	LeagueID string `validate:"required"`
}

type syncScheduleJobRequest struct {
	Week int `validate:"required,min=1"`
}

type slotPickDTO struct {
	Slot     string `json:"slot"`
	PlayerID string `json:"player_id"`
	GameID   string `json:"game_id"`
	Locked   bool   `json:"locked"`
	LockedAt string `json:"locked_at,omitempty"`
}

type pickDTO struct {
	LeagueID      string        `json:"league_id"`
	Week          int           `json:"week"`
	ParticipantID string        `json:"participant_id"`
	Slots         []slotPickDTO `json:"slots"`
	UpdatedAt     string        `json:"updated_at,omitempty"`
}

type submitPickResultDTO struct {
	Pick     pickDTO               `json:"pick"`
	Slots    []usecase.SlotOutcome `json:"slot_outcomes"`
	Accepted int                   `json:"accepted"`
	Skipped  int                   `json:"skipped"`
}

type scoreDTO struct {
	LeagueID        string              `json:"league_id"`
	Week            int                 `json:"week"`
	ParticipantID   string              `json:"participant_id"`
	SlotPoints      map[string]*float64 `json:"slot_points"`
	Total           float64             `json:"total"`
	DoublePickSlots []string            `json:"double_pick_slots"`
	UnscoredSlots   []string            `json:"unscored_slots"`
	Source          string              `json:"source"`
	ScoredAt        string              `json:"scored_at"`
}

type standingDTO struct {
	Rank              int     `json:"rank"`
	ParticipantID     string  `json:"participant_id"`
	SeasonTotalPoints float64 `json:"season_total_points"`
	WeeksPlayed       int     `json:"weeks_played"`
	BestWeek          int     `json:"best_week"`
	BestWeekPoints    float64 `json:"best_week_points"`
	Payout            float64 `json:"payout"`
	ComputedAt        string  `json:"computed_at"`
}

type usageDTO struct {
	PlayerID      string `json:"player_id"`
	Season        int    `json:"season"`
	FirstUsedWeek int    `json:"first_used_week"`
	RecordedAt    string `json:"recorded_at"`
}

func pickToDTO(v pick.Pick) pickDTO {
	out := pickDTO{
		LeagueID:      v.LeagueID,
		Week:          v.Week,
		ParticipantID: v.ParticipantID,
		Slots:         make([]slotPickDTO, 0, len(pick.AllSlots)),
		UpdatedAt:     formatTime(v.UpdatedAt),
	}
	for _, slot := range pick.AllSlots {
		item, ok := v.Slot(slot)
		if !ok {
			continue
		}
		dto := slotPickDTO{
			Slot:     string(slot),
			PlayerID: item.PlayerID,
			GameID:   item.GameID,
			Locked:   item.Locked,
		}
		if item.LockedAt != nil {
			dto.LockedAt = formatTime(*item.LockedAt)
		}
		out.Slots = append(out.Slots, dto)
	}
	return out
}

// scoreToDTO reports slots without points as null so "unscored" and "zero" stay distinct.
func scoreToDTO(v scoring.Score) scoreDTO {
	points := make(map[string]*float64, len(pick.AllSlots))
	for _, slot := range pick.AllSlots {
		if value, ok := v.SlotPoints[slot]; ok {
			points[string(slot)] = &value
			continue
		}
		points[string(slot)] = nil
	}

	return scoreDTO{
		LeagueID:        v.LeagueID,
		Week:            v.Week,
		ParticipantID:   v.ParticipantID,
		SlotPoints:      points,
		Total:           v.Total,
		DoublePickSlots: slotNames(v.DoublePickSlots),
		UnscoredSlots:   slotNames(v.UnscoredSlots),
		Source:          string(v.Source),
		ScoredAt:        formatTime(v.ScoredAt),
	}
}

func standingToDTO(v leaguestanding.SeasonStanding) standingDTO {
	return standingDTO{
		Rank:              v.Rank,
		ParticipantID:     v.ParticipantID,
		SeasonTotalPoints: v.SeasonTotalPoints,
		WeeksPlayed:       v.WeeksPlayed,
		BestWeek:          v.BestWeek,
		BestWeekPoints:    v.BestWeekPoints,
		Payout:            v.Payout,
		ComputedAt:        formatTime(v.ComputedAt),
	}
}

func usageToDTO(v usage.Record) usageDTO {
	return usageDTO{
		PlayerID:      v.PlayerID,
		Season:        v.Season,
		FirstUsedWeek: v.FirstUsedWeek,
		RecordedAt:    formatTime(v.RecordedAt),
	}
}

func slotNames(items []pick.Slot) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, string(item))
	}
	return out
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
