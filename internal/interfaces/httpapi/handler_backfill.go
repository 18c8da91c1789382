package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/pickem-league/internal/usecase"
)

func (h *Handler) EnableBackfill(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EnableBackfill")
	defer span.End()

	if err := requireService("backfill service", h.backfillService == nil); err != nil {
		writeError(ctx, w, err)
		return
	}

	var req enableBackfillRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	result, err := h.backfillService.EnableBackfill(ctx, leagueID, req.FromWeek, req.ToWeek)
	if err != nil {
		h.logger.WarnContext(ctx, "enable backfill failed",
			"league_id", leagueID,
			"from_week", req.FromWeek,
			"to_week", req.ToWeek,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) BackfillWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BackfillWeek")
	defer span.End()

	if err := requireService("backfill service", h.backfillService == nil); err != nil {
		writeError(ctx, w, err)
		return
	}
	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req backfillWeekRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.BackfillWeekInput{
		LeagueID: strings.TrimSpace(r.PathValue("leagueID")),
		Week:     week,
		Members:  make([]usecase.BackfillMemberPicks, 0, len(req.Members)),
	}
	for _, member := range req.Members {
		item := usecase.BackfillMemberPicks{
			ParticipantID: strings.TrimSpace(member.ParticipantID),
			Slots:         make([]usecase.BackfillSlotEntry, 0, len(member.Slots)),
		}
		for _, slot := range member.Slots {
			item.Slots = append(item.Slots, usecase.BackfillSlotEntry{
				Slot:           slot.Slot,
				PlayerID:       strings.TrimSpace(slot.PlayerID),
				PlayerName:     strings.TrimSpace(slot.PlayerName),
				PointsOverride: slot.PointsOverride,
			})
		}
		input.Members = append(input.Members, item)
	}

	result, err := h.backfillService.BackfillWeek(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "backfill week failed", "league_id", input.LeagueID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "backfill week completed",
		"run_id", result.RunID,
		"league_id", result.LeagueID,
		"week", result.Week,
		"success", result.SuccessCount,
		"partial", result.PartialCount,
		"failed", result.FailedCount,
	)
	writeSuccess(ctx, w, http.StatusOK, result)
}
