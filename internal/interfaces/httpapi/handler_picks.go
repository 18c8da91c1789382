package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/pickem-league/internal/usecase"
)

func (h *Handler) GetPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPick")
	defer span.End()

	if err := requireService("pick service", h.pickService == nil); err != nil {
		writeError(ctx, w, err)
		return
	}
	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	participantID := strings.TrimSpace(r.PathValue("participantID"))
	item, err := h.pickService.GetPick(ctx, leagueID, week, participantID)
	if err != nil {
		h.logger.WarnContext(ctx, "get pick failed", "league_id", leagueID, "week", week, "participant_id", participantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pickToDTO(item))
}

func (h *Handler) SubmitPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPick")
	defer span.End()

	if err := requireService("pick service", h.pickService == nil); err != nil {
		writeError(ctx, w, err)
		return
	}
	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitPickRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.SubmitPickInput{
		LeagueID:      strings.TrimSpace(r.PathValue("leagueID")),
		Week:          week,
		ParticipantID: strings.TrimSpace(r.PathValue("participantID")),
		Picks:         make([]usecase.SlotSelection, 0, len(req.Picks)),
	}
	for _, item := range req.Picks {
		input.Picks = append(input.Picks, usecase.SlotSelection{
			Slot:     item.Slot,
			PlayerID: strings.TrimSpace(item.PlayerID),
			GameID:   strings.TrimSpace(item.GameID),
		})
	}

	result, err := h.pickService.SubmitPick(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "submit pick failed",
			"league_id", input.LeagueID,
			"week", week,
			"participant_id", input.ParticipantID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, submitPickResultDTO{
		Pick:     pickToDTO(result.Pick),
		Slots:    result.Slots,
		Accepted: result.Accepted,
		Skipped:  result.Skipped,
	})
}

func (h *Handler) ListUsage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUsage")
	defer span.End()

	if err := requireService("pick service", h.pickService == nil); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	participantID := strings.TrimSpace(r.PathValue("participantID"))
	items, err := h.pickService.ListUsage(ctx, leagueID, participantID)
	if err != nil {
		h.logger.WarnContext(ctx, "list usage failed", "league_id", leagueID, "participant_id", participantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]usageDTO, 0, len(items))
	for _, item := range items {
		out = append(out, usageToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
