package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListWeekScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWeekScores")
	defer span.End()

	if err := requireService("scoring service", h.scoringService == nil); err != nil {
		writeError(ctx, w, err)
		return
	}
	week, err := pathWeek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	items, err := h.scoringService.ListScoresByWeek(ctx, leagueID, week)
	if err != nil {
		h.logger.WarnContext(ctx, "list week scores failed", "league_id", leagueID, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]scoreDTO, 0, len(items))
	for _, item := range items {
		out = append(out, scoreToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandings")
	defer span.End()

	if err := requireService("standing service", h.standingService == nil); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	items, err := h.standingService.ListByLeague(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list standings failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]standingDTO, 0, len(items))
	for _, item := range items {
		out = append(out, standingToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
