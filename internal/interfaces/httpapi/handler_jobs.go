package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) RunLockSweepJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunLockSweepJob")
	defer span.End()

	if err := requireService("job orchestrator", h.jobOrchestrator == nil); err != nil {
		writeError(ctx, w, err)
		return
	}
	var req internalJobRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.jobOrchestrator.RunLockSweep(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run lock sweep job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunScoreWeekJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScoreWeekJob")
	defer span.End()

	if err := requireService("job orchestrator", h.jobOrchestrator == nil); err != nil {
		writeError(ctx, w, err)
		return
	}
	var req internalJobRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, scoreWeekJobRequest{LeagueID: req.LeagueID, Week: req.Week}); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.jobOrchestrator.RunScoreWeek(ctx, strings.TrimSpace(req.LeagueID), req.Week)
	if err != nil {
		h.logger.WarnContext(ctx, "run score week job failed", "league_id", req.LeagueID, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunRecomputeStandingsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecomputeStandingsJob")
	defer span.End()

	if err := requireService("job orchestrator", h.jobOrchestrator == nil); err != nil {
		writeError(ctx, w, err)
		return
	}
	var req internalJobRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, recomputeStandingsJobRequest{LeagueID: req.LeagueID}); err != nil {
		writeError(ctx, w, err)
		return
	}

	count, err := h.jobOrchestrator.RunRecomputeStandings(ctx, strings.TrimSpace(req.LeagueID))
	if err != nil {
		h.logger.WarnContext(ctx, "run recompute standings job failed", "league_id", req.LeagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"league_id": req.LeagueID,
		"standings": count,
	})
}

func (h *Handler) RunSyncScheduleJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncScheduleJob")
	defer span.End()

	if err := requireService("job orchestrator", h.jobOrchestrator == nil); err != nil {
		writeError(ctx, w, err)
		return
	}
	var req internalJobRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, syncScheduleJobRequest{Week: req.Week}); err != nil {
		writeError(ctx, w, err)
		return
	}

	written, err := h.jobOrchestrator.RunScheduleSync(ctx, strings.TrimSpace(req.LeagueID), req.Week)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync schedule job failed", "league_id", req.LeagueID, "week", req.Week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"league_id":     req.LeagueID,
		"week":          req.Week,
		"games_written": written,
	})
}
