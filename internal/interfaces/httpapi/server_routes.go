package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerLeagueRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues/{leagueID}/weeks/{week}/picks/{participantID}", handler.GetPick)
	mux.HandleFunc("PUT /v1/leagues/{leagueID}/weeks/{week}/picks/{participantID}", handler.SubmitPick)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/weeks/{week}/scores", handler.ListWeekScores)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/standings", handler.ListStandings)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/participants/{participantID}/usage", handler.ListUsage)
}

// Backfill is a commissioner operation and shares the internal job token.
func registerBackfillRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/leagues/{leagueID}/backfill", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.EnableBackfill)))
	mux.Handle("POST /v1/internal/leagues/{leagueID}/backfill/weeks/{week}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.BackfillWeek)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/lock-sweep", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunLockSweepJob)))
	mux.Handle("POST /v1/internal/jobs/score-week", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunScoreWeekJob)))
	mux.Handle("POST /v1/internal/jobs/recompute-standings", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecomputeStandingsJob)))
	mux.Handle("POST /v1/internal/jobs/sync-schedule", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncScheduleJob)))
}
