package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/riskibarqy/pickem-league/internal/usecase"
)

type Handler struct {
	pickService     *usecase.PickService
	scoringService  *usecase.ScoringService
	standingService *usecase.LeagueStandingService
	backfillService *usecase.BackfillService
	jobOrchestrator *usecase.JobOrchestratorService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	pickService *usecase.PickService,
	scoringService *usecase.ScoringService,
	standingService *usecase.LeagueStandingService,
	backfillService *usecase.BackfillService,
	jobOrchestrator *usecase.JobOrchestratorService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		pickService:     pickService,
		scoringService:  scoringService,
		standingService: standingService,
		backfillService: backfillService,
		jobOrchestrator: jobOrchestrator,
		logger:          logger.Named("httpapi"),
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON decodes a strict JSON body. An empty body is allowed when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func pathWeek(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("week"))
	week, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: week %q is not a number", usecase.ErrInvalidInput, raw)
	}
	return week, nil
}

func requireService(name string, missing bool) error {
	if missing {
		return fmt.Errorf("%w: %s is not configured", usecase.ErrDependencyUnavailable, name)
	}
	return nil
}
