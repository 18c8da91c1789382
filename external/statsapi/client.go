package statsapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/riskibarqy/pickem-league/internal/platform/resilience"
	"github.com/riskibarqy/pickem-league/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultTimeout     = 10 * time.Second
	maxResponseBodyLen = 4 << 20
)

var (
	errStatsTransient = crerr.New("stats provider transient failure")
	errStatsNotFound  = crerr.New("stats provider resource not found")
)

type ClientConfig struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	Retry          resilience.RetryPolicy
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Client reads box scores and schedules from the external stats provider. Calls are
// retried with backoff, deduplicated per path, and guarded by a circuit breaker.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	token   string
	timeout time.Duration
	retry   resilience.RetryPolicy
	breaker *resilience.CircuitBreaker
	flight  resilience.SingleFlight
	logger  *logging.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid STATS_BASE_URL")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                "pickem-league-statsapi",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxResponseBodyLen,
		},
		baseURL: baseURL,
		token:   strings.TrimSpace(cfg.Token),
		timeout: timeout,
		retry:   resilience.NormalizeRetryPolicy(cfg.Retry),
		breaker: resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		logger:  logger.Named("statsapi"),
	}, nil
}

func (c *Client) FetchGameStats(ctx context.Context, gameID string) (usecase.GameStats, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return usecase.GameStats{}, fmt.Errorf("%w: game id is required", usecase.ErrInvalidInput)
	}

	var envelope boxScoreEnvelope
	if err := c.getJSON(ctx, "/games/"+url.PathEscape(gameID)+"/boxscore", &envelope); err != nil {
		return usecase.GameStats{}, fmt.Errorf("fetch box score game=%s: %w", gameID, err)
	}
	return envelope.toGameStats(gameID), nil
}

func (c *Client) FetchWeekSchedule(ctx context.Context, season, week int) ([]usecase.ScheduledGame, error) {
	if season <= 0 || week <= 0 {
		return nil, fmt.Errorf("%w: season and week must be > 0", usecase.ErrInvalidInput)
	}

	var envelope scheduleEnvelope
	path := "/seasons/" + strconv.Itoa(season) + "/weeks/" + strconv.Itoa(week) + "/schedule"
	if err := c.getJSON(ctx, path, &envelope); err != nil {
		return nil, fmt.Errorf("fetch schedule season=%d week=%d: %w", season, week, err)
	}

	out := make([]usecase.ScheduledGame, 0, len(envelope.Games))
	for _, item := range envelope.Games {
		scheduled, err := item.toScheduledGame()
		if err != nil {
			c.logger.WarnContext(ctx, "skip unparseable scheduled game", "game_id", item.GameID, "error", err)
			continue
		}
		out = append(out, scheduled)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "stats provider circuit breaker rejected request", "path", path, "state", c.breaker.State())
		return fmt.Errorf("%w: %w", usecase.ErrTransientProvider, err)
	}

	out, err, shared := c.flight.DoContext(ctx, path, func() (any, error) {
		result := resilience.Retry(ctx, c.retry, func(attemptCtx context.Context) ([]byte, error) {
			return c.doOnce(attemptCtx, path)
		})
		switch result.Outcome {
		case resilience.OutcomeSuccess:
			c.breaker.RecordSuccess()
			return result.Value, nil
		case resilience.OutcomePermanent:
			c.breaker.RecordSuccess()
			return nil, result.Err
		default:
			c.breaker.RecordFailure()
			c.logger.WarnContext(ctx, "stats provider retries exhausted",
				"path", path,
				"attempts", result.Attempts,
				"error", result.Err,
			)
			return nil, fmt.Errorf("%w: %s after %d attempts: %v", usecase.ErrTransientProvider, path, result.Attempts, result.Err)
		}
	})
	if err != nil {
		return err
	}
	if shared {
		c.logger.DebugContext(ctx, "stats provider response shared", "path", path)
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) doOnce(ctx context.Context, path string) ([]byte, error) {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 || ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", errStatsTransient, context.DeadlineExceeded)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("%w: send request: %v", errStatsTransient, err)
	}

	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)
	switch {
	case status >= 200 && status < 300:
		return body, nil
	case status == fasthttp.StatusNotFound:
		return nil, resilience.Permanent(fmt.Errorf("%w: path=%s", errStatsNotFound, path))
	case isRetryableStatus(status):
		return nil, fmt.Errorf("%w: provider status=%d body=%s", errStatsTransient, status, abbreviateBody(body))
	default:
		return nil, resilience.Permanent(fmt.Errorf("provider status=%d body=%s", status, abbreviateBody(body)))
	}
}

// IsNotFound reports whether err came from a 404 on the provider.
func IsNotFound(err error) bool {
	return stderrors.Is(err, errStatsNotFound)
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == fasthttp.StatusRequestTimeout ||
		statusCode == fasthttp.StatusTooManyRequests ||
		statusCode >= fasthttp.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > 256 {
		return text[:256] + "..."
	}
	return text
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}
