package jobqueue

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/riskibarqy/pickem-league/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errQStashTransient = crerr.New("qstash transient failure")

type QStashPublisherConfig struct {
	BaseURL       string
	Token         string
	TargetBaseURL string
	// Retries is the delivery retry count QStash applies when calling the target.
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	// PublishRetry governs retries of the publish call itself.
	PublishRetry   resilience.RetryPolicy
	CircuitBreaker resilience.CircuitBreakerConfig
}

// QStashPublisher schedules internal job calls (lock sweep, score week, standings) through
// QStash. It satisfies usecase.JobQueue.
type QStashPublisher struct {
	client           *http.Client
	baseURL          string
	token            string
	targetBaseURL    string
	retries          int
	internalJobToken string
	publishRetry     resilience.RetryPolicy
	logger           *logging.Logger
	breaker          *resilience.CircuitBreaker
}

// publishRequest is one fully resolved publish call.
type publishRequest struct {
	path            string
	targetURL       string
	publishURL      string
	body            []byte
	delay           time.Duration
	deduplicationID string
}

func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) (*QStashPublisher, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(cfg.TargetBaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &QStashPublisher{
		client:           &http.Client{Timeout: timeout},
		baseURL:          baseURL,
		token:            strings.TrimSpace(cfg.Token),
		targetBaseURL:    targetBaseURL,
		retries:          cfg.Retries,
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		publishRetry:     resilience.NormalizeRetryPolicy(cfg.PublishRetry),
		logger:           logger.Named("qstash"),
		breaker:          resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}, nil
}

func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	if err := p.breaker.Allow(); err != nil {
		p.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "path", path, "state", p.breaker.State())
		return fmt.Errorf("qstash is temporarily unavailable: %w", err)
	}

	req, err := p.buildRequest(path, payload, delay, deduplicationID)
	if err != nil {
		return err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", req.targetURL),
			attribute.String("qstash.path", req.path),
			attribute.String("qstash.delay", normalizeDelay(req.delay)),
			attribute.String("qstash.deduplication_id", req.deduplicationID),
		)
	}
	p.logger.DebugContext(ctx, "qstash publish request", "path", req.path, "curl_preview", p.curlPreview(req))

	result := resilience.Retry(ctx, p.publishRetry, func(attemptCtx context.Context) (struct{}, error) {
		return struct{}{}, p.publish(attemptCtx, req)
	})
	p.breaker.Record(result.Err, isQStashCircuitFailure)
	if !result.OK() {
		return fmt.Errorf("publish job path=%s attempts=%d: %w", req.path, result.Attempts, result.Err)
	}

	p.logger.InfoContext(ctx, "qstash job published",
		"path", req.path,
		"delay", normalizeDelay(req.delay),
		"deduplication_id", req.deduplicationID,
		"attempts", result.Attempts,
	)
	return nil
}

func (p *QStashPublisher) buildRequest(path string, payload any, delay time.Duration, deduplicationID string) (publishRequest, error) {
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return publishRequest{}, crerr.New("job path is required")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return publishRequest{}, crerr.Wrap(err, "marshal job payload")
	}

	targetURL := p.targetBaseURL + path
	return publishRequest{
		path:            path,
		targetURL:       targetURL,
		publishURL:      p.baseURL + "/v2/publish/" + targetURL,
		body:            body,
		delay:           delay,
		deduplicationID: strings.TrimSpace(deduplicationID),
	}, nil
}

func (p *QStashPublisher) publish(ctx context.Context, req publishRequest) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.publishURL, strings.NewReader(string(req.body)))
	if err != nil {
		return resilience.Permanent(crerr.Wrap(err, "create qstash request"))
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Upstash-Method", http.MethodPost)
	if p.retries > 0 {
		httpReq.Header.Set("Upstash-Retries", strconv.Itoa(p.retries))
	}
	if req.delay > 0 {
		httpReq.Header.Set("Upstash-Delay", normalizeDelay(req.delay))
	}
	if req.deduplicationID != "" {
		httpReq.Header.Set("Upstash-Deduplication-Id", req.deduplicationID)
	}
	if p.internalJobToken != "" {
		httpReq.Header.Set("Upstash-Forward-X-Internal-Job-Token", p.internalJobToken)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: target_url=%s: %v", errQStashTransient, req.targetURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	callErr := fmt.Errorf("qstash status=%d target_url=%s body=%s", resp.StatusCode, req.targetURL, strings.TrimSpace(string(raw)))
	if isQStashRetryableStatus(resp.StatusCode) {
		return fmt.Errorf("%w: %v", errQStashTransient, callErr)
	}
	return resilience.Permanent(callErr)
}

func normalizeDelay(delay time.Duration) string {
	if delay <= 0 {
		return "0s"
	}
	return strconv.Itoa(int(delay.Round(time.Second).Seconds())) + "s"
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

// curlPreview renders the publish call with secrets masked.
func (p *QStashPublisher) curlPreview(req publishRequest) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}
	header := func(value string) {
		appendPart("-H")
		appendPart(shellQuote(value))
	}

	appendPart("curl -X POST")
	appendPart(shellQuote(req.publishURL))
	header("Authorization: Bearer ***")
	header("Content-Type: application/json")
	if p.retries > 0 {
		header("Upstash-Retries: " + strconv.Itoa(p.retries))
	}
	if req.delay > 0 {
		header("Upstash-Delay: " + normalizeDelay(req.delay))
	}
	if req.deduplicationID != "" {
		header("Upstash-Deduplication-Id: " + req.deduplicationID)
	}
	if p.internalJobToken != "" {
		header("Upstash-Forward-X-Internal-Job-Token: ***")
	}
	appendPart("-d")
	appendPart(shellQuote(truncateForLog(string(req.body), 4096)))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}

func isQStashCircuitFailure(err error) bool {
	return stderrors.Is(err, errQStashTransient)
}

func isQStashRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
