package jobqueue

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/riskibarqy/pickem-league/internal/platform/resilience"
)

func newTestPublisher(t *testing.T, qstashURL string) *QStashPublisher {
	t.Helper()

	p, err := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:          qstashURL,
		Token:            "qstash-token",
		TargetBaseURL:    "https://pickem.example.com",
		Retries:          2,
		InternalJobToken: "job-token",
		PublishRetry: resilience.RetryPolicy{
			MaxAttempts:     3,
			InitialInterval: time.Millisecond,
			MaxInterval:     2 * time.Millisecond,
			AttemptTimeout:  time.Second,
		},
	}, logging.NewNop())
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	return p
}

func TestQStashPublisher_Enqueue(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		if r.URL.Path != "/v2/publish/https://pickem.example.com/v1/internal/jobs/score-week" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		wantHeaders := map[string]string{
			"Authorization":                        "Bearer qstash-token",
			"Upstash-Delay":                        "14400s",
			"Upstash-Retries":                      "2",
			"Upstash-Deduplication-Id":             "score-week-sunday-six-2026-w1-20260913T210000Z",
			"Upstash-Forward-X-Internal-Job-Token": "job-token",
		}
		for key, want := range wantHeaders {
			if got := r.Header.Get(key); got != want {
				t.Errorf("header %s: got %q want %q", key, got, want)
			}
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"league_id":"sunday-six-2026"`) {
			t.Errorf("unexpected body: %s", body)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	p := newTestPublisher(t, srv.URL)
	payload := map[string]any{"league_id": "sunday-six-2026", "week": 1}
	err := p.Enqueue(context.Background(), "v1/internal/jobs/score-week", payload, 4*time.Hour, "score-week-sunday-six-2026-w1-20260913T210000Z")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one publish retry, got %d calls", calls.Load())
	}
}

func TestQStashPublisher_ClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := newTestPublisher(t, srv.URL)
	if err := p.Enqueue(context.Background(), "/v1/internal/jobs/lock-sweep", nil, 0, ""); err == nil {
		t.Fatalf("expected error for unauthorized publish")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

func TestQStashPublisher_RejectsEmptyPath(t *testing.T) {
	t.Parallel()

	p := newTestPublisher(t, "https://qstash.example.com")
	if err := p.Enqueue(context.Background(), " / ", nil, 0, ""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestNormalizeDelay(t *testing.T) {
	t.Parallel()

	tests := map[time.Duration]string{
		0:                       "0s",
		-time.Second:            "0s",
		1500 * time.Millisecond: "2s",
		30 * time.Minute:        "1800s",
	}
	for in, want := range tests {
		if got := normalizeDelay(in); got != want {
			t.Fatalf("normalizeDelay(%s): got %s want %s", in, got, want)
		}
	}
}

func TestCurlPreviewMasksSecrets(t *testing.T) {
	t.Parallel()

	p := newTestPublisher(t, "https://qstash.example.com")
	req, err := p.buildRequest("/v1/internal/jobs/lock-sweep", map[string]any{"note": "it's"}, time.Minute, "lock-sweep-1")
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	preview := p.curlPreview(req)
	if strings.Contains(preview, "qstash-token") || strings.Contains(preview, "job-token") {
		t.Fatalf("preview leaks a secret: %s", preview)
	}
	if !strings.Contains(preview, "Upstash-Delay: 60s") || !strings.Contains(preview, `'"'"'`) {
		t.Fatalf("unexpected preview: %s", preview)
	}
}
