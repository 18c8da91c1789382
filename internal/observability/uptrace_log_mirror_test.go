package observability

import (
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

func TestShouldSkipUptraceLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  string
		args []any
		want bool
	}{
		{name: "health probe", msg: "http request", args: []any{"method", "GET", "path", "/healthz", "status", 200}, want: true},
		{name: "api request", msg: "http request", args: []any{"path", "/v1/leagues/sunday-six-2026/standings"}, want: false},
		{name: "other event with health path", msg: "qstash publish request", args: []any{"path", "/healthz"}, want: false},
		{name: "path value not a string", msg: "http request", args: []any{"path", 42}, want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := shouldSkipUptraceLog(tc.msg, tc.args); got != tc.want {
				t.Fatalf("shouldSkipUptraceLog()=%v want %v", got, tc.want)
			}
		})
	}
}

func TestBuildOTelLogAttributes(t *testing.T) {
	t.Parallel()

	attrs := buildOTelLogAttributes([]any{"league_id", "sunday-six-2026", "week", 3, "payload"})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "league_id" || attrs[0].Value.AsString() != "sunday-six-2026" {
		t.Fatalf("unexpected league_id attribute")
	}
	if attrs[1].Key != "week" || attrs[1].Value.AsInt64() != 3 {
		t.Fatalf("unexpected week attribute")
	}
	if attrs[2].Key != "payload" || attrs[2].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected payload attribute")
	}
}

func TestToOTelLogValue(t *testing.T) {
	t.Parallel()

	v := toOTelLogValue(map[string]any{
		"qb": 21.5,
		"rb": nil,
	}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	if items := v.AsMap(); len(items) != 2 {
		t.Fatalf("expected 2 map items, got %d", len(items))
	}

	if got := toOTelLogValue(90*time.Second, 0); got.AsString() != "1m30s" {
		t.Fatalf("unexpected duration value %q", got.AsString())
	}
	if got := toOTelLogValue([]string{"QB", "RB"}, 0); got.Kind() != otellog.KindSlice || len(got.AsSlice()) != 2 {
		t.Fatalf("unexpected slice value %v", got)
	}
}

func TestToOTelSeverity(t *testing.T) {
	t.Parallel()

	if toOTelSeverity(zapcore.WarnLevel) != otellog.SeverityWarn {
		t.Fatalf("warn should map to SeverityWarn")
	}
	if toOTelSeverity(zapcore.ErrorLevel) != otellog.SeverityError {
		t.Fatalf("error should map to SeverityError")
	}
}
