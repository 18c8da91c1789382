package httpapi

import "testing"

func TestShouldTraceRequest_HealthPaths(t *testing.T) {
	t.Parallel()

	paths := []string{"/healthz", "/health", "/livez", "/readyz", " /healthz "}
	for _, path := range paths {
		if shouldTraceRequest(path) {
			t.Fatalf("expected no tracing for path %q", path)
		}
	}
}

func TestShouldTraceRequest_NonHealthPaths(t *testing.T) {
	t.Parallel()

	paths := []string{"/v1/leagues/sunday-six-2026/standings", "/v1/internal/jobs/lock-sweep", "/", "/docs"}
	for _, path := range paths {
		if !shouldTraceRequest(path) {
			t.Fatalf("expected tracing for path %q", path)
		}
	}
}
