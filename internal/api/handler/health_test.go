package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestReadiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	h := NewReadinessHandler(map[string]Check{"mongodb": ok, "redis": ok})
	if rec := do(t, h.Readiness, http.MethodGet, "", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	h = NewReadinessHandler(map[string]Check{"mongodb": ok, "redis": down})
	rec := do(t, h.Readiness, http.MethodGet, "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	deps := decode(t, rec)["dependencies"].(map[string]any)
	if deps["redis"].(map[string]any)["status"] != "unhealthy" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestLiveness(t *testing.T) {
	rec := do(t, NewHealthHandler().Liveness, http.MethodGet, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
