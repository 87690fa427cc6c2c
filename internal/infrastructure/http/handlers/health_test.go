package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func readiness(t *testing.T, deps map[string]Pinger) (int, readinessResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := NewHealthDependenciesHandler(deps).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec.Code, resp
}

func TestHealthHandler_Liveness(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	if err := NewHealthHandler().Liveness(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness_AllHealthy(t *testing.T) {
	code, resp := readiness(t, map[string]Pinger{"storage": stubPinger{}})

	if code != http.StatusOK || resp.Status != "ok" {
		t.Fatalf("expected ok, got %d %+v", code, resp)
	}
	if resp.Dependencies["storage"].Status != "ok" {
		t.Fatalf("unexpected dependency status: %+v", resp.Dependencies)
	}
}

func TestReadiness_Degraded(t *testing.T) {
	code, resp := readiness(t, map[string]Pinger{
		"storage": stubPinger{err: errors.New("connection refused")},
		"other":   stubPinger{},
	})

	if code != http.StatusServiceUnavailable || resp.Status != "degraded" {
		t.Fatalf("expected degraded, got %d %+v", code, resp)
	}
	dep := resp.Dependencies["storage"]
	if dep.Status != "unhealthy" || dep.Error != "connection refused" {
		t.Fatalf("unexpected dependency status: %+v", dep)
	}
	if resp.Dependencies["other"].Status != "ok" {
		t.Fatalf("expected healthy dependency to stay ok: %+v", resp.Dependencies)
	}
}
