package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestRouterHealthz(t *testing.T) {
	router := NewRouter()

	rec := performJSON(t, router, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["status"] != "ok" {
		t.Fatalf("status = %v, want ok", payload["status"])
	}
}

func TestRouterReadyzReportsFailedProbe(t *testing.T) {
	health := NewHealthHandlers(
		WithReadinessProbe("firestore", func(context.Context) error {
			return errors.New("deadline exceeded")
		}),
	)
	router := NewRouter(WithHealthHandlers(health))

	rec := performJSON(t, router, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["status"] != "error" {
		t.Fatalf("status = %v, want error", payload["status"])
	}
	checks, ok := payload["checks"].(map[string]any)
	if !ok {
		t.Fatalf("checks missing from payload: %v", payload)
	}
	if _, ok := checks["firestore"]; !ok {
		t.Fatalf("firestore check missing: %v", checks)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := NewRouter()

	rec := performJSON(t, router, http.MethodGet, "/api/v2/orders", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["code"] != "route_not_found" {
		t.Fatalf("code = %v, want route_not_found", payload["code"])
	}
}

func TestRouterUnconfiguredGroup(t *testing.T) {
	router := NewRouter(WithOrderRoutes(NewOrderHandlers(&fakeOrderService{}).Routes))

	rec := performJSON(t, router, http.MethodGet, "/api/v1/products/", nil)
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", rec.Code)
	}
}
