package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandlerSummary(t *testing.T) {
	m := New()

	m.IncSignup()
	m.IncSignup()
	m.IncAuthSuccess()
	m.IncAuthFailure("login")
	m.IncGreetingUpstreamError()
	m.HTTPRequestsTotal.WithLabelValues("GET", "/hello", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("GET", "/hello", "502").Inc()
	m.HTTPRequestDuration.WithLabelValues("GET", "/hello").Observe(0.05)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var summary Summary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}

	if summary.Identity.Signups != 2 {
		t.Errorf("signups = %v, want 2", summary.Identity.Signups)
	}
	if summary.Identity.AuthSuccess != 1 {
		t.Errorf("authSuccesses = %v, want 1", summary.Identity.AuthSuccess)
	}
	if summary.Identity.AuthFailures != 1 {
		t.Errorf("authFailures = %v, want 1", summary.Identity.AuthFailures)
	}
	if summary.Greeting.UpstreamErrors != 1 {
		t.Errorf("upstreamErrors = %v, want 1", summary.Greeting.UpstreamErrors)
	}
	if summary.HTTP.TotalRequests != 2 {
		t.Errorf("totalRequests = %v, want 2", summary.HTTP.TotalRequests)
	}
	if summary.HTTP.ErrorRate != 0.5 {
		t.Errorf("errorRate = %v, want 0.5", summary.HTTP.ErrorRate)
	}
	if summary.Server.StartTime == 0 {
		t.Error("expected server start time to be set")
	}
}

func TestDBPoolCollector(t *testing.T) {
	m := New()
	m.RegisterDBPoolCollector(func() (total, idle, acquired int32) {
		return 10, 7, 3
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	var summary Summary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}

	if summary.DB.TotalConns != 10 || summary.DB.IdleConns != 7 || summary.DB.AcquiredConns != 3 {
		t.Errorf("db pool = %+v, want 10/7/3", summary.DB)
	}
}
