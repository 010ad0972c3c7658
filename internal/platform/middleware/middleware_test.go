package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/auth"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/db"
)

func TestRequestID_GeneratesNew(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	h := RequestID()(func(c echo.Context) error {
		seen, _ = c.Get("request_id").(string)
		return c.String(http.StatusOK, "ok")
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen == "" {
		t.Error("expected request_id to be generated")
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("response header %q does not match %q", rec.Header().Get(RequestIDHeader), seen)
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "my-custom-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequestID()(func(c echo.Context) error { return nil })
	h(c)

	if rec.Header().Get(RequestIDHeader) != "my-custom-id" {
		t.Errorf("expected my-custom-id, got %s", rec.Header().Get(RequestIDHeader))
	}
}

func TestRequestID_ReplacesOversized(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	RequestID()(func(c echo.Context) error { return nil })(c)
	if len(rec.Header().Get(RequestIDHeader)) != 36 {
		t.Errorf("expected a generated UUID, got %q", rec.Header().Get(RequestIDHeader))
	}
}

func TestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/problems", nil)
	req = req.WithContext(db.WithClinic(req.Context(), "clinic_a"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "req-1")

	h := Logger(logger)(func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if line["level"] != "warn" || line["clinic_id"] != "clinic_a" || line["request_id"] != "req-1" {
		t.Errorf("unexpected log line %v", line)
	}
	if line["status"] != float64(404) {
		t.Errorf("status = %v", line["status"])
	}
}

func TestRecovery_CatchesPanic(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Recovery(zerolog.Nop())(func(c echo.Context) error {
		panic("test panic")
	})
	if err := h(c); err != nil {
		t.Fatalf("expected outcome response, got error %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "OperationOutcome") {
		t.Errorf("expected OperationOutcome body, got %s", rec.Body.String())
	}
}

func TestRecovery_PassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Recovery(zerolog.Nop())(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAudit_RecordsAccess(t *testing.T) {
	var got []AuditEntry
	recorder := AuditRecorderFunc(func(_ context.Context, e AuditEntry) error {
		got = append(got, e)
		return nil
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/problems?patient=Patient/pat-1", nil)
	ctx := db.WithClinic(req.Context(), "clinic_a")
	ctx = context.WithValue(ctx, auth.UserIDKey, "dr-rao")
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "req-abc")

	h := Audit(zerolog.Nop(), recorder)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(got))
	}
	a := got[0]
	if a.ClinicID != "clinic_a" || a.UserID != "dr-rao" || a.RequestID != "req-abc" {
		t.Errorf("unexpected identity %+v", a)
	}
	if a.Resource != "problems" || a.PatientRef != "pat-1" || a.Action != "read" || a.StatusCode != http.StatusOK {
		t.Errorf("unexpected entry %+v", a)
	}
}

func TestAudit_SkipsOtherPaths(t *testing.T) {
	called := false
	recorder := AuditRecorderFunc(func(context.Context, AuditEntry) error { called = true; return nil })

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	Audit(zerolog.Nop(), recorder)(func(c echo.Context) error { return nil })(c)
	if called {
		t.Error("health checks should not be audited")
	}
}

func TestResourceOf(t *testing.T) {
	tests := map[string]string{
		"/api/v1/problems/123":      "problems",
		"/fhir/$synthesize/bundle":  "$synthesize",
		"/api/v1/":                  "unknown",
		"/metrics":                  "unknown",
		"/api/v1/exchange/1/status": "exchange",
	}
	for path, want := range tests {
		if got := resourceOf(path); got != want {
			t.Errorf("resourceOf(%q) = %q, want %q", path, got, want)
		}
	}
}
