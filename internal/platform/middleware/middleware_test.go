package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/api/v1/visit-types")

	var seen string
	h := RequestID()(func(c echo.Context) error {
		seen, _ = c.Get("request_id").(string)
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if seen == "" {
		t.Error("expected a generated request id in context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response header %q does not match context id %q", got, seen)
	}
}

func TestRequestID_KeepsCallerProvided(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/api/v1/visit-types")
	c.Request().Header.Set(RequestIDHeader, "caller-supplied-id")

	h := RequestID()(func(c echo.Context) error {
		if got, _ := c.Get("request_id").(string); got != "caller-supplied-id" {
			t.Errorf("expected caller-supplied-id in context, got %q", got)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := rec.Header().Get(RequestIDHeader); got != "caller-supplied-id" {
		t.Errorf("expected caller-supplied-id echoed back, got %q", got)
	}
}

func TestLogger_EmitsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	c, _ := newTestContext(http.MethodGet, "/api/v1/patients/123/growth/timeline")
	c.Set("request_id", "req-1")
	c.Set("clinic_id", "clinic_a")

	h := Logger(logger)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	line := buf.String()
	for _, want := range []string{
		`"method":"GET"`,
		`"path":"/api/v1/patients/123/growth/timeline"`,
		`"status":200`,
		`"request_id":"req-1"`,
		`"clinic_id":"clinic_a"`,
	} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %s: %s", want, line)
		}
	}
}

func TestLogger_HandlerErrorsLogAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	c, _ := newTestContext(http.MethodGet, "/api/v1/patients/123/growth/velocity")
	h := Logger(logger)(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	})

	if err := h(c); err == nil {
		t.Fatal("expected handler error to propagate")
	}
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Errorf("expected error-level log line, got %s", buf.String())
	}
}

func TestRecovery_ConvertsPanicTo500(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	c, _ := newTestContext(http.MethodPost, "/api/v1/findings/synthesize")
	h := Recovery(logger)(func(c echo.Context) error {
		panic("nil snapshot")
	})

	err := h(c)
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", httpErr.Code)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Errorf("expected panic to be logged, got %s", buf.String())
	}
}

func TestRecovery_LeavesNormalRequestsAlone(t *testing.T) {
	var buf bytes.Buffer
	c, _ := newTestContext(http.MethodGet, "/health")

	h := Recovery(zerolog.New(&buf))(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no log output, got %s", buf.String())
	}
}
