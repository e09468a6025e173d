package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLogger_AttachesContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	var sawLogger bool
	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = LoggerFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected handler to run, got %d", rec.Code)
	}
	if !sawLogger {
		t.Fatalf("expected request scoped logger in context")
	}

	logged := buf.String()
	if !strings.Contains(logged, "request started") || !strings.Contains(logged, "request completed") {
		t.Fatalf("expected start and completion log lines, got %q", logged)
	}
	if !strings.Contains(logged, "request_id") {
		t.Fatalf("expected request_id attribute, got %q", logged)
	}
}
