package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newCapturedLogger(component string) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := New(Config{
		Level:     slog.LevelDebug,
		Component: component,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
	return logger, buf
}

func TestLoggerTagsComponent(t *testing.T) {
	logger, buf := newCapturedLogger(ComponentWorker)

	logger.Info("backup complete", FieldUserID, int64(7))

	out := buf.String()
	if !strings.Contains(out, "component=worker") {
		t.Fatalf("missing component tag: %q", out)
	}
	if !strings.Contains(out, "user_id=7") {
		t.Fatalf("missing user_id field: %q", out)
	}
}

func TestWithComponentSwitchesTag(t *testing.T) {
	logger, _ := newCapturedLogger(ComponentApp)

	httpLogger := logger.WithComponent(ComponentHTTP)
	if httpLogger.Component() != ComponentHTTP {
		t.Fatalf("component = %q, want %q", httpLogger.Component(), ComponentHTTP)
	}
	if logger.Component() != ComponentApp {
		t.Fatalf("original logger changed component to %q", logger.Component())
	}
}

func TestMiddlewareAttachesLogger(t *testing.T) {
	logger, buf := newCapturedLogger(ComponentHTTP)

	handler := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).InfoContext(r.Context(), "handled")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rpc/auth.me", nil))

	if !strings.Contains(buf.String(), "component=http") {
		t.Fatalf("request log missing component: %q", buf.String())
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil {
		t.Fatal("expected fallback logger")
	}
	if logger.Component() != ComponentApp {
		t.Fatalf("component = %q, want %q", logger.Component(), ComponentApp)
	}
}
