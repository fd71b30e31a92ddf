package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(UserID(r.Context())))
	})
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		userHeader string
		tokenHdr   string
		wantStatus int
		wantUser   string
	}{
		{"missing user id", "secret", "", "secret", http.StatusUnauthorized, ""},
		{"wrong token", "secret", "alice", "nope", http.StatusUnauthorized, ""},
		{"missing token", "secret", "alice", "", http.StatusUnauthorized, ""},
		{"valid", "secret", "alice", "secret", http.StatusOK, "alice"},
		{"no token configured", "", "alice", "", http.StatusOK, "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{token: tt.token}
			h := s.Authenticate(okHandler())

			req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
			if tt.userHeader != "" {
				req.Header.Set("X-User-ID", tt.userHeader)
			}
			if tt.tokenHdr != "" {
				req.Header.Set("X-Internal-Token", tt.tokenHdr)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantUser != "" && rec.Body.String() != tt.wantUser {
				t.Errorf("user = %q, want %q", rec.Body.String(), tt.wantUser)
			}
		})
	}
}

func TestRequestLoggerCapturesStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	out := buf.String()
	if !strings.Contains(out, "status=418") {
		t.Errorf("log missing status: %s", out)
	}
	if !strings.Contains(out, "path=/health") {
		t.Errorf("log missing path: %s", out)
	}
}

func TestRequestLoggerErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyze", nil))

	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("expected ERROR level log, got: %s", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate(strings.Repeat("a", 20), 10); got != "aaaaaaa..." {
		t.Errorf("truncate long = %q", got)
	}
}
