package httpapi

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fintrack/fintrack/internal/logging"
	"github.com/fintrack/fintrack/internal/server/auth"
	"github.com/fintrack/fintrack/internal/server/config"
)

func newTestServer() *Server {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	return NewServer(nil, nil, nil, nil, nil, cfg, logger)
}

func echoUserID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(userID(r)))
	})
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	s := newTestServer()
	h := s.authMiddleware(echoUserID())

	req := httptest.NewRequest(http.MethodGet, "/api/incomes", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	s := newTestServer()
	h := s.authMiddleware(echoUserID())

	req := httptest.NewRequest(http.MethodGet, "/api/incomes", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthMiddleware_InjectsUserID(t *testing.T) {
	s := newTestServer()
	h := s.authMiddleware(echoUserID())

	token, err := auth.GenerateToken("user-42", s.jwtSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/incomes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != "user-42" {
		t.Fatalf("expected user-42 in context, got %q", rr.Body.String())
	}
}
