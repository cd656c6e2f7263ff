package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/yourorg/quotevault/internal/handler"
	"github.com/yourorg/quotevault/internal/repository"
	"github.com/yourorg/quotevault/internal/security"
	"github.com/yourorg/quotevault/internal/security/audit"
	"github.com/yourorg/quotevault/internal/security/auth"
	"github.com/yourorg/quotevault/internal/service"
	"github.com/yourorg/quotevault/pkg/database"
)

const (
	testJWTSecret       = "integration-test-secret"
	testRegistrationKey = "open-sesame"
)

// TestServerHelper runs the full HTTP surface against a throwaway
// on-disk store, wired the same way the server binary wires it.
type TestServerHelper struct {
	Server *httptest.Server
	Tokens *auth.TokenManager
	Repo   *repository.SQLiteQuoteRepository
}

func NewTestServer(t *testing.T) *TestServerHelper {
	t.Helper()

	log := slog.Default()

	pool, err := database.NewConnectionPool(
		context.Background(),
		&database.Config{Path: filepath.Join(t.TempDir(), "quotes.db")},
		log,
	)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	repo := repository.NewSQLiteQuoteRepository(pool.GetDB(), log)
	quoteService := service.NewQuoteService(repo, log)

	tokens := auth.NewTokenManager(testJWTSecret, "quotevault-test", time.Hour)
	authService, err := service.NewAuthService(tokens, testRegistrationKey, log)
	if err != nil {
		t.Fatalf("failed to build auth service: %v", err)
	}

	auditLog := audit.NewLogger(log)
	gate := security.NewGate(repo, tokens, auditLog, log)

	healthHandler := handler.NewHealthHandler(pool, log)

	mux := http.NewServeMux()
	mux.Handle("POST /auth", handler.NewRegisterHandler(authService, auditLog, log))
	mux.Handle("GET /api/v1/quotes", handler.NewListQuotesHandler(quoteService, log))
	mux.Handle("POST /api/v1/quotes", handler.NewCreateQuoteHandler(gate, log))
	mux.Handle("GET /api/v1/quotes/random", handler.NewRandomQuoteHandler(quoteService, log))
	mux.Handle("GET /api/v1/quotes/{id}", handler.NewGetQuoteHandler(quoteService, log))
	mux.Handle("PUT /api/v1/quotes/{id}", handler.NewUpdateQuoteHandler(gate, log))
	mux.Handle("DELETE /api/v1/quotes/{id}", handler.NewDeleteQuoteHandler(gate, log))
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &TestServerHelper{
		Server: server,
		Tokens: tokens,
		Repo:   repo,
	}
}

func (h *TestServerHelper) URL() string {
	return h.Server.URL
}

// Bearer mints a valid Authorization header value for mutation requests.
func (h *TestServerHelper) Bearer(t *testing.T) string {
	t.Helper()

	token, _, err := h.Tokens.GenerateToken("Test User", "test@example.com")
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return "Bearer " + token
}

// DoJSON sends a request with an optional JSON body and bearer header.
func (h *TestServerHelper) DoJSON(t *testing.T, method, path, bearer string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, h.URL()+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// DecodeJSON reads the response body into out.
func DecodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

// AssertStatusCode fails the test when the response status differs.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()

	if resp.StatusCode != expected {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d (body: %s)", expected, resp.StatusCode, body)
	}
}
