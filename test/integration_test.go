package test

import (
	"net/http"
	"testing"
	"time"

	"github.com/yourorg/quotevault/internal/handler"
)

func createQuote(t *testing.T, server *TestServerHelper, text, source string, tags []string) handler.QuoteResponse {
	t.Helper()

	resp := server.DoJSON(t, http.MethodPost, "/api/v1/quotes", server.Bearer(t), handler.CreateQuoteRequest{
		Quote:  text,
		Source: source,
		Tags:   tags,
	})
	AssertStatusCode(t, resp, http.StatusCreated)

	var created handler.QuoteResponse
	DecodeJSON(t, resp, &created)
	return created
}

func TestHealthEndpoints(t *testing.T) {
	server := NewTestServer(t)

	resp := server.DoJSON(t, http.MethodGet, "/healthz", "", nil)
	AssertStatusCode(t, resp, http.StatusOK)

	resp = server.DoJSON(t, http.MethodGet, "/readyz", "", nil)
	AssertStatusCode(t, resp, http.StatusOK)
}

func TestCreateAndSearchFlow(t *testing.T) {
	server := NewTestServer(t)

	created := createQuote(t, server, "Stay hungry, stay foolish.", "Steve Jobs", []string{"motivation", "life"})
	if created.ID != 1 {
		t.Errorf("expected first quote to get id 1, got %d", created.ID)
	}

	resp := server.DoJSON(t, http.MethodGet, "/api/v1/quotes?quote=hungry", "", nil)
	AssertStatusCode(t, resp, http.StatusOK)

	var matches []handler.QuoteResponse
	DecodeJSON(t, resp, &matches)
	if len(matches) != 1 || matches[0].ID != created.ID {
		t.Fatalf("expected the created quote to match, got %+v", matches)
	}
	if len(matches[0].Tags) != 2 {
		t.Errorf("expected both tags back, got %v", matches[0].Tags)
	}

	resp = server.DoJSON(t, http.MethodGet, "/api/v1/quotes?quote=nonexistent", "", nil)
	AssertStatusCode(t, resp, http.StatusOK)

	var none []handler.QuoteResponse
	DecodeJSON(t, resp, &none)
	if len(none) != 0 {
		t.Errorf("expected no matches, got %+v", none)
	}
}

func TestMutationsRequireToken(t *testing.T) {
	server := NewTestServer(t)

	resp := server.DoJSON(t, http.MethodPost, "/api/v1/quotes", "", handler.CreateQuoteRequest{
		Quote:  "should not land",
		Source: "nobody",
	})
	AssertStatusCode(t, resp, http.StatusUnauthorized)

	// catalog stays untouched after the rejection
	resp = server.DoJSON(t, http.MethodGet, "/api/v1/quotes", "", nil)
	AssertStatusCode(t, resp, http.StatusOK)

	var all []handler.QuoteResponse
	DecodeJSON(t, resp, &all)
	if len(all) != 0 {
		t.Fatalf("rejected create must not reach the store, got %+v", all)
	}

	created := createQuote(t, server, "real quote", "someone", nil)

	resp = server.DoJSON(t, http.MethodPut, "/api/v1/quotes/1", "Bearer garbage", handler.UpdateQuoteRequest{})
	AssertStatusCode(t, resp, http.StatusBadRequest)

	resp = server.DoJSON(t, http.MethodDelete, "/api/v1/quotes/1", "", nil)
	AssertStatusCode(t, resp, http.StatusUnauthorized)

	got, err := server.Repo.GetByID(created.ID)
	if err != nil {
		t.Fatalf("quote should survive rejected mutations: %v", err)
	}
	if got.Text != "real quote" {
		t.Errorf("quote changed despite rejected mutations: %q", got.Text)
	}
}

func TestPartialUpdate(t *testing.T) {
	server := NewTestServer(t)

	created := createQuote(t, server, "text", "Steve Jobs", []string{"work"})

	time.Sleep(10 * time.Millisecond)

	newSource := "S. Jobs"
	resp := server.DoJSON(t, http.MethodPut, "/api/v1/quotes/1", server.Bearer(t), handler.UpdateQuoteRequest{
		Source: &newSource,
	})
	AssertStatusCode(t, resp, http.StatusOK)

	var updated handler.QuoteResponse
	DecodeJSON(t, resp, &updated)
	if updated.Quote != "text" {
		t.Errorf("text should survive a source-only update, got %q", updated.Quote)
	}
	if updated.Source != "S. Jobs" {
		t.Errorf("expected new source, got %q", updated.Source)
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "work" {
		t.Errorf("tags should survive a source-only update, got %v", updated.Tags)
	}
	if !updated.UpdatedAt.After(created.CreatedAt) {
		t.Errorf("updated_at should advance past created_at")
	}
}

func TestDeleteThenRepeatIs404(t *testing.T) {
	server := NewTestServer(t)

	createQuote(t, server, "to be deleted", "someone", []string{"temp"})
	bearer := server.Bearer(t)

	resp := server.DoJSON(t, http.MethodDelete, "/api/v1/quotes/1", bearer, nil)
	AssertStatusCode(t, resp, http.StatusNoContent)

	resp = server.DoJSON(t, http.MethodDelete, "/api/v1/quotes/1", bearer, nil)
	AssertStatusCode(t, resp, http.StatusNotFound)

	resp = server.DoJSON(t, http.MethodGet, "/api/v1/quotes/1", "", nil)
	AssertStatusCode(t, resp, http.StatusNotFound)
}

func TestRandomQuote(t *testing.T) {
	server := NewTestServer(t)

	// empty catalog has nothing to draw from
	resp := server.DoJSON(t, http.MethodGet, "/api/v1/quotes/random", "", nil)
	AssertStatusCode(t, resp, http.StatusNotFound)

	created := createQuote(t, server, "the only one", "someone", nil)

	resp = server.DoJSON(t, http.MethodGet, "/api/v1/quotes/random", "", nil)
	AssertStatusCode(t, resp, http.StatusOK)

	var got handler.QuoteResponse
	DecodeJSON(t, resp, &got)
	if got.ID != created.ID {
		t.Errorf("singleton catalog must return the one quote, got id %d", got.ID)
	}
}

func TestRegistrationFlow(t *testing.T) {
	server := NewTestServer(t)

	// wrong registration key is rejected
	resp := server.DoJSON(t, http.MethodPost, "/auth", "", handler.RegisterRequest{
		FullName: "Mallory",
		Email:    "mallory@example.com",
		Password: "guessing",
	})
	AssertStatusCode(t, resp, http.StatusUnauthorized)

	// right key issues a token that authorizes mutations
	resp = server.DoJSON(t, http.MethodPost, "/auth", "", handler.RegisterRequest{
		FullName: "Alice Example",
		Email:    "alice@example.com",
		Password: testRegistrationKey,
	})
	AssertStatusCode(t, resp, http.StatusOK)

	var issued struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
	}
	DecodeJSON(t, resp, &issued)
	if issued.Token == "" || issued.TokenType != "Bearer" {
		t.Fatalf("unexpected issuance response: %+v", issued)
	}

	resp = server.DoJSON(t, http.MethodPost, "/api/v1/quotes", "Bearer "+issued.Token, handler.CreateQuoteRequest{
		Quote:  "authorized at last",
		Source: "Alice Example",
	})
	AssertStatusCode(t, resp, http.StatusCreated)
}

func TestGetInvalidID(t *testing.T) {
	server := NewTestServer(t)

	resp := server.DoJSON(t, http.MethodGet, "/api/v1/quotes/abc", "", nil)
	AssertStatusCode(t, resp, http.StatusBadRequest)
}
