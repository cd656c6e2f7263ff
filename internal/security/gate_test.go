package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yourorg/quotevault/internal/domain"
	"github.com/yourorg/quotevault/internal/security/audit"
	"github.com/yourorg/quotevault/internal/security/auth"
)

// countingRepo records how many times the store was touched so denied
// requests can be shown to leave it alone.
type countingRepo struct {
	creates int
	updates int
	deletes int
}

func (r *countingRepo) Create(text, source string, tags []string) (*domain.Quote, error) {
	r.creates++
	return &domain.Quote{ID: 1, Text: text, Source: source, Tags: tags}, nil
}

func (r *countingRepo) GetByID(id int64) (*domain.Quote, error) { return nil, domain.ErrNotFound }

func (r *countingRepo) List(filter domain.SearchFilter) ([]*domain.Quote, error) { return nil, nil }

func (r *countingRepo) Update(id int64, update domain.QuoteUpdate) (*domain.Quote, error) {
	r.updates++
	return &domain.Quote{ID: id}, nil
}

func (r *countingRepo) Delete(id int64) error {
	r.deletes++
	return nil
}

func (r *countingRepo) Count() (int64, error) { return 0, nil }

func (r *countingRepo) GetByOffset(k int64) (*domain.Quote, error) { return nil, domain.ErrNotFound }

func (r *countingRepo) touched() int { return r.creates + r.updates + r.deletes }

func newTestGate(t *testing.T, ttl time.Duration) (*Gate, *countingRepo, *auth.TokenManager) {
	t.Helper()

	repo := &countingRepo{}
	tokens := auth.NewTokenManager("gate-secret", "quotevault-test", ttl)
	gate := NewGate(repo, tokens, audit.NewLogger(nil), nil)
	return gate, repo, tokens
}

func bearerFor(t *testing.T, tokens *auth.TokenManager) string {
	t.Helper()

	token, _, err := tokens.GenerateToken("Alice Example", "alice@example.com")
	require.NoError(t, err)
	return "Bearer " + token
}

func TestGateRejectsMissingToken(t *testing.T) {
	gate, repo, _ := newTestGate(t, time.Hour)

	_, err := gate.Create(context.Background(), "", "text", "source", nil)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.Zero(t, repo.touched())
}

func TestGateRejectsMalformedHeader(t *testing.T) {
	gate, repo, _ := newTestGate(t, time.Hour)

	_, err := gate.Create(context.Background(), "Basic dXNlcjpwYXNz", "text", "source", nil)
	require.ErrorIs(t, err, domain.ErrTokenMalformed)

	_, err = gate.Update(context.Background(), "Bearer not.a.jwt", 1, domain.QuoteUpdate{})
	require.ErrorIs(t, err, domain.ErrTokenMalformed)

	require.Zero(t, repo.touched())
}

func TestGateRejectsExpiredToken(t *testing.T) {
	gate, repo, tokens := newTestGate(t, time.Millisecond)

	bearer := bearerFor(t, tokens)
	time.Sleep(20 * time.Millisecond)

	err := gate.Delete(context.Background(), bearer, 1)
	require.ErrorIs(t, err, domain.ErrTokenExpired)
	require.Zero(t, repo.touched())
}

func TestGateRejectsForeignSignature(t *testing.T) {
	gate, repo, _ := newTestGate(t, time.Hour)

	other := auth.NewTokenManager("some-other-secret", "quotevault-test", time.Hour)
	bearer := bearerFor(t, other)

	_, err := gate.Create(context.Background(), bearer, "text", "source", nil)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.Zero(t, repo.touched())
}

func TestGateForwardsWithValidToken(t *testing.T) {
	gate, repo, tokens := newTestGate(t, time.Hour)
	bearer := bearerFor(t, tokens)
	ctx := context.Background()

	quote, err := gate.Create(ctx, bearer, "text", "source", []string{"a"})
	require.NoError(t, err)
	require.Equal(t, int64(1), quote.ID)
	require.Equal(t, 1, repo.creates)

	_, err = gate.Update(ctx, bearer, 1, domain.QuoteUpdate{})
	require.NoError(t, err)
	require.Equal(t, 1, repo.updates)

	require.NoError(t, gate.Delete(ctx, bearer, 1))
	require.Equal(t, 1, repo.deletes)
}
