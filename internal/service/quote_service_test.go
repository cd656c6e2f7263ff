package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yourorg/quotevault/internal/domain"
	"github.com/yourorg/quotevault/internal/repository"
	"github.com/yourorg/quotevault/pkg/database"
)

func newTestService(t *testing.T) (*QuoteService, domain.QuoteRepository) {
	t.Helper()

	pool, err := database.NewConnectionPool(
		context.Background(),
		&database.Config{Path: filepath.Join(t.TempDir(), "quotes.db")},
		nil,
	)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	repo := repository.NewSQLiteQuoteRepository(pool.GetDB(), nil)
	return NewQuoteService(repo, nil), repo
}

func TestRandomEmptyCatalog(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Random()
	require.ErrorIs(t, err, domain.ErrEmptyCatalog)
}

func TestRandomSingleton(t *testing.T) {
	svc, repo := newTestService(t)

	created, err := repo.Create("only one", "src", []string{"solo"})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		q, err := svc.Random()
		require.NoError(t, err)
		require.Equal(t, created.ID, q.ID)
		require.Equal(t, []string{"solo"}, q.Tags)
	}
}

func TestRandomIsRoughlyUniform(t *testing.T) {
	svc, repo := newTestService(t)

	const quotes = 5
	const trials = 2000

	for i := 0; i < quotes; i++ {
		_, err := repo.Create(fmt.Sprintf("quote %d", i), "src", nil)
		require.NoError(t, err)
	}

	counts := map[int64]int{}
	for i := 0; i < trials; i++ {
		q, err := svc.Random()
		require.NoError(t, err)
		counts[q.ID]++
	}

	require.Len(t, counts, quotes)
	// expectation is trials/quotes = 400; bounds are loose enough that a
	// correct implementation essentially never trips them
	for id, n := range counts {
		require.Greater(t, n, 250, "quote %d drawn %d times", id, n)
		require.Less(t, n, 550, "quote %d drawn %d times", id, n)
	}
}

// racingRepo simulates a delete landing between the cardinality check and
// the positional fetch.
type racingRepo struct {
	domain.QuoteRepository
	misses int
	quote  *domain.Quote
}

func (r *racingRepo) Count() (int64, error) { return 3, nil }

func (r *racingRepo) GetByOffset(k int64) (*domain.Quote, error) {
	if r.misses > 0 {
		r.misses--
		return nil, domain.ErrNotFound
	}
	if r.quote == nil {
		return nil, domain.ErrNotFound
	}
	return r.quote, nil
}

func TestRandomRetriesWhenSelectionRacesADelete(t *testing.T) {
	q := &domain.Quote{ID: 7, Text: "still here", Source: "src"}
	svc := NewQuoteService(&racingRepo{misses: 1, quote: q}, nil)

	got, err := svc.Random()
	require.NoError(t, err)
	require.Equal(t, int64(7), got.ID)
}

func TestRandomGivesUpWhenCatalogKeepsShrinking(t *testing.T) {
	svc := NewQuoteService(&racingRepo{misses: 2}, nil)

	_, err := svc.Random()
	require.ErrorIs(t, err, domain.ErrEmptyCatalog)
}

func TestListPassesFilterThrough(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := repo.Create("alpha", "one", []string{"x"})
	require.NoError(t, err)
	_, err = repo.Create("beta", "two", []string{"y"})
	require.NoError(t, err)

	text := "alp"
	quotes, err := svc.List(domain.SearchFilter{Text: &text})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	require.Equal(t, "alpha", quotes[0].Text)
}
