package service

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/yourorg/quotevault/internal/domain"
	"github.com/yourorg/quotevault/internal/observability/metrics"
)

// QuoteService exposes the read side of the catalog, including uniform
// random selection over whatever set of quotes currently exists.
type QuoteService struct {
	repo   domain.QuoteRepository
	logger *slog.Logger
	// pick draws an integer uniformly from [0, n); swapped out in tests
	pick func(n int64) int64
}

// NewQuoteService creates a new quote service
func NewQuoteService(repo domain.QuoteRepository, logger *slog.Logger) *QuoteService {
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteService{
		repo:   repo,
		logger: logger,
		pick:   rand.Int64N,
	}
}

// Get returns the quote with the given id
func (s *QuoteService) Get(id int64) (*domain.Quote, error) {
	return s.repo.GetByID(id)
}

// List returns all quotes matching the filter, ordered by id ascending
func (s *QuoteService) List(filter domain.SearchFilter) ([]*domain.Quote, error) {
	quotes, err := s.repo.List(filter)
	if err != nil {
		return nil, err
	}
	metrics.ObserveSearch(len(quotes), !filter.Empty())
	return quotes, nil
}

// Random returns one quote chosen with uniform probability over the
// current catalog, re-evaluated fresh on every call.
//
// Cardinality check and positional fetch are two separate reads, so a
// concurrent delete can shift the row at position k. One re-read covers
// that; a second miss means the catalog emptied under us.
func (s *QuoteService) Random() (*domain.Quote, error) {
	for attempt := 0; attempt < 2; attempt++ {
		n, err := s.repo.Count()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, fmt.Errorf("random selection: %w", domain.ErrEmptyCatalog)
		}

		k := s.pick(n)
		quote, err := s.repo.GetByOffset(k)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Debug("random selection raced a delete, retrying",
					slog.Int64("offset", k),
					slog.Int64("count", n),
				)
				continue
			}
			return nil, err
		}

		metrics.ObserveRandomSelection()
		return quote, nil
	}

	return nil, fmt.Errorf("random selection: %w", domain.ErrEmptyCatalog)
}
