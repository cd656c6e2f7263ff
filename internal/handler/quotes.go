package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/quotevault/internal/domain"
	"github.com/yourorg/quotevault/internal/service"
)

// ListQuotesHandler handles GET /api/v1/quotes with optional search filters
type ListQuotesHandler struct {
	quotes *service.QuoteService
	logger *slog.Logger
}

// NewListQuotesHandler creates a new list handler
func NewListQuotesHandler(quotes *service.QuoteService, logger *slog.Logger) *ListQuotesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListQuotesHandler{quotes: quotes, logger: logger}
}

func (h *ListQuotesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter := domain.SearchFilter{}
	params := r.URL.Query()
	if v := params.Get("quote"); v != "" {
		filter.Text = &v
	}
	if v := params.Get("source"); v != "" {
		filter.Source = &v
	}
	if v := params.Get("tag"); v != "" {
		filter.Tag = &v
	}

	quotes, err := h.quotes.List(filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, toQuoteResponse(q))
	}
	writeJSON(w, h.logger, http.StatusOK, out)
}

// GetQuoteHandler handles GET /api/v1/quotes/{id}
type GetQuoteHandler struct {
	quotes *service.QuoteService
	logger *slog.Logger
}

// NewGetQuoteHandler creates a new get-by-id handler
func NewGetQuoteHandler(quotes *service.QuoteService, logger *slog.Logger) *GetQuoteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetQuoteHandler{quotes: quotes, logger: logger}
}

func (h *GetQuoteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	quote, err := h.quotes.Get(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toQuoteResponse(quote))
}

// RandomQuoteHandler handles GET /api/v1/quotes/random
type RandomQuoteHandler struct {
	quotes *service.QuoteService
	logger *slog.Logger
}

// NewRandomQuoteHandler creates a new random quote handler
func NewRandomQuoteHandler(quotes *service.QuoteService, logger *slog.Logger) *RandomQuoteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RandomQuoteHandler{quotes: quotes, logger: logger}
}

func (h *RandomQuoteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	quote, err := h.quotes.Random()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toQuoteResponse(quote))
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid quote id", domain.ErrValidation)
	}
	return id, nil
}
