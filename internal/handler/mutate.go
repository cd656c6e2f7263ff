package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/yourorg/quotevault/internal/domain"
	"github.com/yourorg/quotevault/internal/security"
)

// CreateQuoteRequest represents the request to create a quote
type CreateQuoteRequest struct {
	Quote  string   `json:"quote"`
	Source string   `json:"source"`
	Tags   []string `json:"tags"`
}

// UpdateQuoteRequest represents a partial update. Omitted fields keep
// their prior values; a present tags field (even empty) replaces the
// whole tag set.
type UpdateQuoteRequest struct {
	Quote  *string   `json:"quote"`
	Source *string   `json:"source"`
	Tags   *[]string `json:"tags"`
}

// CreateQuoteHandler handles POST /api/v1/quotes (auth required)
type CreateQuoteHandler struct {
	gate   *security.Gate
	logger *slog.Logger
}

// NewCreateQuoteHandler creates a new create handler
func NewCreateQuoteHandler(gate *security.Gate, logger *slog.Logger) *CreateQuoteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateQuoteHandler{gate: gate, logger: logger}
}

func (h *CreateQuoteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: invalid request body", domain.ErrValidation))
		return
	}

	quote, err := h.gate.Create(r.Context(), r.Header.Get("Authorization"), req.Quote, req.Source, req.Tags)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, toQuoteResponse(quote))
}

// UpdateQuoteHandler handles PUT /api/v1/quotes/{id} (auth required)
type UpdateQuoteHandler struct {
	gate   *security.Gate
	logger *slog.Logger
}

// NewUpdateQuoteHandler creates a new update handler
func NewUpdateQuoteHandler(gate *security.Gate, logger *slog.Logger) *UpdateQuoteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateQuoteHandler{gate: gate, logger: logger}
}

func (h *UpdateQuoteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req UpdateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: invalid request body", domain.ErrValidation))
		return
	}

	quote, err := h.gate.Update(r.Context(), r.Header.Get("Authorization"), id, domain.QuoteUpdate{
		Text:   req.Quote,
		Source: req.Source,
		Tags:   req.Tags,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toQuoteResponse(quote))
}

// DeleteQuoteHandler handles DELETE /api/v1/quotes/{id} (auth required)
type DeleteQuoteHandler struct {
	gate   *security.Gate
	logger *slog.Logger
}

// NewDeleteQuoteHandler creates a new delete handler
func NewDeleteQuoteHandler(gate *security.Gate, logger *slog.Logger) *DeleteQuoteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeleteQuoteHandler{gate: gate, logger: logger}
}

func (h *DeleteQuoteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.gate.Delete(r.Context(), r.Header.Get("Authorization"), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
