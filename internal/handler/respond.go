package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/quotevault/internal/domain"
)

// QuoteResponse is the wire form of a quote with its tags
type QuoteResponse struct {
	ID        int64     `json:"id"`
	Quote     string    `json:"quote"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Tags      []string  `json:"tags"`
}

func toQuoteResponse(q *domain.Quote) QuoteResponse {
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	return QuoteResponse{
		ID:        q.ID,
		Quote:     q.Text,
		Source:    q.Source,
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
		Tags:      tags,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError maps a failure onto its status-code class. Every error kind
// keeps its own class; nothing gets downgraded to success.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrTokenMalformed):
		writeJSON(w, logger, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrEmptyCatalog):
		writeJSON(w, logger, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrTokenExpired):
		writeJSON(w, logger, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	default:
		logger.Error("internal error", slog.String("error", err.Error()))
		writeJSON(w, logger, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
