package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/yourorg/quotevault/internal/domain"
	"github.com/yourorg/quotevault/internal/observability/metrics"
	"github.com/yourorg/quotevault/internal/security/audit"
	"github.com/yourorg/quotevault/internal/service"
)

// RegisterRequest carries the identity fields and the registration key
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterHandler handles POST /auth token issuance
type RegisterHandler struct {
	auth     *service.AuthService
	auditLog *audit.Logger
	logger   *slog.Logger
}

// NewRegisterHandler creates a new registration handler
func NewRegisterHandler(auth *service.AuthService, auditLog *audit.Logger, logger *slog.Logger) *RegisterHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegisterHandler{auth: auth, auditLog: auditLog, logger: logger}
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: invalid request body", domain.ErrValidation))
		return
	}

	result, err := h.auth.Issue(req.FullName, req.Email, req.Password)
	if err != nil {
		metrics.ObserveTokenIssued("denied")
		writeError(w, h.logger, err)
		return
	}

	metrics.ObserveTokenIssued("ok")
	h.auditLog.LogTokenIssued(r.Context(), fmt.Sprintf("%s <%s>", req.FullName, req.Email))
	writeJSON(w, h.logger, http.StatusOK, result)
}
