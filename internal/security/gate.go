package security

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/yourorg/quotevault/internal/domain"
	"github.com/yourorg/quotevault/internal/observability/metrics"
	"github.com/yourorg/quotevault/internal/security/audit"
	"github.com/yourorg/quotevault/internal/security/auth"
)

// Gate wraps the repository's mutating operations behind bearer-token
// authorization. A request is validated before the store is touched, so a
// rejected call leaves no partial side effect. Read operations are never
// gated and go straight to the repository.
type Gate struct {
	repo   domain.QuoteRepository
	tokens *auth.TokenManager
	audit  *audit.Logger
	logger *slog.Logger
}

// NewGate creates a new authorization gate over the repository
func NewGate(repo domain.QuoteRepository, tokens *auth.TokenManager, auditLog *audit.Logger, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		repo:   repo,
		tokens: tokens,
		audit:  auditLog,
		logger: logger,
	}
}

// authorize checks the bearer credential and returns the claims. The
// error carries the specific sub-reason: missing token, malformed header
// or token, expired, or bad signature.
func (g *Gate) authorize(ctx context.Context, bearer string) (*auth.Claims, error) {
	if bearer == "" {
		g.audit.LogDenied(ctx, "", "missing token")
		return nil, fmt.Errorf("%w: missing token", domain.ErrUnauthorized)
	}

	token, err := auth.ExtractToken(bearer)
	if err != nil {
		g.audit.LogDenied(ctx, "", "malformed authorization header")
		return nil, err
	}

	claims, err := g.tokens.ValidateToken(token)
	if err != nil {
		g.audit.LogDenied(ctx, "", err.Error())
		return nil, err
	}

	return claims, nil
}

// Create forwards to the repository after the bearer credential validates
func (g *Gate) Create(ctx context.Context, bearer, text, source string, tags []string) (*domain.Quote, error) {
	claims, err := g.authorize(ctx, bearer)
	if err != nil {
		metrics.ObserveMutation("create", "denied")
		return nil, err
	}

	quote, err := g.repo.Create(text, source, tags)
	if err != nil {
		metrics.ObserveMutation("create", "error")
		return nil, err
	}

	metrics.ObserveMutation("create", "ok")
	g.audit.LogMutation(ctx, claims.Subject, "create", strconv.FormatInt(quote.ID, 10))
	return quote, nil
}

// Update forwards to the repository after the bearer credential validates
func (g *Gate) Update(ctx context.Context, bearer string, id int64, update domain.QuoteUpdate) (*domain.Quote, error) {
	claims, err := g.authorize(ctx, bearer)
	if err != nil {
		metrics.ObserveMutation("update", "denied")
		return nil, err
	}

	quote, err := g.repo.Update(id, update)
	if err != nil {
		metrics.ObserveMutation("update", "error")
		return nil, err
	}

	metrics.ObserveMutation("update", "ok")
	g.audit.LogMutation(ctx, claims.Subject, "update", strconv.FormatInt(id, 10))
	return quote, nil
}

// Delete forwards to the repository after the bearer credential validates
func (g *Gate) Delete(ctx context.Context, bearer string, id int64) error {
	claims, err := g.authorize(ctx, bearer)
	if err != nil {
		metrics.ObserveMutation("delete", "denied")
		return err
	}

	if err := g.repo.Delete(id); err != nil {
		metrics.ObserveMutation("delete", "error")
		return err
	}

	metrics.ObserveMutation("delete", "ok")
	g.audit.LogMutation(ctx, claims.Subject, "delete", strconv.FormatInt(id, 10))
	return nil
}
