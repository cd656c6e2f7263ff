package audit

import (
	"context"
	"log/slog"
	"time"
)

// Logger emits structured audit records for security-relevant events:
// token issuance, catalog mutations, and denied requests.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

type requestIDKey struct{}

// WithRequestID stores a request id in the context for audit correlation
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID extracts the request id, or "" when none was attached
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

func (al *Logger) LogAction(ctx context.Context, subject, action, quoteID, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("quote_id", quoteID),
		slog.String("subject", subject),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", RequestID(ctx)),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogMutation(ctx context.Context, subject, action, quoteID string) {
	al.LogAction(ctx, subject, action, quoteID, "ok", "")
}

func (al *Logger) LogTokenIssued(ctx context.Context, subject string) {
	al.LogAction(ctx, subject, "token_issued", "", "ok", "")
}

func (al *Logger) LogDenied(ctx context.Context, subject, reason string) {
	al.LogAction(ctx, subject, "access_denied", "", "denied", reason)
}
