package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/quotevault/internal/domain"
	"github.com/yourorg/quotevault/internal/security/auth"
	"golang.org/x/crypto/bcrypt"
)

// AuthService mints bearer tokens for callers who present the shared
// registration key. There is no durable user store: the submitted identity
// fields are trusted and live only inside the token's claims. The key is
// bcrypt-hashed once at startup so no plaintext copy is kept around.
type AuthService struct {
	tokenManager *auth.TokenManager
	regKeyHash   []byte
	logger       *slog.Logger
}

// IssueResult represents the token issuance response
type IssueResult struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewAuthService creates a new authentication service
func NewAuthService(tokenManager *auth.TokenManager, registrationKey string, logger *slog.Logger) (*AuthService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var hash []byte
	if registrationKey != "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(registrationKey), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash registration key: %w", err)
		}
	}

	return &AuthService{
		tokenManager: tokenManager,
		regKeyHash:   hash,
		logger:       logger,
	}, nil
}

// Issue validates the registration request and returns a signed token.
// The password field is checked against the configured registration key,
// not against any per-user credential.
func (s *AuthService) Issue(fullName, email, password string) (*IssueResult, error) {
	if fullName == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: full_name, email and password are required", domain.ErrValidation)
	}

	if s.regKeyHash == nil {
		s.logger.Warn("token issuance attempted but no registration key is configured")
		return nil, fmt.Errorf("%w: registration is disabled", domain.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword(s.regKeyHash, []byte(password)); err != nil {
		s.logger.Info("token issuance denied: wrong registration key",
			slog.String("email", email),
		)
		return nil, fmt.Errorf("%w: wrong credentials", domain.ErrUnauthorized)
	}

	token, expiresAt, err := s.tokenManager.GenerateToken(fullName, email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("token issued",
		slog.String("email", email),
		slog.Time("expires_at", expiresAt),
	)

	return &IssueResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	}, nil
}

// Validate verifies a bearer token and returns its claims
func (s *AuthService) Validate(token string) (*auth.Claims, error) {
	return s.tokenManager.ValidateToken(token)
}
