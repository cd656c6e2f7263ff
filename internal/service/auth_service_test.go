package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yourorg/quotevault/internal/domain"
	"github.com/yourorg/quotevault/internal/security/auth"
)

func newTestAuthService(t *testing.T, ttl time.Duration) *AuthService {
	t.Helper()

	tm := auth.NewTokenManager("test-secret", "quotevault-test", ttl)
	svc, err := NewAuthService(tm, "open-sesame", nil)
	require.NoError(t, err)
	return svc
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)

	result, err := svc.Issue("Alice Example", "alice@example.com", "open-sesame")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, "Bearer", result.TokenType)
	require.True(t, result.ExpiresAt.After(time.Now()))

	claims, err := svc.Validate(result.Token)
	require.NoError(t, err)
	require.Equal(t, "Alice Example", claims.FullName)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, "Alice Example <alice@example.com>", claims.Subject)
}

func TestIssueRejectsWrongRegistrationKey(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)

	_, err := svc.Issue("Alice Example", "alice@example.com", "wrong-key")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestIssueRejectsMissingFields(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)

	_, err := svc.Issue("", "alice@example.com", "open-sesame")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Issue("Alice Example", "", "open-sesame")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Issue("Alice Example", "alice@example.com", "")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestIssueDisabledWithoutRegistrationKey(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "quotevault-test", time.Hour)
	svc, err := NewAuthService(tm, "", nil)
	require.NoError(t, err)

	_, err = svc.Issue("Alice Example", "alice@example.com", "anything")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestValidateTamperedToken(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)

	result, err := svc.Issue("Alice Example", "alice@example.com", "open-sesame")
	require.NoError(t, err)

	tampered := []byte(result.Token)
	mid := len(tampered) / 2
	if tampered[mid] == 'a' {
		tampered[mid] = 'b'
	} else {
		tampered[mid] = 'a'
	}

	_, err = svc.Validate(string(tampered))
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrTokenExpired)
}

func TestValidateMalformedToken(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)

	_, err := svc.Validate("definitely-not-a-jwt")
	require.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := newTestAuthService(t, time.Millisecond)

	result, err := svc.Issue("Alice Example", "alice@example.com", "open-sesame")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = svc.Validate(result.Token)
	require.ErrorIs(t, err, domain.ErrTokenExpired)
}
