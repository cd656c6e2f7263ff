package domain

import "errors"

// Sentinel errors for the failure kinds every operation can surface.
// Callers branch with errors.Is; repository and services wrap these with
// context via fmt.Errorf("...: %w", err).
var (
	// ErrValidation marks a malformed or empty required field.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an id-addressed lookup miss.
	ErrNotFound = errors.New("quote not found")

	// ErrEmptyCatalog marks a random selection over zero quotes. Distinct
	// from ErrNotFound: no specific id was requested.
	ErrEmptyCatalog = errors.New("catalog is empty")

	// ErrUnauthorized marks a missing token or one whose signature does
	// not verify.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired marks a token past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenMalformed marks a token whose structure cannot be parsed.
	ErrTokenMalformed = errors.New("token malformed")
)
