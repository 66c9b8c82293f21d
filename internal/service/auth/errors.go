package auth

import "errors"

// Errors returned by JWTService. The auth middleware maps all of them to 401.
var (
	// ErrInvalidToken covers malformed tokens, bad signatures and wrong signing methods.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrEmptySubject is returned when asked to sign a token without a subject.
	ErrEmptySubject = errors.New("token subject is required")
)
