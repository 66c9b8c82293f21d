package auth

import (
	"context"
	"time"
)

// JWTService issues and verifies the bearer tokens that guard the API.
type JWTService interface {
	// GenerateToken creates a signed access token for subject, valid for the
	// configured lifetime.
	GenerateToken(ctx context.Context, subject string) (string, error)

	// ValidateToken verifies signature and time claims and returns the claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the verified content of a token.
type Claims struct {
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
