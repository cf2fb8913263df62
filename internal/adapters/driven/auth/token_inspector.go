package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/audit-console/internal/core/domain"
	"github.com/custodia-labs/audit-console/internal/core/ports/driven"
)

// Ensure TokenInspector implements driven.TokenInspector
var _ driven.TokenInspector = (*TokenInspector)(nil)

// backendClaims covers the claim names issued by the compliance backend
type backendClaims struct {
	ID     string      `json:"id"`
	UserID string      `json:"userId"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenInspector reads JWT claims without verifying the signature.
// The console holds no signing key; the backend stays the authority and
// the claims only feed the expiry check.
type TokenInspector struct {
	parser *jwt.Parser
}

// NewTokenInspector creates a TokenInspector
func NewTokenInspector() *TokenInspector {
	return &TokenInspector{parser: jwt.NewParser()}
}

// Inspect returns the claims of a JWT. Opaque tokens yield domain.ErrTokenInvalid.
func (i *TokenInspector) Inspect(token string) (*domain.TokenClaims, error) {
	var c backendClaims
	if _, _, err := i.parser.ParseUnverified(token, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	claims := &domain.TokenClaims{
		Subject: c.Subject,
		Role:    c.Role,
	}
	if claims.Subject == "" {
		claims.Subject = c.ID
	}
	if claims.Subject == "" {
		claims.Subject = c.UserID
	}
	if c.IssuedAt != nil {
		claims.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		claims.ExpiresAt = c.ExpiresAt.Time
	}
	return claims, nil
}
