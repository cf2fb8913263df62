package domain

import (
	"strings"
	"time"
)

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both credentials are present
func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return ErrInvalidInput
	}
	return nil
}

// LoginResult is returned by the backend after a successful credential exchange
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// RegisterRequest creates a company account pending email verification
type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"companyName,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// Validate checks the mandatory registration fields
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return ErrInvalidInput
	}
	return nil
}

// VerifyEmailRequest confirms an email with the OTP sent by the backend
type VerifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// PasswordResetRequest starts the forgot-password flow
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirm completes the forgot-password flow
type PasswordResetConfirm struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// TokenClaims are the claims read from a bearer token without verifying it.
// The console never validates signatures; the backend remains the authority.
type TokenClaims struct {
	Subject   string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasExpiry reports whether the token declared an exp claim
func (c *TokenClaims) HasExpiry() bool {
	return c != nil && !c.ExpiresAt.IsZero()
}

// ExpiredAt reports whether the token is past its exp claim at now
func (c *TokenClaims) ExpiredAt(now time.Time) bool {
	return c.HasExpiry() && !now.Before(c.ExpiresAt)
}
