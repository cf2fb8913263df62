package driven

import (
	"context"

	"github.com/custodia-labs/audit-console/internal/core/domain"
)

// AuthAPI is the backend's authentication surface.
type AuthAPI interface {
	// Login exchanges credentials for a bearer token and user profile
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error)

	// Logout revokes the given token on the backend
	Logout(ctx context.Context, token string) error

	// Register creates an account pending email verification
	Register(ctx context.Context, req domain.RegisterRequest) error

	// VerifyEmail confirms an email with an OTP
	VerifyEmail(ctx context.Context, req domain.VerifyEmailRequest) error

	// ResendOTP sends a fresh OTP to the email
	ResendOTP(ctx context.Context, email string) error

	// ForgotPassword starts the password reset flow
	ForgotPassword(ctx context.Context, req domain.PasswordResetRequest) error

	// ResetPassword completes the password reset flow
	ResetPassword(ctx context.Context, req domain.PasswordResetConfirm) error
}

// TokenSource provides the bearer token attached to authenticated requests.
// Returns "" when there is no session.
type TokenSource interface {
	Token() string
}

// UnauthorizedReporter receives 401 responses from the HTTP layer.
type UnauthorizedReporter interface {
	// Raise reports an unauthorized response.
	// Returns true if the signal was dispatched, false if suppressed.
	Raise(message string) bool
}

// TokenInspector reads claims from a bearer token without verifying it.
type TokenInspector interface {
	// Inspect returns the token claims, or domain.ErrTokenInvalid for opaque tokens
	Inspect(token string) (*domain.TokenClaims, error)
}
