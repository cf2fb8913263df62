package driving

import (
	"context"

	"github.com/custodia-labs/audit-console/internal/core/domain"
)

// AccountService drives the credential and verification flows of the console
type AccountService interface {
	// SignIn exchanges credentials with the backend and starts a session
	SignIn(ctx context.Context, req domain.LoginRequest) (*domain.SessionSnapshot, error)

	// SignOut ends the current session on user request
	SignOut(ctx context.Context) error

	// Register creates an account and remembers the email for verification
	Register(ctx context.Context, req domain.RegisterRequest) error

	// VerifyEmail confirms the pending email with an OTP
	VerifyEmail(ctx context.Context, otp string) error

	// ResendOTP sends a new OTP to the pending email
	ResendOTP(ctx context.Context) error

	// ForgotPassword starts a reset and remembers the email
	ForgotPassword(ctx context.Context, email string) error

	// ResetPassword completes the reset for the pending email
	ResetPassword(ctx context.Context, otp, newPassword string) error
}
