package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/custodia-labs/audit-console/internal/core/domain"
	"github.com/custodia-labs/audit-console/internal/core/ports/driven"
	"github.com/custodia-labs/audit-console/internal/core/ports/driving"
)

// Ensure accountService implements AccountService
var _ driving.AccountService = (*accountService)(nil)

// accountService implements the credential and verification flows.
// It owns no state: the session and the pending email live in the session service.
type accountService struct {
	api     driven.AuthAPI
	session driving.SessionService
	logger  *slog.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(api driven.AuthAPI, session driving.SessionService, logger *slog.Logger) driving.AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &accountService{
		api:     api,
		session: session,
		logger:  logger,
	}
}

// SignIn exchanges credentials with the backend and starts a session.
// A failed attempt leaves the pending email untouched.
func (s *accountService) SignIn(ctx context.Context, req domain.LoginRequest) (*domain.SessionSnapshot, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result, err := s.api.Login(ctx, req)
	if err != nil {
		s.logger.Info("sign in rejected", "email", req.Email, "error", err)
		return nil, err
	}
	if result == nil || result.Token == "" || result.User == nil {
		return nil, fmt.Errorf("%w: login response lacks token or user", domain.ErrTokenInvalid)
	}

	if err := s.session.Login(ctx, *result.User, result.Token); err != nil {
		return nil, err
	}

	snap := s.session.Snapshot()
	return &snap, nil
}

// SignOut ends the session on user request, without a toast
func (s *accountService) SignOut(ctx context.Context) error {
	return s.session.Logout(ctx, "", false)
}

// Register creates the account and remembers its email for verification
func (s *accountService) Register(ctx context.Context, req domain.RegisterRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.api.Register(ctx, req); err != nil {
		return err
	}
	return s.session.SetEmailForVerification(ctx, req.Email)
}

// VerifyEmail confirms the pending email and clears it on success
func (s *accountService) VerifyEmail(ctx context.Context, otp string) error {
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return fmt.Errorf("%w: otp is required", domain.ErrInvalidInput)
	}

	email, err := s.pendingEmail(ctx)
	if err != nil {
		return err
	}

	if err := s.api.VerifyEmail(ctx, domain.VerifyEmailRequest{Email: email, OTP: otp}); err != nil {
		return err
	}
	return s.session.ClearPendingEmail(ctx)
}

// ResendOTP sends a new code to the pending email
func (s *accountService) ResendOTP(ctx context.Context) error {
	email, err := s.pendingEmail(ctx)
	if err != nil {
		return err
	}
	return s.api.ResendOTP(ctx, email)
}

// ForgotPassword starts a reset and remembers the email for the OTP step
func (s *accountService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if err := s.api.ForgotPassword(ctx, domain.PasswordResetRequest{Email: email}); err != nil {
		return err
	}
	return s.session.SetEmailForVerification(ctx, email)
}

// ResetPassword completes the reset for the pending email
func (s *accountService) ResetPassword(ctx context.Context, otp, newPassword string) error {
	otp = strings.TrimSpace(otp)
	if otp == "" || newPassword == "" {
		return fmt.Errorf("%w: otp and new password are required", domain.ErrInvalidInput)
	}

	email, err := s.pendingEmail(ctx)
	if err != nil {
		return err
	}

	req := domain.PasswordResetConfirm{Email: email, OTP: otp, NewPassword: newPassword}
	if err := s.api.ResetPassword(ctx, req); err != nil {
		return err
	}
	return s.session.ClearPendingEmail(ctx)
}

func (s *accountService) pendingEmail(ctx context.Context) (string, error) {
	email, err := s.session.EmailForVerification(ctx)
	if err != nil {
		return "", err
	}
	if email == "" {
		return "", domain.ErrNoPendingEmail
	}
	return email, nil
}
