package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/audit-console/internal/core/domain"
)

func newTestAccountService(t *testing.T) (*sessionFixture, *accountService) {
	t.Helper()
	f := newSessionFixture(t, domain.SessionPolicy{})
	f.start(t)
	svc := NewAccountService(f.api, f.mgr, nil).(*accountService)
	return f, svc
}

func TestAccountService_SignIn(t *testing.T) {
	f, svc := newTestAccountService(t)

	snap, err := svc.SignIn(context.Background(), domain.LoginRequest{Email: " ada@example.com ", Password: "pw"})
	require.NoError(t, err)

	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, domain.StateAuthenticated, snap.State)
	require.NotNil(t, snap.User)
	assert.Equal(t, "user-1", snap.User.ID)
	assert.Equal(t, "token-ada@example.com", f.mgr.Token())
}

func TestAccountService_SignInValidation(t *testing.T) {
	f, svc := newTestAccountService(t)

	_, err := svc.SignIn(context.Background(), domain.LoginRequest{Email: "", Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, f.api.Calls("Login"))
}

// A failed sign in keeps the pending email for the next attempt
func TestAccountService_FailedSignInKeepsPendingEmail(t *testing.T) {
	f, svc := newTestAccountService(t)
	ctx := context.Background()

	require.NoError(t, f.mgr.SetEmailForVerification(ctx, "new@example.com"))
	f.api.LoginFn = func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
		return nil, domain.NewAPIError(http.StatusBadRequest, "Invalid credentials", nil)
	}

	_, err := svc.SignIn(ctx, domain.LoginRequest{Email: "new@example.com", Password: "wrong"})
	require.Error(t, err)

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid credentials", apiErr.Message)

	email, err := f.mgr.EmailForVerification(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", email)
	assert.False(t, f.mgr.IsAuthenticated())
}

func TestAccountService_SignInIncompleteResponse(t *testing.T) {
	f, svc := newTestAccountService(t)
	f.api.LoginFn = func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
		return &domain.LoginResult{Token: "tok"}, nil
	}

	_, err := svc.SignIn(context.Background(), domain.LoginRequest{Email: "a@b.c", Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
	assert.False(t, f.mgr.IsAuthenticated())
}

func TestAccountService_SignOut(t *testing.T) {
	f, svc := newTestAccountService(t)
	ctx := context.Background()

	_, err := svc.SignIn(ctx, domain.LoginRequest{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx))
	assert.False(t, f.mgr.IsAuthenticated())
	assert.Empty(t, f.notifier.Notifications())
	assert.Equal(t, []string{domain.LoginPath}, f.navigator.Paths())
}

func TestAccountService_RegisterAndVerify(t *testing.T) {
	f, svc := newTestAccountService(t)
	ctx := context.Background()

	var verified domain.VerifyEmailRequest
	f.api.VerifyEmailFn = func(ctx context.Context, req domain.VerifyEmailRequest) error {
		verified = req
		return nil
	}

	err := svc.Register(ctx, domain.RegisterRequest{Name: "Acme", Email: "ops@acme.io", Password: "pw"})
	require.NoError(t, err)

	email, err := f.mgr.EmailForVerification(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ops@acme.io", email)

	require.NoError(t, svc.ResendOTP(ctx))
	assert.Equal(t, 1, f.api.Calls("ResendOTP"))

	require.NoError(t, svc.VerifyEmail(ctx, "123456"))
	assert.Equal(t, domain.VerifyEmailRequest{Email: "ops@acme.io", OTP: "123456"}, verified)

	email, err = f.mgr.EmailForVerification(ctx)
	require.NoError(t, err)
	assert.Empty(t, email)
}

func TestAccountService_RegisterValidation(t *testing.T) {
	f, svc := newTestAccountService(t)

	err := svc.Register(context.Background(), domain.RegisterRequest{Email: "ops@acme.io"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, f.api.Calls("Register"))
}

func TestAccountService_VerifyFailureKeepsPendingEmail(t *testing.T) {
	f, svc := newTestAccountService(t)
	ctx := context.Background()

	require.NoError(t, f.mgr.SetEmailForVerification(ctx, "ops@acme.io"))
	f.api.VerifyEmailFn = func(ctx context.Context, req domain.VerifyEmailRequest) error {
		return domain.NewAPIError(http.StatusBadRequest, "Invalid OTP", nil)
	}

	require.Error(t, svc.VerifyEmail(ctx, "000000"))

	email, err := f.mgr.EmailForVerification(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ops@acme.io", email)
}

func TestAccountService_NoPendingEmail(t *testing.T) {
	f, svc := newTestAccountService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.VerifyEmail(ctx, "123456"), domain.ErrNoPendingEmail)
	assert.ErrorIs(t, svc.ResendOTP(ctx), domain.ErrNoPendingEmail)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "123456", "new-pw"), domain.ErrNoPendingEmail)
	assert.Zero(t, f.api.Calls("VerifyEmail"))
	assert.Zero(t, f.api.Calls("ResendOTP"))
	assert.Zero(t, f.api.Calls("ResetPassword"))
}

func TestAccountService_PasswordReset(t *testing.T) {
	f, svc := newTestAccountService(t)
	ctx := context.Background()

	var confirmed domain.PasswordResetConfirm
	f.api.ResetPasswordFn = func(ctx context.Context, req domain.PasswordResetConfirm) error {
		confirmed = req
		return nil
	}

	assert.ErrorIs(t, svc.ForgotPassword(ctx, " "), domain.ErrInvalidInput)
	require.NoError(t, svc.ForgotPassword(ctx, "ada@example.com"))
	assert.ErrorIs(t, svc.ResetPassword(ctx, "", "new-pw"), domain.ErrInvalidInput)

	require.NoError(t, svc.ResetPassword(ctx, "654321", "new-pw"))
	assert.Equal(t, "ada@example.com", confirmed.Email)
	assert.Equal(t, "654321", confirmed.OTP)
	assert.Equal(t, "new-pw", confirmed.NewPassword)

	email, err := f.mgr.EmailForVerification(ctx)
	require.NoError(t, err)
	assert.Empty(t, email)
}
