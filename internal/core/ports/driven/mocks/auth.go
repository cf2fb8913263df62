package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/audit-console/internal/core/domain"
	"github.com/custodia-labs/audit-console/internal/core/ports/driven"
)

// Ensure MockAuthAPI implements AuthAPI
var _ driven.AuthAPI = (*MockAuthAPI)(nil)

// MockAuthAPI is a recording AuthAPI for testing.
// Every call is counted; behaviour can be replaced through the Fn hooks.
type MockAuthAPI struct {
	mu    sync.Mutex
	calls map[string]int

	LogoutTokens []string

	// Custom behavior hooks (optional)
	LoginFn          func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error)
	LogoutFn         func(ctx context.Context, token string) error
	RegisterFn       func(ctx context.Context, req domain.RegisterRequest) error
	VerifyEmailFn    func(ctx context.Context, req domain.VerifyEmailRequest) error
	ResendOTPFn      func(ctx context.Context, email string) error
	ForgotPasswordFn func(ctx context.Context, req domain.PasswordResetRequest) error
	ResetPasswordFn  func(ctx context.Context, req domain.PasswordResetConfirm) error
}

// NewMockAuthAPI creates a MockAuthAPI whose calls all succeed
func NewMockAuthAPI() *MockAuthAPI {
	return &MockAuthAPI{calls: make(map[string]int)}
}

func (m *MockAuthAPI) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
}

// Calls returns how many times the named method was invoked
func (m *MockAuthAPI) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *MockAuthAPI) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	m.record("Login")
	if m.LoginFn != nil {
		return m.LoginFn(ctx, req)
	}
	return &domain.LoginResult{
		Token: "token-" + req.Email,
		User:  &domain.User{ID: "user-1", Email: req.Email, Role: domain.RoleCompany},
	}, nil
}

func (m *MockAuthAPI) Logout(ctx context.Context, token string) error {
	m.record("Logout")
	m.mu.Lock()
	m.LogoutTokens = append(m.LogoutTokens, token)
	m.mu.Unlock()
	if m.LogoutFn != nil {
		return m.LogoutFn(ctx, token)
	}
	return nil
}

func (m *MockAuthAPI) Register(ctx context.Context, req domain.RegisterRequest) error {
	m.record("Register")
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, req)
	}
	return nil
}

func (m *MockAuthAPI) VerifyEmail(ctx context.Context, req domain.VerifyEmailRequest) error {
	m.record("VerifyEmail")
	if m.VerifyEmailFn != nil {
		return m.VerifyEmailFn(ctx, req)
	}
	return nil
}

func (m *MockAuthAPI) ResendOTP(ctx context.Context, email string) error {
	m.record("ResendOTP")
	if m.ResendOTPFn != nil {
		return m.ResendOTPFn(ctx, email)
	}
	return nil
}

func (m *MockAuthAPI) ForgotPassword(ctx context.Context, req domain.PasswordResetRequest) error {
	m.record("ForgotPassword")
	if m.ForgotPasswordFn != nil {
		return m.ForgotPasswordFn(ctx, req)
	}
	return nil
}

func (m *MockAuthAPI) ResetPassword(ctx context.Context, req domain.PasswordResetConfirm) error {
	m.record("ResetPassword")
	if m.ResetPasswordFn != nil {
		return m.ResetPasswordFn(ctx, req)
	}
	return nil
}
