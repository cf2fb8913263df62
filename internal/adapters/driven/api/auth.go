package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/custodia-labs/audit-console/internal/core/domain"
	"github.com/custodia-labs/audit-console/internal/core/ports/driven"
)

// Ensure Client implements AuthAPI
var _ driven.AuthAPI = (*Client)(nil)

// Backend authentication endpoints
const (
	pathLogin          = "/auth/login"
	pathLogout         = "/auth/logout"
	pathRegister       = "/auth/register"
	pathVerifyEmail    = "/auth/verify-email"
	pathResendOTP      = "/auth/resend-otp"
	pathForgotPassword = "/auth/forgot-password"
	pathResetPassword  = "/auth/reset-password"
)

// Login exchanges credentials for a token and the user profile
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodPost, Path: pathLogin, Body: req})
	if err != nil {
		return nil, err
	}

	var result domain.LoginResult
	if err := decodeEnvelope(resp.JSON, &result); err != nil {
		return nil, err
	}
	if result.Token == "" || result.User == nil {
		return nil, fmt.Errorf("%w: login response lacks token or user", domain.ErrTokenInvalid)
	}
	return &result, nil
}

// Logout revokes token on the backend. The token is usually already stale,
// so a 401 here is not reported as a session expiry.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   pathLogout,
		Token:  token,
	})
	return err
}

func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) error {
	return c.post(ctx, pathRegister, req)
}

func (c *Client) VerifyEmail(ctx context.Context, req domain.VerifyEmailRequest) error {
	return c.post(ctx, pathVerifyEmail, req)
}

func (c *Client) ResendOTP(ctx context.Context, email string) error {
	return c.post(ctx, pathResendOTP, domain.PasswordResetRequest{Email: email})
}

func (c *Client) ForgotPassword(ctx context.Context, req domain.PasswordResetRequest) error {
	return c.post(ctx, pathForgotPassword, req)
}

func (c *Client) ResetPassword(ctx context.Context, req domain.PasswordResetConfirm) error {
	return c.post(ctx, pathResetPassword, req)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
	return err
}

// decodeEnvelope decodes raw into out, unwrapping a {"data": ...} envelope
func decodeEnvelope(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty response", domain.ErrTokenInvalid)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 && envelope.Data[0] == '{' {
		raw = envelope.Data
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
