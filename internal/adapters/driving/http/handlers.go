package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/swaggo/swag"

	"github.com/custodia-labs/audit-console/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the agent version response
// @Description Agent version response
type VersionResponse struct {
	Version    string `json:"version" example:"1.0.0"`
	InstanceID string `json:"instanceId,omitempty" example:"5b0c7f1e-6a55-4d9b-8f0e-3f6c0f3b1d2a"`
}

// CheckResponse reports the outcome of a validity check
// @Description Session validity check result
type CheckResponse struct {
	Valid bool `json:"valid" example:"true"`
}

// ActivityRequest reports one user activity signal
// @Description User activity signal
type ActivityRequest struct {
	Kind domain.ActivityKind `json:"kind" example:"click"`
}

// VisibilityRequest reports a tab visibility transition
// @Description Tab visibility transition
type VisibilityRequest struct {
	Visible *bool `json:"visible" example:"true"`
}

// EmailRequest carries a single email address
// @Description Email address
type EmailRequest struct {
	Email string `json:"email" example:"ada@example.com"`
}

// PendingEmailResponse returns the email awaiting verification
// @Description Pending verification email
type PendingEmailResponse struct {
	Email string `json:"email" example:"ada@example.com"`
}

// OTPRequest carries a one-time password
// @Description One-time password
type OTPRequest struct {
	OTP string `json:"otp" example:"123456"`
}

// ResetPasswordRequest completes a password reset
// @Description Password reset completion
type ResetPasswordRequest struct {
	OTP         string `json:"otp" example:"123456"`
	NewPassword string `json:"newPassword" example:"correct-horse"`
}

// LogoutRequest ends the session, optionally with a toast
// @Description Logout options
type LogoutRequest struct {
	Message   string `json:"message,omitempty" example:"Signed out"`
	ShowToast bool   `json:"showToast,omitempty"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the agent
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the agent (checks the session store)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			s.logger.Warn("session store not ready", "error", err)
			writeError(w, http.StatusServiceUnavailable, "session store unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ready"})
}

// handleVersion godoc
// @Summary      Get agent version
// @Description  Returns the agent version and instance id
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version, InstanceID: s.instanceID})
}

func (s *Server) handleSwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusNotFound, "api documentation not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// Auth endpoints

// handleLogin godoc
// @Summary      Sign in
// @Description  Exchange credentials with the backend and start a console session
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Login credentials"
// @Success      200      {object}  domain.SessionSnapshot
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /api/v1/auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	snapshot, err := s.accounts.SignIn(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// handleLogout godoc
// @Summary      Sign out
// @Description  End the current session. Concurrent calls collapse into one logout.
// @Tags         Authentication
// @Accept       json
// @Param        request  body  LogoutRequest  false  "Logout options"
// @Success      204
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /api/v1/auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	if req.Message != "" || req.ShowToast {
		err = s.session.Logout(r.Context(), req.Message, req.ShowToast)
	} else {
		err = s.accounts.SignOut(r.Context())
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleRegister godoc
// @Summary      Register
// @Description  Create a company account and remember the email for verification
// @Tags         Authentication
// @Accept       json
// @Param        request  body  domain.RegisterRequest  true  "Registration details"
// @Success      202
// @Failure      400  {object}  ErrorResponse  "Invalid request body"
// @Failure      409  {object}  ErrorResponse  "Email already registered"
// @Router       /api/v1/auth/register [post]
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.accounts.Register(r.Context(), req); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// handleVerifyEmail godoc
// @Summary      Verify email
// @Description  Confirm the pending email with an OTP
// @Tags         Authentication
// @Accept       json
// @Param        request  body  OTPRequest  true  "OTP"
// @Success      204
// @Failure      400  {object}  ErrorResponse  "Invalid request body"
// @Failure      409  {object}  ErrorResponse  "No pending email"
// @Router       /api/v1/auth/verify-email [post]
func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req OTPRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.accounts.VerifyEmail(r.Context(), req.OTP); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleResendOTP godoc
// @Summary      Resend OTP
// @Description  Send a fresh OTP to the pending email
// @Tags         Authentication
// @Success      204
// @Failure      409  {object}  ErrorResponse  "No pending email"
// @Router       /api/v1/auth/resend-otp [post]
func (s *Server) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.ResendOTP(r.Context()); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleForgotPassword godoc
// @Summary      Forgot password
// @Description  Start a password reset and remember the email
// @Tags         Authentication
// @Accept       json
// @Param        request  body  EmailRequest  true  "Account email"
// @Success      202
// @Failure      400  {object}  ErrorResponse  "Invalid request body"
// @Router       /api/v1/auth/forgot-password [post]
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// handleResetPassword godoc
// @Summary      Reset password
// @Description  Complete the password reset for the pending email
// @Tags         Authentication
// @Accept       json
// @Param        request  body  ResetPasswordRequest  true  "OTP and new password"
// @Success      204
// @Failure      400  {object}  ErrorResponse  "Invalid request body"
// @Failure      409  {object}  ErrorResponse  "No pending email"
// @Router       /api/v1/auth/reset-password [post]
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.accounts.ResetPassword(r.Context(), req.OTP, req.NewPassword); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Session endpoints

// handleGetSession godoc
// @Summary      Current session
// @Description  Returns a read-only snapshot of the session
// @Tags         Session
// @Produce      json
// @Success      200  {object}  domain.SessionSnapshot
// @Router       /api/v1/session [get]
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

// handleCheckSession godoc
// @Summary      Check session validity
// @Description  Enforces the absolute and idle ceilings now; an expired session is logged out
// @Tags         Session
// @Produce      json
// @Success      200  {object}  CheckResponse
// @Router       /api/v1/session/check [post]
func (s *Server) handleCheckSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CheckResponse{Valid: s.session.CheckSessionValidity()})
}

// handleActivity godoc
// @Summary      Record activity
// @Description  Report a user activity signal. Signals are throttled.
// @Tags         Session
// @Accept       json
// @Param        request  body  ActivityRequest  true  "Activity kind"
// @Success      204
// @Failure      400  {object}  ErrorResponse  "Unknown activity kind"
// @Router       /api/v1/session/activity [post]
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	var req ActivityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.Kind.Valid() {
		writeError(w, http.StatusBadRequest, "unknown activity kind")
		return
	}

	s.session.RecordActivity(req.Kind)
	w.WriteHeader(http.StatusNoContent)
}

// handleVisibility godoc
// @Summary      Visibility change
// @Description  Report a tab visibility transition; becoming visible triggers a validity check
// @Tags         Session
// @Accept       json
// @Param        request  body  VisibilityRequest  true  "Visibility"
// @Success      204
// @Failure      400  {object}  ErrorResponse  "Invalid request body"
// @Router       /api/v1/session/visibility [post]
func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	var req VisibilityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Visible == nil {
		writeError(w, http.StatusBadRequest, "visible is required")
		return
	}

	s.session.VisibilityChanged(*req.Visible)
	w.WriteHeader(http.StatusNoContent)
}

// handleGetPendingEmail godoc
// @Summary      Pending email
// @Description  Returns the email awaiting verification
// @Tags         Session
// @Produce      json
// @Success      200  {object}  PendingEmailResponse
// @Failure      404  {object}  ErrorResponse  "No pending email"
// @Router       /api/v1/session/pending-email [get]
func (s *Server) handleGetPendingEmail(w http.ResponseWriter, r *http.Request) {
	email, err := s.session.EmailForVerification(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if email == "" {
		writeError(w, http.StatusNotFound, "no pending email")
		return
	}
	writeJSON(w, http.StatusOK, PendingEmailResponse{Email: email})
}

// handleSetPendingEmail godoc
// @Summary      Set pending email
// @Description  Remember an email for a verification flow
// @Tags         Session
// @Accept       json
// @Param        request  body  EmailRequest  true  "Email"
// @Success      204
// @Failure      400  {object}  ErrorResponse  "Invalid request body"
// @Router       /api/v1/session/pending-email [put]
func (s *Server) handleSetPendingEmail(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.session.SetEmailForVerification(r.Context(), req.Email); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClearPendingEmail godoc
// @Summary      Clear pending email
// @Tags         Session
// @Success      204
// @Router       /api/v1/session/pending-email [delete]
func (s *Server) handleClearPendingEmail(w http.ResponseWriter, r *http.Request) {
	if err := s.session.ClearPendingEmail(r.Context()); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UI endpoints

// handleUIEvents godoc
// @Summary      Drain UI events
// @Description  Returns and clears the toasts and navigation requests queued for the shell
// @Tags         UI
// @Produce      json
// @Success      200  {object}  domain.UIEvents
// @Router       /api/v1/ui/events [get]
func (s *Server) handleUIEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeJSON(w, http.StatusOK, domain.UIEvents{Notifications: []domain.Notification{}})
		return
	}
	writeJSON(w, http.StatusOK, s.events.Drain())
}

// Helpers

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeServiceError maps a service failure onto an HTTP status
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var apiErr *domain.APIError
	switch {
	case errors.As(err, &apiErr):
		writeError(w, apiErr.Status, apiErr.Message)
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNoPendingEmail):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrTokenInvalid):
		writeError(w, http.StatusBadGateway, "backend returned an unusable token")
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
