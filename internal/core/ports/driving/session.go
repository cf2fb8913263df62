package driving

import (
	"context"

	"github.com/custodia-labs/audit-console/internal/core/domain"
)

// SessionService owns the client session lifecycle
type SessionService interface {
	// Login switches to the authenticated state and persists the session
	Login(ctx context.Context, user domain.User, token string) error

	// Logout tears the session down. Re-entrant calls while a logout is in
	// flight are no-ops. An empty message shows no toast.
	Logout(ctx context.Context, message string, showToast bool) error

	// CheckSessionValidity enforces the absolute and idle ceilings
	CheckSessionValidity() bool

	// RecordActivity registers user activity (throttled)
	RecordActivity(kind domain.ActivityKind)

	// VisibilityChanged reports a tab visibility transition
	VisibilityChanged(visible bool)

	// Pending email for OTP and password reset flows
	SetEmailForVerification(ctx context.Context, email string) error
	EmailForVerification(ctx context.Context) (string, error)
	ClearPendingEmail(ctx context.Context) error

	// Read-only views
	IsAuthenticated() bool
	User() *domain.User
	Token() string
	State() domain.SessionState
	Snapshot() domain.SessionSnapshot
}
