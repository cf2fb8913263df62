package driven

import (
	"context"

	"github.com/custodia-labs/audit-console/internal/core/domain"
)

// KVStore is the persisted session store: string values under fixed keys.
// Implementations must be safe for concurrent use.
type KVStore interface {
	// Get returns the value for key; ok is false when the key is absent
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Remove deletes the given keys; absent keys are not an error
	Remove(ctx context.Context, keys ...string) error
}

// SessionRepository persists the session in typed form.
// Only the session manager writes through it.
type SessionRepository interface {
	// Load reconstructs the persisted session.
	// Returns an unauthenticated session when nothing complete is stored.
	Load(ctx context.Context) (*domain.Session, error)

	// Save persists the authenticated fields of the session
	Save(ctx context.Context, session *domain.Session) error

	// Clear removes every session key, pending email included
	Clear(ctx context.Context) error

	// PendingEmail returns the email threaded through OTP flows ("" when unset)
	PendingEmail(ctx context.Context) (string, error)

	// SetPendingEmail stores the email for a verification flow
	SetPendingEmail(ctx context.Context, email string) error

	// ClearPendingEmail removes the pending email only
	ClearPendingEmail(ctx context.Context) error
}
