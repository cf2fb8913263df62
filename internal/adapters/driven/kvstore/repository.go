package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/custodia-labs/audit-console/internal/core/domain"
	"github.com/custodia-labs/audit-console/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionRepository = (*Repository)(nil)

// Repository maps the session onto the fixed store keys.
//
// Wire format per key:
//
//	isAuthenticated   JSON boolean ("true" / "false")
//	token             raw string
//	user              JSON object
//	sessionStartTime  epoch milliseconds as a decimal string
//	pendingEmail      raw string
//
// The last activity time is never persisted.
type Repository struct {
	store driven.KVStore
}

// NewRepository creates a Repository over store
func NewRepository(store driven.KVStore) *Repository {
	return &Repository{store: store}
}

// Load reads the persisted session. Anything short of a complete
// authenticated record yields an unauthenticated session.
func (r *Repository) Load(ctx context.Context) (*domain.Session, error) {
	raw, ok, err := r.store.Get(ctx, domain.KeyIsAuthenticated)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", domain.KeyIsAuthenticated, err)
	}
	var authenticated bool
	if !ok || json.Unmarshal([]byte(raw), &authenticated) != nil || !authenticated {
		return &domain.Session{}, nil
	}

	token, ok, err := r.store.Get(ctx, domain.KeyToken)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", domain.KeyToken, err)
	}
	if !ok || token == "" {
		return &domain.Session{}, nil
	}

	rawUser, ok, err := r.store.Get(ctx, domain.KeyUser)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", domain.KeyUser, err)
	}
	if !ok {
		return &domain.Session{}, nil
	}
	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return &domain.Session{}, nil
	}

	rawStart, ok, err := r.store.Get(ctx, domain.KeySessionStartTime)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", domain.KeySessionStartTime, err)
	}
	if !ok {
		return &domain.Session{}, nil
	}
	ms, err := strconv.ParseInt(rawStart, 10, 64)
	if err != nil {
		return &domain.Session{}, nil
	}
	start := time.UnixMilli(ms)

	return &domain.Session{
		IsAuthenticated:  true,
		Token:            token,
		User:             &user,
		SessionStartTime: start,
		LastActivityTime: start,
	}, nil
}

// Save writes the session keys. An unauthenticated session removes them.
func (r *Repository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || !session.IsAuthenticated {
		if err := r.store.Set(ctx, domain.KeyIsAuthenticated, "false"); err != nil {
			return fmt.Errorf("write %s: %w", domain.KeyIsAuthenticated, err)
		}
		return r.store.Remove(ctx, domain.KeyToken, domain.KeyUser, domain.KeySessionStartTime)
	}

	user, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	entries := []struct{ key, value string }{
		{domain.KeyIsAuthenticated, "true"},
		{domain.KeyToken, session.Token},
		{domain.KeyUser, string(user)},
		{domain.KeySessionStartTime, strconv.FormatInt(session.SessionStartTime.UnixMilli(), 10)},
	}
	for _, e := range entries {
		if err := r.store.Set(ctx, e.key, e.value); err != nil {
			return fmt.Errorf("write %s: %w", e.key, err)
		}
	}
	return nil
}

// Clear removes every session key, the pending email included
func (r *Repository) Clear(ctx context.Context) error {
	if err := r.store.Remove(ctx, domain.SessionKeys...); err != nil {
		return fmt.Errorf("clear session keys: %w", err)
	}
	return nil
}

func (r *Repository) PendingEmail(ctx context.Context) (string, error) {
	email, _, err := r.store.Get(ctx, domain.KeyPendingEmail)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", domain.KeyPendingEmail, err)
	}
	return email, nil
}

func (r *Repository) SetPendingEmail(ctx context.Context, email string) error {
	if err := r.store.Set(ctx, domain.KeyPendingEmail, email); err != nil {
		return fmt.Errorf("write %s: %w", domain.KeyPendingEmail, err)
	}
	return nil
}

func (r *Repository) ClearPendingEmail(ctx context.Context) error {
	if err := r.store.Remove(ctx, domain.KeyPendingEmail); err != nil {
		return fmt.Errorf("remove %s: %w", domain.KeyPendingEmail, err)
	}
	return nil
}
