package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/audit-console/internal/core/domain"
	"github.com/custodia-labs/audit-console/internal/core/ports/driven"
)

// Ensure MockSessionRepository implements SessionRepository
var _ driven.SessionRepository = (*MockSessionRepository)(nil)

// MockSessionRepository is an in-memory SessionRepository for testing.
// It copies sessions on the way in and out so callers cannot alias stored state.
type MockSessionRepository struct {
	mu           sync.RWMutex
	session      *domain.Session
	pendingEmail string

	saves  int
	clears int

	// Custom behavior hooks (optional)
	SaveErr  error
	ClearErr error
	LoadErr  error
}

// NewMockSessionRepository creates an empty MockSessionRepository
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

func (m *MockSessionRepository) Load(ctx context.Context) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.session == nil {
		return &domain.Session{}, nil
	}
	s := *m.session
	s.LastActivityTime = s.SessionStartTime
	return &s, nil
}

func (m *MockSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	s := *session
	m.session = &s
	m.saves++
	return nil
}

func (m *MockSessionRepository) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.session = nil
	m.pendingEmail = ""
	m.clears++
	return nil
}

func (m *MockSessionRepository) PendingEmail(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pendingEmail, nil
}

func (m *MockSessionRepository) SetPendingEmail(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingEmail = email
	return nil
}

func (m *MockSessionRepository) ClearPendingEmail(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingEmail = ""
	return nil
}

// Helper methods for testing

// Stored returns a copy of the persisted session, or nil
func (m *MockSessionRepository) Stored() *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil
	}
	s := *m.session
	return &s
}

// Seed stores a session as if written by an earlier process
func (m *MockSessionRepository) Seed(session *domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *session
	m.session = &s
}

func (m *MockSessionRepository) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *MockSessionRepository) ClearCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clears
}
