package mocks

import (
	"sync"

	"github.com/custodia-labs/audit-console/internal/core/domain"
	"github.com/custodia-labs/audit-console/internal/core/ports/driven"
)

var (
	_ driven.TokenInspector       = (*MockTokenInspector)(nil)
	_ driven.UnauthorizedReporter = (*RecordingReporter)(nil)
)

// MockTokenInspector returns preset claims per token; unknown tokens are opaque
type MockTokenInspector struct {
	mu     sync.Mutex
	claims map[string]*domain.TokenClaims
}

func NewMockTokenInspector() *MockTokenInspector {
	return &MockTokenInspector{claims: make(map[string]*domain.TokenClaims)}
}

// Set registers claims for token
func (m *MockTokenInspector) Set(token string, claims *domain.TokenClaims) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims[token] = claims
}

func (m *MockTokenInspector) Inspect(token string) (*domain.TokenClaims, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[token]
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return c, nil
}

// RecordingReporter counts unauthorized reports and never suppresses
type RecordingReporter struct {
	mu       sync.Mutex
	messages []string
}

func (r *RecordingReporter) Raise(message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return true
}

// Messages returns a copy of the reported messages
func (r *RecordingReporter) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}
