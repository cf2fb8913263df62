package services

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/audit-console/internal/core/domain"
	"github.com/custodia-labs/audit-console/internal/core/ports/driven"
)

// Ensure UnauthorizedSignal implements UnauthorizedReporter
var _ driven.UnauthorizedReporter = (*UnauthorizedSignal)(nil)

// UnauthorizedSignal broadcasts the "unauthorized-response" event.
// Between a dispatch and the end of the cooldown every further Raise is
// dropped, so a burst of concurrent 401s produces a single event.
type UnauthorizedSignal struct {
	clock    driven.Clock
	cooldown time.Duration
	logger   *slog.Logger

	mu          sync.Mutex
	suppressed  bool
	window      uint64
	resetTimer  driven.Timer
	subscribers map[int]func(domain.UnauthorizedEvent)
	nextID      int
}

// UnauthorizedSignalConfig holds configuration for the signal.
type UnauthorizedSignalConfig struct {
	Clock    driven.Clock
	Cooldown time.Duration // Suppression window after a dispatch (default: 5s)
	Logger   *slog.Logger
}

// NewUnauthorizedSignal creates a signal with no subscribers
func NewUnauthorizedSignal(cfg UnauthorizedSignalConfig) *UnauthorizedSignal {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = domain.DefaultUnauthorizedCooldown
	}

	return &UnauthorizedSignal{
		clock:       cfg.Clock,
		cooldown:    cooldown,
		logger:      logger,
		subscribers: make(map[int]func(domain.UnauthorizedEvent)),
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *UnauthorizedSignal) Subscribe(fn func(domain.UnauthorizedEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
		})
	}
}

// Raise dispatches the event unless a dispatch happened within the cooldown.
// Subscribers run synchronously on the caller's goroutine, outside the lock,
// and must not block.
func (s *UnauthorizedSignal) Raise(message string) bool {
	s.mu.Lock()
	if s.suppressed {
		s.mu.Unlock()
		s.logger.Debug("unauthorized signal suppressed", "event", domain.EventUnauthorized)
		return false
	}

	s.suppressed = true
	s.window++
	window := s.window
	if s.resetTimer != nil {
		s.resetTimer.Stop()
	}
	s.resetTimer = s.clock.AfterFunc(s.cooldown, func() { s.expire(window) })

	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]func(domain.UnauthorizedEvent), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, s.subscribers[id])
	}
	s.mu.Unlock()

	evt := domain.NewUnauthorizedEvent(message)
	s.logger.Info("unauthorized signal dispatched",
		"event", domain.EventUnauthorized,
		"subscribers", len(handlers),
	)
	for _, h := range handlers {
		h(evt)
	}
	return true
}

// Reset clears the suppression window and its pending timer.
// Called on login so a new session never inherits a stale window.
func (s *UnauthorizedSignal) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppressed = false
	s.window++
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
}

// Suppressed reports whether a dispatch would currently be dropped
func (s *UnauthorizedSignal) Suppressed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suppressed
}

// Close cancels the pending cooldown timer
func (s *UnauthorizedSignal) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
}

func (s *UnauthorizedSignal) expire(window uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if window != s.window {
		return
	}
	s.suppressed = false
	s.resetTimer = nil
}
