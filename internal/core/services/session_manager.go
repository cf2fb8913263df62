package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/audit-console/internal/core/domain"
	"github.com/custodia-labs/audit-console/internal/core/ports/driven"
	"github.com/custodia-labs/audit-console/internal/core/ports/driving"
)

// Ensure SessionManager implements SessionService and TokenSource
var (
	_ driving.SessionService = (*SessionManager)(nil)
	_ driven.TokenSource     = (*SessionManager)(nil)
)

// SessionManager owns the client session: login/logout transitions, idle and
// absolute timeouts, activity tracking and the reaction to the unauthorized
// signal. It is the only writer of the session repository.
type SessionManager struct {
	repo      driven.SessionRepository
	clock     driven.Clock
	api       driven.AuthAPI
	notifier  driven.Notifier
	navigator driven.Navigator
	signal    *UnauthorizedSignal
	inspector driven.TokenInspector
	policy    domain.SessionPolicy
	logger    *slog.Logger

	mu       sync.Mutex
	session  domain.Session
	claims   *domain.TokenClaims
	activity *rate.Limiter
	visible  bool
	closed   bool

	// epoch increments on every login; a logout started under an older
	// epoch leaves the newer session alone
	epoch uint64

	// Guards
	loggingOut bool
	toastShown bool

	// Timers; each generation counter invalidates callbacks of replaced timers
	checkTimer  driven.Timer
	checkGen    uint64
	toastTimer  driven.Timer
	toastGen    uint64
	logoutTimer driven.Timer
	logoutGen   uint64

	unsubscribe func()
	pending     sync.WaitGroup // logouts started by the unauthorized signal
}

// SessionManagerConfig holds the collaborators of the session manager.
type SessionManagerConfig struct {
	Repository driven.SessionRepository // Required
	Clock      driven.Clock             // Required
	Signal     *UnauthorizedSignal      // Required
	AuthAPI    driven.AuthAPI           // Optional: backend logout is skipped when nil
	Notifier   driven.Notifier          // Optional
	Navigator  driven.Navigator         // Optional
	Inspector  driven.TokenInspector    // Optional: enables the token exp check
	Policy     domain.SessionPolicy     // Zero values fall back to defaults
	Logger     *slog.Logger
}

// NewSessionManager creates an unauthenticated session manager.
// Call Start to restore the persisted session and begin enforcement.
func NewSessionManager(cfg SessionManagerConfig) (*SessionManager, error) {
	if cfg.Repository == nil || cfg.Clock == nil || cfg.Signal == nil {
		return nil, fmt.Errorf("%w: repository, clock and signal are required", domain.ErrInvalidInput)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	navigator := cfg.Navigator
	if navigator == nil {
		navigator = nopNavigator{}
	}

	policy := cfg.Policy.WithDefaults()

	return &SessionManager{
		repo:      cfg.Repository,
		clock:     cfg.Clock,
		api:       cfg.AuthAPI,
		notifier:  notifier,
		navigator: navigator,
		signal:    cfg.Signal,
		inspector: cfg.Inspector,
		policy:    policy,
		logger:    logger,
		activity:  newActivityLimiter(policy.ActivityThrottle),
		visible:   true,
	}, nil
}

// Start restores the persisted session, subscribes to the unauthorized
// signal and, when authenticated, starts periodic validation.
func (m *SessionManager) Start(ctx context.Context) error {
	stored, err := m.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: load session: %w", domain.ErrStorage, err)
	}

	now := m.clock.Now()

	m.mu.Lock()
	if m.unsubscribe != nil {
		m.mu.Unlock()
		return nil
	}
	if stored != nil && stored.IsAuthenticated && stored.Valid() {
		m.session = *stored
		m.session.LastActivityTime = now
		m.claims = m.inspect(stored.Token)
	} else {
		m.session = domain.Session{}
	}
	m.closed = false
	m.unsubscribe = m.signal.Subscribe(m.handleUnauthorized)
	authenticated := m.session.IsAuthenticated
	m.mu.Unlock()

	m.logger.Info("session manager started", "authenticated", authenticated)

	if authenticated {
		m.startValidation()
	}
	return nil
}

// Close unsubscribes from the signal, cancels every pending timer and waits
// for logouts started by the signal.
func (m *SessionManager) Close() {
	m.mu.Lock()
	m.closed = true
	m.stopCheckLocked()
	m.stopToastTimerLocked()
	m.stopLogoutTimerLocked()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	m.pending.Wait()
}

// Login switches to the authenticated state, stamps the session timestamps
// and persists the session. It clears every duplicate-suppression guard so a
// new session never inherits the windows of the previous one.
func (m *SessionManager) Login(ctx context.Context, user domain.User, token string) error {
	if token == "" {
		return fmt.Errorf("%w: token is required", domain.ErrInvalidInput)
	}

	now := m.clock.Now()

	m.mu.Lock()
	m.resetGuardsLocked()
	m.epoch++
	u := user
	m.session = domain.Session{
		IsAuthenticated:  true,
		Token:            token,
		User:             &u,
		SessionStartTime: now,
		LastActivityTime: now,
	}
	m.claims = m.inspect(token)
	m.activity = newActivityLimiter(m.policy.ActivityThrottle)
	persisted := m.session
	m.mu.Unlock()

	m.signal.Reset()

	if err := m.repo.Save(ctx, &persisted); err != nil {
		m.logger.Error("failed to persist session", "error", err)
		return fmt.Errorf("%w: save session: %w", domain.ErrStorage, err)
	}
	if err := m.repo.ClearPendingEmail(ctx); err != nil {
		return fmt.Errorf("%w: clear pending email: %w", domain.ErrStorage, err)
	}

	m.logger.Info("session started", "user_id", user.ID, "role", user.Role)

	m.startValidation()
	return nil
}

// Logout tears the session down. While one logout is in flight every other
// call returns immediately. The backend call is best-effort; local cleanup
// always runs and only a storage failure is returned. A Login that lands
// while the backend call is pending wins: the stale logout stops there.
func (m *SessionManager) Logout(ctx context.Context, message string, showToast bool) error {
	// (a) guard
	m.mu.Lock()
	if m.loggingOut {
		m.mu.Unlock()
		m.logger.Debug("logout already in progress, ignoring")
		return nil
	}
	m.loggingOut = true
	epoch := m.epoch
	token := m.session.Token
	userID := ""
	if m.session.User != nil {
		userID = m.session.User.ID
	}
	m.mu.Unlock()

	// (b) best-effort backend logout
	if token != "" && m.api != nil {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.policy.LogoutTimeout)
		if err := m.api.Logout(callCtx, token); err != nil {
			m.logger.Warn("backend logout failed, continuing local cleanup", "error", err)
		}
		cancel()
	}

	// (c) + (d) stop validation and reset in-memory state
	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		m.logger.Info("session replaced during logout, skipping cleanup", "user_id", userID)
		return nil
	}
	m.stopCheckLocked()
	m.session = domain.Session{}
	m.claims = nil
	m.mu.Unlock()

	// (e) remove persisted keys, pending email included
	if m.superseded(epoch) {
		m.logger.Info("session replaced during logout, skipping cleanup", "user_id", userID)
		return nil
	}
	var clearErr error
	if err := m.repo.Clear(context.WithoutCancel(ctx)); err != nil {
		m.logger.Error("failed to clear persisted session", "error", err)
		clearErr = fmt.Errorf("%w: clear session: %w", domain.ErrStorage, err)
	}

	// (f) at most one expiry toast per suppression window
	if message != "" && showToast && m.claimToast() {
		m.notifier.Notify(domain.Notification{
			ID:      domain.SessionExpiredToastID,
			Level:   domain.LevelWarning,
			Message: message,
		})
	}

	// (g) back to the login view
	m.navigator.Navigate(domain.LoginPath)

	m.logger.Info("session ended", "user_id", userID, "reason", reasonOrDefault(message))

	// (h) permit the next logout cycle after a short delay
	m.mu.Lock()
	m.stopLogoutTimerLocked()
	if m.closed {
		m.loggingOut = false
	} else {
		gen := m.logoutGen
		m.logoutTimer = m.clock.AfterFunc(m.policy.LogoutResetDelay, func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if gen != m.logoutGen {
				return
			}
			m.loggingOut = false
			m.logoutTimer = nil
		})
	}
	m.mu.Unlock()

	return clearErr
}

// CheckSessionValidity enforces the absolute and idle ceilings. It reports
// true when the session stays valid. An unauthenticated session, or one that
// is already being logged out, is trivially valid.
func (m *SessionManager) CheckSessionValidity() bool {
	m.mu.Lock()
	if !m.session.IsAuthenticated || m.loggingOut {
		m.mu.Unlock()
		return true
	}
	now := m.clock.Now()
	sessionDuration := m.session.Duration(now)
	idleTime := m.session.IdleTime(now)
	claims := m.claims
	m.mu.Unlock()

	var reason string
	switch {
	case sessionDuration > m.policy.AbsoluteTimeout:
		reason = domain.MsgSessionExpired
	case idleTime > m.policy.IdleTimeout:
		reason = domain.MsgSessionInactive
	case claims.ExpiredAt(now):
		reason = domain.MsgSessionExpired
	default:
		return true
	}

	m.logger.Info("session invalidated",
		"reason", reason,
		"session_duration", sessionDuration,
		"idle_time", idleTime,
	)
	if err := m.Logout(context.Background(), reason, true); err != nil {
		m.logger.Error("logout after invalidation failed", "error", err)
	}
	return false
}

// RecordActivity registers user activity. Updates are throttled to one per
// ActivityThrottle and ignored while unauthenticated or logging out.
func (m *SessionManager) RecordActivity(kind domain.ActivityKind) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.session.IsAuthenticated || m.loggingOut {
		return
	}

	now := m.clock.Now()
	if !m.activity.AllowN(now, 1) {
		return
	}
	m.session.LastActivityTime = now
}

// VisibilityChanged runs one immediate check on a hidden to visible transition,
// covering periods where timers were suspended.
func (m *SessionManager) VisibilityChanged(visible bool) {
	m.mu.Lock()
	wasHidden := !m.visible
	m.visible = visible
	m.mu.Unlock()

	if visible && wasHidden {
		m.CheckSessionValidity()
	}
}

// ResetGuards clears the logout and toast guards and the unauthorized signal window.
func (m *SessionManager) ResetGuards() {
	m.mu.Lock()
	m.resetGuardsLocked()
	m.mu.Unlock()
	m.signal.Reset()
}

// SetEmailForVerification stores the email used by OTP and reset flows.
// It is independent of the authentication state.
func (m *SessionManager) SetEmailForVerification(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if err := m.repo.SetPendingEmail(ctx, email); err != nil {
		return fmt.Errorf("%w: save pending email: %w", domain.ErrStorage, err)
	}
	return nil
}

// EmailForVerification returns the pending email, "" when none is set
func (m *SessionManager) EmailForVerification(ctx context.Context) (string, error) {
	email, err := m.repo.PendingEmail(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: load pending email: %w", domain.ErrStorage, err)
	}
	return email, nil
}

// ClearPendingEmail removes the pending email
func (m *SessionManager) ClearPendingEmail(ctx context.Context) error {
	if err := m.repo.ClearPendingEmail(ctx); err != nil {
		return fmt.Errorf("%w: clear pending email: %w", domain.ErrStorage, err)
	}
	return nil
}

// IsAuthenticated reports whether a session is active
func (m *SessionManager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.IsAuthenticated
}

// User returns a copy of the session user, nil when unauthenticated
func (m *SessionManager) User() *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session.User == nil {
		return nil
	}
	u := *m.session.User
	return &u
}

// Token returns the bearer token, "" when unauthenticated
func (m *SessionManager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Token
}

// State returns the lifecycle state
func (m *SessionManager) State() domain.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Snapshot returns a read-only copy of the session
func (m *SessionManager) Snapshot() domain.SessionSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := domain.SessionSnapshot{
		State:           m.stateLocked(),
		IsAuthenticated: m.session.IsAuthenticated,
	}
	if !m.session.IsAuthenticated {
		return snap
	}

	u := *m.session.User
	start := m.session.SessionStartTime
	last := m.session.LastActivityTime
	snap.User = &u
	snap.SessionStartTime = &start
	snap.LastActivityTime = &last
	if m.claims.HasExpiry() {
		exp := m.claims.ExpiresAt
		snap.TokenExpiresAt = &exp
	}
	return snap
}

// handleUnauthorized reacts to the unauthorized signal. The logout runs on
// its own goroutine so the request that got the 401 returns without waiting
// for the backend logout call.
func (m *SessionManager) handleUnauthorized(evt domain.UnauthorizedEvent) {
	m.mu.Lock()
	if m.loggingOut || m.closed {
		m.mu.Unlock()
		return
	}
	m.pending.Add(1)
	m.mu.Unlock()

	message := evt.Message
	if message == "" {
		message = domain.MsgSessionExpired
	}
	go func() {
		defer m.pending.Done()
		if err := m.Logout(context.Background(), message, true); err != nil {
			m.logger.Error("logout after unauthorized response failed", "error", err)
		}
	}()
}

// superseded reports whether a login happened since epoch was read
func (m *SessionManager) superseded(epoch uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return epoch != m.epoch
}

// startValidation replaces any running check timer with a fresh one and runs
// one immediate check.
func (m *SessionManager) startValidation() {
	m.mu.Lock()
	m.stopCheckLocked()
	if !m.session.IsAuthenticated || m.closed {
		m.mu.Unlock()
		return
	}
	gen := m.checkGen
	m.checkTimer = m.clock.AfterFunc(m.policy.CheckInterval, func() { m.tick(gen) })
	m.mu.Unlock()

	m.CheckSessionValidity()
}

func (m *SessionManager) tick(gen uint64) {
	m.mu.Lock()
	if gen != m.checkGen || m.closed {
		m.mu.Unlock()
		return
	}
	m.checkTimer = nil
	m.mu.Unlock()

	if !m.CheckSessionValidity() {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.checkGen || m.closed || !m.session.IsAuthenticated {
		return
	}
	m.checkTimer = m.clock.AfterFunc(m.policy.CheckInterval, func() { m.tick(gen) })
}

// claimToast reports whether the expiry toast may be shown and, if so, opens
// the suppression window.
func (m *SessionManager) claimToast() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.toastShown {
		m.logger.Debug("session expiry toast suppressed")
		return false
	}
	m.toastShown = true
	m.stopToastTimerLocked()
	if m.closed {
		return true
	}
	gen := m.toastGen
	m.toastTimer = m.clock.AfterFunc(m.policy.ToastSuppression, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if gen != m.toastGen {
			return
		}
		m.toastShown = false
		m.toastTimer = nil
	})
	return true
}

func (m *SessionManager) resetGuardsLocked() {
	m.loggingOut = false
	m.toastShown = false
	m.stopToastTimerLocked()
	m.stopLogoutTimerLocked()
}

func (m *SessionManager) stopCheckLocked() {
	if m.checkTimer != nil {
		m.checkTimer.Stop()
		m.checkTimer = nil
	}
	m.checkGen++
}

func (m *SessionManager) stopToastTimerLocked() {
	if m.toastTimer != nil {
		m.toastTimer.Stop()
		m.toastTimer = nil
	}
	m.toastGen++
}

func (m *SessionManager) stopLogoutTimerLocked() {
	if m.logoutTimer != nil {
		m.logoutTimer.Stop()
		m.logoutTimer = nil
	}
	m.logoutGen++
}

func (m *SessionManager) stateLocked() domain.SessionState {
	switch {
	case m.loggingOut:
		return domain.StateLoggingOut
	case m.session.IsAuthenticated:
		return domain.StateAuthenticated
	default:
		return domain.StateUnauthenticated
	}
}

// inspect reads token claims; opaque tokens yield nil
func (m *SessionManager) inspect(token string) *domain.TokenClaims {
	if m.inspector == nil || token == "" {
		return nil
	}
	claims, err := m.inspector.Inspect(token)
	if err != nil {
		if !errors.Is(err, domain.ErrTokenInvalid) {
			m.logger.Debug("token inspection failed", "error", err)
		}
		return nil
	}
	return claims
}

func newActivityLimiter(throttle time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Every(throttle), 1)
}

func reasonOrDefault(message string) string {
	if message == "" {
		return "user request"
	}
	return message
}

type nopNotifier struct{}

func (nopNotifier) Notify(domain.Notification) {}

type nopNavigator struct{}

func (nopNavigator) Navigate(string) {}
