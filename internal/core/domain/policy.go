package domain

import "time"

// Default session timings
const (
	DefaultAbsoluteTimeout      = 6 * time.Hour
	DefaultIdleTimeout          = time.Hour
	DefaultCheckInterval        = 30 * time.Second
	DefaultActivityThrottle     = time.Second
	DefaultUnauthorizedCooldown = 5 * time.Second
	DefaultToastSuppression     = 5 * time.Second
	DefaultLogoutResetDelay     = time.Second
	DefaultLogoutTimeout        = 5 * time.Second
)

// SessionPolicy holds the timeouts enforced by the session manager
type SessionPolicy struct {
	AbsoluteTimeout  time.Duration // Ceiling since login, regardless of activity
	IdleTimeout      time.Duration // Ceiling since last activity
	CheckInterval    time.Duration // Period of the validity check
	ActivityThrottle time.Duration // Min time between activity updates
	ToastSuppression time.Duration // Window in which a second expiry toast is dropped
	LogoutResetDelay time.Duration // Delay before another logout cycle may start
	LogoutTimeout    time.Duration // Bound on the best-effort backend logout call
}

// DefaultSessionPolicy returns the console defaults
func DefaultSessionPolicy() SessionPolicy {
	return SessionPolicy{
		AbsoluteTimeout:  DefaultAbsoluteTimeout,
		IdleTimeout:      DefaultIdleTimeout,
		CheckInterval:    DefaultCheckInterval,
		ActivityThrottle: DefaultActivityThrottle,
		ToastSuppression: DefaultToastSuppression,
		LogoutResetDelay: DefaultLogoutResetDelay,
		LogoutTimeout:    DefaultLogoutTimeout,
	}
}

// WithDefaults fills zero values from DefaultSessionPolicy
func (p SessionPolicy) WithDefaults() SessionPolicy {
	d := DefaultSessionPolicy()
	if p.AbsoluteTimeout <= 0 {
		p.AbsoluteTimeout = d.AbsoluteTimeout
	}
	if p.IdleTimeout <= 0 {
		p.IdleTimeout = d.IdleTimeout
	}
	if p.CheckInterval <= 0 {
		p.CheckInterval = d.CheckInterval
	}
	if p.ActivityThrottle <= 0 {
		p.ActivityThrottle = d.ActivityThrottle
	}
	if p.ToastSuppression <= 0 {
		p.ToastSuppression = d.ToastSuppression
	}
	if p.LogoutResetDelay <= 0 {
		p.LogoutResetDelay = d.LogoutResetDelay
	}
	if p.LogoutTimeout <= 0 {
		p.LogoutTimeout = d.LogoutTimeout
	}
	return p
}
