package domain

import "time"

// Persisted session store keys. The names are shared with the browser shell.
const (
	KeyIsAuthenticated  = "isAuthenticated"
	KeyToken            = "token"
	KeyUser             = "user"
	KeySessionStartTime = "sessionStartTime"
	KeyPendingEmail     = "pendingEmail"
)

// SessionKeys lists every key owned by the session manager
var SessionKeys = []string{
	KeyIsAuthenticated,
	KeyToken,
	KeyUser,
	KeySessionStartTime,
	KeyPendingEmail,
}

// SessionState is the lifecycle state of the client session
type SessionState string

const (
	StateUnauthenticated SessionState = "unauthenticated"
	StateAuthenticated   SessionState = "authenticated"
	StateLoggingOut      SessionState = "logging_out"
)

// Session is the authenticated-user state held between login and logout.
// LastActivityTime lives in memory only and is never persisted.
type Session struct {
	IsAuthenticated  bool
	Token            string
	User             *User
	SessionStartTime time.Time
	LastActivityTime time.Time
}

// Valid reports whether the authenticated flag is backed by a token and a user
func (s *Session) Valid() bool {
	if s == nil {
		return false
	}
	if !s.IsAuthenticated {
		return true
	}
	return s.Token != "" && s.User != nil
}

// Duration returns the time elapsed since login
func (s *Session) Duration(now time.Time) time.Duration {
	return now.Sub(s.SessionStartTime)
}

// IdleTime returns the time elapsed since the last recorded activity
func (s *Session) IdleTime(now time.Time) time.Duration {
	return now.Sub(s.LastActivityTime)
}

// SessionSnapshot is a read-only copy of the session handed to consumers
type SessionSnapshot struct {
	State            SessionState `json:"state"`
	IsAuthenticated  bool         `json:"isAuthenticated"`
	User             *User        `json:"user,omitempty"`
	SessionStartTime *time.Time   `json:"sessionStartTime,omitempty"`
	LastActivityTime *time.Time   `json:"lastActivityTime,omitempty"`
	TokenExpiresAt   *time.Time   `json:"tokenExpiresAt,omitempty"`
}

// ActivityKind is a user-generated signal that counts as activity
type ActivityKind string

const (
	ActivityPointerMove ActivityKind = "mousemove"
	ActivityKeyPress    ActivityKind = "keydown"
	ActivityScroll      ActivityKind = "scroll"
	ActivityClick       ActivityKind = "click"
)

// Valid reports whether the kind is one of the tracked signals
func (k ActivityKind) Valid() bool {
	switch k {
	case ActivityPointerMove, ActivityKeyPress, ActivityScroll, ActivityClick:
		return true
	}
	return false
}
