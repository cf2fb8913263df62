package domain

import (
	"net/http"
	"time"
)

// EventUnauthorized is the name of the process-wide unauthorized signal
const EventUnauthorized = "unauthorized-response"

// User-facing logout reasons
const (
	MsgSessionExpired  = "Your session has expired. Please log in again."
	MsgSessionInactive = "You have been logged out due to inactivity."
)

// SessionExpiredToastID identifies the single expiry toast so it never stacks
const SessionExpiredToastID = "session-expired"

// LoginPath is where every logout sends the user
const LoginPath = "/auth/login"

// UnauthorizedEvent is the payload of the unauthorized signal
type UnauthorizedEvent struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// NewUnauthorizedEvent builds the event, defaulting the message
func NewUnauthorizedEvent(message string) UnauthorizedEvent {
	if message == "" {
		message = MsgSessionExpired
	}
	return UnauthorizedEvent{Status: http.StatusUnauthorized, Message: message}
}

// NotificationLevel is the severity of a toast
type NotificationLevel string

const (
	LevelInfo    NotificationLevel = "info"
	LevelWarning NotificationLevel = "warning"
	LevelError   NotificationLevel = "error"
)

// Notification is a toast shown by the shell
type Notification struct {
	ID      string            `json:"id"`
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}

// UIEvents are the toasts and navigation requests pending for the shell
type UIEvents struct {
	Notifications []Notification `json:"notifications"`
	Navigate      string         `json:"navigate,omitempty"`
	DrainedAt     time.Time      `json:"drainedAt"`
}
