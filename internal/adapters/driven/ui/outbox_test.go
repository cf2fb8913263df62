package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/audit-console/internal/core/domain"
)

func TestOutbox_Drain(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	o := NewOutbox(func() time.Time { return now })

	o.Notify(domain.Notification{ID: "a", Level: domain.LevelInfo, Message: "saved"})
	o.Navigate("/user/dashboard")
	o.Navigate(domain.LoginPath)

	ev := o.Drain()
	assert.Len(t, ev.Notifications, 1)
	assert.Equal(t, domain.LoginPath, ev.Navigate)
	assert.Equal(t, now, ev.DrainedAt)

	empty := o.Drain()
	assert.Empty(t, empty.Notifications)
	assert.NotNil(t, empty.Notifications)
	assert.Empty(t, empty.Navigate)
}

func TestOutbox_SameIDReplaces(t *testing.T) {
	o := NewOutbox(nil)

	o.Notify(domain.Notification{ID: domain.SessionExpiredToastID, Message: domain.MsgSessionInactive})
	o.Notify(domain.Notification{Message: "anonymous one"})
	o.Notify(domain.Notification{Message: "anonymous two"})
	o.Notify(domain.Notification{ID: domain.SessionExpiredToastID, Message: domain.MsgSessionExpired})

	ev := o.Drain()
	assert.Len(t, ev.Notifications, 3)
	assert.Equal(t, domain.MsgSessionExpired, ev.Notifications[0].Message)
}
