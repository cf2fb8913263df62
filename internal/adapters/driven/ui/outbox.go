package ui

import (
	"sync"
	"time"

	"github.com/custodia-labs/audit-console/internal/core/domain"
	"github.com/custodia-labs/audit-console/internal/core/ports/driven"
)

var (
	_ driven.Notifier  = (*Outbox)(nil)
	_ driven.Navigator = (*Outbox)(nil)
)

// Outbox queues toasts and navigation requests until the shell drains them.
// A toast whose id is already queued replaces the queued one.
type Outbox struct {
	mu            sync.Mutex
	notifications []domain.Notification
	navigate      string
	now           func() time.Time
}

// NewOutbox creates an empty Outbox. now defaults to time.Now.
func NewOutbox(now func() time.Time) *Outbox {
	if now == nil {
		now = time.Now
	}
	return &Outbox{now: now}
}

func (o *Outbox) Notify(n domain.Notification) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if n.ID != "" {
		for i, queued := range o.notifications {
			if queued.ID == n.ID {
				o.notifications[i] = n
				return
			}
		}
	}
	o.notifications = append(o.notifications, n)
}

// Navigate records the target; only the latest one is kept
func (o *Outbox) Navigate(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.navigate = path
}

// Drain returns the pending events and empties the outbox
func (o *Outbox) Drain() domain.UIEvents {
	o.mu.Lock()
	defer o.mu.Unlock()

	ev := domain.UIEvents{
		Notifications: o.notifications,
		Navigate:      o.navigate,
		DrainedAt:     o.now(),
	}
	if ev.Notifications == nil {
		ev.Notifications = []domain.Notification{}
	}
	o.notifications = nil
	o.navigate = ""
	return ev
}
