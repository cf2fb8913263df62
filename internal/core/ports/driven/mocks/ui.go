package mocks

import (
	"sync"

	"github.com/custodia-labs/audit-console/internal/core/domain"
	"github.com/custodia-labs/audit-console/internal/core/ports/driven"
)

var (
	_ driven.Notifier  = (*RecordingNotifier)(nil)
	_ driven.Navigator = (*RecordingNavigator)(nil)
)

// RecordingNotifier records every toast it is asked to show
type RecordingNotifier struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) Notify(notification domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
}

// Notifications returns a copy of the recorded toasts
func (n *RecordingNotifier) Notifications() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notification(nil), n.notifications...)
}

// RecordingNavigator records every navigation target
type RecordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func NewRecordingNavigator() *RecordingNavigator {
	return &RecordingNavigator{}
}

func (n *RecordingNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

// Paths returns a copy of the recorded navigation targets
func (n *RecordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}
