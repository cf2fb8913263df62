package driven

import "github.com/custodia-labs/audit-console/internal/core/domain"

// Notifier shows toasts to the user
type Notifier interface {
	Notify(n domain.Notification)
}

// Navigator moves the user to another view
type Navigator interface {
	Navigate(path string)
}
