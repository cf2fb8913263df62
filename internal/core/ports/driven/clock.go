package driven

import "time"

// Clock abstracts time so timeouts and cooldowns can run on virtual time in tests.
type Clock interface {
	// Now returns the current time
	Now() time.Time

	// AfterFunc calls f in its own goroutine once d has elapsed
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable pending callback
type Timer interface {
	// Stop prevents the callback from firing.
	// Returns false if the timer already fired or was stopped.
	Stop() bool
}
