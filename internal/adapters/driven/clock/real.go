package clock

import (
	"time"

	"github.com/custodia-labs/audit-console/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Clock = Real{}

// Real is the wall clock
type Real struct{}

func (Real) Now() time.Time {
	return time.Now()
}

// AfterFunc runs f on its own goroutine once d has elapsed
func (Real) AfterFunc(d time.Duration, f func()) driven.Timer {
	return time.AfterFunc(d, f)
}
