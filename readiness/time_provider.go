package readiness

import "time"

// TimeProvider abstracts waiting so tests can poll without real delays.
type TimeProvider interface {
	// After returns a channel that receives once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

// RealTimeProvider implements TimeProvider using the system clock.
type RealTimeProvider struct{}

// After delegates to time.After.
func (RealTimeProvider) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
