package world

import "time"

// TimeProvider abstracts the clock so heartbeat scheduling and latency
// measurement are deterministic in tests.
type TimeProvider interface {
	// Now returns the current time.
	Now() time.Time
}

// RealTimeProvider implements TimeProvider using the system clock.
type RealTimeProvider struct{}

// Now returns the current system time.
func (RealTimeProvider) Now() time.Time {
	return time.Now()
}
