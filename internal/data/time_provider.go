package data

import "time"

// TimeProvider abstracts time.Now so repositories can be tested with a
// deterministic clock.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider returns the actual current time.
type RealTimeProvider struct{}

// Now implements TimeProvider.
func (RealTimeProvider) Now() time.Time { return time.Now() }

// FixedTimeProvider always returns the configured time.
type FixedTimeProvider struct {
	Time time.Time
}

// Now implements TimeProvider.
func (p FixedTimeProvider) Now() time.Time { return p.Time }
