package utils

import "time"

// Clock abstracts wall-clock access so time-driven components (scheduler
// sweeps, schedule-time guards) can be tested without real waits.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the real time in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return UTCNow()
}

// FixedClock always returns the same instant. Test helper.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T
}
