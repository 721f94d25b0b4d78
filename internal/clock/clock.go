// Package clock abstracts time operations so time-dependent behavior
// (elapsed-time accrual, reminder windows, streaks) can be tested with
// a controlled clock instead of time.Now().
package clock

import "time"

// Clock is an interface for time operations.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

var _ Clock = RealClock{}
