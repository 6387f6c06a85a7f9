// Package clock abstracts time so timestamps on events and health reports
// can be pinned in tests.
package clock

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct{ t time.Time }

func NewFixed(t time.Time) FixedClock { return FixedClock{t: t} }

func (f FixedClock) Now() time.Time { return f.t }

// Func adapts a function to Clock.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// Ticking returns a clock that starts at start and advances by step on every
// call to Now. It is not safe for concurrent use.
func Ticking(start time.Time, step time.Duration) Clock {
	next := start
	return Func(func() time.Time {
		now := next
		next = next.Add(step)
		return now
	})
}
