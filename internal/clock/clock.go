// Package clock supplies mint and creation timestamps.
package clock

import "time"

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

type system struct{}

// NewSystem returns a UTC wall clock.
func NewSystem() Clock {
	return system{}
}

func (system) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always returns the same instant until advanced. Tests use it to
// assert on minted_at and created_at values.
type Fixed struct {
	now time.Time
}

// NewFixed returns a Fixed clock set to t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t.UTC()}
}

func (f *Fixed) Now() time.Time {
	return f.now
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}
