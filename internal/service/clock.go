package service

import "time"

// Clock supplies the current time. Injected so tests can pin deadline and
// voting-window math to fixed instants.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
