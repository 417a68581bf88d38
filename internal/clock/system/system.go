// Package system provides the wall clock used to time adapter runs.
package system

import "time"

// Clock implements crawler.Clock. Readings are UTC and keep the monotonic
// component, so Sub between two readings is safe for elapsed time.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current UTC time.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
