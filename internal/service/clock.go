package service

import "time"

// Clock supplies the current time. Every expiry comparison in the
// access-code subsystem goes through it so tests can advance time
// without sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall-clock implementation used in production.
var SystemClock Clock = systemClock{}
