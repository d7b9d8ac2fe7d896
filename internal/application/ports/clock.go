package ports

import "time"

// Clock fuente de timestamps del motor.
type Clock interface {
	Now() time.Time
}

// SystemClock reloj de pared en UTC.
type SystemClock struct{}

// Now implementa Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ClockFunc adapta una función a Clock.
type ClockFunc func() time.Time

// Now implementa Clock.
func (f ClockFunc) Now() time.Time { return f() }
