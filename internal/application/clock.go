package application

import "time"

// Clock interface supaya gampang ditest
type Clock interface {
	Now() time.Time
}

// SystemClock stamps UTC wall time with the monotonic reading stripped, so a
// stamped record round-trips through JSON unchanged.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC().Round(0) }

// FixedClock always returns T. Dipakai di test.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }
