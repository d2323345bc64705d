package database

import "time"

// Stamped is implemented by entities that carry creation and update times.
type Stamped interface {
	Touch(now time.Time)
}

// Clock returns the current instant.
type Clock func() time.Time

// UTC is the default clock.
func UTC() time.Time { return time.Now().UTC() }

// BeforeWrite stamps e with the clock's current instant. Repositories call
// it immediately before every insert or update so that the update time
// reflects the last write rather than the last mutation.
func BeforeWrite(e Stamped, clock Clock) time.Time {
	if clock == nil {
		clock = UTC
	}
	now := clock()
	e.Touch(now)
	return now
}
