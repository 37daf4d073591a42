package match

import "time"

// Token identifies one scheduled callback.
type Token interface {
	// Cancel revokes the callback. It reports whether the callback had not yet run.
	Cancel() bool
}

// Scheduler runs deferred work for a machine. Callbacks must be delivered on
// the same goroutine that drives the machine.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Token
}
