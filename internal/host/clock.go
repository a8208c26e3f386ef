// Package host provides the generic-process substitutes for what was chain
// runtime primitives in the original contracts: a clock source, a role
// predicate set, and async-call bookkeeping for the verify-then-sign
// pipeline (spec.md §9 "Host coupling").
package host

import "time"

// Clock returns the current Unix time in seconds. Production wiring uses
// SystemClock; tests substitute a fixed or stepped clock.
type Clock func() int64

// SystemClock is the production Clock, backed by the wall clock.
func SystemClock() int64 {
	return time.Now().Unix()
}
