package framecoro

import "github.com/benbjohnson/clock"

// Phase is a host-defined update phase (physics, animation, UI, ...).
// Hosts declare their own phases as small iota-based constants of this
// type; the zero value is [DefaultPhase].
type Phase int

// Clock is a host-defined clock kind (wall clock, game clock, a paused
// cutscene clock, ...). Hosts declare their own clocks the same way as
// phases; the zero value is [DefaultClock].
type Clock int

const (
	DefaultPhase Phase = 0
	DefaultClock Clock = 0
)

type queueKey struct {
	phase Phase
	clock Clock
}

// SetClock registers the function the scheduler calls to read the current
// time, in seconds, for the given clock kind. A wait on that clock gets
// its deadline from this function's reading when the wait is parked, and
// is resolved by the first [Scheduler.Update] call for it whose reading
// has reached that deadline.
//
// If no clock function is registered for a clock kind, it reads as a
// clock stuck at zero, matching the convention that an unrecognized or
// paused clock never advances.
func (s *Scheduler) SetClock(c Clock, now func() float64) {
	s.clocks[c] = now
}

// SetTimer registers a [clock.Clock] (from github.com/benbjohnson/clock)
// as the time source for the given clock kind, converting its Now() to
// fractional seconds since the Unix epoch. Passing a *clock.Mock lets
// tests advance a coroutine's notion of time deterministically without
// real sleeps.
func (s *Scheduler) SetTimer(c Clock, src clock.Clock) {
	s.SetClock(c, func() float64 {
		t := src.Now()
		return float64(t.UnixNano()) / 1e9
	})
}

func (s *Scheduler) now(c Clock) float64 {
	if fn, ok := s.clocks[c]; ok {
		return fn()
	}
	return 0
}
