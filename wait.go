package framecoro

// Wait suspends the calling coroutine until delaySec has elapsed on the
// given clock, as observed the next time [Scheduler.Update] is called for
// that (phase, clock) pair. A delaySec of zero or less still defers to
// the next matching Update call; it never resolves within the call that
// created it (see [timeQueue.push]).
//
// If the coroutine is stopped while parked here, Wait panics with an
// internal sentinel that unwinds the coroutine's body through its own
// defer statements — ordinary Go RAII — unless the wait is inside a
// [NonCancelable] scope, in which case Wait returns normally and the
// stop is applied once that scope's function returns.
func Wait(p Suspendable, delaySec float64, phase Phase, clock Clock) {
	b := p.base()
	w := &wait{owner: p, phase: phase, clock: clock, delay: delaySec, index: -1}
	b.yieldCh <- yieldMsg{kind: yieldParkWait, wait: w}
	msg := <-b.resumeCh
	b.pendingWait = nil
	if msg.canceled {
		if b.nonCancel == 0 {
			panic(cancelSignal{})
		}
		b.cancelPending = true
	}
}

// Yield suspends the calling coroutine for one cycle of [DefaultPhase] on
// [DefaultClock] — the coroutine equivalent of "come back on the next
// update".
func Yield(p Suspendable) {
	Wait(p, 0, DefaultPhase, DefaultClock)
}

// WaitUntil suspends the calling coroutine, re-checking pred once per
// [DefaultPhase]/[DefaultClock] cycle, until pred returns true.
func WaitUntil(p Suspendable, pred func() bool) {
	for !pred() {
		Yield(p)
	}
}

// WaitWhile suspends the calling coroutine, re-checking pred once per
// [DefaultPhase]/[DefaultClock] cycle, for as long as pred returns true.
func WaitWhile(p Suspendable, pred func() bool) {
	for pred() {
		Yield(p)
	}
}

// IsCanceling reports whether the calling coroutine has a stop pending
// that is being held off by a surrounding [NonCancelable] scope. Code
// inside such a scope can use this to shorten cleanup work instead of
// doing it unconditionally.
func IsCanceling(p Suspendable) bool {
	return p.base().cancelPending
}
