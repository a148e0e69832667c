package framecoro

// Handle is an external, generation-checked reference to a root
// coroutine started with [Start]. It is the only way a host observes or
// stops a coroutine from outside the coroutine world.
//
// A Handle stays valid (safely a no-op rather than a dangling reference)
// even after its coroutine's bookkeeping has been erased from the
// [Scheduler] by [Handle.Release] or [Handle.Forget]: every method first
// checks that the id it holds still refers to the same generation the
// Scheduler handed out at [Start] time, so a Handle can never be resolved
// against an unrelated coroutine that happens to reuse the same id.
type Handle[T any] struct {
	sched      *Scheduler
	id         int64
	generation uint64
	co         *Coroutine[T]
}

func (h *Handle[T]) entry() *rootEntry {
	e, ok := h.sched.entries[h.id]
	if !ok || e.generation != h.generation {
		return nil
	}
	return e
}

// IsDown reports whether the coroutine is no longer running, either
// because it finished on its own or because it was stopped. A Handle
// whose bookkeeping has already been released also reports down.
func (h *Handle[T]) IsDown() bool {
	if h.entry() == nil {
		return true
	}
	return h.co.state != Running
}

// State returns the coroutine's current lifecycle state. A released
// Handle reports [Stopped].
func (h *Handle[T]) State() State {
	if h.entry() == nil {
		return Stopped
	}
	return h.co.state
}

// Stop cancels the coroutine if it is still running, tearing it down
// (and every child it currently owns) before returning. Stopping an
// already-finished or already-released coroutine is a no-op.
func (h *Handle[T]) Stop() {
	e := h.entry()
	if e == nil || h.co.state != Running {
		return
	}
	h.co.forceStop()
}

// TakeResult moves the coroutine's outcome out exactly once: the first
// call after the coroutine succeeds or fails returns its result (or
// error) and true. A coroutine that is still running, or that was
// stopped rather than finishing on its own, has no outcome to give —
// TakeResult returns the zero value and false for it, same as it does
// on every call after the first successful one.
func (h *Handle[T]) TakeResult() (result T, err error, ok bool) {
	if h.entry() == nil || h.co.taken {
		var zero T
		return zero, nil, false
	}
	switch h.co.state {
	case Succeeded, Failed:
		h.co.taken = true
		return h.co.result, h.co.err, true
	default:
		var zero T
		return zero, nil, false
	}
}

// Release stops the coroutine if it is still running and detaches the
// Scheduler's bookkeeping for it. After Release, every other method on
// this Handle behaves as if the coroutine had never existed.
func (h *Handle[T]) Release() {
	e := h.entry()
	if e == nil {
		return
	}
	e.released = true
	if h.co.state == Running {
		h.co.forceStop()
	}
	delete(h.sched.entries, h.id)
}

// Forget marks the Scheduler's bookkeeping for this Handle as released
// without stopping the coroutine: it keeps running to completion on its
// own. Until then the Handle still resolves to it, so IsDown, State and
// Stop keep working. Once it finishes on its own its entry is erased and
// the Handle behaves like a released one; if it has already finished,
// the entry is erased at once.
func (h *Handle[T]) Forget() {
	e := h.entry()
	if e == nil {
		return
	}
	e.released = true
	if h.co.state != Running {
		delete(h.sched.entries, h.id)
	}
}
