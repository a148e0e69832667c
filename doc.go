// Package framecoro is a single-threaded, cooperative coroutine scheduler
// for frame-driven host applications: game engines, UI runtimes, simulators,
// anything that drives its own logic by calling into a library once per
// frame instead of letting the OS scheduler interleave goroutines for it.
//
// # Coroutines Without Goroutine Scheduling
//
// A [Coroutine] looks and reads like ordinary sequential Go code — it can
// call functions, use loops and conditionals, and suspend mid-expression by
// calling [Wait] or one of the structured combinators. Under the hood each
// coroutine does run on its own goroutine, but only one of them is ever
// actually executing at a time: a coroutine's goroutine blocks the instant
// it suspends, and control only ever returns to it when the [Scheduler]
// (or a coroutine that is awaiting it) resumes it explicitly. There is no
// preemption and no data race to guard against between coroutines; the
// concurrency primitives underneath exist purely to give user code the
// ability to write "await this, then that" as literal control flow instead
// of building it out of continuation-passing callbacks.
//
// # Update Phases and Clocks
//
// Every suspension names a delay, an update phase and a clock kind:
// [Wait](self, 0.25, PhysicsPhase, GameClock). Phases and clocks are both
// small host-defined integer enumerations (see [Phase] and [Clock]); the
// pair selects which of the [Scheduler]'s time queues a wait belongs to.
// A host application drives the whole thing by calling [Scheduler.Update]
// once per phase per frame, each call draining every wait whose deadline
// has arrived on that phase's queue for that queue's clock.
//
// # Structured Concurrency
//
// [Await] and the fixed-arity [All2], [All3], [All4], [AllSlice], [Any2],
// [Any3], [Any4] and [AnySlice] combinators spawn child coroutines whose
// lifetime is scoped to the coroutine that spawned them: if the parent is
// stopped, every child it spawned (and every wait any of them is parked on)
// is torn down with it, recursively, before the parent's own teardown is
// considered complete. There is no way to leak a child coroutine past its
// parent's lifetime short of escaping a [Handle] to the top level via
// [Start].
//
// # Root Coroutines and Handles
//
// A coroutine started directly with [Start] is a root coroutine: it has no
// parent to be torn down by, and it is only ever stopped by an explicit
// call through the [Handle] returned by [Start], by
// [Scheduler.Shutdown], or by finishing on its own. Root coroutines are the only ones a host can observe: read their
// state with [Handle.State], claim their outcome once with
// [Handle.TakeResult], and detach the [Scheduler]'s bookkeeping for one
// with [Handle.Release] once it is no longer needed. Handles carry a
// generation counter, so a stale [Handle] whose entry the scheduler has
// already erased behaves as a harmless no-op rather than touching a
// coroutine it no longer refers to.
//
// # Panics
//
// An unhandled panic inside a coroutine body is captured, not left to
// crash the host: it propagates to whoever is awaiting that coroutine
// (its parent, or the [Scheduler] itself for a root) as a regular error
// implementing Unwrap() []error, so it can be inspected with errors.Is and
// errors.As like any other error. [NonCancelable] wraps a coroutine body
// so that stopping it does not unwind it immediately; the wrapped code
// keeps running (and may keep suspending) until it returns on its own,
// at which point the pending stop is finally applied.
package framecoro
