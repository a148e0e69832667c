package framecoro

import "github.com/benbjohnson/clock"

// Scheduler is the coroutine manager: it owns every root coroutine's
// bookkeeping and every phase/clock's time queue, and drives all of them
// forward when the host calls [Scheduler.Update].
//
// A Scheduler is not safe for concurrent use. It is meant to be driven
// from a single frame loop, the same way the coroutines it manages are
// meant to run on a single logical thread of control.
type Scheduler struct {
	queues map[queueKey]*timeQueue
	clocks map[Clock]func() float64

	runnable []Suspendable

	entries       map[int64]*rootEntry
	nextID        int64
	nextGen       uint64
	newlyFinished []int64
}

type rootEntry struct {
	co         Suspendable
	generation uint64
	released   bool
}

// NewScheduler creates a scheduler with [DefaultClock] already wired to
// the real wall clock, via [github.com/benbjohnson/clock]. Register any
// other clock kind a host needs with [Scheduler.SetClock] or
// [Scheduler.SetTimer]; overwrite DefaultClock the same way (with a
// *clock.Mock, for instance) if a test needs to control it.
func NewScheduler() *Scheduler {
	s := &Scheduler{
		queues:  make(map[queueKey]*timeQueue),
		clocks:  make(map[Clock]func() float64),
		entries: make(map[int64]*rootEntry),
	}
	s.SetTimer(DefaultClock, clock.New())
	return s
}

func (s *Scheduler) timeQueueFor(phase Phase, clock Clock) *timeQueue {
	key := queueKey{phase: phase, clock: clock}
	q, ok := s.queues[key]
	if !ok {
		q = newTimeQueue()
		s.queues[key] = q
	}
	return q
}

// Start creates a root coroutine running f and kicks it off to its first
// suspension point (or to completion, if it never suspends), returning a
// [Handle] the host uses to observe or stop it.
func Start[T any](s *Scheduler, f CoroutineFunc[T]) *Handle[T] {
	s.nextID++
	id := s.nextID
	s.nextGen++
	gen := s.nextGen

	co := newCoroutine[T](s, f)
	co.parent = &terminalAwaiter{sched: s, id: id}
	s.entries[id] = &rootEntry{co: co, generation: gen}

	s.step(co, resumeMsg{})

	return &Handle[T]{sched: s, id: id, generation: gen, co: co}
}

// Update drains every wait on the given (phase, clock) queue whose
// deadline has arrived as of that clock's current reading, resuming each
// owning coroutine in deadline order (ties broken FIFO). Any coroutine
// unblocked as a side effect — a parent whose awaited child just finished
// — resumes within the same Update call, before the next queued wait (if
// any) is processed.
func (s *Scheduler) Update(phase Phase, clock Clock) {
	now := s.now(clock)
	q := s.timeQueueFor(phase, clock)
	ready := q.drainReady(now)
	for _, w := range ready {
		// An earlier resumption in this batch may have stopped this wait's
		// owner (an Any loser, say); its goroutine has already exited, so
		// the wait is dropped instead of resumed.
		if w.owner.base().pendingWait != w {
			continue
		}
		s.step(w.owner, resumeMsg{})
		s.drainRunnable()
	}
}

func (s *Scheduler) drainRunnable() {
	for len(s.runnable) > 0 {
		c := s.runnable[0]
		s.runnable = s.runnable[1:]
		s.step(c, resumeMsg{})
	}
}

// step performs one resume/yield round trip on c and interprets the
// result: a coroutine parking on a wait gets queued, a coroutine parking
// on a child's completion is left alone (it has no queue entry; it is
// purely event-driven), and a coroutine that finished notifies its
// parent awaiter, if any. A root finishing here fills the deferred-
// finish postbox and drains it immediately — i.e. between this pop and
// the next one, wherever step is called from, not just at the end of a
// whole Update call — so the "at most one root finishes between pops"
// invariant is actually enforced at every resumption, including the
// nested ones driven by drainRunnable.
func (s *Scheduler) step(c Suspendable, msg resumeMsg) {
	b := c.base()
	b.resumeCh <- msg
	y := <-b.yieldCh
	switch y.kind {
	case yieldParkWait:
		b.pendingWait = y.wait
		s.timeQueueFor(y.wait.phase, y.wait.clock).push(y.wait, s.now(y.wait.clock))
	case yieldParkChild:
		// Nothing to do: b resumes only when notified by onChildDone.
	case yieldDone:
		s.finish(c)
		s.applyDeferredFinish()
	default:
		invariant(false, "unknown yield kind")
	}
}

func (s *Scheduler) finish(c Suspendable) {
	b := c.base()
	if b.parent == nil {
		return
	}
	if b.parent.onChildDone(c) {
		// Only queue the parent if it is actually blocked in
		// parkForChildren. A child can finish synchronously while its
		// parent is still spawning siblings further down the same
		// combinator (e.g. the first winner in Any2, before the second
		// child has even been spawned) — in that case the parent hasn't
		// parked yet and never will, since it re-checks the awaiter's
		// state itself before deciding to park. Queuing it here anyway
		// would leave a stale runnable entry pointing at a coroutine
		// whose goroutine has since exited.
		if p := b.parent.owner(); p != nil && p.base().parked {
			s.runnable = append(s.runnable, p)
		}
	}
}

// Shutdown tears the scheduler down: every root entry still tracked is
// stopped — cascading, through the same forceStop/RAII mechanism as
// [Handle.Stop], into every child coroutine and pending wait it owns —
// and then every time queue is cleared. Every queue is expected to be
// empty by that point, since every pending wait was owned by some
// coroutine that was just torn down in the first pass; Shutdown asserts
// this rather than silently accepting a leaked wait.
//
// After Shutdown, every [Handle] into this scheduler is a harmless
// no-op: its id no longer resolves to an entry, so IsDown reports true,
// State reports [Stopped], and Stop/Release/Forget/TakeResult do
// nothing.
func (s *Scheduler) Shutdown() {
	for id, e := range s.entries {
		if e.co.base().state == Running {
			e.co.base().forceStop()
		}
		delete(s.entries, id)
	}
	s.newlyFinished = s.newlyFinished[:0]

	for key, q := range s.queues {
		invariant(q.len() == 0, "time queue not empty after shutting down every root")
		delete(s.queues, key)
	}
}

func (s *Scheduler) markFinished(id int64) {
	s.newlyFinished = append(s.newlyFinished, id)
}

// applyDeferredFinish erases bookkeeping for roots that finished and
// were already released by their handle. A root that finishes but whose
// handle is still attached stays in s.entries — with its final state
// and result available — until Release or Forget is called, so a host
// reading a Handle mid-resumption never observes an entry vanish out
// from under it.
//
// It is called after every pop whose resumption finishes a coroutine,
// right where the postbox may have been filled (see step), never
// accumulating work across multiple resumptions: the
// asserted bound below is what makes "at most one root may complete per
// resumption" (§4.5) a checked invariant instead of a hopeful comment.
func (s *Scheduler) applyDeferredFinish() {
	invariant(len(s.newlyFinished) <= 1, "more than one root finished between pops")
	for _, id := range s.newlyFinished {
		if e, ok := s.entries[id]; ok && e.released {
			delete(s.entries, id)
		}
	}
	s.newlyFinished = s.newlyFinished[:0]
}

// terminalAwaiter is the "parent" of every root coroutine: there is
// nothing to resume when a root finishes, only bookkeeping to record.
type terminalAwaiter struct {
	sched *Scheduler
	id    int64
}

func (a *terminalAwaiter) onChildDone(Suspendable) bool {
	a.sched.markFinished(a.id)
	return false
}

func (a *terminalAwaiter) owner() Suspendable { return nil }

func invariant(cond bool, msg string) {
	if !cond {
		panic("framecoro: internal invariant violated: " + msg)
	}
}
