package framecoro

// State is the lifecycle state of a coroutine.
type State int

const (
	// Running means the coroutine has been started and has not yet
	// produced a final outcome.
	Running State = iota
	// Succeeded means the coroutine's body returned a nil error.
	Succeeded
	// Failed means the coroutine's body returned a non-nil error, or
	// panicked and the panic was captured as an error.
	Failed
	// Stopped means the coroutine was torn down by a cancellation
	// (either its own [Handle.Stop], or a cascade from its parent).
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// CoroutineFunc is the body of a coroutine. It receives the coroutine
// running it as its only argument, used as the first argument to [Wait],
// [Await] and the other free-function combinators so they know which
// coroutine is suspending.
type CoroutineFunc[T any] func(co *Coroutine[T]) (T, error)

// Suspendable is implemented by every *Coroutine[T] regardless of its
// result type T. Free functions that need to suspend "whichever coroutine
// is calling me" — [Wait], [Await], [All2], [Any2], and so on — take a
// Suspendable instead of a concrete *Coroutine[T] so a parent of one
// result type can spawn and await children of other result types.
type Suspendable interface {
	base() *coroBase
}

// parentAwaiter is notified when a child coroutine finishes. It decides
// whether its owning coroutine should be scheduled to resume as a result.
type parentAwaiter interface {
	onChildDone(child Suspendable) bool
	owner() Suspendable
}

// coroBase is the type-erased half of a coroutine's bookkeeping: the part
// the scheduler and the suspension machinery need to touch without caring
// about the coroutine's result type.
type coroBase struct {
	sched   *Scheduler
	state   State
	parent  parentAwaiter
	ps      panicstack
	err     error
	taken   bool

	resumeCh chan resumeMsg
	yieldCh  chan yieldMsg

	pendingWait *wait

	// parked is true exactly while this coroutine's goroutine is blocked
	// inside parkForChildren, waiting on a completion notification rather
	// than a queued deadline. It distinguishes "genuinely suspended,
	// wake me via the runnable queue" from "still running synchronously
	// somewhere further down this same call stack, about to check
	// whether it even needs to park at all" — see finish in scheduler.go.
	parked bool

	nonCancel     int
	cancelPending bool
}

func (b *coroBase) base() *coroBase { return b }

func (b *coroBase) isDone() bool { return b.state != Running }

// forceStop tears down a still-running coroutine synchronously: if it is
// parked on a deadline, that entry is removed from its time queue; either
// way its goroutine is woken with a cancellation signal and unwinds via
// panic/recover/defer, cascading into any children it currently owns
// through the same mechanism, before this call returns.
//
// A [NonCancelable] scope is allowed to keep suspending after a stop
// arrives — its own Wait calls return normally instead of panicking — so
// one resume/yield round trip is not always enough: the coroutine may
// yield yieldParkWait or yieldParkChild again before it actually unwinds.
// forceStop keeps resending the cancellation until yieldDone arrives,
// discarding any wait the coroutine tries to park on in the meantime
// rather than letting it sit on the real time queue.
func (b *coroBase) forceStop() {
	if b.state != Running {
		return
	}
	if b.pendingWait != nil {
		b.sched.timeQueueFor(b.pendingWait.phase, b.pendingWait.clock).remove(b.pendingWait)
		b.pendingWait = nil
	}
	for {
		b.resumeCh <- resumeMsg{canceled: true}
		y := <-b.yieldCh
		switch y.kind {
		case yieldParkWait:
			b.pendingWait = nil
		case yieldParkChild:
			// Nothing queued to discard; loop and cancel it again.
		case yieldDone:
			return
		default:
			invariant(false, "unknown yield kind during forceStop")
		}
	}
}

// Coroutine is a single execution of a [CoroutineFunc]. Coroutines are
// created by [Start] (roots, owned by a [Handle]) or by [Await] and the
// other structured combinators (children, owned by whichever coroutine
// spawned them).
type Coroutine[T any] struct {
	coroBase
	result T
}

type resumeMsg struct {
	canceled bool
}

type yieldKind uint8

const (
	yieldParkWait yieldKind = iota
	yieldParkChild
	yieldDone
)

type yieldMsg struct {
	kind yieldKind
	wait *wait
}

func newCoroutine[T any](sched *Scheduler, f CoroutineFunc[T]) *Coroutine[T] {
	c := &Coroutine[T]{}
	c.sched = sched
	c.resumeCh = make(chan resumeMsg)
	c.yieldCh = make(chan yieldMsg, 1)
	go c.run(f)
	return c
}

// run is the coroutine's goroutine body. It blocks immediately for the
// first resume so that construction and starting a coroutine are
// distinct steps under the scheduler's control.
func (c *Coroutine[T]) run(f CoroutineFunc[T]) {
	msg := <-c.resumeCh
	if msg.canceled {
		c.state = Stopped
		c.yieldCh <- yieldMsg{kind: yieldDone}
		return
	}

	var result T
	var err error
	ok := c.ps.Try(func() { result, err = f(c) })

	switch {
	case !ok && len(c.ps) == 0:
		// Unwound via cancelSignal: this is a stop, not a failure.
		c.state = Stopped
	case !ok:
		c.state = Failed
		c.err = &panicvalue{items: c.ps}
	case err != nil:
		c.state = Failed
		c.err = err
		c.result = result
	default:
		c.state = Succeeded
		c.result = result
	}
	c.yieldCh <- yieldMsg{kind: yieldDone}
}
