package framecoro

// Optional carries a combinator result that may not have been produced,
// used by the Any family: the child that lost the race never contributes
// a value.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some wraps v as a present [Optional] value.
func Some[T any](v T) Optional[T] { return Optional[T]{Value: v, Valid: true} }

// singleAwaiter is the parentAwaiter for [Await]: exactly one child, so
// the parent always resumes the instant it finishes.
type singleAwaiter struct{ p Suspendable }

func (a *singleAwaiter) onChildDone(Suspendable) bool { return true }
func (a *singleAwaiter) owner() Suspendable           { return a.p }

// joinAwaiter is the parentAwaiter for the All family: the parent resumes
// only once every child it is waiting on has finished.
type joinAwaiter struct {
	p         Suspendable
	remaining int
}

func (a *joinAwaiter) onChildDone(Suspendable) bool {
	a.remaining--
	return a.remaining == 0
}
func (a *joinAwaiter) owner() Suspendable { return a.p }

// raceAwaiter is the parentAwaiter for the Any family: the parent resumes
// the instant the first child finishes; later notifications (from
// children that finish synchronously in the same batch, before any of
// them get a chance to be force-stopped) are ignored.
type raceAwaiter struct {
	p      Suspendable
	fired  bool
	winner Suspendable
}

func (a *raceAwaiter) onChildDone(child Suspendable) bool {
	if a.fired {
		return false
	}
	a.fired = true
	a.winner = child
	return true
}
func (a *raceAwaiter) owner() Suspendable { return a.p }

func spawnAndStep[T any](sched *Scheduler, parent parentAwaiter, f CoroutineFunc[T]) *Coroutine[T] {
	c := newCoroutine[T](sched, f)
	c.parent = parent
	sched.step(c, resumeMsg{})
	return c
}

func parkForChildren(p Suspendable) (canceled bool) {
	b := p.base()
	b.parked = true
	b.yieldCh <- yieldMsg{kind: yieldParkChild}
	msg := <-b.resumeCh
	b.parked = false
	return msg.canceled
}

// Await runs f as a structured child coroutine of p and blocks until it
// finishes, returning its result and error. If p is stopped while
// waiting, the child is force-stopped before the stop unwinds p.
func Await[R any](p Suspendable, f CoroutineFunc[R]) (R, error) {
	b := p.base()
	j := &singleAwaiter{p: p}
	child := spawnAndStep[R](b.sched, j, f)
	if child.state == Running {
		if parkForChildren(p) {
			child.forceStop()
			panic(cancelSignal{})
		}
	}
	return child.result, child.err
}

// All2 runs fa and fb as structured children of p concurrently and blocks
// until both finish. Both children always run to completion even if one
// fails; if either failed, All2 returns the first failure in argument
// order alongside that child's own result, with zero values in the other
// result slots.
func All2[A, B any](p Suspendable, fa CoroutineFunc[A], fb CoroutineFunc[B]) (A, B, error) {
	b := p.base()
	j := &joinAwaiter{p: p, remaining: 2}
	ca := spawnAndStep[A](b.sched, j, fa)
	cb := spawnAndStep[B](b.sched, j, fb)
	if j.remaining > 0 {
		if parkForChildren(p) {
			cb.forceStop()
			ca.forceStop()
			panic(cancelSignal{})
		}
	}
	if ca.err != nil {
		var zb B
		return ca.result, zb, ca.err
	}
	if cb.err != nil {
		var za A
		return za, cb.result, cb.err
	}
	return ca.result, cb.result, nil
}

// All3 is [All2] for three children.
func All3[A, B, C any](p Suspendable, fa CoroutineFunc[A], fb CoroutineFunc[B], fc CoroutineFunc[C]) (A, B, C, error) {
	b := p.base()
	j := &joinAwaiter{p: p, remaining: 3}
	ca := spawnAndStep[A](b.sched, j, fa)
	cb := spawnAndStep[B](b.sched, j, fb)
	cc := spawnAndStep[C](b.sched, j, fc)
	if j.remaining > 0 {
		if parkForChildren(p) {
			cc.forceStop()
			cb.forceStop()
			ca.forceStop()
			panic(cancelSignal{})
		}
	}
	var za A
	var zb B
	var zc C
	if ca.err != nil {
		return ca.result, zb, zc, ca.err
	}
	if cb.err != nil {
		return za, cb.result, zc, cb.err
	}
	if cc.err != nil {
		return za, zb, cc.result, cc.err
	}
	return ca.result, cb.result, cc.result, nil
}

// All4 is [All2] for four children.
func All4[A, B, C, D any](p Suspendable, fa CoroutineFunc[A], fb CoroutineFunc[B], fc CoroutineFunc[C], fd CoroutineFunc[D]) (A, B, C, D, error) {
	b := p.base()
	j := &joinAwaiter{p: p, remaining: 4}
	ca := spawnAndStep[A](b.sched, j, fa)
	cb := spawnAndStep[B](b.sched, j, fb)
	cc := spawnAndStep[C](b.sched, j, fc)
	cd := spawnAndStep[D](b.sched, j, fd)
	if j.remaining > 0 {
		if parkForChildren(p) {
			cd.forceStop()
			cc.forceStop()
			cb.forceStop()
			ca.forceStop()
			panic(cancelSignal{})
		}
	}
	var za A
	var zb B
	var zc C
	var zd D
	if ca.err != nil {
		return ca.result, zb, zc, zd, ca.err
	}
	if cb.err != nil {
		return za, cb.result, zc, zd, cb.err
	}
	if cc.err != nil {
		return za, zb, cc.result, zd, cc.err
	}
	if cd.err != nil {
		return za, zb, zc, cd.result, cd.err
	}
	return ca.result, cb.result, cc.result, cd.result, nil
}

// AllSlice runs one structured child per element of fs, all of the same
// result type, and blocks until every one of them finishes. It is the
// homogeneous, arbitrary-arity counterpart to All2..All4, for the case
// where the number of children isn't known until runtime.
func AllSlice[T any](p Suspendable, fs []CoroutineFunc[T]) ([]T, error) {
	if len(fs) == 0 {
		return nil, nil
	}
	b := p.base()
	j := &joinAwaiter{p: p, remaining: len(fs)}
	children := make([]*Coroutine[T], len(fs))
	for i, f := range fs {
		children[i] = spawnAndStep[T](b.sched, j, f)
	}
	if j.remaining > 0 {
		if parkForChildren(p) {
			for i := len(children) - 1; i >= 0; i-- {
				children[i].forceStop()
			}
			panic(cancelSignal{})
		}
	}
	results := make([]T, len(children))
	var firstErr error
	for i, c := range children {
		results[i] = c.result
		if firstErr == nil && c.err != nil {
			firstErr = c.err
		}
	}
	return results, firstErr
}

// Any2 runs fa and fb as structured children of p concurrently and
// returns as soon as the first one finishes; the other is force-stopped
// before Any2 returns, and its slot in the result is left invalid.
func Any2[A, B any](p Suspendable, fa CoroutineFunc[A], fb CoroutineFunc[B]) (Optional[A], Optional[B], error) {
	b := p.base()
	r := &raceAwaiter{p: p}
	ca := spawnAndStep[A](b.sched, r, fa)
	cb := spawnAndStep[B](b.sched, r, fb)
	if r.winner == nil {
		if parkForChildren(p) {
			cb.forceStop()
			ca.forceStop()
			panic(cancelSignal{})
		}
	}
	var outA Optional[A]
	var outB Optional[B]
	if r.winner == Suspendable(ca) {
		cb.forceStop()
		return Some(ca.result), outB, ca.err
	}
	ca.forceStop()
	return outA, Some(cb.result), cb.err
}

// Any3 is [Any2] for three children.
func Any3[A, B, C any](p Suspendable, fa CoroutineFunc[A], fb CoroutineFunc[B], fc CoroutineFunc[C]) (Optional[A], Optional[B], Optional[C], error) {
	b := p.base()
	r := &raceAwaiter{p: p}
	ca := spawnAndStep[A](b.sched, r, fa)
	cb := spawnAndStep[B](b.sched, r, fb)
	cc := spawnAndStep[C](b.sched, r, fc)
	if r.winner == nil {
		if parkForChildren(p) {
			cc.forceStop()
			cb.forceStop()
			ca.forceStop()
			panic(cancelSignal{})
		}
	}
	var outA Optional[A]
	var outB Optional[B]
	var outC Optional[C]
	switch r.winner {
	case Suspendable(ca):
		cc.forceStop()
		cb.forceStop()
		return Some(ca.result), outB, outC, ca.err
	case Suspendable(cb):
		cc.forceStop()
		ca.forceStop()
		return outA, Some(cb.result), outC, cb.err
	default:
		cb.forceStop()
		ca.forceStop()
		return outA, outB, Some(cc.result), cc.err
	}
}

// Any4 is [Any2] for four children.
func Any4[A, B, C, D any](p Suspendable, fa CoroutineFunc[A], fb CoroutineFunc[B], fc CoroutineFunc[C], fd CoroutineFunc[D]) (Optional[A], Optional[B], Optional[C], Optional[D], error) {
	b := p.base()
	r := &raceAwaiter{p: p}
	ca := spawnAndStep[A](b.sched, r, fa)
	cb := spawnAndStep[B](b.sched, r, fb)
	cc := spawnAndStep[C](b.sched, r, fc)
	cd := spawnAndStep[D](b.sched, r, fd)
	if r.winner == nil {
		if parkForChildren(p) {
			cd.forceStop()
			cc.forceStop()
			cb.forceStop()
			ca.forceStop()
			panic(cancelSignal{})
		}
	}
	var outA Optional[A]
	var outB Optional[B]
	var outC Optional[C]
	var outD Optional[D]
	switch r.winner {
	case Suspendable(ca):
		cd.forceStop()
		cc.forceStop()
		cb.forceStop()
		return Some(ca.result), outB, outC, outD, ca.err
	case Suspendable(cb):
		cd.forceStop()
		cc.forceStop()
		ca.forceStop()
		return outA, Some(cb.result), outC, outD, cb.err
	case Suspendable(cc):
		cd.forceStop()
		cb.forceStop()
		ca.forceStop()
		return outA, outB, Some(cc.result), outD, cc.err
	default:
		cc.forceStop()
		cb.forceStop()
		ca.forceStop()
		return outA, outB, outC, Some(cd.result), cd.err
	}
}

// AnySlice runs one structured child per element of fs and returns as
// soon as the first one finishes, force-stopping the rest (in reverse
// index order) before returning. It panics if fs is empty, since a race
// with no participants has no well-defined winner.
func AnySlice[T any](p Suspendable, fs []CoroutineFunc[T]) (winnerIndex int, result T, err error) {
	if len(fs) == 0 {
		panic("framecoro: AnySlice called with no candidates")
	}
	b := p.base()
	r := &raceAwaiter{p: p}
	children := make([]*Coroutine[T], len(fs))
	for i, f := range fs {
		children[i] = spawnAndStep[T](b.sched, r, f)
	}
	if r.winner == nil {
		if parkForChildren(p) {
			for i := len(children) - 1; i >= 0; i-- {
				children[i].forceStop()
			}
			panic(cancelSignal{})
		}
	}
	for i, c := range children {
		if r.winner == Suspendable(c) {
			winnerIndex, result, err = i, c.result, c.err
			continue
		}
	}
	for i := len(children) - 1; i >= 0; i-- {
		children[i].forceStop()
	}
	return winnerIndex, result, err
}
