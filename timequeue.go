package framecoro

import "container/heap"

// wait is a pending suspension: a coroutine parked until its deadline
// arrives on a given (phase, clock) queue. Each wait tracks its own index
// into the heap that owns it so it can be canceled in O(log n) without a
// linear scan.
type wait struct {
	owner Suspendable

	phase Phase
	clock Clock

	delay    float64
	deadline float64
	seq      uint64

	index int // position in its waitHeap; -1 when not queued.
}

// timeQueue holds every pending wait for one (phase, clock) pair.
type timeQueue struct {
	heap waitHeap
	seq  uint64
}

func newTimeQueue() *timeQueue {
	return &timeQueue{}
}

// push inserts w, computing its deadline from now. A non-positive delay
// gets deadline 0, which sorts before every positive deadline and is
// always <= now, so it is always ready on the very next drainReady call
// regardless of how far now has advanced — see DESIGN.md's Open Question
// note on wait(0) semantics.
func (q *timeQueue) push(w *wait, now float64) {
	if w.delay > 0 {
		w.deadline = now + w.delay
	} else {
		w.deadline = 0
	}
	q.seq++
	w.seq = q.seq
	heap.Push(&q.heap, w)
}

// remove cancels w, a no-op if w is not currently queued (already popped
// or already removed).
func (q *timeQueue) remove(w *wait) {
	if w.index < 0 || w.index >= len(q.heap) || q.heap[w.index] != w {
		return
	}
	heap.Remove(&q.heap, w.index)
}

// drainReady pops and returns, in deadline order, every wait whose
// deadline has arrived as of now. Waits pushed by the coroutines this
// drain resumes are not part of the returned slice even if their own
// deadline is already <= now: they wait for the next call, which is what
// keeps a `Wait(0)`-in-a-loop pattern from spinning forever inside a
// single Update call.
func (q *timeQueue) drainReady(now float64) []*wait {
	var ready []*wait
	for len(q.heap) > 0 && q.heap[0].deadline <= now {
		ready = append(ready, heap.Pop(&q.heap).(*wait))
	}
	return ready
}

func (q *timeQueue) len() int { return len(q.heap) }
