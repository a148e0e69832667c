package framecoro

import "container/heap"

// waitHeap is a binary min-heap over pending waits, ordered by
// (deadline, sequence) so that ties resolve FIFO. It is the low-level
// container [timeQueue] builds on; splitting it out mirrors the teacher
// library's own separation of a generic priority queue from the
// coroutine bookkeeping that uses it, though the storage strategy here is
// container/heap rather than the teacher's sorted-slice-with-binary-
// search-insert, since the teacher's O(n) insert doesn't give the O(log n)
// arbitrary-element cancellation this scheduler needs (see DESIGN.md).
type waitHeap []*wait

func (h waitHeap) Len() int { return len(h) }

func (h waitHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.deadline != b.deadline {
		return a.deadline < b.deadline
	}
	return a.seq < b.seq
}

func (h waitHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *waitHeap) Push(x any) {
	w := x.(*wait)
	w.index = len(*h)
	*h = append(*h, w)
}

func (h *waitHeap) Pop() any {
	old := *h
	n := len(old)
	w := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	w.index = -1
	return w
}

var _ heap.Interface = (*waitHeap)(nil)
