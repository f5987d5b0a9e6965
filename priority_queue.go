package desim

import "container/heap"

// pqItem pairs a stored value with its insertion sequence number, so that
// items equal under the caller's comparator still come out in insertion
// order (a stable min-heap tie-break). No third-party priority-heap
// container appears anywhere in the retrieval pack, so this is built
// directly on container/heap — see DESIGN.md.
type pqItem[T any] struct {
	val T
	seq uint64
}

// pqHeap adapts container/heap.Interface to a caller-supplied less function
// over T, with insertion-order tie-breaking via seq.
type pqHeap[T any] struct {
	items []pqItem[T]
	less  func(a, b T) bool
}

func (h *pqHeap[T]) Len() int { return len(h.items) }

func (h *pqHeap[T]) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if h.less(a.val, b.val) {
		return true
	}
	if h.less(b.val, a.val) {
		return false
	}
	return a.seq < b.seq
}

func (h *pqHeap[T]) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *pqHeap[T]) Push(x any) { h.items = append(h.items, x.(pqItem[T])) }

func (h *pqHeap[T]) Pop() any {
	old := h.items
	n := len(old)
	it := old[n-1]
	h.items = old[:n-1]
	return it
}

// PriorityQueue is a min-heap channel ordered by a caller-supplied
// comparator, with FIFO getters exactly like Queue. Items equal under the
// comparator are served in insertion order.
//
// On Put, if a getter is already waiting, the new item is handed to it
// directly rather than pushed through the heap: since the heap is only
// empty when getters are waiting (Queue's invariant extends here), the
// newly put item is trivially the minimum. A future bounded
// PriorityQueue where Put can itself block would need to revisit this
// shortcut — see DESIGN.md Open Questions.
type PriorityQueue[T any] struct {
	env     *Environment
	h       *pqHeap[T]
	getters []*Event
	seq     uint64
}

// NewPriorityQueue constructs an empty PriorityQueue ordered by less(a, b)
// ("a sorts before b").
func NewPriorityQueue[T any](env *Environment, less func(a, b T) bool) *PriorityQueue[T] {
	h := &pqHeap[T]{less: less}
	heap.Init(h)
	return &PriorityQueue[T]{env: env, h: h}
}

// Put enqueues x, returning an already-succeeded Event (the queue is
// unbounded).
func (pq *PriorityQueue[T]) Put(x T) *Event {
	e := NewEvent(pq.env)
	_ = e.Succeed(x)

	if len(pq.getters) > 0 {
		g := pq.getters[0]
		pq.getters = pq.getters[1:]
		_ = g.Succeed(x)
		return e
	}

	pq.seq++
	heap.Push(pq.h, pqItem[T]{val: x, seq: pq.seq})
	return e
}

// Get returns an already-succeeded Event carrying the current heap minimum,
// or, if the queue is empty, a pending Event appended to the waiter list.
func (pq *PriorityQueue[T]) Get() *Event {
	if pq.h.Len() > 0 {
		it := heap.Pop(pq.h).(pqItem[T])
		e := NewEvent(pq.env)
		_ = e.Succeed(it.val)
		return e
	}

	e := NewEvent(pq.env)
	pq.getters = append(pq.getters, e)
	e.onCancel = func() { pq.removeGetter(e) }
	return e
}

func (pq *PriorityQueue[T]) removeGetter(e *Event) {
	for i, g := range pq.getters {
		if g == e {
			pq.getters = append(pq.getters[:i], pq.getters[i+1:]...)
			return
		}
	}
}

// Len reports the number of buffered items.
func (pq *PriorityQueue[T]) Len() int { return pq.h.Len() }

// Waiters reports the number of pending get Events.
func (pq *PriorityQueue[T]) Waiters() int { return len(pq.getters) }
