package pqueue

import (
	"container/heap"
)

const (
	prioPrealloc = 2048
)

// entryHeap is a min-heap over (prio, seq).
type entryHeap []entry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return h[i].less(h[j]) }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(entry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = entry{}
	*h = old[:n-1]
	return e
}

// prioQueue is the ordering structure behind Channel.
//
// It is not safe for concurrent use; the channel serializes every call
// under its own mutex. Sequence numbers are handed out here so that two
// entries with the same priority are popped in acceptance order.
type prioQueue struct {
	h   entryHeap
	seq uint64
}

// newPrioQueue creates an empty queue. sizeHint preallocates the heap,
// capped so a very large capacity does not allocate everything up front.
func newPrioQueue(sizeHint int) *prioQueue {
	if sizeHint > prioPrealloc {
		sizeHint = prioPrealloc
	}
	if sizeHint < 0 {
		sizeHint = 0
	}
	q := &prioQueue{h: make(entryHeap, 0, sizeHint)}
	heap.Init(&q.h)
	return q
}

// Push inserts it in O(log n).
func (q *prioQueue) Push(it Item) {
	q.seq++
	heap.Push(&q.h, entry{item: it, prio: it.Priority, seq: q.seq})
}

// Pop removes and returns the item with the numerically smallest priority.
// If the queue is empty, Pop returns a zero Item and false.
func (q *prioQueue) Pop() (Item, bool) {
	if q.h.Len() == 0 {
		return Item{}, false
	}
	e := heap.Pop(&q.h).(entry)
	return e.item, true
}

// Len returns the number of items currently stored.
func (q *prioQueue) Len() int {
	return q.h.Len()
}
