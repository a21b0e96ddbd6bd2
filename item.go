package pqueue

import "fmt"

// Item is a unit of work moved through a Channel.
//
// Items are plain values: they carry no identity, and two items with the
// same Name and Priority are interchangeable. Lower Priority values are
// served first.
type Item struct {
	Name     string
	Priority int
}

func (it Item) String() string {
	return fmt.Sprintf("%s(%d)", it.Name, it.Priority)
}

// entry is an accepted item stored inside the channel's heap.
//
// seq is assigned under the channel lock when the item is accepted and
// breaks ties between equal priorities, so entries of the same priority
// leave in the order they were accepted.
type entry struct {
	item Item

	// prio duplicates item.Priority so heap comparisons stay on one cache line.
	prio int

	seq uint64
}

// less reports whether e must be served before o.
func (e entry) less(o entry) bool {
	if e.prio != o.prio {
		return e.prio < o.prio
	}
	return e.seq < o.seq
}
