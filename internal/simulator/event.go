// Package simulator implements the single-threaded, event-driven
// scheduling simulator: a min-heap of events drives a virtual clock
// that advances only when an event is dispatched, and every dispatch
// may push further events.
package simulator

import "container/heap"

// Kind distinguishes the two event types the simulator understands.
type Kind int

const (
	// Arrival introduces a new job into the system.
	Arrival Kind = iota
	// Completion signals that a job's expected remaining work has run out.
	Completion
)

// Event is one entry in the simulator's priority queue. Size and P are
// only meaningful for Arrival events.
type Event struct {
	Time  float64
	Kind  Kind
	JobID int64
	Size  float64
	P     float64

	seq int64
}

// EventQueue is a container/heap-backed min-heap of events ordered by
// Time, with insertion sequence as a stable tie-break so that two events
// scheduled for the identical virtual time dispatch in the order they
// were pushed, keeping replayed runs reproducible.
type EventQueue struct {
	items []Event
	next  int64
}

// NewEventQueue returns an empty, ready-to-use queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{items: make([]Event, 0)}
	heap.Init(q)
	return q
}

// Len implements heap.Interface.
func (q *EventQueue) Len() int { return len(q.items) }

// Less implements heap.Interface: earlier time first, ties broken by
// push order.
func (q *EventQueue) Less(i, j int) bool {
	if q.items[i].Time != q.items[j].Time {
		return q.items[i].Time < q.items[j].Time
	}
	return q.items[i].seq < q.items[j].seq
}

// Swap implements heap.Interface.
func (q *EventQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

// Push implements heap.Interface. Use PushEvent, not this method
// directly, to get sequence-number assignment.
func (q *EventQueue) Push(x any) {
	q.items = append(q.items, x.(Event))
}

// Pop implements heap.Interface.
func (q *EventQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	q.items = old[:n-1]
	return item
}

// PushEvent schedules e, stamping it with the next insertion sequence
// number.
func (q *EventQueue) PushEvent(e Event) {
	e.seq = q.next
	q.next++
	heap.Push(q, e)
}

// PopEvent removes and returns the minimum-time event. It panics if the
// queue is empty; callers must check Len first.
func (q *EventQueue) PopEvent() Event {
	return heap.Pop(q).(Event)
}

// Empty reports whether the queue holds no events.
func (q *EventQueue) Empty() bool { return len(q.items) == 0 }
