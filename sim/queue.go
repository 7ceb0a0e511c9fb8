// Implements the EventQueue holding pending events, and the WaitQueue holding
// requests parked at a saturated component.

package sim

import (
	"container/heap"
	"fmt"
)

// eventHeap implements heap.Interface ordered by (Time, Seq).
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-PriorityQueue
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].Seq < h[j].Seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x any) {
	ev := x.(*Event)
	ev.index = len(*h)
	*h = append(*h, ev)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	ev.index = -1
	*h = old[:n-1]
	return ev
}

// EventQueue is a min-heap of pending events. Pop always returns the event with
// the smallest (Time, Seq) pair; equal times dispatch in submission order.
// Not safe for concurrent use.
type EventQueue struct {
	events eventHeap
	bySeq  map[uint64]*Event
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{
		events: make(eventHeap, 0),
		bySeq:  make(map[uint64]*Event),
	}
	heap.Init(&q.events)
	return q
}

// Push inserts ev. Sequence ids must be unique among pending events.
func (q *EventQueue) Push(ev *Event) {
	if ev == nil || ev.Payload == nil {
		panic(&ContractViolation{Op: "push", Err: fmt.Errorf("event without payload")})
	}
	if _, dup := q.bySeq[ev.Seq]; dup {
		panic(&ContractViolation{Op: "push", Err: fmt.Errorf("duplicate sequence id %d", ev.Seq)})
	}
	heap.Push(&q.events, ev)
	q.bySeq[ev.Seq] = ev
}

// Pop removes and returns the earliest event. Callers must check Empty first;
// popping an empty queue panics with a ContractViolation wrapping ErrEmptyQueue.
func (q *EventQueue) Pop() *Event {
	if q.Empty() {
		panic(&ContractViolation{Op: "pop", Err: ErrEmptyQueue})
	}
	ev := heap.Pop(&q.events).(*Event)
	delete(q.bySeq, ev.Seq)
	return ev
}

// Peek returns the earliest event without removing it, or nil when empty.
func (q *EventQueue) Peek() *Event {
	if q.Empty() {
		return nil
	}
	return q.events[0]
}

// Remove drops the pending event with the given sequence id.
func (q *EventQueue) Remove(seq uint64) (*Event, bool) {
	ev, ok := q.bySeq[seq]
	if !ok {
		return nil, false
	}
	heap.Remove(&q.events, ev.index)
	delete(q.bySeq, seq)
	return ev, true
}

// Empty reports whether no pending events remain.
func (q *EventQueue) Empty() bool {
	return len(q.events) == 0
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return len(q.events)
}

// WaitQueue is a FIFO of request IDs waiting for a free slot at a component.
type WaitQueue struct {
	queue []uint64
}

// Enqueue adds a request to the back of the wait queue.
func (wq *WaitQueue) Enqueue(id uint64) {
	wq.queue = append(wq.queue, id)
}

// Dequeue removes and returns the request at the front.
func (wq *WaitQueue) Dequeue() (uint64, bool) {
	if len(wq.queue) == 0 {
		return 0, false
	}
	id := wq.queue[0]
	wq.queue = wq.queue[1:]
	return id, true
}

// Len returns the number of requests in the queue.
func (wq *WaitQueue) Len() int {
	return len(wq.queue)
}

// Remove drops id from the queue, keeping the order of the rest.
func (wq *WaitQueue) Remove(id uint64) bool {
	for i, queued := range wq.queue {
		if queued == id {
			wq.queue = append(wq.queue[:i], wq.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Drain empties the queue and returns its contents in FIFO order.
func (wq *WaitQueue) Drain() []uint64 {
	out := wq.queue
	wq.queue = nil
	return out
}
