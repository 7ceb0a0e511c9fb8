package sim

import "fmt"

// EventScheduler is the single injection point for new events. It owns exactly
// one EventQueue and the run's sequence counter, so every event ever enqueued
// gets a strictly larger sequence id than all earlier ones.
//
// Note, this has nothing to do with how a component schedules its own work;
// it only orders future events in virtual time.
type EventScheduler struct {
	queue   *EventQueue
	nextSeq uint64
	now     SimTime
}

// NewEventScheduler creates a scheduler owning a fresh queue with the clock at zero.
func NewEventScheduler() *EventScheduler {
	return &EventScheduler{queue: NewEventQueue()}
}

// Schedule enqueues p at time at. Scheduling into the past fails with a
// ContractViolation wrapping ErrInvalidSchedule and leaves the queue and the
// sequence counter untouched.
func (s *EventScheduler) Schedule(at SimTime, p Payload) (EventHandle, error) {
	if p == nil {
		return EventHandle{}, &ContractViolation{Op: "schedule", Err: fmt.Errorf("%w: nil payload", ErrInvalidSchedule)}
	}
	if at < s.now {
		return EventHandle{}, &ContractViolation{
			Op:  "schedule",
			Err: fmt.Errorf("%w: %s at tick %d is before now (%d)", ErrInvalidSchedule, p.Kind(), at, s.now),
		}
	}
	ev := &Event{Time: at, Seq: s.nextSeq, Payload: p}
	s.nextSeq++
	s.queue.Push(ev)
	return EventHandle{ID: ev.Seq, Time: at, Kind: p.Kind()}, nil
}

// After schedules p delay ticks from now.
func (s *EventScheduler) After(delay SimTime, p Payload) (EventHandle, error) {
	at := s.now + delay
	if at < s.now {
		return EventHandle{}, &ContractViolation{Op: "schedule", Err: fmt.Errorf("%w: delay %d overflows the clock", ErrInvalidSchedule, delay)}
	}
	return s.Schedule(at, p)
}

// Cancel removes a scheduled event that has not been dispatched yet. It returns
// false when the event was already dispatched or cancelled.
func (s *EventScheduler) Cancel(h EventHandle) bool {
	_, ok := s.queue.Remove(h.ID)
	return ok
}

// Now returns the current virtual time.
func (s *EventScheduler) Now() SimTime {
	return s.now
}

// Pending returns the number of events not yet dispatched.
func (s *EventScheduler) Pending() int {
	return s.queue.Len()
}

// Scheduled returns how many sequence ids have been issued so far.
func (s *EventScheduler) Scheduled() uint64 {
	return s.nextSeq
}

func (s *EventScheduler) empty() bool {
	return s.queue.Empty()
}

func (s *EventScheduler) next() *Event {
	return s.queue.Pop()
}

// advance moves the clock to t. The clock never goes backwards.
func (s *EventScheduler) advance(t SimTime) error {
	if t < s.now {
		return &ContractViolation{Op: "advance", Err: fmt.Errorf("%w: %d < %d", ErrClockRegression, t, s.now)}
	}
	s.now = t
	return nil
}
