package sim

import "fmt"

// SimTime is a virtual clock tick. One tick models one microsecond.
type SimTime uint64

// TicksPerMillisecond converts profile parameters expressed in milliseconds.
const TicksPerMillisecond = 1000

// Millis converts a millisecond quantity to ticks, rounding to the nearest tick.
// Negative and NaN inputs map to zero.
func Millis(ms float64) SimTime {
	if !(ms > 0) {
		return 0
	}
	return SimTime(ms*TicksPerMillisecond + 0.5)
}

// Millis returns t expressed in milliseconds.
func (t SimTime) Millis() float64 {
	return float64(t) / TicksPerMillisecond
}

// EventKind discriminates the closed set of event payloads.
type EventKind uint8

const (
	KindRequestGenerated EventKind = iota
	KindArrival
	KindServiceComplete
	KindTransmissionComplete
	KindRequestTimeout
	KindFaultInjected
	KindFaultCleared

	numEventKinds
)

var eventKindNames = [numEventKinds]string{
	KindRequestGenerated:     "RequestGenerated",
	KindArrival:              "Arrival",
	KindServiceComplete:      "ServiceComplete",
	KindTransmissionComplete: "TransmissionComplete",
	KindRequestTimeout:       "RequestTimeout",
	KindFaultInjected:        "FaultInjected",
	KindFaultCleared:         "FaultCleared",
}

func (k EventKind) String() string {
	if k < numEventKinds {
		return eventKindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// EventKinds lists every known kind in declaration order.
func EventKinds() []EventKind {
	kinds := make([]EventKind, 0, numEventKinds)
	for k := EventKind(0); k < numEventKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Payload is the kind-specific part of an event. The set of payloads is closed:
// only types in this package can satisfy it.
//
// execute receives read-only access to ctx, mutates st in place, and may call
// s.Schedule any number of times. It must not keep st or s after returning.
type Payload interface {
	Kind() EventKind
	execute(ctx *Context, st *State, s *EventScheduler) error
}

// Event is a scheduled unit of computation. The queue owns an Event until it is
// popped; the simulator discards it right after dispatch.
type Event struct {
	Time    SimTime
	Seq     uint64 // unique and ascending per run, used only for tie-breaking
	Payload Payload

	index int // heap position, -1 once popped or removed
}

// Kind returns the payload kind.
func (e *Event) Kind() EventKind {
	return e.Payload.Kind()
}

func (e *Event) String() string {
	return fmt.Sprintf("%s@%d#%d", e.Kind(), e.Time, e.Seq)
}

func (e *Event) execute(ctx *Context, st *State, s *EventScheduler) error {
	return e.Payload.execute(ctx, st, s)
}

// EventHandle identifies a scheduled event so it can be cancelled before dispatch.
type EventHandle struct {
	ID   uint64 // the event's sequence id
	Time SimTime
	Kind EventKind
}

// Compile-time exhaustiveness: one payload per kind.
var (
	_ Payload = (*RequestGenerated)(nil)
	_ Payload = (*Arrival)(nil)
	_ Payload = (*ServiceComplete)(nil)
	_ Payload = (*TransmissionComplete)(nil)
	_ Payload = (*RequestTimeout)(nil)
	_ Payload = (*FaultInjected)(nil)
	_ Payload = (*FaultCleared)(nil)
)
