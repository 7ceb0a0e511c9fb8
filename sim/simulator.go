// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/arch-sim/arch-sim/sim/trace"
)

// Phase is the simulator lifecycle state: Idle → Running → Drained.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseDrained
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseRunning:
		return "Running"
	case PhaseDrained:
		return "Drained"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// Simulator is the drain loop. It pops the earliest event, advances the clock to
// its timestamp and dispatches it, until no events remain. It never interprets
// payloads: every domain decision lives in event execution and its oracles.
type Simulator struct {
	ctx        *Context
	state      *State
	scheduler  *EventScheduler
	phase      Phase
	dispatched uint64
	trace      *trace.DispatchTrace
}

// NewSimulator creates an idle simulator for one run over ctx and st.
func NewSimulator(ctx *Context, st *State) *Simulator {
	return &Simulator{
		ctx:       ctx,
		state:     st,
		scheduler: NewEventScheduler(),
		phase:     PhaseIdle,
	}
}

// SetTrace attaches a dispatch trace; nil disables recording.
func (s *Simulator) SetTrace(t *trace.DispatchTrace) {
	s.trace = t
}

// Seed enqueues an initial event. Only valid before Run.
func (s *Simulator) Seed(at SimTime, p Payload) (EventHandle, error) {
	if s.phase != PhaseIdle {
		return EventHandle{}, fmt.Errorf("seeding in phase %s: %w", s.phase, ErrAlreadyRun)
	}
	return s.scheduler.Schedule(at, p)
}

// Scheduler exposes the scheduling facade, e.g. to cancel a seeded event.
func (s *Simulator) Scheduler() *EventScheduler {
	return s.scheduler
}

// Context returns the run's immutable architecture description.
func (s *Simulator) Context() *Context {
	return s.ctx
}

// State returns the run's mutable counters. Read it after Run returns.
func (s *Simulator) State() *State {
	return s.state
}

// Now returns the current virtual time, valid during and after a run.
func (s *Simulator) Now() SimTime {
	return s.scheduler.Now()
}

// Phase returns the lifecycle state.
func (s *Simulator) Phase() Phase {
	return s.phase
}

// Dispatched returns the number of events executed so far.
func (s *Simulator) Dispatched() uint64 {
	return s.dispatched
}

// Run drains the queue. It returns nil once no events remain, or the first error
// raised while executing an event; either way the simulator ends Drained.
// A contract violation panicking out of event code aborts the run and is
// returned as an error.
func (s *Simulator) Run() (err error) {
	if s.phase != PhaseIdle {
		return ErrAlreadyRun
	}
	s.phase = PhaseRunning
	defer func() {
		if r := recover(); r != nil {
			cv, ok := r.(*ContractViolation)
			if !ok {
				panic(r)
			}
			err = fmt.Errorf("run aborted at tick %d: %w", s.Now(), cv)
		}
		s.phase = PhaseDrained
		if err != nil {
			logrus.Errorf("[tick %010d] Simulation aborted after %d events: %v", s.Now(), s.dispatched, err)
			return
		}
		logrus.Infof("[tick %010d] Simulation drained after %d events", s.Now(), s.dispatched)
	}()

	logrus.Infof("[tick %010d] Simulation started with %d seeded events", s.Now(), s.scheduler.Pending())
	for !s.scheduler.empty() {
		ev := s.scheduler.next()
		if err := s.scheduler.advance(ev.Time); err != nil {
			return fmt.Errorf("dispatching %s: %w", ev, err)
		}
		s.dispatched++
		if s.trace != nil {
			s.trace.Record(trace.DispatchRecord{Time: uint64(ev.Time), Seq: ev.Seq, Kind: ev.Kind().String()})
		}
		logrus.Debugf("[tick %010d] seq=%d %s", ev.Time, ev.Seq, ev.Kind())
		if err := ev.execute(s.ctx, s.state, s.scheduler); err != nil {
			return fmt.Errorf("executing %s: %w", ev, err)
		}
	}
	return nil
}
