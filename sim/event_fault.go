package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// FaultInjected starts a scheduled fault window on a component or link and
// schedules its FaultCleared when the fault has a duration.
type FaultInjected struct {
	Fault int // index into Context.Faults
}

func (*FaultInjected) Kind() EventKind { return KindFaultInjected }

func (e *FaultInjected) execute(ctx *Context, st *State, s *EventScheduler) error {
	f, err := faultAt(ctx, e.Fault)
	if err != nil {
		return err
	}
	logrus.Infof("[tick %010d] fault %q (%s) injected on %q", s.Now(), f.ID, f.Type, f.Target)

	if cs, ok := st.Components[f.Target]; ok {
		switch f.Type {
		case FaultNodeCrash:
			cs.activeCrashes++
			cs.Down = true
			if err := failWaiting(ctx, st, s, f.Target); err != nil {
				return err
			}
		case FaultLatencySpike:
			cs.LatencyFactor *= f.SpikeFactor()
		case FaultDiskFailure:
			cs.activeDiskFaults++
			cs.ForcedFailure = true
		}
	} else if ls, ok := st.Links[f.Target]; ok {
		switch f.Type {
		case FaultNodeCrash, FaultDiskFailure:
			ls.activeOutages++
			ls.Down = true
		case FaultLatencySpike:
			ls.LatencyFactor *= f.SpikeFactor()
		}
	}

	if f.DurationMs > 0 {
		_, err := s.After(Millis(f.DurationMs), &FaultCleared{Fault: e.Fault})
		return err
	}
	return nil
}

// FaultCleared ends a scheduled fault window.
type FaultCleared struct {
	Fault int
}

func (*FaultCleared) Kind() EventKind { return KindFaultCleared }

func (e *FaultCleared) execute(ctx *Context, st *State, s *EventScheduler) error {
	f, err := faultAt(ctx, e.Fault)
	if err != nil {
		return err
	}
	logrus.Infof("[tick %010d] fault %q cleared on %q", s.Now(), f.ID, f.Target)

	if cs, ok := st.Components[f.Target]; ok {
		switch f.Type {
		case FaultNodeCrash:
			cs.activeCrashes = max(0, cs.activeCrashes-1)
			cs.Down = cs.activeCrashes > 0
			if !cs.Down {
				return startNextWaiting(ctx, st, s, ctx.Component(f.Target))
			}
		case FaultLatencySpike:
			cs.LatencyFactor /= f.SpikeFactor()
		case FaultDiskFailure:
			cs.activeDiskFaults = max(0, cs.activeDiskFaults-1)
			cs.ForcedFailure = cs.activeDiskFaults > 0
		}
	} else if ls, ok := st.Links[f.Target]; ok {
		switch f.Type {
		case FaultNodeCrash, FaultDiskFailure:
			ls.activeOutages = max(0, ls.activeOutages-1)
			ls.Down = ls.activeOutages > 0
		case FaultLatencySpike:
			ls.LatencyFactor /= f.SpikeFactor()
		}
	}
	return nil
}

func faultAt(ctx *Context, i int) (*Fault, error) {
	if i < 0 || i >= len(ctx.faults) {
		return nil, fmt.Errorf("fault index %d out of range", i)
	}
	return &ctx.faults[i], nil
}

// failWaiting fails every request parked at a crashed component.
func failWaiting(ctx *Context, st *State, s *EventScheduler, id string) error {
	cs := st.Components[id]
	for _, reqID := range st.waiting[id].Drain() {
		req, ok := st.Request(reqID)
		if !ok {
			continue
		}
		req.waitingAt = ""
		cs.Failed++
		if err := failRequest(ctx, st, s, req); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fault) params() Params {
	return Params{ParamProbability: FloatValue(f.Probability)}
}
