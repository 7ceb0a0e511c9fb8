package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// RequestGenerated is the workload source. Each execution creates one request,
// sends it to its route's entry component, arms its timeout, and schedules the
// next RequestGenerated. Generation stops at the workload duration.
type RequestGenerated struct{}

func (*RequestGenerated) Kind() EventKind { return KindRequestGenerated }

func (*RequestGenerated) execute(ctx *Context, st *State, s *EventScheduler) error {
	now := s.Now()
	w := ctx.Workload()
	if now >= w.Duration() || len(ctx.routes) == 0 {
		return nil
	}

	if w.RateAt(now) > 0 {
		route := ctx.PickRoute(st.RNG(SubsystemRouting).Float64())
		req := st.OpenRequest(route, now)
		entry := ctx.Component(ctx.Route(route).Path[0])
		logrus.Debugf("[tick %010d] %s generated on route %q", now, req.Label(), ctx.Route(route).ID)

		if _, err := s.After(0, &Arrival{Request: req.ID, Component: entry.ID}); err != nil {
			return err
		}
		if timeout := entry.Params.Float(ParamTimeoutMs, 0); timeout > 0 {
			h, err := s.After(Millis(timeout), &RequestTimeout{Request: req.ID})
			if err != nil {
				return err
			}
			req.timeout, req.hasTimeout = h, true
		}
	}

	next, ok := ctx.oracles.Arrival.NextArrival(w, now, st.RNG(SubsystemWorkload))
	if !ok || next >= w.Duration() {
		return nil
	}
	if next <= now {
		next = now + 1
	}
	_, err := s.Schedule(next, &RequestGenerated{})
	return err
}

// SeedWorkload seeds the initial events described by the Context: the first
// RequestGenerated at time zero and one FaultInjected per scheduled fault.
func SeedWorkload(sim *Simulator) error {
	ctx := sim.Context()
	if w := ctx.Workload(); w.DurationMs > 0 && len(ctx.routes) > 0 {
		if _, err := sim.Seed(0, &RequestGenerated{}); err != nil {
			return fmt.Errorf("seeding workload: %w", err)
		}
	}
	for i, f := range ctx.Faults() {
		if f.Mode != FaultScheduled {
			continue
		}
		if _, err := sim.Seed(Millis(f.AtMs), &FaultInjected{Fault: i}); err != nil {
			return fmt.Errorf("seeding fault %q: %w", f.ID, err)
		}
	}
	return nil
}
