package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Arrival is a request reaching a component. The request starts service when a
// slot is free, otherwise it waits in the component's FIFO queue.
type Arrival struct {
	Request   uint64
	Component string
}

func (*Arrival) Kind() EventKind { return KindArrival }

func (e *Arrival) execute(ctx *Context, st *State, s *EventScheduler) error {
	req, ok := st.Request(e.Request)
	if !ok {
		st.Totals.Late++
		return nil
	}
	comp := ctx.Component(e.Component)
	if comp == nil {
		return fmt.Errorf("arrival of %s at unknown component %q", req.Label(), e.Component)
	}
	cs := st.Components[comp.ID]
	cs.Arrivals++

	if cs.Down {
		cs.Failed++
		return failRequest(ctx, st, s, req)
	}
	if cs.InFlight < comp.MaxConcurrency() {
		return startService(ctx, st, s, req, comp)
	}

	wq := st.waiting[comp.ID]
	if limit := comp.Params.Int(ParamQueueLimit, -1); limit >= 0 && wq.Len() >= limit {
		cs.Rejected++
		return failRequest(ctx, st, s, req)
	}
	wq.Enqueue(req.ID)
	req.waitingAt = comp.ID
	cs.Queued++
	cs.PeakQueue = max(cs.PeakQueue, wq.Len())
	return nil
}

// ServiceComplete ends a request's service at a component. It decides failure,
// cache hit, forwarding to the next hop or completion, then hands the freed
// slot to the next waiting request.
type ServiceComplete struct {
	Request   uint64
	Component string
}

func (*ServiceComplete) Kind() EventKind { return KindServiceComplete }

func (e *ServiceComplete) execute(ctx *Context, st *State, s *EventScheduler) error {
	comp := ctx.Component(e.Component)
	if comp == nil {
		return fmt.Errorf("service completion at unknown component %q", e.Component)
	}
	cs := st.Components[comp.ID]
	if cs.InFlight <= 0 {
		return &ContractViolation{Op: "service complete", Err: fmt.Errorf("component %q has no request in service", comp.ID)}
	}
	cs.InFlight--

	if req, ok := st.Request(e.Request); ok {
		if err := finishService(ctx, st, s, req, comp); err != nil {
			return err
		}
	} else {
		st.Totals.Late++
	}
	return startNextWaiting(ctx, st, s, comp)
}

// RequestTimeout closes a request that is still open when its entry
// component's timeout_ms elapses. It is cancelled when the request ends first.
type RequestTimeout struct {
	Request uint64
}

func (*RequestTimeout) Kind() EventKind { return KindRequestTimeout }

func (e *RequestTimeout) execute(_ *Context, st *State, s *EventScheduler) error {
	req, ok := st.Request(e.Request)
	if !ok {
		return nil
	}
	logrus.Debugf("[tick %010d] %s timed out", s.Now(), req.Label())
	req.hasTimeout = false
	st.closeRequest(req, OutcomeTimedOut, s.Now())
	return nil
}

func startService(ctx *Context, st *State, s *EventScheduler, req *Request, comp *Component) error {
	cs := st.Components[comp.ID]
	cs.InFlight++
	cs.PeakInFlight = max(cs.PeakInFlight, cs.InFlight)

	d := ctx.oracles.Latency.ServiceTime(comp, cs.InFlight, st.RNG(SubsystemLatency))
	factor := cs.LatencyFactor
	for _, f := range ctx.ProbabilisticFaults(comp.ID) {
		if f.Type == FaultLatencySpike && ctx.oracles.Failure.Fails(f.params(), ParamProbability, st.RNG(SubsystemFailure)) {
			factor *= f.SpikeFactor()
		}
	}
	d = scaleTicks(d, factor)
	cs.BusyTicks += d

	_, err := s.After(d, &ServiceComplete{Request: req.ID, Component: comp.ID})
	return err
}

func finishService(ctx *Context, st *State, s *EventScheduler, req *Request, comp *Component) error {
	cs := st.Components[comp.ID]
	if cs.Down || cs.ForcedFailure || componentFails(ctx, st, comp) {
		cs.Failed++
		return failRequest(ctx, st, s, req)
	}
	cs.Served++

	if comp.Category == CategoryCache {
		if st.RNG(SubsystemCache).Float64() < comp.Params.Float(ParamHitRate, 0) {
			cs.CacheHits++
			return completeRequest(st, s, req)
		}
		cs.CacheMisses++
	}

	route := ctx.Route(req.Route)
	next := req.Hop + 1
	if next >= len(route.Path) {
		return completeRequest(st, s, req)
	}
	link := ctx.LinkBetween(route.Path[req.Hop], route.Path[next])
	if link == nil {
		return fmt.Errorf("route %q: no link from %q to %q", route.ID, route.Path[req.Hop], route.Path[next])
	}
	ls := st.Links[link.ID]
	ls.Sent++
	req.Hop = next
	if ls.Down {
		ls.Dropped++
		st.Totals.Dropped++
		return failRequest(ctx, st, s, req)
	}
	factor := ls.LatencyFactor
	for _, f := range ctx.ProbabilisticFaults(link.ID) {
		if f.Type == FaultLatencySpike && ctx.oracles.Failure.Fails(f.params(), ParamProbability, st.RNG(SubsystemFailure)) {
			factor *= f.SpikeFactor()
		}
	}
	d := scaleTicks(ctx.oracles.Latency.TransmitTime(link, st.RNG(SubsystemNetwork)), factor)
	ls.BusyTicks += d
	_, err := s.After(d, &TransmissionComplete{Request: req.ID, Link: link.ID})
	return err
}

func componentFails(ctx *Context, st *State, comp *Component) bool {
	rng := st.RNG(SubsystemFailure)
	if ctx.oracles.Failure.Fails(comp.Params, comp.FailureParam(), rng) {
		return true
	}
	for _, f := range ctx.ProbabilisticFaults(comp.ID) {
		if f.Type != FaultLatencySpike && ctx.oracles.Failure.Fails(f.params(), ParamProbability, rng) {
			return true
		}
	}
	return false
}

func startNextWaiting(ctx *Context, st *State, s *EventScheduler, comp *Component) error {
	cs := st.Components[comp.ID]
	wq := st.waiting[comp.ID]
	for cs.InFlight < comp.MaxConcurrency() && !cs.Down {
		id, ok := wq.Dequeue()
		if !ok {
			return nil
		}
		req, open := st.Request(id)
		if !open {
			st.Totals.Late++
			continue
		}
		req.waitingAt = ""
		if err := startService(ctx, st, s, req, comp); err != nil {
			return err
		}
	}
	return nil
}

// failRequest retries from the entry component while the entry's retry_count
// allows it, and otherwise closes the request as failed.
func failRequest(ctx *Context, st *State, s *EventScheduler, req *Request) error {
	entry := ctx.Component(ctx.Route(req.Route).Path[0])
	if req.Attempt <= entry.Params.Int(ParamRetryCount, 0) {
		req.Attempt++
		req.Hop = 0
		st.Totals.Retries++
		logrus.Debugf("[tick %010d] %s retry #%d", s.Now(), req.Label(), req.Attempt-1)
		_, err := s.After(0, &Arrival{Request: req.ID, Component: entry.ID})
		return err
	}
	logrus.Debugf("[tick %010d] %s failed after %d attempts", s.Now(), req.Label(), req.Attempt)
	cancelTimeout(s, req)
	st.closeRequest(req, OutcomeFailed, s.Now())
	return nil
}

func completeRequest(st *State, s *EventScheduler, req *Request) error {
	cancelTimeout(s, req)
	st.closeRequest(req, OutcomeCompleted, s.Now())
	return nil
}

func cancelTimeout(s *EventScheduler, req *Request) {
	if req.hasTimeout {
		s.Cancel(req.timeout)
		req.hasTimeout = false
	}
}

// scaleTicks multiplies d by factor, rounding to the nearest tick.
func scaleTicks(d SimTime, factor float64) SimTime {
	if factor == 1 {
		return d
	}
	if !(factor > 0) {
		return 0
	}
	return SimTime(float64(d)*factor + 0.5)
}
