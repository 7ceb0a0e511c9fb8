package sim

import "math/rand"

// ComponentStats are the runtime counters of one component.
type ComponentStats struct {
	Arrivals     int64
	Served       int64 // service completions that did not fail
	Failed       int64 // service failures (oracle, crash, forced disk failure)
	Rejected     int64 // arrivals turned away by a full wait queue
	InFlight     int
	PeakInFlight int
	Queued       int64 // arrivals that had to wait for a slot
	PeakQueue    int
	BusyTicks    SimTime // sum of service durations, the utilization accumulator
	CacheHits    int64
	CacheMisses  int64

	// Fault state. Down and ForcedFailure hold while at least one crash or
	// disk fault window is active.
	Down          bool
	ForcedFailure bool
	LatencyFactor float64

	activeCrashes    int
	activeDiskFaults int
}

// LinkStats are the runtime counters of one link.
type LinkStats struct {
	Sent      int64
	Delivered int64
	Dropped   int64
	BusyTicks SimTime

	Down          bool
	LatencyFactor float64

	activeOutages int
}

// Totals are run-wide request counters.
type Totals struct {
	Generated int64
	Completed int64
	Failed    int64
	TimedOut  int64
	Retries   int64
	Dropped   int64 // requests lost on a link
	Late      int64 // events that found their request already closed
}

// State is the mutable aggregate of a run. It is owned exclusively by the
// running simulation, mutated only inside event execution, and read by the
// caller once Run returns.
type State struct {
	Components map[string]*ComponentStats
	Links      map[string]*LinkStats
	Totals     Totals
	// Latencies holds the end-to-end latency of every completed request, in
	// completion order.
	Latencies []SimTime

	requests      map[uint64]*Request
	waiting       map[string]*WaitQueue
	nextRequestID uint64
	rng           *PartitionedRNG
}

// NewState creates zeroed counters for every component and link in ctx.
func NewState(ctx *Context, rng *PartitionedRNG) *State {
	st := &State{
		Components: make(map[string]*ComponentStats, len(ctx.components)),
		Links:      make(map[string]*LinkStats, len(ctx.links)),
		Latencies:  make([]SimTime, 0),
		requests:   make(map[uint64]*Request),
		waiting:    make(map[string]*WaitQueue, len(ctx.components)),
		rng:        rng,
	}
	for _, c := range ctx.components {
		st.Components[c.ID] = &ComponentStats{LatencyFactor: 1}
		st.waiting[c.ID] = &WaitQueue{}
	}
	for _, l := range ctx.links {
		st.Links[l.ID] = &LinkStats{LatencyFactor: 1}
	}
	return st
}

// RNG returns the stream for the named subsystem.
func (st *State) RNG(subsystem string) *rand.Rand {
	return st.rng.ForSubsystem(subsystem)
}

// OpenRequest registers a new request on route at time now.
func (st *State) OpenRequest(route int, now SimTime) *Request {
	st.nextRequestID++
	req := &Request{
		ID:        st.nextRequestID,
		Route:     route,
		Attempt:   1,
		CreatedAt: now,
	}
	st.requests[req.ID] = req
	st.Totals.Generated++
	return req
}

// Request returns an open request.
func (st *State) Request(id uint64) (*Request, bool) {
	req, ok := st.requests[id]
	return req, ok
}

// OpenRequests returns the number of requests without an outcome.
func (st *State) OpenRequests() int {
	return len(st.requests)
}

// WaitQueueLen returns how many requests wait at component id.
func (st *State) WaitQueueLen(id string) int {
	if wq, ok := st.waiting[id]; ok {
		return wq.Len()
	}
	return 0
}

func (st *State) closeRequest(req *Request, outcome Outcome, now SimTime) {
	delete(st.requests, req.ID)
	if req.waitingAt != "" {
		st.waiting[req.waitingAt].Remove(req.ID)
		req.waitingAt = ""
	}
	switch outcome {
	case OutcomeCompleted:
		st.Totals.Completed++
		st.Latencies = append(st.Latencies, now-req.CreatedAt)
	case OutcomeFailed:
		st.Totals.Failed++
	case OutcomeTimedOut:
		st.Totals.TimedOut++
	}
}
