package sim

import (
	"math/rand"
	"testing"
)

// fixedLatency is a deterministic LatencyOracle that never draws from rng.
type fixedLatency struct {
	service  SimTime
	transmit SimTime
}

func (f fixedLatency) ServiceTime(*Component, int, *rand.Rand) SimTime { return f.service }
func (f fixedLatency) TransmitTime(*Link, *rand.Rand) SimTime          { return f.transmit }

// certainFailure fails exactly when the probability is 1 or more, so tests can
// force or rule out failures without randomness.
type certainFailure struct{}

func (certainFailure) Fails(params Params, key string, _ *rand.Rand) bool {
	return params.Float(key, 0) >= 1
}

// fixedInterval generates one request every iat ticks; iat 0 means a single
// request at time zero.
type fixedInterval struct {
	iat SimTime
}

func (f fixedInterval) NextArrival(_ *Workload, now SimTime, _ *rand.Rand) (SimTime, bool) {
	if f.iat == 0 {
		return 0, false
	}
	return now + f.iat, true
}

func testOracles(service, transmit SimTime) Oracles {
	return Oracles{
		Latency: fixedLatency{service: service, transmit: transmit},
		Failure: certainFailure{},
		Arrival: fixedInterval{},
	}
}

// stubEvent is a test-only payload. It appends its label to log and runs then, if set.
type stubEvent struct {
	kind  EventKind
	label string
	log   *[]string
	then  func(s *EventScheduler) error
}

func (p *stubEvent) Kind() EventKind { return p.kind }

func (p *stubEvent) execute(_ *Context, _ *State, s *EventScheduler) error {
	if p.log != nil {
		*p.log = append(*p.log, p.label)
	}
	if p.then != nil {
		return p.then(s)
	}
	return nil
}

// newTestSimulator builds a Context from spec (filling test oracles when
// unset) and a fresh simulator seeded with seed.
func newTestSimulator(t *testing.T, spec ContextSpec, seed int64) *Simulator {
	t.Helper()
	if spec.Oracles.Latency == nil {
		spec.Oracles = testOracles(10, 0)
	}
	ctx, err := NewContext(spec)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return NewSimulator(ctx, NewState(ctx, NewPartitionedRNG(NewSimulationKey(seed))))
}

// emptySimulator has a single unbounded component and nothing seeded.
func emptySimulator(t *testing.T) *Simulator {
	t.Helper()
	return newTestSimulator(t, ContextSpec{
		Components: []Component{{ID: "api", Category: CategoryAPI}},
	}, 1)
}

// seedRequest opens a request on route and seeds its arrival at the route entry.
func seedRequest(t *testing.T, s *Simulator, route int, at SimTime) *Request {
	t.Helper()
	req := s.State().OpenRequest(route, at)
	entry := s.Context().Route(route).Path[0]
	if _, err := s.Seed(at, &Arrival{Request: req.ID, Component: entry}); err != nil {
		t.Fatalf("seeding arrival: %v", err)
	}
	return req
}
