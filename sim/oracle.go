package sim

import (
	"fmt"
	"math/rand"
)

// LatencyOracle decides how long work takes. Implementations must draw from
// rng only, so that a seeded run is reproducible.
type LatencyOracle interface {
	// ServiceTime returns the service duration at c given load requests in
	// service (including the one being started).
	ServiceTime(c *Component, load int, rng *rand.Rand) SimTime
	// TransmitTime returns the one-way transfer time over l.
	TransmitTime(l *Link, rng *rand.Rand) SimTime
}

// FailureOracle decides whether a failure occurs. key names the probability
// parameter in params.
type FailureOracle interface {
	Fails(params Params, key string, rng *rand.Rand) bool
}

// ArrivalOracle decides when the workload produces its next request. It returns
// false when no further request should be generated after now.
type ArrivalOracle interface {
	NextArrival(w *Workload, now SimTime, rng *rand.Rand) (SimTime, bool)
}

// Oracles bundles the collaborators consulted by event handlers.
type Oracles struct {
	Latency LatencyOracle
	Failure FailureOracle
	Arrival ArrivalOracle
}

// Registration variables, set by sub-package init() functions so that sim does
// not import its implementations. Production code imports sim/latency,
// sim/fault and sim/workload (sim/arch does); tests in package sim use
// oracle_import_test.go.
var (
	NewLatencyOracleFunc func() LatencyOracle
	NewFailureOracleFunc func() FailureOracle
	NewArrivalOracleFunc func() ArrivalOracle
)

// DefaultOracles builds the registered default oracles.
func DefaultOracles() (Oracles, error) {
	return Oracles{}.withDefaults()
}

func (o Oracles) withDefaults() (Oracles, error) {
	if o.Latency == nil {
		if NewLatencyOracleFunc == nil {
			return o, fmt.Errorf("no latency oracle: import sim/latency to register the default")
		}
		o.Latency = NewLatencyOracleFunc()
	}
	if o.Failure == nil {
		if NewFailureOracleFunc == nil {
			return o, fmt.Errorf("no failure oracle: import sim/fault to register the default")
		}
		o.Failure = NewFailureOracleFunc()
	}
	if o.Arrival == nil {
		if NewArrivalOracleFunc == nil {
			return o, fmt.Errorf("no arrival oracle: import sim/workload to register the default")
		}
		o.Arrival = NewArrivalOracleFunc()
	}
	return o, nil
}
