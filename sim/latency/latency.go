// Package latency provides latency oracle implementations for arch-sim.
// The LatencyOracle interface is defined in sim/ (parent package).
// This package provides Fixed (constant durations, for tests and calibration)
// and Profile (category base latency scaled by load, with optional
// exponential jitter).
package latency

import (
	"math/rand"

	"github.com/arch-sim/arch-sim/sim"
)

// Default base latencies in milliseconds, used when a component or link
// carries no latency parameter.
const (
	DefaultAPILatencyMs      = 50.0
	DefaultDatabaseLatencyMs = 10.0
	DefaultCacheLatencyMs    = 1.0
	DefaultLinkLatencyMs     = 5.0
)

// Fixed returns the same durations for every component and link. It never
// draws from rng.
type Fixed struct {
	Service  sim.SimTime
	Transmit sim.SimTime
}

func (f Fixed) ServiceTime(_ *sim.Component, _ int, _ *rand.Rand) sim.SimTime {
	return f.Service
}

func (f Fixed) TransmitTime(_ *sim.Link, _ *rand.Rand) sim.SimTime {
	return f.Transmit
}

// Profile derives durations from resolved profile parameters.
//
// Service time in ms:
//
//	base × (1 + load_sensitivity × (load-1) / max_concurrency) + jitter
//
// where base is processing_latency_ms for api components and base_latency_ms
// otherwise, and jitter is exponential with mean jitter × base. A component
// without max_concurrency is not slowed by load. Transmission time is
// latency_ms plus jitter computed the same way.
type Profile struct{}

func (Profile) ServiceTime(c *sim.Component, load int, rng *rand.Rand) sim.SimTime {
	key, def := baseLatencyParam(c.Category)
	base := c.Params.Float(key, def)
	ms := base * loadFactor(c, load)
	ms += jitterMs(base, c.Params.Float(sim.ParamJitter, 0), rng)
	return sim.Millis(ms)
}

func (Profile) TransmitTime(l *sim.Link, rng *rand.Rand) sim.SimTime {
	base := l.Params.Float(sim.ParamLatencyMs, DefaultLinkLatencyMs)
	return sim.Millis(base + jitterMs(base, l.Params.Float(sim.ParamJitter, 0), rng))
}

// NewLatencyOracle returns the default oracle registered into sim.
func NewLatencyOracle() sim.LatencyOracle {
	return Profile{}
}

func baseLatencyParam(cat sim.Category) (string, float64) {
	switch cat {
	case sim.CategoryAPI:
		return sim.ParamProcessingLatencyMs, DefaultAPILatencyMs
	case sim.CategoryCache:
		return sim.ParamBaseLatencyMs, DefaultCacheLatencyMs
	default:
		return sim.ParamBaseLatencyMs, DefaultDatabaseLatencyMs
	}
}

func loadFactor(c *sim.Component, load int) float64 {
	maxConc := c.Params.Int(sim.ParamMaxConcurrency, 0)
	if maxConc <= 0 || load <= 1 {
		return 1
	}
	sensitivity := c.Params.Float(sim.ParamLoadSensitivity, 1)
	return 1 + sensitivity*float64(load-1)/float64(maxConc)
}

// jitterMs draws from rng only when jitter is positive, so zero-jitter
// profiles leave the latency stream untouched.
func jitterMs(base, jitter float64, rng *rand.Rand) float64 {
	if jitter <= 0 || base <= 0 {
		return 0
	}
	return rng.ExpFloat64() * jitter * base
}
