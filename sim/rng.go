package sim

import (
	"hash/fnv"
	"math/rand"
)

// SimulationKey is the master seed of a run. Equal keys over equal Contexts and
// seeds reproduce the same dispatch sequence and final State.
type SimulationKey int64

// NewSimulationKey wraps a CLI or test seed.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// Random stream names. Each decision family draws from its own stream.
const (
	SubsystemWorkload = "workload" // inter-arrival times; seeded with the master key itself
	SubsystemRouting  = "routing"  // route choice per generated request
	SubsystemLatency  = "latency"  // service-time jitter
	SubsystemFailure  = "failure"  // component failures and probability faults
	SubsystemNetwork  = "network"  // link loss and transmit jitter
	SubsystemCache    = "cache"    // cache hit draws
)

// Subsystems lists the streams a run uses, in a fixed order.
func Subsystems() []string {
	return []string{SubsystemWorkload, SubsystemRouting, SubsystemLatency, SubsystemFailure, SubsystemNetwork, SubsystemCache}
}

// PartitionedRNG hands out one lazily created stream per subsystem, so extra
// draws for, say, cache hits never shift the arrival sequence. Not safe for
// concurrent use; a run is single-goroutine.
type PartitionedRNG struct {
	key     SimulationKey
	streams map[string]*rand.Rand
}

// NewPartitionedRNG creates the streams for key.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{key: key, streams: make(map[string]*rand.Rand)}
}

// ForSubsystem returns the stream for name, creating it on first use.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	rng, ok := p.streams[name]
	if !ok {
		rng = rand.New(rand.NewSource(p.seedFor(name)))
		p.streams[name] = rng
	}
	return rng
}

// Key returns the master seed.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// seedFor derives a stream seed: the workload stream keeps the master key, the
// others mix in the FNV-1a hash of their name.
func (p *PartitionedRNG) seedFor(name string) int64 {
	if name == SubsystemWorkload {
		return int64(p.key)
	}
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(p.key) ^ int64(h.Sum64())
}
