// Package fault provides failure oracle implementations for arch-sim and
// helpers for checking fault plans before a run.
package fault

import (
	"fmt"
	"math/rand"

	"github.com/arch-sim/arch-sim/sim"
)

// Bernoulli fails with the probability stored under key. A probability of 0
// or 1 is decided without drawing from rng.
type Bernoulli struct{}

func (Bernoulli) Fails(params sim.Params, key string, rng *rand.Rand) bool {
	p := params.Float(key, 0)
	switch {
	case p <= 0:
		return false
	case p >= 1:
		return true
	}
	return rng.Float64() < p
}

// Never reports no failure. Useful to isolate latency behavior in tests.
type Never struct{}

func (Never) Fails(sim.Params, string, *rand.Rand) bool { return false }

// NewFailureOracle returns the default oracle registered into sim.
func NewFailureOracle() sim.FailureOracle {
	return Bernoulli{}
}

// ValidatePlan checks a fault list against the component and link IDs it may
// target. It returns every problem found, in fault order.
func ValidatePlan(faults []sim.Fault, components, links map[string]bool) []error {
	var errs []error
	seen := make(map[string]bool, len(faults))
	for _, f := range faults {
		if f.ID != "" {
			if seen[f.ID] {
				errs = append(errs, fmt.Errorf("fault %q: duplicate id", f.ID))
			}
			seen[f.ID] = true
		}
		if !components[f.Target] && !links[f.Target] {
			errs = append(errs, fmt.Errorf("fault %q: unknown target %q", f.ID, f.Target))
		}
		switch f.Type {
		case sim.FaultDiskFailure, sim.FaultLatencySpike, sim.FaultNodeCrash:
		default:
			errs = append(errs, fmt.Errorf("fault %q: unknown type %q", f.ID, f.Type))
		}
		switch f.Mode {
		case sim.FaultProbability:
			if f.Probability < 0 || f.Probability > 1 {
				errs = append(errs, fmt.Errorf("fault %q: probability %v outside [0,1]", f.ID, f.Probability))
			}
		case sim.FaultScheduled:
			if f.AtMs < 0 {
				errs = append(errs, fmt.Errorf("fault %q: negative scheduled time %v", f.ID, f.AtMs))
			}
		default:
			errs = append(errs, fmt.Errorf("fault %q: unknown mode %q", f.ID, f.Mode))
		}
		if f.DurationMs < 0 {
			errs = append(errs, fmt.Errorf("fault %q: negative duration %v", f.ID, f.DurationMs))
		}
		if f.Factor < 0 {
			errs = append(errs, fmt.Errorf("fault %q: negative factor %v", f.ID, f.Factor))
		}
	}
	return errs
}
