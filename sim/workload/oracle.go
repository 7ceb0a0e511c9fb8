package workload

import (
	"math/rand"

	"github.com/arch-sim/arch-sim/sim"
)

// ZeroRatePoll is how far generation skips ahead when the rate is zero and no
// spike boundary is pending, for distributions whose rate can recover.
const ZeroRatePoll = 10 * sim.TicksPerMillisecond

// Sampler is the default sim.ArrivalOracle. The next arrival is drawn from the
// workload distribution at the rate in effect at now.
type Sampler struct{}

func (Sampler) NextArrival(w *sim.Workload, now sim.SimTime, rng *rand.Rand) (sim.SimTime, bool) {
	rate := w.RateAt(now)
	if rate <= 0 {
		if next, ok := w.NextRateChange(now); ok {
			return next, true
		}
		switch w.Distribution {
		case sim.DistSinusoidal, sim.DistLinear:
			return now + ZeroRatePoll, true
		}
		return 0, false
	}
	return now + NewArrivalSampler(w.Distribution, w.Params, rate/1e6).SampleIAT(rng), true
}

// NewArrivalOracle returns the default oracle registered into sim.
func NewArrivalOracle() sim.ArrivalOracle {
	return Sampler{}
}
