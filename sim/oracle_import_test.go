package sim_test

// Blank imports trigger the init() of each oracle package, which registers the
// default constructors. Package sim's internal tests can then build a Context
// without explicit oracles and without an import cycle.
import (
	_ "github.com/arch-sim/arch-sim/sim/fault"
	_ "github.com/arch-sim/arch-sim/sim/latency"
	_ "github.com/arch-sim/arch-sim/sim/workload"
)
