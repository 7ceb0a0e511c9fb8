// register.go wires the default arrival oracle into sim.NewArrivalOracleFunc.
package workload

import "github.com/arch-sim/arch-sim/sim"

func init() {
	sim.NewArrivalOracleFunc = NewArrivalOracle
}
