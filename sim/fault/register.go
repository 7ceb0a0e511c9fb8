// register.go wires the default failure oracle into sim.NewFailureOracleFunc.
package fault

import "github.com/arch-sim/arch-sim/sim"

func init() {
	sim.NewFailureOracleFunc = NewFailureOracle
}
