// register.go wires sim/latency constructors into the sim package's registration
// variable (NewLatencyOracleFunc). This init() runs when any package imports
// sim/latency, breaking the import cycle between sim/ (interface owner) and
// sim/latency/ (implementation). Production code imports sim/latency through
// sim/arch; test code in package sim uses oracle_import_test.go for the blank import.
package latency

import "github.com/arch-sim/arch-sim/sim"

func init() {
	sim.NewLatencyOracleFunc = NewLatencyOracle
}
