// Package sim provides the discrete-event simulation engine for arch-sim.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - event.go: SimTime, the Event envelope and the closed set of payload kinds
//   - queue.go: EventQueue, a (time, sequence id) min-heap
//   - scheduler.go: EventScheduler, the only way new events enter the queue
//   - simulator.go: the drain loop that advances the virtual clock
//
// The domain behaviour lives in the event_*.go files: request generation,
// arrival at a component, service completion, link transmission, timeouts and
// fault injection. The drain loop never looks at payloads.
//
// # Architecture
//
// The sim package defines the engine, the run-scoped Context and State, and the
// oracle interfaces; implementations live in sub-packages:
//   - sim/latency/: service and transmission time oracles
//   - sim/fault/: failure oracles
//   - sim/workload/: arrival-time oracles
//   - sim/arch/: architecture document parsing, validation and profile resolution
//   - sim/metrics/: report aggregation over a drained State
//   - sim/trace/: dispatch trace recording
//
// Oracle sub-packages register their default constructors via init() functions
// that set package-level factory variables (NewLatencyOracleFunc,
// NewFailureOracleFunc, NewArrivalOracleFunc).
package sim
