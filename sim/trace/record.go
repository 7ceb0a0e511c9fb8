// Package trace provides dispatch-trace recording for determinism checks and
// run diagnostics. This package has no dependencies on sim/; it stores pure
// data types.
package trace

import "fmt"

// DispatchRecord captures one dispatched event.
type DispatchRecord struct {
	Time uint64 `json:"time"`
	Seq  uint64 `json:"seq"`
	Kind string `json:"kind"`
}

func (r DispatchRecord) String() string {
	return fmt.Sprintf("%d/%d/%s", r.Time, r.Seq, r.Kind)
}
