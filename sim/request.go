// Defines the Request struct that models one generated request travelling
// along a route, and its terminal outcomes.

package sim

import "fmt"

// Outcome is the terminal state of a request.
type Outcome uint8

const (
	OutcomeCompleted Outcome = iota
	OutcomeFailed
	OutcomeTimedOut
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

// Request is an open request. It lives in State from generation until it
// reaches an Outcome; events refer to it by ID only.
type Request struct {
	ID        uint64
	Route     int     // index into Context.Routes
	Hop       int     // index into the route path of the current component
	Attempt   int     // 1 for the first try, incremented on each retry
	CreatedAt SimTime // generation time, the start of end-to-end latency

	timeout    EventHandle
	hasTimeout bool
	waitingAt  string // component whose wait queue holds the request, or ""
}

// Label is the human-readable request identifier used in logs.
func (r *Request) Label() string {
	return fmt.Sprintf("req-%06d", r.ID)
}
