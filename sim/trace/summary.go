package trace

// TraceSummary aggregates statistics from a DispatchTrace.
type TraceSummary struct {
	TotalDispatches  int            `json:"total_dispatches"`
	KindDistribution map[string]int `json:"kind_distribution"` // event kind → count of dispatches
	FirstTime        uint64         `json:"first_time"`
	LastTime         uint64         `json:"last_time"`
	// MaxSameTime is the largest number of events dispatched at one tick.
	MaxSameTime int `json:"max_same_time"`
}

// Summarize computes aggregate statistics from a DispatchTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(dt *DispatchTrace) *TraceSummary {
	summary := &TraceSummary{
		KindDistribution: make(map[string]int),
	}
	if dt == nil || len(dt.Dispatches) == 0 {
		return summary
	}

	summary.TotalDispatches = len(dt.Dispatches)
	summary.FirstTime = dt.Dispatches[0].Time
	summary.LastTime = dt.Dispatches[len(dt.Dispatches)-1].Time

	run := 0
	for i, r := range dt.Dispatches {
		summary.KindDistribution[r.Kind]++
		if i > 0 && r.Time == dt.Dispatches[i-1].Time {
			run++
		} else {
			run = 1
		}
		summary.MaxSameTime = max(summary.MaxSameTime, run)
	}
	return summary
}
