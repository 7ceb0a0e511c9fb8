package trace

// TraceLevel controls the verbosity of dispatch tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDispatch captures every dispatched event.
	TraceLevelDispatch TraceLevel = "dispatch"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:     true,
	TraceLevelDispatch: true,
	"":                 true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
	// Limit caps the number of stored records; 0 means unlimited. Records past
	// the cap are counted but not kept.
	Limit int
}

// DispatchTrace collects dispatch records during a simulation run.
type DispatchTrace struct {
	Config     TraceConfig
	Dispatches []DispatchRecord
	Dropped    int
}

// NewDispatchTrace creates a DispatchTrace ready for recording.
func NewDispatchTrace(config TraceConfig) *DispatchTrace {
	return &DispatchTrace{
		Config:     config,
		Dispatches: make([]DispatchRecord, 0),
	}
}

// Enabled reports whether records are collected at all.
func (dt *DispatchTrace) Enabled() bool {
	return dt != nil && dt.Config.Level == TraceLevelDispatch
}

// Record appends a dispatch record.
func (dt *DispatchTrace) Record(record DispatchRecord) {
	if !dt.Enabled() {
		return
	}
	if dt.Config.Limit > 0 && len(dt.Dispatches) >= dt.Config.Limit {
		dt.Dropped++
		return
	}
	dt.Dispatches = append(dt.Dispatches, record)
}

// Equal reports whether two traces hold the same dispatch sequence.
// It returns the index of the first difference, or -1.
func Equal(a, b *DispatchTrace) (bool, int) {
	var ra, rb []DispatchRecord
	if a != nil {
		ra = a.Dispatches
	}
	if b != nil {
		rb = b.Dispatches
	}
	n := min(len(ra), len(rb))
	for i := 0; i < n; i++ {
		if ra[i] != rb[i] {
			return false, i
		}
	}
	if len(ra) != len(rb) {
		return false, n
	}
	return true, -1
}
