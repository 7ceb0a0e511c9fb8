package arch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arch-sim/arch-sim/sim"
)

func validDoc() *Document {
	return &Document{
		Components: []ComponentDoc{
			{ID: "api", Type: sim.CategoryAPI},
			{ID: "db", Type: sim.CategoryDatabase},
			{ID: "cache", Type: sim.CategoryCache},
		},
		Links: []LinkDoc{
			{Source: "api", Target: "db"},
			{Source: "db", Target: "cache"},
		},
		Workload: WorkloadDoc{Type: sim.WorkloadSteady, BaseRPS: 10, DurationMs: 1000},
	}
}

func messages(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}

func TestValidate_ValidDocument(t *testing.T) {
	assert.Empty(t, Validate(validDoc()))
}

func TestValidate_InvalidFile_ReportsEveryRule(t *testing.T) {
	doc, err := ParseFile("testdata/invalid.json")
	require.NoError(t, err)

	msgs := messages(Validate(doc))

	assert.Contains(t, msgs, "Link target does not exist")
	assert.Contains(t, msgs, "API can only connect to DATABASE")
	assert.Contains(t, msgs, "CACHE cannot have outgoing edges")
	assert.Contains(t, msgs, "Probability parameter out of range: fail_prob")
	assert.Contains(t, msgs, "Negative parameter value: max_concurrency")
	assert.Contains(t, msgs, "Workload base_rps must be >= 0")
	assert.Contains(t, msgs, "Workload duration must be positive")
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Document)
		want   string
		ids    []string
	}{
		{
			name:   "link source missing",
			mutate: func(d *Document) { d.Links = append(d.Links, LinkDoc{Source: "x", Target: "db"}) },
			want:   "Link source does not exist",
			ids:    []string{"x"},
		},
		{
			name:   "database to api",
			mutate: func(d *Document) { d.Links = append(d.Links, LinkDoc{Source: "db", Target: "api"}) },
			want:   "DATABASE can only connect to CACHE",
			ids:    []string{"db", "api"},
		},
		{
			name:   "duplicate component",
			mutate: func(d *Document) { d.Components = append(d.Components, ComponentDoc{ID: "db", Type: sim.CategoryDatabase}) },
			want:   "Duplicate component id",
			ids:    []string{"db"},
		},
		{
			name:   "unknown component type",
			mutate: func(d *Document) { d.Components = append(d.Components, ComponentDoc{ID: "q", Type: "queue"}) },
			want:   `Unknown component type "queue"`,
			ids:    []string{"q"},
		},
		{
			name: "hit rate above one",
			mutate: func(d *Document) {
				d.Components[2].Parameters = sim.Params{sim.ParamHitRate: sim.FloatValue(1.2)}
			},
			want: "Probability parameter out of range: hit_rate",
			ids:  []string{"cache"},
		},
		{
			name: "link loss probability",
			mutate: func(d *Document) {
				d.Links[0].Parameters = sim.Params{sim.ParamLossProb: sim.IntValue(2)}
			},
			want: "Probability parameter out of range: loss_prob",
			ids:  []string{"api->db"},
		},
		{
			name:   "route without link",
			mutate: func(d *Document) { d.Routes = []RouteDoc{{ID: "r", Path: []string{"api", "cache"}}} },
			want:   "Route hop has no link",
			ids:    []string{"r", "api", "cache"},
		},
		{
			name:   "route entry mismatch",
			mutate: func(d *Document) { d.Routes = []RouteDoc{{ID: "r", Entry: "db", Path: []string{"api", "db"}}} },
			want:   "Route entry must be the first hop",
			ids:    []string{"r", "db"},
		},
		{
			name:   "empty route",
			mutate: func(d *Document) { d.Routes = []RouteDoc{{ID: "r"}} },
			want:   "Route path must not be empty",
			ids:    []string{"r"},
		},
		{
			name:   "unknown workload type",
			mutate: func(d *Document) { d.Workload.Type = "chaotic" },
			want:   `Unknown workload type "chaotic"`,
		},
		{
			name:   "unknown distribution",
			mutate: func(d *Document) { d.Workload.Distribution = "zipf" },
			want:   `Unknown workload distribution "zipf"`,
		},
		{
			name: "fault on missing node",
			mutate: func(d *Document) {
				d.Faults = []FaultDoc{{ID: "f", TargetID: "ghost", TargetType: TargetNode, FaultType: sim.FaultNodeCrash, Mode: sim.FaultScheduled}}
			},
			want: "Fault target node does not exist",
			ids:  []string{"f", "ghost"},
		},
		{
			name: "edge fault naming a node",
			mutate: func(d *Document) {
				d.Faults = []FaultDoc{{ID: "f", TargetID: "db", TargetType: TargetEdge, FaultType: sim.FaultNodeCrash, Mode: sim.FaultScheduled}}
			},
			want: "Fault target edge does not exist",
			ids:  []string{"f", "db"},
		},
		{
			name: "duplicate fault id",
			mutate: func(d *Document) {
				f := FaultDoc{ID: "f", TargetID: "db", TargetType: TargetNode, FaultType: sim.FaultNodeCrash, Mode: sim.FaultScheduled}
				d.Faults = []FaultDoc{f, f}
			},
			want: "Duplicate fault id",
			ids:  []string{"f"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := validDoc()
			tc.mutate(d)
			errs := Validate(d)
			require.NotEmpty(t, errs)
			var found *ValidationError
			for i := range errs {
				if errs[i].Message == tc.want {
					found = &errs[i]
					break
				}
			}
			require.NotNil(t, found, "missing %q in %v", tc.want, messages(errs))
			if tc.ids != nil {
				assert.Equal(t, tc.ids, found.RelatedIDs)
			}
		})
	}
}

func TestValidate_FaultPlanProblemsAreReported(t *testing.T) {
	d := validDoc()
	d.Faults = []FaultDoc{{ID: "f", TargetID: "db", TargetType: TargetNode, FaultType: "meteor", Mode: sim.FaultScheduled}}

	errs := Validate(d)
	require.Len(t, errs, 1)
	assert.Equal(t, []string{"f"}, errs[0].RelatedIDs)
	assert.Contains(t, errs[0].Message, "meteor")
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "Workload duration must be positive", ValidationError{Message: "Workload duration must be positive"}.Error())
	assert.Equal(t, "API can only connect to DATABASE [api, cache]",
		ValidationError{Message: "API can only connect to DATABASE", RelatedIDs: []string{"api", "cache"}}.Error())
}
