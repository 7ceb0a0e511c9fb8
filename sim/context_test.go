package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_SliceAccessorsReturnCopies(t *testing.T) {
	// GIVEN a Context with a component, a link, a route and a fault
	ctx, err := NewContext(ContextSpec{
		Components: []Component{
			{ID: "api", Category: CategoryAPI, Params: Params{ParamTimeoutMs: FloatValue(100)}},
			{ID: "db", Category: CategoryDatabase},
		},
		Links:   []Link{{Source: "api", Target: "db", Params: Params{ParamLatencyMs: FloatValue(5)}}},
		Faults:  []Fault{{ID: "f", Target: "db", Type: FaultNodeCrash, Mode: FaultScheduled, DurationMs: 1}},
		Oracles: testOracles(10, 0),
	})
	require.NoError(t, err)

	// WHEN a caller mutates everything it was handed
	comps := ctx.Components()
	comps[0].ID = "mutated"
	comps[0].Params[ParamTimeoutMs] = FloatValue(1)
	links := ctx.Links()
	links[0].Params[ParamLatencyMs] = FloatValue(99)
	routes := ctx.Routes()
	routes[0].Path[0] = "db"
	faults := ctx.Faults()
	faults[0].DurationMs = 50

	// THEN the Context is unchanged
	assert.Equal(t, "api", ctx.Components()[0].ID)
	assert.InDelta(t, 100, ctx.Component("api").Params.Float(ParamTimeoutMs, 0), 1e-12)
	assert.InDelta(t, 5, ctx.Link("api->db").Params.Float(ParamLatencyMs, 0), 1e-12)
	assert.Equal(t, []string{"api", "db"}, ctx.Route(0).Path)
	assert.InDelta(t, 1, ctx.Faults()[0].DurationMs, 1e-12)
}
