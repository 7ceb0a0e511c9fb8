package arch

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arch-sim/arch-sim/sim"
)

func TestWriteIR_UserOverridesWinOverProfileDefaults(t *testing.T) {
	// GIVEN basic.json, whose api overrides processing_latency_ms of the rest profile
	ctx, err := CompileFile("testdata/basic.json", DefaultProfiles(), sim.Oracles{})
	require.NoError(t, err)

	// WHEN the resolved form is written
	var buf bytes.Buffer
	require.NoError(t, WriteIR(&buf, ctx))

	var out struct {
		Components []struct {
			ID             string         `json:"id"`
			Category       string         `json:"category"`
			Implementation string         `json:"implementation"`
			ResolvedParams map[string]any `json:"resolved_params"`
		} `json:"components"`
		Links []struct {
			ID             string         `json:"id"`
			From           string         `json:"from"`
			To             string         `json:"to"`
			Type           string         `json:"type"`
			ResolvedParams map[string]any `json:"resolved_params"`
		} `json:"links"`
		Routes []struct {
			ID   string   `json:"id"`
			Path []string `json:"path"`
		} `json:"routes"`
		Faults []map[string]any `json:"faults"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	// THEN each component carries merged parameters with user values winning
	require.Len(t, out.Components, 3)
	api := out.Components[0]
	assert.Equal(t, "api", api.ID)
	assert.Equal(t, "api", api.Category)
	assert.Equal(t, "rest", api.Implementation)
	assert.Equal(t, 20.0, api.ResolvedParams[sim.ParamProcessingLatencyMs], "user value overrides profile")
	assert.Equal(t, 1.0, api.ResolvedParams[sim.ParamRetryCount])
	assert.Equal(t, 5000.0, api.ResolvedParams[sim.ParamTimeoutMs], "profile default kept")

	cache := out.Components[2]
	assert.Equal(t, 0.5, cache.ResolvedParams[sim.ParamHitRate])
	assert.Equal(t, "lru", cache.ResolvedParams["eviction_policy"])

	// AND links carry their network profile merged with overrides
	require.Len(t, out.Links, 2)
	assert.Equal(t, "api", out.Links[0].From)
	assert.Equal(t, "db", out.Links[0].To)
	assert.Equal(t, 5.0, out.Links[0].ResolvedParams[sim.ParamLatencyMs])
	assert.Equal(t, "db-cache", out.Links[1].ID)
	assert.Equal(t, "standard", out.Links[1].Type)
	assert.Equal(t, 1.0, out.Links[1].ResolvedParams[sim.ParamLatencyMs])

	// AND routes and faults are present
	require.Len(t, out.Routes, 2)
	assert.Equal(t, []string{"api", "db", "cache"}, out.Routes[0].Path)
	require.Len(t, out.Faults, 2)
	assert.Equal(t, "db-crash", out.Faults[0]["id"])
}

func TestBuildIR_DoesNotAliasContext(t *testing.T) {
	// GIVEN a compiled context and its IR
	ctx, err := CompileFile("testdata/basic.json", DefaultProfiles(), sim.Oracles{})
	require.NoError(t, err)
	ir := BuildIR(ctx)

	// WHEN the IR is edited
	ir.Components[0].ResolvedParams[sim.ParamProcessingLatencyMs] = sim.IntValue(1)
	ir.Routes[0].Path[0] = "elsewhere"

	// THEN the context is unchanged
	assert.Equal(t, 20, ctx.Component("api").Params.Int(sim.ParamProcessingLatencyMs, 0))
	assert.Equal(t, "api", ctx.Routes()[0].Path[0])
}
