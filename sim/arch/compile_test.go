package arch

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arch-sim/arch-sim/sim"
)

func TestResolve_DefaultsThenOverrides(t *testing.T) {
	doc, err := ParseFile("testdata/basic.json")
	require.NoError(t, err)

	spec, err := Resolve(doc, DefaultProfiles())
	require.NoError(t, err)

	api := spec.Components[0]
	assert.Equal(t, "rest", api.Profile)
	assert.Equal(t, 20, api.Params.Int(sim.ParamProcessingLatencyMs, 0), "user value overrides profile")
	assert.Equal(t, 1, api.Params.Int(sim.ParamRetryCount, 0))
	assert.Equal(t, 5000, api.Params.Int(sim.ParamTimeoutMs, 0), "profile default kept")

	cache := spec.Components[2]
	assert.Equal(t, 0.5, cache.Params.Float(sim.ParamHitRate, 0))
	assert.Equal(t, "lru", cache.Params.String("eviction_policy", ""))

	require.Len(t, spec.Links, 2)
	assert.Equal(t, "standard", spec.Links[1].Type, "empty link type uses the standard profile")
	assert.Equal(t, 1.0, spec.Links[1].Params.Float(sim.ParamLatencyMs, 0))
	assert.Equal(t, 5.0, spec.Links[0].Params.Float(sim.ParamLatencyMs, 0))

	require.Len(t, spec.Faults, 2)
	assert.Equal(t, 500.0, spec.Faults[0].AtMs)
	assert.Equal(t, "api->db", spec.Faults[1].Target)
}

func TestResolve_DoesNotMutateProfile(t *testing.T) {
	repo := DefaultProfiles()
	doc := validDoc()
	doc.Components[0].Parameters = sim.Params{sim.ParamMaxConcurrency: sim.IntValue(1)}

	_, err := Resolve(doc, repo)
	require.NoError(t, err)

	p, err := repo.ComponentProfile("rest")
	require.NoError(t, err)
	assert.Equal(t, 200, p.Defaults.Int(sim.ParamMaxConcurrency, 0))
}

func TestResolve_CategoryMismatch(t *testing.T) {
	doc := validDoc()
	doc.Components[0].Profile = "redis"
	_, err := Resolve(doc, DefaultProfiles())
	assert.Error(t, err)
}

func TestResolve_UnknownProfile(t *testing.T) {
	doc := validDoc()
	doc.Links[0].Type = "carrier-pigeon"
	_, err := Resolve(doc, DefaultProfiles())
	assert.True(t, errors.Is(err, ErrProfileNotFound))
}

func TestCompileFile_Basic(t *testing.T) {
	ctx, err := CompileFile("testdata/basic.json", DefaultProfiles(), sim.Oracles{})
	require.NoError(t, err)

	assert.Len(t, ctx.Components(), 3)
	assert.Len(t, ctx.Routes(), 2)
	assert.NotNil(t, ctx.LinkBetween("api", "db"))
	assert.NotNil(t, ctx.Oracles().Latency, "default oracles registered")
	assert.NotNil(t, ctx.Oracles().Failure)
	assert.NotNil(t, ctx.Oracles().Arrival)
}

func TestCompile_DerivesDefaultRoute(t *testing.T) {
	doc := `{"components": [{"id": "api", "type": "api"}, {"id": "db", "type": "database"}],
		"links": [{"source": "api", "target": "db"}],
		"workload": {"type": "steady", "base_rps": 5, "duration_ms": 100}}`
	ctx, err := Compile(strings.NewReader(doc), DefaultProfiles(), sim.Oracles{})
	require.NoError(t, err)

	require.Len(t, ctx.Routes(), 1)
	assert.Equal(t, []string{"api", "db"}, ctx.Routes()[0].Path)
}

func TestCompile_InvalidReturnsCompileError(t *testing.T) {
	_, err := CompileFile("testdata/invalid.json", DefaultProfiles(), sim.Oracles{})

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.GreaterOrEqual(t, len(ce.Errors), 7)
	assert.Contains(t, err.Error(), "CACHE cannot have outgoing edges")
}

func TestCompile_BadProfileDefaultIsRejected(t *testing.T) {
	repo := NewProfileRepository(fstest.MapFS{
		"components/broken.yaml": {Data: []byte("category: api\ndefaults:\n  fail_prob: 3\n")},
	}, EmbeddedProfiles())
	doc := `{"components": [{"id": "api", "type": "api", "profile": "broken"}],
		"links": [], "workload": {"type": "steady", "base_rps": 5, "duration_ms": 100}}`

	_, err := Compile(strings.NewReader(doc), repo, sim.Oracles{})

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []string{"api"}, ce.Errors[0].RelatedIDs)
}
