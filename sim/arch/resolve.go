package arch

import (
	"fmt"

	"github.com/arch-sim/arch-sim/sim"
)

// Resolve turns a validated document into a sim.ContextSpec. Each component
// and link starts from its profile defaults, then user parameters override
// them key by key. Oracles are left unset.
func Resolve(doc *Document, repo *ProfileRepository) (sim.ContextSpec, error) {
	var spec sim.ContextSpec

	for _, c := range doc.Components {
		name := c.Profile
		if name == "" {
			name = defaultComponentProfiles[c.Type]
		}
		profile, err := repo.ComponentProfile(name)
		if err != nil {
			return spec, fmt.Errorf("component %q: %w", c.ID, err)
		}
		if profile.Category != "" && profile.Category != c.Type {
			return spec, fmt.Errorf("component %q: profile %q is for %s, not %s", c.ID, name, profile.Category, c.Type)
		}
		spec.Components = append(spec.Components, sim.Component{
			ID:       c.ID,
			Category: c.Type,
			Profile:  name,
			Params:   merge(profile.Defaults, c.Parameters),
		})
	}

	for _, l := range doc.Links {
		name := l.Type
		if name == "" {
			name = DefaultNetworkProfile
		}
		profile, err := repo.NetworkProfile(name)
		if err != nil {
			return spec, fmt.Errorf("link %q: %w", l.LinkID(), err)
		}
		spec.Links = append(spec.Links, sim.Link{
			ID:     l.LinkID(),
			Source: l.Source,
			Target: l.Target,
			Type:   name,
			Params: merge(profile.Defaults, l.Parameters),
		})
	}

	for _, r := range doc.Routes {
		spec.Routes = append(spec.Routes, sim.Route{
			ID:     r.ID,
			Path:   append([]string(nil), r.Path...),
			Weight: r.Weight,
		})
	}

	w := doc.Workload
	dist := w.Distribution
	if dist == "" {
		dist = sim.DistConstant
	}
	spec.Workload = sim.Workload{
		Type:         w.Type,
		Distribution: dist,
		Params:       w.Params,
		BaseRPS:      w.BaseRPS,
		DurationMs:   w.DurationMs,
		Spikes:       append([]sim.Spike(nil), w.Spikes...),
	}

	for _, f := range doc.Faults {
		spec.Faults = append(spec.Faults, f.toFault())
	}
	return spec, nil
}

func merge(defaults, overrides sim.Params) sim.Params {
	out := defaults.Clone()
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
