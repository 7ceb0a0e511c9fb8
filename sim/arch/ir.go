package arch

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/arch-sim/arch-sim/sim"
)

// IR is the resolved intermediate form of an architecture: every component and
// link with its profile defaults and user overrides merged into one parameter
// set, plus the routes, workload and faults the run will use.
type IR struct {
	Components []ComponentIR `json:"components"`
	Links      []LinkIR      `json:"links"`
	Routes     []RouteIR     `json:"routes"`
	Workload   WorkloadIR    `json:"workload"`
	Faults     []FaultIR     `json:"faults,omitempty"`
}

// ComponentIR is a component after profile resolution.
type ComponentIR struct {
	ID             string     `json:"id"`
	Category       string     `json:"category"`
	Implementation string     `json:"implementation"`
	ResolvedParams sim.Params `json:"resolved_params"`
}

// LinkIR is a link after network profile resolution.
type LinkIR struct {
	ID             string     `json:"id"`
	From           string     `json:"from"`
	To             string     `json:"to"`
	Type           string     `json:"type"`
	ResolvedParams sim.Params `json:"resolved_params"`
}

// RouteIR is a route, including routes derived from the topology.
type RouteIR struct {
	ID     string   `json:"id"`
	Path   []string `json:"path"`
	Weight float64  `json:"weight"`
}

// WorkloadIR is the workload with its defaults applied.
type WorkloadIR struct {
	Type         string                 `json:"type"`
	Distribution string                 `json:"distribution"`
	Params       sim.DistributionParams `json:"params"`
	BaseRPS      float64                `json:"base_rps"`
	DurationMs   int64                  `json:"duration_ms"`
	Spikes       []sim.Spike            `json:"spikes,omitempty"`
}

// FaultIR is a fault bound to its resolved target.
type FaultIR struct {
	ID          string  `json:"id"`
	Target      string  `json:"target"`
	Type        string  `json:"type"`
	Mode        string  `json:"mode"`
	Probability float64 `json:"probability,omitempty"`
	AtMs        float64 `json:"scheduled_time_ms,omitempty"`
	DurationMs  float64 `json:"duration_ms,omitempty"`
	Factor      float64 `json:"factor,omitempty"`
}

// BuildIR captures the resolved form of ctx.
func BuildIR(ctx *sim.Context) *IR {
	comps, links, routes := ctx.Components(), ctx.Links(), ctx.Routes()
	ir := &IR{
		Components: make([]ComponentIR, 0, len(comps)),
		Links:      make([]LinkIR, 0, len(links)),
		Routes:     make([]RouteIR, 0, len(routes)),
	}
	for _, c := range comps {
		ir.Components = append(ir.Components, ComponentIR{
			ID:             c.ID,
			Category:       string(c.Category),
			Implementation: c.Profile,
			ResolvedParams: c.Params,
		})
	}
	for _, l := range links {
		ir.Links = append(ir.Links, LinkIR{ID: l.ID, From: l.Source, To: l.Target, Type: l.Type, ResolvedParams: l.Params})
	}
	for _, r := range routes {
		ir.Routes = append(ir.Routes, RouteIR{ID: r.ID, Path: r.Path, Weight: r.Weight})
	}
	w := ctx.Workload()
	ir.Workload = WorkloadIR{
		Type:         string(w.Type),
		Distribution: string(w.Distribution),
		Params:       w.Params,
		BaseRPS:      w.BaseRPS,
		DurationMs:   w.DurationMs,
		Spikes:       append([]sim.Spike(nil), w.Spikes...),
	}
	for _, f := range ctx.Faults() {
		ir.Faults = append(ir.Faults, FaultIR{
			ID:          f.ID,
			Target:      f.Target,
			Type:        string(f.Type),
			Mode:        string(f.Mode),
			Probability: f.Probability,
			AtMs:        f.AtMs,
			DurationMs:  f.DurationMs,
			Factor:      f.Factor,
		})
	}
	return ir
}

// WriteIR writes the resolved form of ctx to w as indented JSON.
func WriteIR(w io.Writer, ctx *sim.Context) error {
	data, err := json.MarshalIndent(BuildIR(ctx), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding IR: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
