package arch

import (
	"fmt"
	"strings"

	"github.com/arch-sim/arch-sim/sim"
	"github.com/arch-sim/arch-sim/sim/fault"
)

// ValidationError is one problem found in a Document. RelatedIDs names the
// components, links, routes or faults involved.
type ValidationError struct {
	Message    string   `json:"message"`
	RelatedIDs []string `json:"related_ids,omitempty"`
}

func (e ValidationError) Error() string {
	if len(e.RelatedIDs) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s [%s]", e.Message, strings.Join(e.RelatedIDs, ", "))
}

// allowedTargets lists, per category, which categories it may link to.
var allowedTargets = map[sim.Category]sim.Category{
	sim.CategoryAPI:      sim.CategoryDatabase,
	sim.CategoryDatabase: sim.CategoryCache,
}

var validWorkloadTypes = map[sim.WorkloadType]bool{
	sim.WorkloadSteady: true,
	sim.WorkloadBursty: true,
	sim.WorkloadRampUp: true,
}

var validDistributions = map[sim.Distribution]bool{
	"":                  true, // defaults to constant
	sim.DistConstant:    true,
	sim.DistLinear:      true,
	sim.DistSinusoidal:  true,
	sim.DistPoisson:     true,
	sim.DistExponential: true,
	sim.DistNormal:      true,
	sim.DistGamma:       true,
	sim.DistWeibull:     true,
}

// Validate checks doc and returns every problem found. An empty result means
// the document can be resolved.
func Validate(doc *Document) []ValidationError {
	var errs []ValidationError
	add := func(msg string, ids ...string) {
		errs = append(errs, ValidationError{Message: msg, RelatedIDs: ids})
	}

	components := make(map[string]sim.Category, len(doc.Components))
	for _, c := range doc.Components {
		if c.ID == "" {
			add("Component id must not be empty")
			continue
		}
		if _, dup := components[c.ID]; dup {
			add("Duplicate component id", c.ID)
			continue
		}
		components[c.ID] = c.Type
		switch c.Type {
		case sim.CategoryAPI, sim.CategoryDatabase, sim.CategoryCache:
		default:
			add(fmt.Sprintf("Unknown component type %q", c.Type), c.ID)
		}
		errs = append(errs, checkParams(c.ID, c.Parameters)...)
	}

	links := make(map[string]bool, len(doc.Links))
	pairs := make(map[[2]string]bool, len(doc.Links))
	outgoing := make(map[string][]string)
	for _, l := range doc.Links {
		if _, ok := components[l.Source]; !ok {
			add("Link source does not exist", l.Source)
			continue
		}
		if _, ok := components[l.Target]; !ok {
			add("Link target does not exist", l.Target)
			continue
		}
		id := l.LinkID()
		if links[id] {
			add("Duplicate link id", id)
			continue
		}
		links[id] = true
		pairs[[2]string{l.Source, l.Target}] = true
		outgoing[l.Source] = append(outgoing[l.Source], l.Target)
		errs = append(errs, checkParams(id, l.Parameters)...)
	}

	// Topology rules, in component order for stable output.
	for _, c := range doc.Components {
		for _, to := range outgoing[c.ID] {
			switch c.Type {
			case sim.CategoryAPI:
				if components[to] != allowedTargets[c.Type] {
					add("API can only connect to DATABASE", c.ID, to)
				}
			case sim.CategoryDatabase:
				if components[to] != allowedTargets[c.Type] {
					add("DATABASE can only connect to CACHE", c.ID, to)
				}
			}
		}
		if c.Type == sim.CategoryCache && len(outgoing[c.ID]) > 0 {
			add("CACHE cannot have outgoing edges", c.ID)
		}
	}

	routeIDs := make(map[string]bool, len(doc.Routes))
	for _, r := range doc.Routes {
		if routeIDs[r.ID] {
			add("Duplicate route id", r.ID)
		}
		routeIDs[r.ID] = true
		if len(r.Path) == 0 {
			add("Route path must not be empty", r.ID)
			continue
		}
		if r.Entry != "" && r.Entry != r.Path[0] {
			add("Route entry must be the first hop", r.ID, r.Entry)
		}
		if r.Weight < 0 {
			add("Route weight must be >= 0", r.ID)
		}
		for i, hop := range r.Path {
			if _, ok := components[hop]; !ok {
				add("Route hop does not exist", r.ID, hop)
				continue
			}
			if i > 0 && !pairs[[2]string{r.Path[i-1], hop}] {
				add("Route hop has no link", r.ID, r.Path[i-1], hop)
			}
		}
	}

	w := doc.Workload
	if !validWorkloadTypes[w.Type] {
		add(fmt.Sprintf("Unknown workload type %q", w.Type))
	}
	if !validDistributions[w.Distribution] {
		add(fmt.Sprintf("Unknown workload distribution %q", w.Distribution))
	}
	if w.BaseRPS < 0 {
		add("Workload base_rps must be >= 0")
	}
	if w.DurationMs <= 0 {
		add("Workload duration must be positive")
	}
	if w.Params.Variance < 0 || w.Params.Lambda < 0 || w.Params.Mean < 0 ||
		w.Params.PeriodMs < 0 || w.Params.DecayRate < 0 || w.Params.CV < 0 {
		add("Workload distribution parameters must be >= 0")
	}
	for _, sp := range w.Spikes {
		if sp.TimeMs < 0 || sp.RPS < 0 || sp.DurationMs < 0 {
			add("Workload spike values must be >= 0", sp.ID)
		}
	}

	nodes := make(map[string]bool, len(components))
	for id := range components {
		nodes[id] = true
	}
	faultIDs := make(map[string]bool, len(doc.Faults))
	for _, f := range doc.Faults {
		if f.ID != "" && faultIDs[f.ID] {
			add("Duplicate fault id", f.ID)
		}
		faultIDs[f.ID] = true
		switch f.TargetType {
		case TargetNode:
			if !nodes[f.TargetID] {
				add("Fault target node does not exist", f.ID, f.TargetID)
				continue
			}
		case TargetEdge:
			if !links[f.TargetID] {
				add("Fault target edge does not exist", f.ID, f.TargetID)
				continue
			}
		default:
			add(fmt.Sprintf("Unknown fault target type %q", f.TargetType), f.ID)
			continue
		}
		for _, err := range fault.ValidatePlan([]sim.Fault{f.toFault()}, nodes, links) {
			add(err.Error(), f.ID)
		}
	}
	return errs
}

// checkParams applies the numeric parameter rules: names containing "prob"
// and hit_rate must lie in [0,1], and no numeric value may be negative.
func checkParams(owner string, params sim.Params) []ValidationError {
	var errs []ValidationError
	for _, k := range params.Keys() {
		v, ok := params[k].Float()
		if !ok {
			continue
		}
		if (strings.Contains(k, "prob") || k == sim.ParamHitRate) && (v < 0 || v > 1) {
			errs = append(errs, ValidationError{Message: fmt.Sprintf("Probability parameter out of range: %s", k), RelatedIDs: []string{owner}})
		}
		if v < 0 {
			errs = append(errs, ValidationError{Message: fmt.Sprintf("Negative parameter value: %s", k), RelatedIDs: []string{owner}})
		}
	}
	return errs
}

func (f FaultDoc) toFault() sim.Fault {
	return sim.Fault{
		ID:          f.ID,
		Target:      f.TargetID,
		Type:        f.FaultType,
		Mode:        f.Mode,
		Probability: f.Probability,
		AtMs:        f.ScheduledTimeMs,
		DurationMs:  f.DurationMs,
		Factor:      f.Factor,
	}
}
