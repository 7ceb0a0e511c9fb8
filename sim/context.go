package sim

import (
	"fmt"
	"math"
)

// Category is the kind of architecture component.
type Category string

const (
	CategoryAPI      Category = "api"
	CategoryDatabase Category = "database"
	CategoryCache    Category = "cache"
)

// Component is a resolved architecture node.
type Component struct {
	ID       string
	Category Category
	Profile  string
	Params   Params
}

// Link is a resolved directed connection between two components.
type Link struct {
	ID     string
	Source string
	Target string
	Type   string
	Params Params
}

// Route is an ordered path of component IDs that a request traverses.
// Path[0] is the entry component. Weight is relative to other routes.
type Route struct {
	ID     string
	Path   []string
	Weight float64
}

// WorkloadType shapes the request rate over the run.
type WorkloadType string

const (
	WorkloadSteady WorkloadType = "steady"
	WorkloadBursty WorkloadType = "bursty"
	WorkloadRampUp WorkloadType = "ramp-up"
)

// Distribution selects how inter-arrival times are drawn.
type Distribution string

const (
	DistConstant    Distribution = "constant"
	DistLinear      Distribution = "linear"
	DistSinusoidal  Distribution = "sinusoidal"
	DistPoisson     Distribution = "poisson"
	DistExponential Distribution = "exponential"
	DistNormal      Distribution = "normal"
	DistGamma       Distribution = "gamma"
	DistWeibull     Distribution = "weibull"
)

// DistributionParams parameterises the arrival distribution. Unused fields are zero.
type DistributionParams struct {
	Lambda    float64 `json:"lambda,omitempty"`
	Mean      float64 `json:"mean,omitempty"`
	Variance  float64 `json:"variance,omitempty"`
	Slope     float64 `json:"slope,omitempty"`
	Amplitude float64 `json:"amplitude,omitempty"`
	PeriodMs  float64 `json:"period_ms,omitempty"`
	DecayRate float64 `json:"decay_rate,omitempty"`
	// CV is the inter-arrival coefficient of variation for gamma and weibull.
	CV float64 `json:"cv,omitempty"`
}

// Spike adds RPS extra requests per second during [TimeMs, TimeMs+DurationMs).
type Spike struct {
	ID         string  `json:"id,omitempty"`
	TimeMs     float64 `json:"time_ms"`
	RPS        float64 `json:"rps"`
	DurationMs float64 `json:"duration_ms"`
}

// Workload describes offered load for the run.
type Workload struct {
	Type         WorkloadType
	Distribution Distribution
	Params       DistributionParams
	BaseRPS      float64
	DurationMs   int64
	Spikes       []Spike
}

// Duration returns the workload length in ticks. No request is generated at or
// after this time.
func (w *Workload) Duration() SimTime {
	return Millis(float64(w.DurationMs))
}

// RateAt returns the offered request rate (requests per second) at time t.
// Poisson lambda and normal mean, when set, replace the base rate.
func (w *Workload) RateAt(t SimTime) float64 {
	rate := w.BaseRPS
	switch {
	case w.Distribution == DistPoisson && w.Params.Lambda > 0:
		rate = w.Params.Lambda
	case w.Distribution == DistNormal && w.Params.Mean > 0:
		rate = w.Params.Mean
	}
	elapsedMs := t.Millis()
	if w.Type == WorkloadRampUp && w.DurationMs > 0 {
		frac := math.Min(1, elapsedMs/float64(w.DurationMs))
		rate *= 0.1 + 0.9*frac
	}
	switch w.Distribution {
	case DistLinear:
		rate += w.Params.Slope * elapsedMs / 1000
	case DistSinusoidal:
		if w.Params.PeriodMs > 0 {
			rate += w.Params.Amplitude * math.Sin(2*math.Pi*elapsedMs/w.Params.PeriodMs)
		}
	case DistExponential:
		if w.Params.DecayRate > 0 {
			rate *= math.Exp(-w.Params.DecayRate * elapsedMs / 1000)
		}
	}
	for _, sp := range w.Spikes {
		if elapsedMs >= sp.TimeMs && elapsedMs < sp.TimeMs+sp.DurationMs {
			rate += sp.RPS
		}
	}
	return math.Max(0, rate)
}

// NextRateChange returns the earliest spike boundary strictly after t, if any.
// Arrival oracles use it to resume generation after a zero-rate gap.
func (w *Workload) NextRateChange(t SimTime) (SimTime, bool) {
	best, found := SimTime(0), false
	for _, sp := range w.Spikes {
		for _, edge := range []SimTime{Millis(sp.TimeMs), Millis(sp.TimeMs + sp.DurationMs)} {
			if edge > t && (!found || edge < best) {
				best, found = edge, true
			}
		}
	}
	return best, found
}

// FaultType names the kind of injected failure.
type FaultType string

const (
	FaultDiskFailure  FaultType = "disk_failure"
	FaultLatencySpike FaultType = "latency_spike"
	FaultNodeCrash    FaultType = "node_crash"
)

// FaultMode selects between a timed window and a per-request probability.
type FaultMode string

const (
	FaultScheduled   FaultMode = "scheduled"
	FaultProbability FaultMode = "probability"
)

// DefaultSpikeFactor multiplies latencies during a latency_spike without an explicit factor.
const DefaultSpikeFactor = 5.0

// Fault is an injected failure targeting a component or a link.
type Fault struct {
	ID          string
	Target      string
	Type        FaultType
	Mode        FaultMode
	Probability float64
	AtMs        float64
	DurationMs  float64
	Factor      float64
}

// SpikeFactor returns the latency multiplier of a latency_spike fault.
func (f *Fault) SpikeFactor() float64 {
	if f.Factor > 0 {
		return f.Factor
	}
	return DefaultSpikeFactor
}

// ContextSpec is the input to NewContext, typically produced by sim/arch.
type ContextSpec struct {
	Components []Component
	Links      []Link
	Routes     []Route
	Workload   Workload
	Faults     []Fault
	Oracles    Oracles
}

// Context is the immutable, run-scoped description of the simulated
// architecture and workload. It is built once before a run and shared read-only
// by every event execution. The slice accessors return copies; the pointer
// lookups (Component, Link, Route, Workload) serve the event hot path and must
// not be written through.
type Context struct {
	components []Component
	links      []Link
	routes     []Route
	workload   Workload
	faults     []Fault
	oracles    Oracles

	componentIdx map[string]int
	linkIdx      map[string]int
	pairIdx      map[[2]string]int
	outgoing     map[string][]int
	probFaults   map[string][]int
	totalWeight  float64
}

// NewContext copies spec into an immutable Context and builds its lookup
// indexes. Missing oracles are filled from the registered defaults. When no
// routes are given, one default route is derived per entry component by
// following the first outgoing link until a component without outgoing links.
func NewContext(spec ContextSpec) (*Context, error) {
	ctx := &Context{
		workload:     spec.Workload,
		componentIdx: make(map[string]int, len(spec.Components)),
		linkIdx:      make(map[string]int, len(spec.Links)),
		pairIdx:      make(map[[2]string]int, len(spec.Links)),
		outgoing:     make(map[string][]int),
		probFaults:   make(map[string][]int),
	}
	ctx.workload.Spikes = append([]Spike(nil), spec.Workload.Spikes...)

	for _, c := range spec.Components {
		if _, dup := ctx.componentIdx[c.ID]; dup {
			return nil, fmt.Errorf("duplicate component %q", c.ID)
		}
		c.Params = c.Params.Clone()
		ctx.componentIdx[c.ID] = len(ctx.components)
		ctx.components = append(ctx.components, c)
	}
	for _, l := range spec.Links {
		if l.ID == "" {
			l.ID = l.Source + "->" + l.Target
		}
		if _, dup := ctx.linkIdx[l.ID]; dup {
			return nil, fmt.Errorf("duplicate link %q", l.ID)
		}
		if _, ok := ctx.componentIdx[l.Source]; !ok {
			return nil, fmt.Errorf("link %q: unknown source %q", l.ID, l.Source)
		}
		if _, ok := ctx.componentIdx[l.Target]; !ok {
			return nil, fmt.Errorf("link %q: unknown target %q", l.ID, l.Target)
		}
		l.Params = l.Params.Clone()
		idx := len(ctx.links)
		ctx.linkIdx[l.ID] = idx
		if _, exists := ctx.pairIdx[[2]string{l.Source, l.Target}]; !exists {
			ctx.pairIdx[[2]string{l.Source, l.Target}] = idx
		}
		ctx.outgoing[l.Source] = append(ctx.outgoing[l.Source], idx)
		ctx.links = append(ctx.links, l)
	}

	routes := spec.Routes
	if len(routes) == 0 {
		routes = ctx.defaultRoutes()
	}
	for _, r := range routes {
		if len(r.Path) == 0 {
			return nil, fmt.Errorf("route %q has an empty path", r.ID)
		}
		for i, id := range r.Path {
			if _, ok := ctx.componentIdx[id]; !ok {
				return nil, fmt.Errorf("route %q: unknown component %q", r.ID, id)
			}
			if i > 0 {
				if _, ok := ctx.pairIdx[[2]string{r.Path[i-1], id}]; !ok {
					return nil, fmt.Errorf("route %q: no link from %q to %q", r.ID, r.Path[i-1], id)
				}
			}
		}
		if r.Weight <= 0 {
			r.Weight = 1
		}
		r.Path = append([]string(nil), r.Path...)
		ctx.totalWeight += r.Weight
		ctx.routes = append(ctx.routes, r)
	}
	if len(ctx.routes) == 0 && len(ctx.components) > 0 {
		return nil, fmt.Errorf("no entry component: every component has an incoming link")
	}

	for i, f := range spec.Faults {
		_, isComp := ctx.componentIdx[f.Target]
		_, isLink := ctx.linkIdx[f.Target]
		if !isComp && !isLink {
			return nil, fmt.Errorf("fault %q: unknown target %q", f.ID, f.Target)
		}
		ctx.faults = append(ctx.faults, f)
		if f.Mode == FaultProbability {
			ctx.probFaults[f.Target] = append(ctx.probFaults[f.Target], i)
		}
	}

	oracles, err := spec.Oracles.withDefaults()
	if err != nil {
		return nil, err
	}
	ctx.oracles = oracles
	return ctx, nil
}

func (ctx *Context) defaultRoutes() []Route {
	incoming := make(map[string]bool)
	for _, l := range ctx.links {
		incoming[l.Target] = true
	}
	var routes []Route
	for _, c := range ctx.components {
		if incoming[c.ID] {
			continue
		}
		path := []string{c.ID}
		seen := map[string]bool{c.ID: true}
		for cur := c.ID; len(ctx.outgoing[cur]) > 0; {
			next := ctx.links[ctx.outgoing[cur][0]].Target
			if seen[next] {
				break
			}
			seen[next] = true
			path = append(path, next)
			cur = next
		}
		routes = append(routes, Route{ID: "default-" + c.ID, Path: path, Weight: 1})
	}
	return routes
}

// Components returns a copy of all components in declaration order.
func (ctx *Context) Components() []Component {
	out := make([]Component, len(ctx.components))
	for i, c := range ctx.components {
		c.Params = c.Params.Clone()
		out[i] = c
	}
	return out
}

// Links returns a copy of all links in declaration order.
func (ctx *Context) Links() []Link {
	out := make([]Link, len(ctx.links))
	for i, l := range ctx.links {
		l.Params = l.Params.Clone()
		out[i] = l
	}
	return out
}

// Routes returns a copy of the request routes, including derived defaults.
func (ctx *Context) Routes() []Route {
	out := make([]Route, len(ctx.routes))
	for i, r := range ctx.routes {
		r.Path = append([]string(nil), r.Path...)
		out[i] = r
	}
	return out
}

// Faults returns a copy of the configured faults.
func (ctx *Context) Faults() []Fault {
	return append([]Fault(nil), ctx.faults...)
}

// Workload returns the workload descriptor.
func (ctx *Context) Workload() *Workload { return &ctx.workload }

// Oracles returns the sampling collaborators for this run.
func (ctx *Context) Oracles() Oracles { return ctx.oracles }

// Component looks up a component by ID, or nil.
func (ctx *Context) Component(id string) *Component {
	if i, ok := ctx.componentIdx[id]; ok {
		return &ctx.components[i]
	}
	return nil
}

// Link looks up a link by ID, or nil.
func (ctx *Context) Link(id string) *Link {
	if i, ok := ctx.linkIdx[id]; ok {
		return &ctx.links[i]
	}
	return nil
}

// LinkBetween returns the first declared link from src to dst, or nil.
func (ctx *Context) LinkBetween(src, dst string) *Link {
	if i, ok := ctx.pairIdx[[2]string{src, dst}]; ok {
		return &ctx.links[i]
	}
	return nil
}

// Outgoing returns the links leaving the component id.
func (ctx *Context) Outgoing(id string) []*Link {
	out := make([]*Link, 0, len(ctx.outgoing[id]))
	for _, i := range ctx.outgoing[id] {
		out = append(out, &ctx.links[i])
	}
	return out
}

// EntryPoints returns the distinct entry components of all routes.
func (ctx *Context) EntryPoints() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, r := range ctx.routes {
		if !seen[r.Path[0]] {
			seen[r.Path[0]] = true
			ids = append(ids, r.Path[0])
		}
	}
	return ids
}

// Route returns the route at index i.
func (ctx *Context) Route(i int) *Route {
	return &ctx.routes[i]
}

// PickRoute maps u in [0,1) onto a route index proportionally to weights.
func (ctx *Context) PickRoute(u float64) int {
	target := u * ctx.totalWeight
	acc := 0.0
	for i, r := range ctx.routes {
		acc += r.Weight
		if target < acc {
			return i
		}
	}
	return len(ctx.routes) - 1
}

// ProbabilisticFaults returns the probability-mode faults targeting id.
func (ctx *Context) ProbabilisticFaults(id string) []*Fault {
	idx := ctx.probFaults[id]
	if len(idx) == 0 {
		return nil
	}
	out := make([]*Fault, 0, len(idx))
	for _, i := range idx {
		out = append(out, &ctx.faults[i])
	}
	return out
}

// MaxConcurrency returns the component's concurrent service slots; a missing
// or non-positive value means unbounded.
func (c *Component) MaxConcurrency() int {
	if n := c.Params.Int(ParamMaxConcurrency, 0); n > 0 {
		return n
	}
	return math.MaxInt
}

// FailureParam names the probability parameter consulted when service ends.
func (c *Component) FailureParam() string {
	if c.Category == CategoryDatabase {
		return ParamDiskFailProb
	}
	return ParamFailProb
}
