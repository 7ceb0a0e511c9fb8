// Package arch compiles an architecture document into a sim.Context.
//
// The pipeline is Parse (strict JSON) → Validate (structural and parameter
// rules) → Resolve (profile defaults, then user overrides) → sim.NewContext.
// Compile runs all stages and reports every validation problem at once.
package arch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arch-sim/arch-sim/sim"
)

// Document is the parsed architecture input.
type Document struct {
	Components []ComponentDoc `json:"components"`
	Links      []LinkDoc      `json:"links"`
	Routes     []RouteDoc     `json:"routes,omitempty"`
	Workload   WorkloadDoc    `json:"workload"`
	Faults     []FaultDoc     `json:"faults,omitempty"`
}

// ComponentDoc is a node as written by the user. An empty Profile selects the
// category default profile.
type ComponentDoc struct {
	ID         string       `json:"id"`
	Type       sim.Category `json:"type"`
	Profile    string       `json:"profile,omitempty"`
	Parameters sim.Params   `json:"parameters,omitempty"`
}

// LinkDoc is a directed edge. Type names a network profile; empty means
// "standard". An empty ID defaults to "source->target".
type LinkDoc struct {
	ID         string     `json:"id,omitempty"`
	Source     string     `json:"source"`
	Target     string     `json:"target"`
	Type       string     `json:"type,omitempty"`
	Parameters sim.Params `json:"parameters,omitempty"`
}

// RouteDoc is a weighted request path. Entry, when set, must equal Path[0].
type RouteDoc struct {
	ID     string   `json:"id"`
	Entry  string   `json:"entry,omitempty"`
	Path   []string `json:"path"`
	Weight float64  `json:"weight,omitempty"`
}

// WorkloadDoc describes offered load.
type WorkloadDoc struct {
	Type         sim.WorkloadType       `json:"type"`
	Distribution sim.Distribution       `json:"distribution,omitempty"`
	Params       sim.DistributionParams `json:"params,omitempty"`
	BaseRPS      float64                `json:"base_rps"`
	DurationMs   int64                  `json:"duration_ms"`
	Spikes       []sim.Spike            `json:"spikes,omitempty"`
}

// Fault target types.
const (
	TargetNode = "node"
	TargetEdge = "edge"
)

// FaultDoc is an injected failure as written by the user.
type FaultDoc struct {
	ID              string        `json:"id"`
	TargetID        string        `json:"target_id"`
	TargetType      string        `json:"target_type"`
	FaultType       sim.FaultType `json:"fault_type"`
	Mode            sim.FaultMode `json:"mode"`
	Probability     float64       `json:"probability,omitempty"`
	ScheduledTimeMs float64       `json:"scheduled_time_ms,omitempty"`
	DurationMs      float64       `json:"duration_ms,omitempty"`
	Factor          float64       `json:"factor,omitempty"`
}

// LinkID returns the link's identifier, defaulting to "source->target".
func (l LinkDoc) LinkID() string {
	if l.ID != "" {
		return l.ID
	}
	return l.Source + "->" + l.Target
}

// Parse decodes a JSON architecture document. Unknown fields and trailing
// data are rejected.
func Parse(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing architecture: %w", err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing architecture: unexpected data after document")
	}
	return &doc, nil
}

// ParseFile reads and parses the architecture document at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading architecture %q: %w", path, err)
	}
	return Parse(bytes.NewReader(data))
}
