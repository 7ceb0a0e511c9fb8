package arch

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/arch-sim/arch-sim/sim"
	// Default oracle registrations.
	_ "github.com/arch-sim/arch-sim/sim/fault"
	_ "github.com/arch-sim/arch-sim/sim/latency"
	_ "github.com/arch-sim/arch-sim/sim/workload"
)

// CompileError lists every problem that prevented compilation.
type CompileError struct {
	Errors []ValidationError
}

func (e *CompileError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("architecture has %d problem(s): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Compile parses, validates and resolves the document in r and builds a
// Context. Unset oracles are filled with the registered defaults. Validation
// failures are returned as *CompileError.
func Compile(r io.Reader, repo *ProfileRepository, oracles sim.Oracles) (*sim.Context, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return CompileDocument(doc, repo, oracles)
}

// CompileFile compiles the architecture document at path.
func CompileFile(path string, repo *ProfileRepository, oracles sim.Oracles) (*sim.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening architecture: %w", err)
	}
	defer f.Close()
	return Compile(f, repo, oracles)
}

// CompileDocument runs validation and resolution on an already parsed document.
func CompileDocument(doc *Document, repo *ProfileRepository, oracles sim.Oracles) (*sim.Context, error) {
	if errs := Validate(doc); len(errs) > 0 {
		return nil, &CompileError{Errors: errs}
	}
	spec, err := Resolve(doc, repo)
	if err != nil {
		return nil, err
	}
	// Profile defaults obey the same parameter rules as user values.
	var errs []ValidationError
	for _, c := range spec.Components {
		errs = append(errs, checkParams(c.ID, c.Params)...)
	}
	for _, l := range spec.Links {
		errs = append(errs, checkParams(l.ID, l.Params)...)
	}
	if len(errs) > 0 {
		return nil, &CompileError{Errors: errs}
	}
	spec.Oracles = oracles
	ctx, err := sim.NewContext(spec)
	if err != nil {
		return nil, fmt.Errorf("building context: %w", err)
	}
	logrus.Debugf("compiled architecture: %d components, %d links, %d routes, %d faults",
		len(ctx.Components()), len(ctx.Links()), len(ctx.Routes()), len(ctx.Faults()))
	return ctx, nil
}
