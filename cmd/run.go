package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/arch-sim/arch-sim/sim"
	"github.com/arch-sim/arch-sim/sim/arch"
	"github.com/arch-sim/arch-sim/sim/metrics"
	"github.com/arch-sim/arch-sim/sim/trace"
)

// runOptions is the resolved configuration of one `run` invocation.
type runOptions struct {
	ArchPath    string
	ProfilesDir string
	Seed        int64
	LogLevel    string
	TraceLevel  trace.TraceLevel
	TraceLimit  int
	JSON        bool
}

// runReport is the JSON envelope printed by `run --json`.
type runReport struct {
	RunID        string              `json:"run_id"`
	Architecture string              `json:"architecture"`
	Seed         int64               `json:"seed"`
	Events       uint64              `json:"events"`
	Metrics      *metrics.Report     `json:"metrics"`
	Trace        *trace.TraceSummary `json:"trace,omitempty"`
}

// profileRepository returns the embedded profiles, layered under dir when set.
func profileRepository(dir string) (*arch.ProfileRepository, error) {
	if dir == "" {
		return arch.DefaultProfiles(), nil
	}
	return arch.ProfilesWithOverrides(dir)
}

// runSimulation compiles opts.ArchPath, runs it to completion and writes the
// report to out.
func runSimulation(opts runOptions, out io.Writer) error {
	repo, err := profileRepository(opts.ProfilesDir)
	if err != nil {
		return err
	}
	ctx, err := arch.CompileFile(opts.ArchPath, repo, sim.Oracles{})
	if err != nil {
		return err
	}

	runID := xid.New().String()
	logrus.Infof("Starting run %s of %s with seed=%d, %d components, %d links, %d routes",
		runID, opts.ArchPath, opts.Seed, len(ctx.Components()), len(ctx.Links()), len(ctx.Routes()))

	st := sim.NewState(ctx, sim.NewPartitionedRNG(sim.NewSimulationKey(opts.Seed)))
	s := sim.NewSimulator(ctx, st)
	var dt *trace.DispatchTrace
	if opts.TraceLevel == trace.TraceLevelDispatch {
		dt = trace.NewDispatchTrace(trace.TraceConfig{Level: opts.TraceLevel, Limit: opts.TraceLimit})
		s.SetTrace(dt)
	}
	if err := sim.SeedWorkload(s); err != nil {
		return err
	}

	startTime := time.Now()
	if err := s.Run(); err != nil {
		return err
	}
	logrus.Infof("Run %s drained %d events in %s", runID, s.Dispatched(), time.Since(startTime))
	if st.Totals.Late > 0 {
		logrus.Warnf("%d events found their request already closed", st.Totals.Late)
	}

	report := runReport{
		RunID:        runID,
		Architecture: opts.ArchPath,
		Seed:         opts.Seed,
		Events:       s.Dispatched(),
		Metrics:      metrics.Collect(ctx, st, s.Now()),
	}
	if dt.Enabled() {
		report.Trace = trace.Summarize(dt)
		if dt.Dropped > 0 {
			logrus.Warnf("Trace limit reached: %d dispatches not recorded", dt.Dropped)
		}
	}

	if opts.JSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	fmt.Fprintf(out, "Run ID               : %s\n", report.RunID)
	fmt.Fprintf(out, "Seed                 : %d\n", report.Seed)
	fmt.Fprintf(out, "Events Dispatched    : %d\n", report.Events)
	report.Metrics.Print(out)
	if report.Trace != nil {
		fmt.Fprintf(out, "Trace: %d dispatches over [%d, %d] ticks, max %d at one tick\n",
			report.Trace.TotalDispatches, report.Trace.FirstTime, report.Trace.LastTime, report.Trace.MaxSameTime)
	}
	return nil
}

// validateArchitecture parses, validates and resolves the document at path,
// printing one line per problem.
func validateArchitecture(path, profilesDir string, out io.Writer) error {
	repo, err := profileRepository(profilesDir)
	if err != nil {
		return err
	}
	_, err = arch.CompileFile(path, repo, sim.Oracles{})
	var cerr *arch.CompileError
	if errors.As(err, &cerr) {
		for _, ve := range cerr.Errors {
			fmt.Fprintf(out, "invalid: %s\n", ve.Error())
		}
		return fmt.Errorf("%s: %d validation errors", path, len(cerr.Errors))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: ok\n", path)
	return nil
}

// compileArchitecture resolves the document at path and writes its IR to out.
func compileArchitecture(path, profilesDir string, out io.Writer) error {
	repo, err := profileRepository(profilesDir)
	if err != nil {
		return err
	}
	ctx, err := arch.CompileFile(path, repo, sim.Oracles{})
	if err != nil {
		return err
	}
	return arch.WriteIR(out, ctx)
}

// listProfiles prints the component and network profile names.
func listProfiles(profilesDir string, out io.Writer) error {
	repo, err := profileRepository(profilesDir)
	if err != nil {
		return err
	}
	components, err := repo.ComponentProfileNames()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Component profiles:")
	for _, name := range components {
		p, err := repo.ComponentProfile(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %-12s %-8s %s\n", p.Name, p.Category, p.Description)
	}
	networks, err := repo.NetworkProfileNames()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Network profiles:")
	for _, name := range networks {
		p, err := repo.NetworkProfile(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  %-12s %s\n", p.Name, p.Description)
	}
	return nil
}
