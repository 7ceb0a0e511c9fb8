package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arch-sim/arch-sim/sim/trace"
)

var (
	// CLI flags for the run command
	archPath    string // Architecture document (JSON)
	profilesDir string // Directory overriding the embedded profiles
	configPath  string // Optional YAML run preset
	seed        int64  // Master seed for all random streams
	logLevel    string // Log verbosity level
	traceLevel  string // Dispatch trace level
	traceLimit  int    // Maximum stored trace records
	jsonOutput  bool   // Emit the report as JSON
	irOutput    string // File receiving the compiled IR
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "arch-sim",
	Short: "Discrete-event simulator for service architectures",
}

// runCmd compiles an architecture and runs it to completion
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation of an architecture document",
	Run: func(cmd *cobra.Command, args []string) {
		opts := runOptions{
			ArchPath:    archPath,
			ProfilesDir: profilesDir,
			Seed:        seed,
			LogLevel:    logLevel,
			TraceLevel:  trace.TraceLevel(traceLevel),
			TraceLimit:  traceLimit,
			JSON:        jsonOutput,
		}
		if configPath != "" {
			cfg, err := LoadRunConfig(configPath)
			if err != nil {
				logrus.Fatalf("Failed to load run config: %v", err)
			}
			cfg.Apply(&opts, cmd.Flags().Changed)
		}

		// Set up logging
		level, err := logrus.ParseLevel(opts.LogLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", opts.LogLevel)
		}
		logrus.SetLevel(level)

		if opts.ArchPath == "" {
			logrus.Fatalf("Architecture document not provided. Use --arch <file>.")
		}
		if !trace.IsValidTraceLevel(string(opts.TraceLevel)) {
			logrus.Fatalf("Invalid trace level %q (none, dispatch)", opts.TraceLevel)
		}

		if err := runSimulation(opts, os.Stdout); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// validateCmd checks an architecture document without running it
var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate an architecture document against topology and profile rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateArchitecture(args[0], profilesDir, cmd.OutOrStdout())
	},
}

// compileCmd resolves an architecture and prints its intermediate form
var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Resolve profiles and print the architecture IR as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if irOutput == "" {
			return compileArchitecture(args[0], profilesDir, cmd.OutOrStdout())
		}
		f, err := os.Create(irOutput)
		if err != nil {
			return err
		}
		if err := compileArchitecture(args[0], profilesDir, f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

// profilesCmd lists the component and network profiles available to documents
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List available component and network profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listProfiles(profilesDir, cmd.OutOrStdout())
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&profilesDir, "profiles", "", "Directory with components/ and networks/ profile overrides")

	runCmd.Flags().StringVar(&archPath, "arch", "", "Architecture document (JSON)")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML run preset; explicit flags take precedence")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for every random stream of the run")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Dispatch trace level (none, dispatch)")
	runCmd.Flags().IntVar(&traceLimit, "trace-limit", 0, "Maximum trace records to keep (0 = unlimited)")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")

	compileCmd.Flags().StringVarP(&irOutput, "out", "o", "", "Write the IR to this file instead of stdout")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(profilesCmd)
}
