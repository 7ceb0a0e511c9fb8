package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/arch-sim/arch-sim/sim/trace"
)

// RunConfig is a YAML run preset. Every field is optional; a set field
// overrides the flag default but never a flag given explicitly.
// All fields must be listed to satisfy KnownFields(true) strict parsing.
type RunConfig struct {
	Arch       string `yaml:"arch"`
	Profiles   string `yaml:"profiles"`
	Seed       *int64 `yaml:"seed"`
	Log        string `yaml:"log"`
	Trace      string `yaml:"trace"`
	TraceLimit *int   `yaml:"trace_limit"`
	JSON       *bool  `yaml:"json"`
}

// LoadRunConfig reads and strictly decodes the preset at path.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var cfg RunConfig
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing run config %s: %w", path, err)
	}
	logrus.Debugf("Loaded run config from %s", path)
	return &cfg, nil
}

// Apply copies preset values into opts for every flag not set on the command
// line. changed reports whether a flag was given explicitly.
func (c *RunConfig) Apply(opts *runOptions, changed func(name string) bool) {
	if c.Arch != "" && !changed("arch") {
		opts.ArchPath = c.Arch
	}
	if c.Profiles != "" && !changed("profiles") {
		opts.ProfilesDir = c.Profiles
	}
	if c.Seed != nil && !changed("seed") {
		opts.Seed = *c.Seed
	}
	if c.Log != "" && !changed("log") {
		opts.LogLevel = c.Log
	}
	if c.Trace != "" && !changed("trace") {
		opts.TraceLevel = trace.TraceLevel(c.Trace)
	}
	if c.TraceLimit != nil && !changed("trace-limit") {
		opts.TraceLimit = *c.TraceLimit
	}
	if c.JSON != nil && !changed("json") {
		opts.JSON = *c.JSON
	}
}
