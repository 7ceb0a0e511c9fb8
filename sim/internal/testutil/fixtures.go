// Package testutil provides shared test infrastructure for arch-sim: paths to
// the example architectures and assertion helpers used across sim/ test
// packages and cmd/. It must not import sim so that package sim's internal
// tests can use it.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// RepoRoot returns the repository root, resolved relative to this source file.
func RepoRoot(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to the repo root
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..")
}

// ExampleArchitecture returns the path of examples/<name>.json.
func ExampleArchitecture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(RepoRoot(t), "examples", name+".json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("example architecture %q: %v", name, err)
	}
	return path
}

// ExampleArchitectureNames lists the bundled example architectures.
func ExampleArchitectureNames(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(RepoRoot(t), "examples", "*.json"))
	if err != nil {
		t.Fatalf("Failed to list examples: %v", err)
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = filepath.Base(m[:len(m)-len(".json")])
	}
	return names
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
