package arch

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arch-sim/arch-sim/sim"
)

//go:embed profiles
var embeddedProfiles embed.FS

// Profile is a named set of parameter defaults for a component or link.
type Profile struct {
	Name        string       `yaml:"name"`
	Category    sim.Category `yaml:"category,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Defaults    sim.Params   `yaml:"defaults"`
}

// Default profile names used when a document leaves them empty.
var defaultComponentProfiles = map[sim.Category]string{
	sim.CategoryAPI:      "rest",
	sim.CategoryDatabase: "postgresql",
	sim.CategoryCache:    "redis",
}

// DefaultNetworkProfile is used for links without a type.
const DefaultNetworkProfile = "standard"

const (
	componentsDir = "components"
	networksDir   = "networks"
)

// ErrProfileNotFound is returned when no layer holds the requested profile.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository loads YAML profiles from one or more file systems laid out
// as components/<name>.yaml and networks/<name>.yaml. Earlier layers take
// precedence. Loaded profiles are cached by name. Not safe for concurrent use.
type ProfileRepository struct {
	layers     []fs.FS
	components map[string]*Profile
	networks   map[string]*Profile
}

// NewProfileRepository creates a repository over the given layers.
func NewProfileRepository(layers ...fs.FS) *ProfileRepository {
	return &ProfileRepository{
		layers:     layers,
		components: make(map[string]*Profile),
		networks:   make(map[string]*Profile),
	}
}

// EmbeddedProfiles returns the profile tree shipped with the binary.
func EmbeddedProfiles() fs.FS {
	sub, err := fs.Sub(embeddedProfiles, "profiles")
	if err != nil {
		panic(err)
	}
	return sub
}

// DefaultProfiles returns a repository over the embedded profiles.
func DefaultProfiles() *ProfileRepository {
	return NewProfileRepository(EmbeddedProfiles())
}

// ProfilesWithOverrides returns a repository where profiles in dir shadow the
// embedded ones. An empty dir yields DefaultProfiles.
func ProfilesWithOverrides(dir string) (*ProfileRepository, error) {
	if dir == "" {
		return DefaultProfiles(), nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("profile directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("profile directory %q is not a directory", dir)
	}
	return NewProfileRepository(os.DirFS(dir), EmbeddedProfiles()), nil
}

// ComponentProfile returns the component profile name.
func (r *ProfileRepository) ComponentProfile(name string) (*Profile, error) {
	return r.load(r.components, componentsDir, name)
}

// NetworkProfile returns the network profile name.
func (r *ProfileRepository) NetworkProfile(name string) (*Profile, error) {
	return r.load(r.networks, networksDir, name)
}

// ComponentProfileNames lists every component profile across layers, sorted.
func (r *ProfileRepository) ComponentProfileNames() ([]string, error) {
	return r.list(componentsDir)
}

// NetworkProfileNames lists every network profile across layers, sorted.
func (r *ProfileRepository) NetworkProfileNames() ([]string, error) {
	return r.list(networksDir)
}

func (r *ProfileRepository) load(cache map[string]*Profile, dir, name string) (*Profile, error) {
	if p, ok := cache[name]; ok {
		return p, nil
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid profile name %q", name)
	}
	file := path.Join(dir, name+".yaml")
	for _, layer := range r.layers {
		f, err := layer.Open(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("opening profile %s: %w", file, err)
		}
		p, err := decodeProfile(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", file, err)
		}
		if p.Name == "" {
			p.Name = name
		}
		cache[name] = p
		return p, nil
	}
	return nil, fmt.Errorf("%s profile %q: %w", strings.TrimSuffix(dir, "s"), name, ErrProfileNotFound)
}

func decodeProfile(f fs.File) (*Profile, error) {
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	var p Profile
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if p.Defaults == nil {
		p.Defaults = sim.Params{}
	}
	return &p, nil
}

func (r *ProfileRepository) list(dir string) ([]string, error) {
	seen := make(map[string]bool)
	for _, layer := range r.layers {
		entries, err := fs.ReadDir(layer, dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
				continue
			}
			seen[strings.TrimSuffix(e.Name(), ".yaml")] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}
