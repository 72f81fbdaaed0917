// Package metadata loads and represents a project's Veryl.toml manifest
// and its published Veryl.pub release index. Encoding uses
// BurntSushi/toml with strict unknown-field rejection, so a typo'd key
// in a manifest fails to load instead of being silently ignored.
package metadata

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Project is the `[project]` table of Veryl.toml.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// DependencyKind tags which shape a [dependencies.<url>] entry took.
type DependencyKind int

const (
	DependencyVersion DependencyKind = iota
	DependencySingle
	DependencyMulti
)

// NamedVersion is one (name, version-requirement) pair, used by the
// Single and Multi dependency shapes.
type NamedVersion struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Dependency is a tagged union over the three shapes a manifest
// dependency entry may take:
//   - Version:  a bare version requirement string, local name defaults
//     to the dependency's own project name
//   - Single:   one explicit {name, version} pair
//   - Multi:    several {name, version} pairs pulled from one URL
//
// (Rust models this as an untagged enum; Go models it as a struct with
// an explicit Kind tag set by UnmarshalTOML.)
type Dependency struct {
	Kind    DependencyKind
	Version string         // set when Kind == DependencyVersion
	Single  NamedVersion   // set when Kind == DependencySingle
	Multi   []NamedVersion // set when Kind == DependencyMulti
}

// UnmarshalTOML implements toml.Unmarshaler, discriminating the three
// dependency shapes the way serde's untagged enum does.
func (d *Dependency) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case string:
		d.Kind = DependencyVersion
		d.Version = v
		return nil
	case map[string]interface{}:
		d.Kind = DependencySingle
		d.Single = NamedVersion{
			Name:    toString(v["name"]),
			Version: toString(v["version"]),
		}
		return nil
	case []map[string]interface{}:
		d.Kind = DependencyMulti
		for _, m := range v {
			d.Multi = append(d.Multi, NamedVersion{Name: toString(m["name"]), Version: toString(m["version"])})
		}
		return nil
	case []interface{}:
		d.Kind = DependencyMulti
		for _, item := range v {
			m, ok := item.(map[string]interface{})
			if !ok {
				return fmt.Errorf("metadata: invalid dependency list entry %#v", item)
			}
			d.Multi = append(d.Multi, NamedVersion{Name: toString(m["name"]), Version: toString(m["version"])})
		}
		return nil
	default:
		return fmt.Errorf("metadata: unsupported dependency shape %#v", data)
	}
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// Metadata is the full parsed contents of a Veryl.toml manifest.
type Metadata struct {
	Project      Project               `toml:"project"`
	Dependencies map[string]Dependency `toml:"dependencies"`
}

// Load parses path as a Veryl.toml manifest, rejecting unknown fields
// (the Go analogue of serde's deny_unknown_fields).
func Load(path string) (*Metadata, error) {
	var m Metadata
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("metadata: parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("metadata: %s has unknown field %s", path, undecoded[0].String())
	}
	return &m, nil
}

// Save writes m to path as pretty TOML.
func (m *Metadata) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(m)
}

// CreateDefaultTOML renders a fresh Veryl.toml for a newly-scaffolded
// project named name, the Go analogue of
// Metadata::create_default_toml.
func CreateDefaultTOML(name string) string {
	return fmt.Sprintf(`[project]
name = "%s"
version = "0.1.0"

[dependencies]
`, name)
}

// DefaultGitignore is the .gitignore content written into a freshly
// scaffolded project, the Go analogue of
// Metadata::create_default_gitignore.
const DefaultGitignore = "/target\n*.sv\n"
