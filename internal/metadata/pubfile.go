package metadata

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

// Release is one published (version, revision) pair of a dependency
// project, as recorded in its Veryl.pub index.
type Release struct {
	Version  string `toml:"version"`
	Revision string `toml:"revision"`
}

// parsedVersion parses Version with Masterminds/semver, used to sort
// and match releases against a requirement.
func (r Release) parsedVersion() (*semver.Version, error) {
	return semver.NewVersion(r.Version)
}

// Pubfile is the parsed contents of a dependency's Veryl.pub, the
// release index the dependency resolver reads from a cloned upstream
//.
type Pubfile struct {
	Releases []Release `toml:"releases"`
}

// LoadPubfile parses path as a Veryl.pub release index.
func LoadPubfile(path string) (*Pubfile, error) {
	var p Pubfile
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, fmt.Errorf("metadata: parse %s: %w", path, err)
	}
	return &p, nil
}

// SortDescending orders Releases newest-version-first, matching
// Rust's `releases.sort_by(|a, b| b.version.cmp(&a.version))`.
func (p *Pubfile) SortDescending() {
	sort.Slice(p.Releases, func(i, j int) bool {
		vi, erri := p.Releases[i].parsedVersion()
		vj, errj := p.Releases[j].parsedVersion()
		if erri != nil || errj != nil {
			return p.Releases[i].Version > p.Releases[j].Version
		}
		return vi.GreaterThan(vj)
	})
}

// MatchConstraint returns the first release, in Releases order,
// satisfying constraint; after SortDescending that is the newest one.
// It is the Go analogue of the `for release in &pubfile.releases { if
// version_req.matches(...) }` loop in lockfile.rs.
func (p *Pubfile) MatchConstraint(constraint string) (Release, bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return Release{}, false, fmt.Errorf("metadata: invalid version constraint %q: %w", constraint, err)
	}
	for _, r := range p.Releases {
		v, err := r.parsedVersion()
		if err != nil {
			continue
		}
		if c.Check(v) {
			return r, true, nil
		}
	}
	return Release{}, false, nil
}
