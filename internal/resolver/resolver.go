// Package resolver implements the dependency resolution algorithm:
// breadth-first traversal of a project's manifest dependency graph,
// semver-constrained version selection against the lockfile (or the
// latest published release), name-conflict suffixing, and UUIDv5
// dependency identity.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"

	"github.com/veryl-lang/veryl/internal/cachepath"
	"github.com/veryl-lang/veryl/internal/lockfile"
	"github.com/veryl-lang/veryl/internal/metadata"
	"github.com/veryl-lang/veryl/internal/vcs"
)

// Release pairs a resolved version with the revision it was resolved
// to, the Go analogue of metadata::Release.
type Release struct {
	Version  string
	Revision string
}

// Error is the fail-fast error the resolver raises: resolution stops at
// the first unresolvable dependency rather than collecting every
// failure.
type Error struct {
	Op  string
	URL string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("resolver: %s %s: %v", e.Op, e.URL, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// NameConflictError reports a root-level dependency name collision,
// which is fatal rather than suffix-resolved: only a collision found
// while recursing into transitive dependencies gets a suffix instead.
type NameConflictError struct{ Name string }

func (e *NameConflictError) Error() string { return fmt.Sprintf("resolver: name conflict %q", e.Name) }

// Resolver drives gen_locks over a root Metadata, consulting an
// existing lockfile for already-pinned versions and falling back to
// the latest published release otherwise.
type Resolver struct {
	lock        *lockfile.Lockfile
	forceUpdate bool

	// loadMetadata/loadPubfile are overridable seams so tests can supply
	// an in-memory dependency graph instead of touching the network or
	// the on-disk cache; the default values below are what production
	// CLI use wires in.
	loadMetadata func(url, revision string) (*metadata.Metadata, error)
	loadPubfile  func(url string) (*metadata.Pubfile, error)

	nameTable map[string]bool
	uuidTable map[string]bool
}

// New returns a Resolver pinned against lock, updating pinned versions
// to their latest match when forceUpdate is set.
func New(lock *lockfile.Lockfile, forceUpdate bool) *Resolver {
	return &Resolver{
		lock:        lock,
		forceUpdate: forceUpdate,
		loadMetadata: defaultLoadMetadata,
		loadPubfile:  defaultLoadPubfile,
	}
}

// SetLoaders overrides the metadata/pubfile loading seams, used by
// tests to resolve a fixed in-memory dependency graph.
func (r *Resolver) SetLoaders(
	loadMetadata func(url, revision string) (*metadata.Metadata, error),
	loadPubfile func(url string) (*metadata.Pubfile, error),
) {
	r.loadMetadata = loadMetadata
	r.loadPubfile = loadPubfile
}

// Resolve runs gen_locks over root and returns the full transitive set
// of resolved locks in breadth-first, root-priority order.
func (r *Resolver) Resolve(root *metadata.Metadata) ([]lockfile.Lock, error) {
	r.nameTable = make(map[string]bool)
	r.uuidTable = make(map[string]bool)
	return r.genLocks(root, true)
}

// genLocks is the Go analogue of Lockfile::gen_locks: breadth-first
// because the root project's dependency names have top priority; any
// name collision among root-level dependencies is a hard error, while
// collisions deeper in the graph are resolved with a "_N" suffix.
func (r *Resolver) genLocks(m *metadata.Metadata, root bool) ([]lockfile.Lock, error) {
	var out []lockfile.Lock
	var childMetadata []*metadata.Metadata

	for _, url := range sortedDependencyURLs(m.Dependencies) {
		dep := m.Dependencies[url]
		releases, err := r.resolveDependency(url, dep)
		if err != nil {
			return nil, &Error{Op: "resolve_dependency", URL: url, Err: err}
		}

		for _, rn := range releases {
			depMeta, err := r.getMetadata(url, rn.release.Revision)
			if err != nil {
				return nil, &Error{Op: "get_metadata", URL: url, Err: err}
			}

			name := rn.name
			if name == "" {
				name = depMeta.Project.Name
			}

			if r.nameTable[name] {
				if root {
					return nil, &NameConflictError{Name: name}
				}
				name = r.suffixedName(name)
			}
			r.nameTable[name] = true

			deps := r.flattenDependencies(depMeta)

			uid := lockfile.GenUUID(url, rn.release.Revision)
			if !r.uuidTable[uid.String()] {
				logrus.Infof("adding dependency (%s @ %s)", url, rn.release.Version)
				out = append(out, lockfile.Lock{
					Name:         name,
					UUID:         uid,
					Version:      rn.release.Version,
					URL:          url,
					Revision:     rn.release.Revision,
					Dependencies: deps,
				})
				r.uuidTable[uid.String()] = true
				childMetadata = append(childMetadata, depMeta)
			}
		}
	}

	for _, child := range childMetadata {
		childLocks, err := r.genLocks(child, false)
		if err != nil {
			return nil, err
		}
		out = append(out, childLocks...)
	}

	return out, nil
}

func (r *Resolver) suffixedName(name string) string {
	for suffix := 0; ; suffix++ {
		candidate := fmt.Sprintf("%s_%d", name, suffix)
		if !r.nameTable[candidate] {
			return candidate
		}
	}
}

// sortedDependencyURLs returns deps's keys in ascending order, so both
// resolution and name-conflict suffixing are deterministic across runs
// instead of depending on Go's randomized map iteration.
func sortedDependencyURLs(deps map[string]metadata.Dependency) []string {
	urls := make([]string, 0, len(deps))
	for url := range deps {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

func (r *Resolver) flattenDependencies(m *metadata.Metadata) []lockfile.LockDependency {
	var out []lockfile.LockDependency
	for _, url := range sortedDependencyURLs(m.Dependencies) {
		dep := m.Dependencies[url]
		releases, err := r.resolveDependency(url, dep)
		if err != nil {
			continue
		}
		for _, rn := range releases {
			depMeta, err := r.getMetadata(url, rn.release.Revision)
			name := rn.name
			if name == "" && err == nil {
				name = depMeta.Project.Name
			}
			out = append(out, lockfile.LockDependency{
				Name:     name,
				Version:  rn.release.Version,
				URL:      url,
				Revision: rn.release.Revision,
			})
		}
	}
	return out
}

type namedRelease struct {
	release Release
	name    string // "" means "use the dependency's own project name"
}

// resolveDependency dispatches over the three Dependency shapes, the
// Go analogue of Lockfile::resolve_dependency.
func (r *Resolver) resolveDependency(url string, dep metadata.Dependency) ([]namedRelease, error) {
	switch dep.Kind {
	case metadata.DependencyVersion:
		release, err := r.resolveVersion(url, dep.Version)
		if err != nil {
			return nil, err
		}
		return []namedRelease{{release: release}}, nil
	case metadata.DependencySingle:
		release, err := r.resolveVersion(url, dep.Single.Version)
		if err != nil {
			return nil, err
		}
		return []namedRelease{{release: release, name: dep.Single.Name}}, nil
	case metadata.DependencyMulti:
		var out []namedRelease
		for _, nv := range dep.Multi {
			release, err := r.resolveVersion(url, nv.Version)
			if err != nil {
				return nil, err
			}
			out = append(out, namedRelease{release: release, name: nv.Name})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown dependency shape")
	}
}

// resolveVersion prefers an already-pinned lockfile entry, falling
// back to the latest published release; forceUpdate always consults
// the latest release.
func (r *Resolver) resolveVersion(url, constraint string) (Release, error) {
	if fromLock, ok := r.resolveVersionFromLockfile(url, constraint); ok {
		if r.forceUpdate {
			return r.resolveVersionFromLatest(url, constraint)
		}
		return fromLock, nil
	}
	return r.resolveVersionFromLatest(url, constraint)
}

func (r *Resolver) resolveVersionFromLockfile(url, constraint string) (Release, bool) {
	if r.lock == nil {
		return Release{}, false
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return Release{}, false
	}
	for _, lock := range r.lock.Get(url) {
		v, err := semver.NewVersion(lock.Version)
		if err != nil {
			continue
		}
		if c.Check(v) {
			return Release{Version: lock.Version, Revision: lock.Revision}, true
		}
	}
	return Release{}, false
}

func (r *Resolver) resolveVersionFromLatest(url, constraint string) (Release, error) {
	pub, err := r.loadPubfile(url)
	if err != nil {
		return Release{}, err
	}
	pub.SortDescending()

	release, ok, err := pub.MatchConstraint(constraint)
	if err != nil {
		return Release{}, err
	}
	if !ok {
		return Release{}, fmt.Errorf("no release of %s matches %q", url, constraint)
	}
	return Release{Version: release.Version, Revision: release.Revision}, nil
}

func (r *Resolver) getMetadata(url, revision string) (*metadata.Metadata, error) {
	return r.loadMetadata(url, revision)
}

// defaultLoadMetadata clones/opens url's checkout at revision under
// the dependencies cache dir and loads its Veryl.toml, the Go analogue
// of Lockfile::get_metadata.
func defaultLoadMetadata(url, revision string) (*metadata.Metadata, error) {
	uid := lockfile.GenUUID(url, revision)
	path := filepath.Join(cachepath.DependenciesDir(), uid.String())
	manifestPath := filepath.Join(path, "Veryl.toml")

	if _, statErr := os.Stat(path); statErr != nil {
		if err := fetchInto(path, url, &revision); err != nil {
			return nil, err
		}
	} else {
		repo, err := vcs.Open(path)
		clean := err == nil && repo.IsClean()
		if !clean || !fileExists(manifestPath) {
			if err := reclone(path, url, &revision); err != nil {
				return nil, err
			}
		}
	}

	return metadata.Load(manifestPath)
}

// defaultLoadPubfile clones url's default branch into the resolve
// cache dir and loads its Veryl.pub, the Go analogue of
// Lockfile::resolve_version_from_latest's cloning half.
func defaultLoadPubfile(url string) (*metadata.Pubfile, error) {
	uid := lockfile.GenUUID(url, "")
	path := filepath.Join(cachepath.ResolveDir(), uid.String())

	if err := fetchInto(path, url, nil); err != nil {
		return nil, err
	}

	return metadata.LoadPubfile(filepath.Join(path, "Veryl.pub"))
}

func fetchInto(path, url string, revision *string) error {
	if err := cachepath.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	lock, err := cachepath.LockDir("dependencies")
	if err != nil {
		return err
	}
	defer lock.Unlock()

	repo, err := vcs.Clone(url, path)
	if err != nil {
		return err
	}
	if err := repo.Fetch(); err != nil {
		return err
	}
	return repo.Checkout(revision)
}

func reclone(path, url string, revision *string) error {
	lock, err := cachepath.LockDir("dependencies")
	if err != nil {
		return err
	}
	defer lock.Unlock()

	if err := os.RemoveAll(path); err != nil {
		return err
	}
	repo, err := vcs.Clone(url, path)
	if err != nil {
		return err
	}
	if err := repo.Fetch(); err != nil {
		return err
	}
	return repo.Checkout(revision)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
