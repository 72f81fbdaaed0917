// Package lockfile implements the Veryl.lock data model and its
// round-trip TOML persistence. UUIDv5 lock identity uses google/uuid;
// TOML encoding uses BurntSushi/toml, and every write stamps the same
// generated-file banner so a hand-edited lockfile is easy to spot.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"

	"github.com/veryl-lang/veryl/internal/cachepath"
	"github.com/veryl-lang/veryl/internal/metadata"
)

const banner = "# This file is automatically @generated by Veryl.\n# It is not intended for manual editing.\n"

// LockDependency is one edge in a Lock's dependency list.
type LockDependency struct {
	Name     string `toml:"name"`
	Version  string `toml:"version"`
	URL      string `toml:"url"`
	Revision string `toml:"revision"`
}

// Lock is one resolved (project, version) pin.
type Lock struct {
	Name         string           `toml:"name"`
	UUID         uuid.UUID        `toml:"uuid"`
	Version      string           `toml:"version"`
	URL          string           `toml:"url"`
	Revision     string           `toml:"revision"`
	Dependencies []LockDependency `toml:"dependencies"`
}

// Lockfile is the parsed/generated contents of Veryl.lock. LockTable
// indexes Projects by URL for fast resolve-against-lockfile lookups
//; it is not persisted
// directly — Save rebuilds Projects from it.
type Lockfile struct {
	Projects []Lock `toml:"projects"`

	LockTable map[string][]Lock `toml:"-"`
}

// New returns an empty lockfile.
func New() *Lockfile {
	return &Lockfile{LockTable: make(map[string][]Lock)}
}

// Load parses path as a Veryl.lock file and rebuilds LockTable from its
// flat Projects list, the Go analogue of Lockfile::load.
func Load(path string) (*Lockfile, error) {
	lf := New()
	if _, err := toml.DecodeFile(path, lf); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", path, err)
	}

	projects := lf.Projects
	lf.Projects = nil
	lf.LockTable = make(map[string][]Lock)
	for _, lock := range projects {
		lf.LockTable[lock.URL] = append(lf.LockTable[lock.URL], lock)
	}
	lf.sortTable()

	return lf, nil
}

// Save flattens LockTable back into Projects (sorted by (url, version))
// and writes path as banner-prefixed pretty TOML, the Go analogue of
// Lockfile::save.
func (lf *Lockfile) Save(path string) error {
	lf.Projects = lf.Projects[:0]
	for _, locks := range lf.LockTable {
		lf.Projects = append(lf.Projects, locks...)
	}
	sort.Slice(lf.Projects, func(i, j int) bool {
		a, b := lf.Projects[i], lf.Projects[j]
		if a.URL != b.URL {
			return a.URL < b.URL
		}
		return a.Version < b.Version
	})

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("lockfile: create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(banner); err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(lf); err != nil {
		return fmt.Errorf("lockfile: encode %s: %w", path, err)
	}
	return nil
}

// sortTable orders each URL's lock candidates newest-version-first, the
// Go analogue of Lockfile::sort_table.
func (lf *Lockfile) sortTable() {
	for url, locks := range lf.LockTable {
		sorted := append([]Lock(nil), locks...)
		sort.Slice(sorted, func(i, j int) bool {
			vi, erri := semver.NewVersion(sorted[i].Version)
			vj, errj := semver.NewVersion(sorted[j].Version)
			if erri != nil || errj != nil {
				return sorted[i].Version > sorted[j].Version
			}
			return vi.GreaterThan(vj)
		})
		lf.LockTable[url] = sorted
	}
}

// GenUUID derives a deterministic lock identity from (url, revision)
// via UUIDv5 over the URL namespace, matching
// `Uuid::new_v5(&Uuid::NAMESPACE_URL, (url+revision).as_bytes())`.
func GenUUID(url, revision string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(url+revision))
}

// Add records lock under its URL, appending rather than replacing so a
// URL may carry several resolved versions simultaneously.
func (lf *Lockfile) Add(lock Lock) {
	lf.LockTable[lock.URL] = append(lf.LockTable[lock.URL], lock)
	lf.sortTable()
}

// Get returns every lock recorded for url.
func (lf *Lockfile) Get(url string) []Lock {
	return lf.LockTable[url]
}

// flatten returns every lock across every URL bucket, in no particular
// order.
func (lf *Lockfile) flatten() []Lock {
	var out []Lock
	for _, locks := range lf.LockTable {
		out = append(out, locks...)
	}
	return out
}

func nameVersionKey(name, version string) string {
	return name + "@" + version
}

// Resolve produces a fresh set of locks for m, the seam Update calls
// into instead of importing package resolver directly (resolver
// already imports lockfile, so the reverse import would cycle).
type Resolve func(m *metadata.Metadata, force bool) ([]Lock, error)

// Update re-resolves m via resolve and replaces LockTable with the
// result, the Go analogue of Lockfile::update. modified reports
// whether the new lock set differs from the old one: an addition is a
// new (name, version) pair not present before, a removal is an old
// UUID absent from the new set.
func (lf *Lockfile) Update(m *metadata.Metadata, force bool, resolve Resolve) (bool, error) {
	oldLocks := lf.flatten()
	oldByNameVersion := make(map[string]bool, len(oldLocks))
	oldByUUID := make(map[uuid.UUID]bool, len(oldLocks))
	for _, l := range oldLocks {
		oldByNameVersion[nameVersionKey(l.Name, l.Version)] = true
		oldByUUID[l.UUID] = true
	}

	newLocks, err := resolve(m, force)
	if err != nil {
		return false, fmt.Errorf("lockfile: update: %w", err)
	}

	added := false
	newByUUID := make(map[uuid.UUID]bool, len(newLocks))
	for _, l := range newLocks {
		newByUUID[l.UUID] = true
		if !oldByNameVersion[nameVersionKey(l.Name, l.Version)] {
			added = true
		}
	}

	removed := false
	for uid := range oldByUUID {
		if !newByUUID[uid] {
			removed = true
			break
		}
	}

	lf.LockTable = make(map[string][]Lock)
	for _, l := range newLocks {
		lf.LockTable[l.URL] = append(lf.LockTable[l.URL], l)
	}
	lf.sortTable()

	return added || removed, nil
}

// PathPair is one source file produced by Paths: project is the
// locked dependency's lock name, src its cached checkout location, and
// dst where the translated output belongs under a build's base
// destination directory.
type PathPair struct {
	Project string
	Src     string
	Dst     string
}

// Paths gathers every `.veryl` source file under each locked
// dependency's cached checkout (its src/ subdirectory) and produces
// the {project, src, dst} triples describing where its translated
// output belongs, the Go analogue of Lockfile::paths. dst is
// base_dst/lock.name/rel.with_extension("sv"), rel being the file's
// path relative to the checkout's src/ directory.
func (lf *Lockfile) Paths(baseDst string) ([]PathPair, error) {
	var out []PathPair

	for _, lock := range lf.flatten() {
		srcDir := filepath.Join(cachepath.DependenciesDir(), lock.UUID.String(), "src")

		walkErr := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if info.IsDir() || filepath.Ext(path) != ".veryl" {
				return nil
			}

			rel, err := filepath.Rel(srcDir, path)
			if err != nil {
				return err
			}

			dst := filepath.Join(baseDst, lock.Name, withExtension(rel, ".sv"))
			out = append(out, PathPair{Project: lock.Name, Src: path, Dst: dst})
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("lockfile: paths: walk %s: %w", srcDir, walkErr)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Project != out[j].Project {
			return out[i].Project < out[j].Project
		}
		return out[i].Src < out[j].Src
	})

	return out, nil
}

// withExtension replaces path's extension with ext, the Go analogue of
// PathBuf::with_extension.
func withExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
