// Package cachepath implements the dependency cache directory layout
// and its cross-process advisory locking, so two builds resolving
// dependencies concurrently never race on the same cache subdirectory.
// Locking is implemented with gofrs/flock.
package cachepath

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Root is the cache root directory, typically ~/.cache/veryl (Unix) or
// the platform equivalent. Resolve lazily so tests can override it.
var Root = defaultRoot()

func defaultRoot() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "veryl")
	}
	return filepath.Join(os.TempDir(), "veryl-cache")
}

// ResolveDir is where freshly-resolved "latest version" clones live,
// one subdirectory per (url) UUID.
func ResolveDir() string { return filepath.Join(Root, "resolve") }

// DependenciesDir is where pinned (url, revision) checkouts live, one
// subdirectory per (url, revision) UUID.
func DependenciesDir() string { return filepath.Join(Root, "dependencies") }

// EnsureDir creates dir (and parents) if it does not already exist.
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cachepath: create %s: %w", dir, err)
	}
	return nil
}

// Lock is a held advisory lock over one named cache subdirectory
// ("resolve" or "dependencies"); Unlock must be called on every exit
// path, mirroring veryl_path::unlock_dir's unconditional release.
type Lock struct {
	flock *flock.Flock
}

// LockDir acquires an exclusive advisory lock over name's cache
// subdirectory, blocking until it is available.
func LockDir(name string) (*Lock, error) {
	if err := EnsureDir(Root); err != nil {
		return nil, err
	}
	path := filepath.Join(Root, "."+name+".lock")
	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("cachepath: lock %s: %w", name, err)
	}
	return &Lock{flock: fl}, nil
}

// Unlock releases the lock. Safe to call on a nil Lock (a no-op),
// matching the "release on every exit path, even error paths" contract
// callers rely on.
func (l *Lock) Unlock() error {
	if l == nil || l.flock == nil {
		return nil
	}
	return l.flock.Unlock()
}
