// Package vcs wraps the git operations the dependency resolver needs
// against a cached project checkout: clone, fetch, checkout-by-revision
// and a clean-working-tree check. Built on go-git/go-git rather than
// shelling out to the git binary, so it works without one installed.
package vcs

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repo wraps one on-disk git checkout.
type Repo struct {
	repo *git.Repository
	path string
}

// Clone clones url into path. path must not already exist.
func Clone(url, path string) (*Repo, error) {
	r, err := git.PlainClone(path, false, &git.CloneOptions{URL: url})
	if err != nil {
		return nil, fmt.Errorf("vcs: clone %s: %w", url, err)
	}
	return &Repo{repo: r, path: path}, nil
}

// Init initializes a fresh git repository at path, the Go analogue of
// Git::init in cmd_new.rs.
func Init(path string) error {
	_, err := git.PlainInit(path, false)
	if err != nil {
		return fmt.Errorf("vcs: init %s: %w", path, err)
	}
	return nil
}

// Open opens an existing checkout at path.
func Open(path string) (*Repo, error) {
	r, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("vcs: open %s: %w", path, err)
	}
	return &Repo{repo: r, path: path}, nil
}

// Fetch fetches from the checkout's configured origin. "already
// up-to-date" is not an error (the Go analogue of go-git's
// NoErrAlreadyUpToDate).
func (r *Repo) Fetch() error {
	err := r.repo.Fetch(&git.FetchOptions{})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("vcs: fetch %s: %w", r.path, err)
	}
	return nil
}

// Checkout checks out revision, a commit hash; tag and branch names are
// not resolved. A nil revision checks out the commit HEAD points at,
// which after Clone is the default branch's current head.
func (r *Repo) Checkout(revision *string) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("vcs: worktree %s: %w", r.path, err)
	}

	opts := &git.CheckoutOptions{}
	if revision != nil {
		opts.Hash = plumbing.NewHash(*revision)
	} else {
		head, err := r.repo.Head()
		if err != nil {
			return fmt.Errorf("vcs: head %s: %w", r.path, err)
		}
		opts.Hash = head.Hash()
	}
	if err := wt.Checkout(opts); err != nil {
		return fmt.Errorf("vcs: checkout %s@%v: %w", r.path, revision, err)
	}
	return nil
}

// IsClean reports whether the working tree has no uncommitted changes,
// the Go analogue of `git.is_clean().map_or(false, |x| x)` in
// lockfile.rs: any error is treated the same as "not clean", so a
// corrupted checkout is always re-cloned rather than reused.
func (r *Repo) IsClean() bool {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false
	}
	status, err := wt.Status()
	if err != nil {
		return false
	}
	return status.IsClean()
}

// Head returns the checked-out commit hash as a string.
func (r *Repo) Head() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("vcs: head %s: %w", r.path, err)
	}
	return ref.Hash().String(), nil
}
