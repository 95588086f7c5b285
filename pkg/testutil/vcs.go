// Package testutil provides shared test doubles: a scripted in-memory VCS
// and small fixture helpers. Tests drive the real engine and orchestrator
// against these, so the synchronous, per-plugin semantics are exercised
// without a git binary or network.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/arthur-debert/doplug/pkg/errors"
	"github.com/arthur-debert/doplug/pkg/types"
)

// FakeVCS is a scripted types.VCS backed by a types.FS. Clones materialize
// as directories on the FS, so filesystem-level corruption (deleting a
// plugin directory behind doplug's back) behaves exactly as it would with
// real git.
type FakeVCS struct {
	mu sync.Mutex

	fs types.FS

	// Repos maps a source URL to the revisions reachable in that
	// repository. The first entry is the default HEAD after clone.
	Repos map[string][]string

	// CloneErrs fails Clone for a source before anything is created.
	CloneErrs map[string]error

	// RevisionErrs fails CurrentRevision for a path even if the
	// directory exists, simulating broken VCS metadata.
	RevisionErrs map[string]error

	// RevisionGarbage makes CurrentRevision return a non-revision string
	// for a path, simulating a truncated or mangled clone.
	RevisionGarbage map[string]string

	// FetchAdds lists revisions that become reachable after Fetch runs
	// against a clone of the given source.
	FetchAdds map[string][]string

	// FetchErrs fails Fetch for a path.
	FetchErrs map[string]error

	// Calls records every operation in order, e.g. "clone plenary-url /p".
	Calls []string

	current map[string]string // path -> checked-out revision
	origin  map[string]string // path -> source it was cloned from
	fetched map[string]bool   // path -> Fetch has run
}

// NewFakeVCS creates a fake VCS whose clones live on fs.
func NewFakeVCS(fs types.FS) *FakeVCS {
	return &FakeVCS{
		fs:              fs,
		Repos:           make(map[string][]string),
		CloneErrs:       make(map[string]error),
		RevisionErrs:    make(map[string]error),
		RevisionGarbage: make(map[string]string),
		FetchAdds:       make(map[string][]string),
		FetchErrs:       make(map[string]error),
		current:         make(map[string]string),
		origin:          make(map[string]string),
		fetched:         make(map[string]bool),
	}
}

// AddRepo registers a repository and its reachable revisions.
func (v *FakeVCS) AddRepo(source string, revisions ...string) {
	v.Repos[source] = revisions
}

func (v *FakeVCS) record(format string, args ...interface{}) {
	v.Calls = append(v.Calls, fmt.Sprintf(format, args...))
}

// CallsMatching returns recorded calls whose first word is op.
func (v *FakeVCS) CallsMatching(op string) []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []string
	for _, c := range v.Calls {
		if len(c) >= len(op) && c[:len(op)] == op {
			out = append(out, c)
		}
	}
	return out
}

func (v *FakeVCS) Clone(_ context.Context, source, path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("clone %s %s", source, path)

	if err := v.CloneErrs[source]; err != nil {
		return err
	}
	revs, ok := v.Repos[source]
	if !ok || len(revs) == 0 {
		return errors.Newf(errors.ErrGitClone,
			"repository not found: %s", source)
	}
	if err := v.fs.MkdirAll(path, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrGitClone, "clone %s", source)
	}
	// marker file so the directory is non-empty like a real clone
	if err := v.fs.WriteFile(path+"/.git", []byte(source), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrGitClone, "clone %s", source)
	}
	v.current[path] = revs[0]
	v.origin[path] = source
	delete(v.fetched, path)
	return nil
}

func (v *FakeVCS) Checkout(_ context.Context, path, revision string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("checkout %s %s", path, revision)

	source, ok := v.origin[path]
	if !ok {
		return errors.Newf(errors.ErrGitCheckout, "not a repository: %s", path)
	}
	if !v.reachable(source, path, revision) {
		return errors.Newf(errors.ErrGitCheckout,
			"revision %s not found in %s", revision, source)
	}
	v.current[path] = revision
	return nil
}

func (v *FakeVCS) CurrentRevision(_ context.Context, path string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("rev-parse %s", path)

	if err := v.RevisionErrs[path]; err != nil {
		return "", err
	}
	if garbage, ok := v.RevisionGarbage[path]; ok {
		return garbage, nil
	}
	if _, err := v.fs.Stat(path); err != nil {
		return "", errors.Newf(errors.ErrGitRevParse, "not a repository: %s", path)
	}
	rev, ok := v.current[path]
	if !ok {
		return "", errors.Newf(errors.ErrGitRevParse, "not a repository: %s", path)
	}
	return rev, nil
}

func (v *FakeVCS) Fetch(_ context.Context, path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("fetch %s", path)

	if err := v.FetchErrs[path]; err != nil {
		return err
	}
	if _, ok := v.origin[path]; !ok {
		return errors.Newf(errors.ErrGitFetch, "not a repository: %s", path)
	}
	v.fetched[path] = true
	return nil
}

// reachable reports whether revision exists in source's history as seen
// from path, counting FetchAdds only after Fetch has run for that clone.
func (v *FakeVCS) reachable(source, path, revision string) bool {
	for _, r := range v.Repos[source] {
		if r == revision {
			return true
		}
	}
	if v.fetched[path] {
		for _, r := range v.FetchAdds[source] {
			if r == revision {
				return true
			}
		}
	}
	return false
}
