package types

import (
	"context"
	"io/fs"
)

// FS is the filesystem interface required for doplug operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
}

// VCS is the version-control interface the reconciliation engine drives.
// The production implementation shells out to git; tests substitute a fake.
// Every call blocks until the operation completes or its deadline expires;
// a deadline expiry is indistinguishable from any other failure to the
// engine.
type VCS interface {
	// Clone clones source into path. path must not exist yet.
	Clone(ctx context.Context, source, path string) error

	// Checkout detaches the work tree at path onto revision. The revision
	// must already be reachable in the local history; Checkout never
	// fetches.
	Checkout(ctx context.Context, path, revision string) error

	// CurrentRevision reports the revision the work tree at path is on.
	// It fails when path is not a usable repository.
	CurrentRevision(ctx context.Context, path string) (string, error)

	// Fetch updates the local history at path from its origin. Only the
	// update flow calls this; reconciliation itself never does.
	Fetch(ctx context.Context, path string) error
}
