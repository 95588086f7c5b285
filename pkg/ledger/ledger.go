// Package ledger reads and writes the lock file: the persisted record of
// which plugins are believed installed, at which revisions. The core
// mutates the in-memory snapshot (types.Ledger); this package owns the
// round-trip to disk.
package ledger

import (
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/doplug/pkg/errors"
	"github.com/arthur-debert/doplug/pkg/types"
)

// Load reads the lock file at path. A missing file is not an error: it
// returns an empty ledger, which is the state before the first run. A lock
// file written by a different format version is rejected rather than
// guessed at.
func Load(filesystem types.FS, path string) (types.Ledger, error) {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		if isNotExist(err) {
			return types.NewLedger(), nil
		}
		return types.Ledger{}, errors.Wrapf(err, errors.ErrFileAccess,
			"cannot read lock file %s", path)
	}

	var l types.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return types.Ledger{}, errors.Wrapf(err, errors.ErrManifestInvalid,
			"lock file %s is not valid JSON", path)
	}
	if l.Version != types.LockFormatVersion {
		return types.Ledger{}, errors.Newf(errors.ErrLockVersion,
			"lock file %s has format version %d, this build reads version %d",
			path, l.Version, types.LockFormatVersion)
	}

	seen := make(map[string]bool, len(l.Plugins))
	for _, rec := range l.Plugins {
		if seen[rec.Name] {
			return types.Ledger{}, errors.Newf(errors.ErrDuplicatePlugin,
				"lock file %s records %q twice", path, rec.Name)
		}
		seen[rec.Name] = true
	}

	return l, nil
}

// Save writes the ledger as indented JSON via a temp file and rename, so a
// crash mid-write never leaves a truncated lock file. Generated is stamped
// here: the ledger on disk always says when it was produced.
func Save(filesystem types.FS, path string, l types.Ledger) error {
	l.Version = types.LockFormatVersion
	l.Generated = time.Now().UTC()
	if l.Plugins == nil {
		l.Plugins = []types.InstalledRecord{}
	}

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot encode lock file")
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := filesystem.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate,
			"cannot create directory %s", dir)
	}

	tmp := path + ".tmp"
	if err := filesystem.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"cannot write lock file %s", tmp)
	}
	if err := filesystem.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"cannot replace lock file %s", path)
	}
	return nil
}

func isNotExist(err error) bool {
	return os.IsNotExist(err) || stderrors.Is(err, fs.ErrNotExist)
}
