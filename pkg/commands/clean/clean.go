// Package clean prunes orphans: plugins recorded as installed (or left on
// disk) that are no longer declared in the manifest.
package clean

import (
	"io/fs"

	"github.com/arthur-debert/doplug/pkg/errors"
	"github.com/arthur-debert/doplug/pkg/ledger"
	"github.com/arthur-debert/doplug/pkg/logging"
	"github.com/arthur-debert/doplug/pkg/manifest"
	"github.com/arthur-debert/doplug/pkg/paths"
	"github.com/arthur-debert/doplug/pkg/types"
)

// Options are the collaborators and flags for one clean run.
type Options struct {
	FS    types.FS
	Paths paths.Paths

	// DryRun reports what would be pruned without deleting anything.
	DryRun bool
}

// Result lists what was (or would be) pruned.
type Result struct {
	// Pruned names the orphaned plugins removed from disk and ledger.
	Pruned []string

	// Failures maps a plugin name to the error that kept it from being
	// pruned. Failed prunes keep their ledger record so a later clean
	// can retry.
	Failures map[string]error
}

// Execute removes every installed plugin that the manifest no longer
// declares. Directories on disk under the plugins dir that match a ledger
// record are removed with the record; unknown directories are left alone
// (doplug only deletes what it believes it created).
func Execute(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.clean")

	specs, err := manifest.Load(opts.FS, opts.Paths.ManifestPath())
	if err != nil {
		return nil, err
	}
	lock, err := ledger.Load(opts.FS, opts.Paths.LockPath())
	if err != nil {
		return nil, err
	}

	declared := make(map[string]bool, len(specs))
	for _, s := range specs {
		declared[s.Name] = true
	}

	result := &Result{Failures: make(map[string]error)}
	var orphans []string
	for _, rec := range lock.Plugins {
		if !declared[rec.Name] {
			orphans = append(orphans, rec.Name)
		}
	}

	if opts.DryRun {
		result.Pruned = orphans
		return result, nil
	}

	for _, name := range orphans {
		path := opts.Paths.PluginPath(name)
		if info, err := opts.FS.Lstat(path); err == nil && info.Mode()&fs.ModeSymlink != 0 {
			// a symlinked entry points outside the plugins dir; deleting
			// through it would destroy something doplug did not create
			err := errors.Newf(errors.ErrFileDelete,
				"%s is a symlink, not removing its target", path)
			logger.Warn().Str("plugin", name).Str("path", path).Msg("Refusing to prune symlink")
			result.Failures[name] = err
			continue
		}
		if err := opts.FS.RemoveAll(path); err != nil {
			logger.Error().Err(err).Str("plugin", name).Msg("Could not prune plugin")
			result.Failures[name] = err
			continue
		}
		lock.Remove(name)
		result.Pruned = append(result.Pruned, name)
		logger.Info().Str("plugin", name).Str("path", path).Msg("Pruned orphaned plugin")
	}

	if len(result.Pruned) > 0 {
		if err := ledger.Save(opts.FS, opts.Paths.LockPath(), lock); err != nil {
			return result, err
		}
	}
	return result, nil
}
