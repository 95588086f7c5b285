// Package initialize scaffolds a starter manifest so a new user has
// something concrete to edit instead of an empty schema.
package initialize

import (
	"path/filepath"

	"github.com/arthur-debert/doplug/pkg/errors"
	"github.com/arthur-debert/doplug/pkg/logging"
	"github.com/arthur-debert/doplug/pkg/manifest"
	"github.com/arthur-debert/doplug/pkg/paths"
	"github.com/arthur-debert/doplug/pkg/types"
)

// Options are the collaborators and flags for init.
type Options struct {
	FS    types.FS
	Paths paths.Paths

	// Force overwrites an existing manifest.
	Force bool
}

// Result reports what init wrote.
type Result struct {
	ManifestPath string
}

// Execute writes the starter manifest. An existing manifest is never
// silently replaced.
func Execute(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.init")
	path := opts.Paths.ManifestPath()

	if _, err := opts.FS.Stat(path); err == nil && !opts.Force {
		return nil, errors.Newf(errors.ErrManifestInvalid,
			"manifest already exists at %s (use --force to overwrite)", path)
	}

	if err := opts.FS.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate,
			"cannot create config directory")
	}
	if err := opts.FS.WriteFile(path, []byte(manifest.StarterContent), 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite,
			"cannot write manifest %s", path)
	}

	logger.Info().Str("path", path).Msg("Wrote starter manifest")
	return &Result{ManifestPath: path}, nil
}
