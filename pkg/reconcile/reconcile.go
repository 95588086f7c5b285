// Package reconcile converges one plugin's on-disk state to its declared
// target. Each plugin runs through a small state machine: classify what is
// on disk, pick the minimal action (nothing, checkout, clone, or wipe and
// re-clone), execute it through the VCS interface, and report an outcome.
// Failures are confined to the plugin being reconciled.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/arthur-debert/doplug/pkg/errors"
	"github.com/arthur-debert/doplug/pkg/logging"
	"github.com/arthur-debert/doplug/pkg/types"
	"github.com/arthur-debert/doplug/pkg/validate"
	"github.com/rs/zerolog"
)

// Engine reconciles plugins one at a time. It never touches the ledger or
// any file outside the plugin's own install directory.
type Engine struct {
	vcs    types.VCS
	fs     types.FS
	path   func(name string) string
	logger zerolog.Logger

	// now is swapped in tests to pin InstalledAt timestamps.
	now func() time.Time
}

// New creates an engine. path maps a plugin name to its install directory.
func New(vcs types.VCS, fs types.FS, path func(name string) string) *Engine {
	return &Engine{
		vcs:    vcs,
		fs:     fs,
		path:   path,
		logger: logging.GetLogger("reconcile"),
		now:    time.Now,
	}
}

// Classify inspects live state and reports where the plugin stands relative
// to its target. The same inspection runs on every reconciliation and on
// read-only status checks; there is no separate verify-mode logic.
func (e *Engine) Classify(ctx context.Context, spec types.PluginSpec, prev *types.InstalledRecord) types.PluginState {
	path := e.path(spec.Name)

	if _, err := e.fs.Stat(path); err != nil {
		if prev == nil {
			return types.StateAbsent
		}
		// The ledger says installed but the directory is gone.
		return types.StateCorrupt
	}

	rev, err := e.vcs.CurrentRevision(ctx, path)
	if err != nil {
		return types.StateCorrupt
	}
	if !validate.IsRevision(rev) {
		// git answered but with something that is not a commit hash;
		// the clone is not trustworthy.
		return types.StateCorrupt
	}

	if rev == spec.Revision {
		return types.StateCorrect
	}
	return types.StateWrongRevision
}

// Reconcile drives one plugin to its declared target and reports what
// happened. Reconciling an already-converged plugin is a no-op with verdict
// skipped, so running it twice in a row is safe and cheap.
func (e *Engine) Reconcile(ctx context.Context, spec types.PluginSpec, prev *types.InstalledRecord) types.Outcome {
	state := e.Classify(ctx, spec, prev)
	path := e.path(spec.Name)

	e.logger.Debug().
		Str("plugin", spec.Name).
		Str("state", state.String()).
		Str("target", spec.Revision).
		Msg("Classified plugin")

	switch state {
	case types.StateCorrect:
		return types.Outcome{
			Spec:    spec,
			Verdict: types.VerdictSkipped,
			Detail:  fmt.Sprintf("already at %s", shortRev(spec.Revision)),
			Record:  e.record(spec, prev),
		}

	case types.StateWrongRevision:
		if err := e.vcs.Checkout(ctx, path, spec.Revision); err != nil {
			return e.failed(spec, err)
		}
		e.logger.Info().
			Str("plugin", spec.Name).
			Str("revision", spec.Revision).
			Msg("Updated plugin")
		return types.Outcome{
			Spec:    spec,
			Verdict: types.VerdictUpdated,
			Detail:  fmt.Sprintf("checked out %s", shortRev(spec.Revision)),
			Record:  e.record(spec, nil),
		}

	case types.StateCorrupt:
		// Repair is automatic: wipe whatever is there and fall through
		// to a clean install. The cause of the corruption is irrelevant.
		if err := e.fs.RemoveAll(path); err != nil {
			return e.failed(spec, errors.Wrapf(err, errors.ErrFileDelete,
				"cannot remove corrupt plugin directory %s", path))
		}
		e.logger.Warn().
			Str("plugin", spec.Name).
			Str("path", path).
			Msg("Removed corrupt plugin directory, re-cloning")
		return e.install(ctx, spec, "re-cloned after repair")

	default: // StateAbsent
		return e.install(ctx, spec, fmt.Sprintf("cloned at %s", shortRev(spec.Revision)))
	}
}

// install clones and checks out. On failure at either step the partial
// directory is removed so a later run starts from a clean absent state and
// no record ever points at a half-made clone.
func (e *Engine) install(ctx context.Context, spec types.PluginSpec, detail string) types.Outcome {
	path := e.path(spec.Name)

	if err := e.vcs.Clone(ctx, spec.Source, path); err != nil {
		e.cleanup(path)
		return e.failed(spec, err)
	}
	if err := e.vcs.Checkout(ctx, path, spec.Revision); err != nil {
		e.cleanup(path)
		return e.failed(spec, err)
	}

	e.logger.Info().
		Str("plugin", spec.Name).
		Str("revision", spec.Revision).
		Msg("Installed plugin")

	return types.Outcome{
		Spec:    spec,
		Verdict: types.VerdictInstalled,
		Detail:  detail,
		Record:  e.record(spec, nil),
	}
}

func (e *Engine) cleanup(path string) {
	if _, err := e.fs.Stat(path); err != nil {
		return
	}
	if err := e.fs.RemoveAll(path); err != nil {
		e.logger.Warn().
			Err(err).
			Str("path", path).
			Msg("Could not remove partial clone")
	}
}

func (e *Engine) failed(spec types.PluginSpec, err error) types.Outcome {
	e.logger.Error().
		Err(err).
		Str("plugin", spec.Name).
		Msg("Plugin reconciliation failed")
	return types.Outcome{
		Spec:    spec,
		Verdict: types.VerdictFailed,
		Detail:  fmt.Sprintf("%s: %v", spec.Name, err),
		Cause:   err,
	}
}

// record builds the ledger entry for a converged plugin. The install
// timestamp survives runs that change nothing: prev is reused when it
// already matches the target.
func (e *Engine) record(spec types.PluginSpec, prev *types.InstalledRecord) *types.InstalledRecord {
	if prev != nil && prev.Revision == spec.Revision && prev.Source == spec.Source {
		rec := *prev
		rec.Path = e.path(spec.Name)
		return &rec
	}
	return &types.InstalledRecord{
		Name:        spec.Name,
		Source:      spec.Source,
		Revision:    spec.Revision,
		InstalledAt: e.now().UTC(),
		Path:        e.path(spec.Name),
	}
}

func shortRev(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
