// Package update fetches new history for installed plugins and then
// reconciles. This is the only code path that calls Fetch: plain sync
// assumes pinned revisions are already reachable locally, so repinning to a
// revision published after the last clone goes through update.
package update

import (
	"context"

	"github.com/arthur-debert/doplug/pkg/errors"
	"github.com/arthur-debert/doplug/pkg/ledger"
	"github.com/arthur-debert/doplug/pkg/logging"
	"github.com/arthur-debert/doplug/pkg/manifest"
	"github.com/arthur-debert/doplug/pkg/orchestrator"
	"github.com/arthur-debert/doplug/pkg/paths"
	"github.com/arthur-debert/doplug/pkg/reconcile"
	"github.com/arthur-debert/doplug/pkg/resolver"
	"github.com/arthur-debert/doplug/pkg/types"
)

// Options are the collaborators and flags for one update run.
type Options struct {
	FS    types.FS
	VCS   types.VCS
	Paths paths.Paths

	// Names restricts fetching to the listed plugins. Empty means fetch
	// every installed plugin. Reconciliation always covers the whole
	// declared set; plugins that need nothing skip.
	Names []string
}

// Result is what one update run produced.
type Result struct {
	// Fetched lists plugins whose history was updated.
	Fetched []string

	// FetchFailures maps plugin name to the fetch error. A fetch failure
	// does not stop the run; the plugin may still reconcile fine if its
	// pinned revision was already reachable.
	FetchFailures map[string]error

	Outcomes []types.Outcome
	Summary  types.Summary
	Status   types.RunStatus
}

// Execute runs update: fetch phase first, then a full reconciliation.
func Execute(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.update")
	defer logging.LogOperationStart(logger, "update")()

	specs, err := manifest.Load(opts.FS, opts.Paths.ManifestPath())
	if err != nil {
		return nil, err
	}
	prev, err := ledger.Load(opts.FS, opts.Paths.LockPath())
	if err != nil {
		return nil, err
	}

	// an invalid declared set must surface before the first VCS
	// operation, and the fetch phase is a VCS operation
	if _, err := resolver.Resolve(specs); err != nil {
		return nil, err
	}

	targets, err := fetchTargets(specs, opts.Names)
	if err != nil {
		return nil, err
	}

	result := &Result{FetchFailures: make(map[string]error)}
	for _, spec := range targets {
		path := opts.Paths.PluginPath(spec.Name)
		if _, err := opts.FS.Stat(path); err != nil {
			// not installed yet; nothing to fetch, sync will clone
			continue
		}
		if err := opts.VCS.Fetch(ctx, path); err != nil {
			logger.Warn().Err(err).Str("plugin", spec.Name).Msg("Fetch failed")
			result.FetchFailures[spec.Name] = err
			continue
		}
		result.Fetched = append(result.Fetched, spec.Name)
	}

	engine := reconcile.New(opts.VCS, opts.FS, opts.Paths.PluginPath)
	run := orchestrator.New(engine).Run(ctx, specs, prev)
	if run.Err != nil {
		return nil, run.Err
	}

	if err := ledger.Save(opts.FS, opts.Paths.LockPath(), run.Ledger); err != nil {
		result.Outcomes = run.Outcomes
		result.Summary = run.Summary
		result.Status = types.StatusFatal
		return result, err
	}

	result.Outcomes = run.Outcomes
	result.Summary = run.Summary
	result.Status = run.Status
	return result, nil
}

// fetchTargets resolves the --names restriction against the declared set.
// Naming an undeclared plugin is a user mistake worth failing on.
func fetchTargets(specs []types.PluginSpec, names []string) ([]types.PluginSpec, error) {
	if len(names) == 0 {
		return specs, nil
	}

	byName := make(map[string]types.PluginSpec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}

	targets := make([]types.PluginSpec, 0, len(names))
	for _, name := range names {
		spec, ok := byName[name]
		if !ok {
			return nil, errors.Newf(errors.ErrManifestInvalid,
				"plugin %q is not declared in the manifest", name)
		}
		targets = append(targets, spec)
	}
	return targets, nil
}
