// Package sync implements the core doplug operation: reconcile every
// declared plugin to its pinned revision and persist the resulting lock
// file.
package sync

import (
	"context"

	"github.com/arthur-debert/doplug/pkg/ledger"
	"github.com/arthur-debert/doplug/pkg/logging"
	"github.com/arthur-debert/doplug/pkg/manifest"
	"github.com/arthur-debert/doplug/pkg/orchestrator"
	"github.com/arthur-debert/doplug/pkg/paths"
	"github.com/arthur-debert/doplug/pkg/reconcile"
	"github.com/arthur-debert/doplug/pkg/types"
)

// Options are the collaborators and flags for one sync run.
type Options struct {
	FS    types.FS
	VCS   types.VCS
	Paths paths.Paths

	// DryRun classifies and reports planned actions without touching
	// anything: no git call that mutates, no lock file write.
	DryRun bool
}

// Result is what one sync run produced.
type Result struct {
	Outcomes []types.Outcome
	Summary  types.Summary
	Status   types.RunStatus

	// Planned is populated instead of Outcomes when DryRun is set.
	Planned []orchestrator.PlannedAction
}

// Execute runs sync. A returned error means the run never started (invalid
// manifest, unreadable lock file) or could not complete (lock file write);
// per-plugin failures are not errors, they are failed outcomes inside a
// partial-failure Result.
func Execute(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.sync")
	defer logging.LogOperationStart(logger, "sync")()

	specs, err := manifest.Load(opts.FS, opts.Paths.ManifestPath())
	if err != nil {
		return nil, err
	}
	prev, err := ledger.Load(opts.FS, opts.Paths.LockPath())
	if err != nil {
		return nil, err
	}

	engine := reconcile.New(opts.VCS, opts.FS, opts.Paths.PluginPath)
	orch := orchestrator.New(engine)

	if opts.DryRun {
		planned, err := orch.Plan(ctx, specs, prev)
		if err != nil {
			return nil, err
		}
		logger.Info().Int("plugins", len(planned)).Msg("Dry run complete")
		return &Result{Planned: planned, Status: types.StatusSuccess}, nil
	}

	run := orch.Run(ctx, specs, prev)
	if run.Err != nil {
		return nil, run.Err
	}

	if err := ledger.Save(opts.FS, opts.Paths.LockPath(), run.Ledger); err != nil {
		// reconciliation already happened; surface the save failure but
		// keep the outcomes so the user sees what was done
		return &Result{
			Outcomes: run.Outcomes,
			Summary:  run.Summary,
			Status:   types.StatusFatal,
		}, err
	}

	return &Result{
		Outcomes: run.Outcomes,
		Summary:  run.Summary,
		Status:   run.Status,
	}, nil
}
