// Package status is the read-only verify: it classifies every declared
// plugin with exactly the detection the reconciliation engine uses, and
// acts on nothing.
package status

import (
	"context"

	"github.com/arthur-debert/doplug/pkg/ledger"
	"github.com/arthur-debert/doplug/pkg/manifest"
	"github.com/arthur-debert/doplug/pkg/orchestrator"
	"github.com/arthur-debert/doplug/pkg/paths"
	"github.com/arthur-debert/doplug/pkg/reconcile"
	"github.com/arthur-debert/doplug/pkg/types"
)

// Options are the collaborators for one status check.
type Options struct {
	FS    types.FS
	VCS   types.VCS
	Paths paths.Paths
}

// Row is one plugin's reported state.
type Row struct {
	Name     string            `json:"name"`
	Revision string            `json:"revision"`
	State    types.PluginState `json:"-"`
	StateStr string            `json:"state"`

	// Recorded is the revision the lock file believes installed, empty
	// when the plugin has never been installed.
	Recorded string `json:"recorded,omitempty"`
}

// Result is the full status report.
type Result struct {
	Rows []Row `json:"plugins"`

	// Converged is true when every plugin is present and correct.
	Converged bool `json:"converged"`
}

// Execute classifies the declared set. It performs no VCS mutation and no
// file write of any kind.
func Execute(ctx context.Context, opts Options) (*Result, error) {
	specs, err := manifest.Load(opts.FS, opts.Paths.ManifestPath())
	if err != nil {
		return nil, err
	}
	prev, err := ledger.Load(opts.FS, opts.Paths.LockPath())
	if err != nil {
		return nil, err
	}

	engine := reconcile.New(opts.VCS, opts.FS, opts.Paths.PluginPath)
	actions, err := orchestrator.New(engine).Plan(ctx, specs, prev)
	if err != nil {
		return nil, err
	}

	result := &Result{Converged: true}
	for _, a := range actions {
		row := Row{
			Name:     a.Spec.Name,
			Revision: a.Spec.Revision,
			State:    a.State,
			StateStr: a.State.String(),
		}
		if rec := prev.Find(a.Spec.Name); rec != nil {
			row.Recorded = rec.Revision
		}
		if a.State != types.StateCorrect {
			result.Converged = false
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}
