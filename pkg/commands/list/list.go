// Package list reports the declared plugin set alongside its on-disk
// state.
package list

import (
	"context"

	"github.com/arthur-debert/doplug/pkg/ledger"
	"github.com/arthur-debert/doplug/pkg/manifest"
	"github.com/arthur-debert/doplug/pkg/paths"
	"github.com/arthur-debert/doplug/pkg/reconcile"
	"github.com/arthur-debert/doplug/pkg/types"
)

// Options are the collaborators for one listing.
type Options struct {
	FS    types.FS
	VCS   types.VCS
	Paths paths.Paths
}

// Row is one declared plugin with its observed state.
type Row struct {
	Name         string   `json:"name"`
	Source       string   `json:"source"`
	Revision     string   `json:"revision"`
	Dependencies []string `json:"dependencies,omitempty"`
	State        string   `json:"state"`
	Installed    bool     `json:"installed"`
}

// Result is the full listing in declaration order.
type Result struct {
	Rows []Row `json:"plugins"`
}

// Execute lists the declared set. Rows keep manifest declaration order, not
// resolved order: this is the user's file read back to them.
func Execute(ctx context.Context, opts Options) (*Result, error) {
	specs, err := manifest.Load(opts.FS, opts.Paths.ManifestPath())
	if err != nil {
		return nil, err
	}
	lock, err := ledger.Load(opts.FS, opts.Paths.LockPath())
	if err != nil {
		return nil, err
	}

	engine := reconcile.New(opts.VCS, opts.FS, opts.Paths.PluginPath)

	result := &Result{Rows: make([]Row, 0, len(specs))}
	for _, spec := range specs {
		state := engine.Classify(ctx, spec, lock.Find(spec.Name))
		result.Rows = append(result.Rows, Row{
			Name:         spec.Name,
			Source:       spec.Source,
			Revision:     spec.Revision,
			Dependencies: spec.Dependencies,
			State:        state.String(),
			Installed:    state != types.StateAbsent,
		})
	}
	return result, nil
}
