// Package orchestrator drives a full reconciliation run: validate the
// declared set, resolve installation order, reconcile every plugin in that
// order one at a time, and fold the outcomes into a new ledger snapshot and
// an aggregate status.
package orchestrator

import (
	"context"

	"github.com/arthur-debert/doplug/pkg/logging"
	"github.com/arthur-debert/doplug/pkg/manifest"
	"github.com/arthur-debert/doplug/pkg/reconcile"
	"github.com/arthur-debert/doplug/pkg/resolver"
	"github.com/arthur-debert/doplug/pkg/types"
)

// Result is everything one run produced. When Err is non-nil the declared
// set was invalid: Status is StatusConfigError, Outcomes is empty and the
// ledger is the previous snapshot untouched.
type Result struct {
	Outcomes []types.Outcome
	Ledger   types.Ledger
	Summary  types.Summary
	Status   types.RunStatus
	Err      error
}

// Orchestrator owns the run loop. It is deliberately synchronous: one
// plugin's outcome is fully determined before the next plugin is
// considered, which keeps repair and partial-failure reasoning simple.
type Orchestrator struct {
	engine *reconcile.Engine
}

// New creates an orchestrator around a reconciliation engine.
func New(engine *reconcile.Engine) *Orchestrator {
	return &Orchestrator{engine: engine}
}

// Run reconciles the whole declared set against the previous ledger.
//
// Validation and resolution are fail-fast: any problem there aborts before
// a single VCS operation, so the caller can report "nothing was touched".
// Reconciliation is best-effort: a failed plugin is recorded and the run
// continues through the rest of the resolved order.
func (o *Orchestrator) Run(ctx context.Context, specs []types.PluginSpec, prev types.Ledger) Result {
	logger := logging.GetLogger("orchestrator")

	ordered, err := o.prepare(specs)
	if err != nil {
		logger.Error().Err(err).Msg("Declared plugin set is invalid")
		return Result{
			Ledger: prev,
			Status: types.StatusConfigError,
			Err:    err,
		}
	}

	next := prev.Clone()
	result := Result{
		Outcomes: make([]types.Outcome, 0, len(ordered)),
		Status:   types.StatusSuccess,
	}

	for _, spec := range ordered {
		outcome := o.engine.Reconcile(ctx, spec, next.Find(spec.Name))
		result.Outcomes = append(result.Outcomes, outcome)
		result.Summary.Add(outcome)

		if outcome.Verdict == types.VerdictFailed {
			// the previous record, if any, stays as-is: we still
			// believe whatever was installed before
			result.Status = types.StatusPartialFailure
			continue
		}
		if outcome.Record != nil {
			next.Upsert(*outcome.Record)
		}
	}

	logger.Info().
		Int("installed", result.Summary.Installed).
		Int("updated", result.Summary.Updated).
		Int("skipped", result.Summary.Skipped).
		Int("failed", result.Summary.Failed).
		Str("status", result.Status.String()).
		Msg("Run complete")

	result.Ledger = next
	return result
}

// PlannedAction is one step a dry run would take.
type PlannedAction struct {
	Spec   types.PluginSpec  `json:"spec"`
	State  types.PluginState `json:"state"`
	Action string            `json:"action"`
}

// Plan classifies every plugin in resolved order without acting. It backs
// the dry-run and status views; the detection logic is the engine's own, so
// what Plan reports is exactly what Run would do.
func (o *Orchestrator) Plan(ctx context.Context, specs []types.PluginSpec, prev types.Ledger) ([]PlannedAction, error) {
	ordered, err := o.prepare(specs)
	if err != nil {
		return nil, err
	}

	actions := make([]PlannedAction, 0, len(ordered))
	for _, spec := range ordered {
		state := o.engine.Classify(ctx, spec, prev.Find(spec.Name))
		actions = append(actions, PlannedAction{
			Spec:   spec,
			State:  state,
			Action: actionFor(state),
		})
	}
	return actions, nil
}

// prepare runs the zero-side-effect phase: semantic validation of every
// spec, then dependency resolution.
func (o *Orchestrator) prepare(specs []types.PluginSpec) ([]types.PluginSpec, error) {
	if err := manifest.Validate(specs); err != nil {
		return nil, err
	}
	return resolver.Resolve(specs)
}

func actionFor(state types.PluginState) string {
	switch state {
	case types.StateAbsent:
		return "install"
	case types.StateCorrupt:
		return "repair"
	case types.StateWrongRevision:
		return "update"
	default:
		return "skip"
	}
}
