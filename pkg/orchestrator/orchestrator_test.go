package orchestrator_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/doplug/pkg/errors"
	"github.com/arthur-debert/doplug/pkg/filesystem"
	"github.com/arthur-debert/doplug/pkg/orchestrator"
	"github.com/arthur-debert/doplug/pkg/reconcile"
	"github.com/arthur-debert/doplug/pkg/testutil"
	"github.com/arthur-debert/doplug/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	revA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	revB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	revC = "cccccccccccccccccccccccccccccccccccccccc"
)

func pluginPath(name string) string {
	return "/data/plugins/" + name
}

func newOrchestrator(t *testing.T) (*orchestrator.Orchestrator, *testutil.FakeVCS, types.FS) {
	t.Helper()
	fs := filesystem.NewMemory()
	vcs := testutil.NewFakeVCS(fs)
	engine := reconcile.New(vcs, fs, pluginPath)
	return orchestrator.New(engine), vcs, fs
}

func spec(name, rev string, deps ...string) types.PluginSpec {
	return types.PluginSpec{
		Name:         name,
		Source:       "https://github.com/owner/" + name,
		Revision:     rev,
		Dependencies: deps,
	}
}

func verdicts(outcomes []types.Outcome) []types.Verdict {
	out := make([]types.Verdict, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Verdict
	}
	return out
}

// The literal first-run scenario: plenary plus telescope depending on it,
// empty ledger, both repositories healthy.
func TestRunFreshInstall(t *testing.T) {
	o, vcs, _ := newOrchestrator(t)
	plenary := spec("plenary", revA)
	telescope := spec("telescope", revB, "plenary")
	vcs.AddRepo(plenary.Source, revA)
	vcs.AddRepo(telescope.Source, revB)

	// declared dependent-first: resolution must reorder
	result := o.Run(context.Background(), []types.PluginSpec{telescope, plenary}, types.NewLedger())

	assert.Equal(t, types.StatusSuccess, result.Status)
	assert.NoError(t, result.Err)
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, "plenary", result.Outcomes[0].Spec.Name)
	assert.Equal(t, "telescope", result.Outcomes[1].Spec.Name)
	assert.Equal(t, []types.Verdict{types.VerdictInstalled, types.VerdictInstalled},
		verdicts(result.Outcomes))

	require.Len(t, result.Ledger.Plugins, 2)
	assert.NotNil(t, result.Ledger.Find("plenary"))
	assert.NotNil(t, result.Ledger.Find("telescope"))
	assert.Equal(t, 2, result.Summary.Installed)
	assert.Equal(t, 0, result.Status.ExitCode())
}

func TestRunIsIdempotent(t *testing.T) {
	o, vcs, _ := newOrchestrator(t)
	specs := []types.PluginSpec{spec("plenary", revA), spec("telescope", revB, "plenary")}
	vcs.AddRepo(specs[0].Source, revA)
	vcs.AddRepo(specs[1].Source, revB)

	first := o.Run(context.Background(), specs, types.NewLedger())
	require.Equal(t, types.StatusSuccess, first.Status)

	second := o.Run(context.Background(), specs, first.Ledger)

	assert.Equal(t, types.StatusSuccess, second.Status)
	assert.Equal(t, []types.Verdict{types.VerdictSkipped, types.VerdictSkipped},
		verdicts(second.Outcomes))
	assert.Equal(t, 2, second.Summary.Skipped)
	assert.Equal(t, first.Ledger.Plugins, second.Ledger.Plugins)
}

func TestRunPartialFailureIsolation(t *testing.T) {
	// Plugin a is pinned to a revision its repository does not have;
	// plugin b is fine. a fails, b still installs, status is partial.
	o, vcs, _ := newOrchestrator(t)
	a := spec("a", revC)
	b := spec("b", revB)
	vcs.AddRepo(a.Source, revA)
	vcs.AddRepo(b.Source, revB)

	result := o.Run(context.Background(), []types.PluginSpec{a, b}, types.NewLedger())

	assert.Equal(t, types.StatusPartialFailure, result.Status)
	assert.Equal(t, []types.Verdict{types.VerdictFailed, types.VerdictInstalled},
		verdicts(result.Outcomes))
	assert.Equal(t, 2, result.Status.ExitCode())

	// failed plugin never reaches the ledger
	assert.Nil(t, result.Ledger.Find("a"))
	assert.NotNil(t, result.Ledger.Find("b"))
}

func TestRunFailedPluginKeepsPreviousRecord(t *testing.T) {
	o, vcs, _ := newOrchestrator(t)
	a := spec("a", revA)
	vcs.AddRepo(a.Source, revA)

	first := o.Run(context.Background(), []types.PluginSpec{a}, types.NewLedger())
	require.Equal(t, types.StatusSuccess, first.Status)

	// repin to an unreachable revision: update fails, and the ledger
	// still records the revision that is actually on disk
	a.Revision = revC
	second := o.Run(context.Background(), []types.PluginSpec{a}, first.Ledger)

	require.Equal(t, types.StatusPartialFailure, second.Status)
	rec := second.Ledger.Find("a")
	require.NotNil(t, rec)
	assert.Equal(t, revA, rec.Revision)
}

func TestRunConfigErrorTouchesNothing(t *testing.T) {
	tests := []struct {
		name     string
		specs    []types.PluginSpec
		wantCode errors.ErrorCode
	}{
		{
			name:     "missing_dependency",
			specs:    []types.PluginSpec{spec("a", revA, "ghost")},
			wantCode: errors.ErrDependencyMissing,
		},
		{
			name: "cycle",
			specs: []types.PluginSpec{
				spec("a", revA, "b"),
				spec("b", revB, "a"),
			},
			wantCode: errors.ErrDependencyCycle,
		},
		{
			name:     "self_dependency",
			specs:    []types.PluginSpec{spec("a", revA, "a")},
			wantCode: errors.ErrDependencyCycle,
		},
		{
			name:     "malformed_revision",
			specs:    []types.PluginSpec{spec("a", "not-a-sha")},
			wantCode: errors.ErrRevisionInvalid,
		},
		{
			name:     "duplicate_name",
			specs:    []types.PluginSpec{spec("a", revA), spec("a", revB)},
			wantCode: errors.ErrDuplicatePlugin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, vcs, _ := newOrchestrator(t)
			prev := types.NewLedger()

			result := o.Run(context.Background(), tt.specs, prev)

			assert.Equal(t, types.StatusConfigError, result.Status)
			assert.Equal(t, 1, result.Status.ExitCode())
			assert.True(t, errors.IsErrorCode(result.Err, tt.wantCode),
				"got %s", errors.GetErrorCode(result.Err))
			assert.Empty(t, result.Outcomes)
			assert.Empty(t, vcs.Calls, "no VCS operation may run on config error")
			assert.Equal(t, prev, result.Ledger)
		})
	}
}

func TestRunDoesNotMutatePreviousLedger(t *testing.T) {
	o, vcs, _ := newOrchestrator(t)
	a := spec("a", revA)
	vcs.AddRepo(a.Source, revA)
	prev := types.NewLedger()

	result := o.Run(context.Background(), []types.PluginSpec{a}, prev)

	require.Equal(t, types.StatusSuccess, result.Status)
	assert.Empty(t, prev.Plugins, "previous snapshot must stay untouched")
	assert.Len(t, result.Ledger.Plugins, 1)
}

func TestPlan(t *testing.T) {
	o, vcs, fs := newOrchestrator(t)
	installed := spec("installed", revA)
	wrong := spec("wrong", revB)
	missing := spec("missing", revC)
	vcs.AddRepo(installed.Source, revA)
	vcs.AddRepo(wrong.Source, revA, revB)
	vcs.AddRepo(missing.Source, revC)

	first := o.Run(context.Background(),
		[]types.PluginSpec{installed, {
			Name: wrong.Name, Source: wrong.Source, Revision: revA,
		}}, types.NewLedger())
	require.Equal(t, types.StatusSuccess, first.Status)

	cloneCalls := len(vcs.CallsMatching("clone"))
	checkoutCalls := len(vcs.CallsMatching("checkout"))

	actions, err := o.Plan(context.Background(),
		[]types.PluginSpec{installed, wrong, missing}, first.Ledger)

	require.NoError(t, err)
	require.Len(t, actions, 3)
	assert.Equal(t, "skip", actions[0].Action)
	assert.Equal(t, "update", actions[1].Action)
	assert.Equal(t, "install", actions[2].Action)

	// planning inspects but never mutates
	assert.Len(t, vcs.CallsMatching("clone"), cloneCalls)
	assert.Len(t, vcs.CallsMatching("checkout"), checkoutCalls)
	_, statErr := fs.Stat(pluginPath("missing"))
	assert.Error(t, statErr)
}

func TestPlanReportsRepair(t *testing.T) {
	o, vcs, fs := newOrchestrator(t)
	a := spec("a", revA)
	vcs.AddRepo(a.Source, revA)

	first := o.Run(context.Background(), []types.PluginSpec{a}, types.NewLedger())
	require.Equal(t, types.StatusSuccess, first.Status)
	require.NoError(t, fs.RemoveAll(pluginPath("a")))

	actions, err := o.Plan(context.Background(), []types.PluginSpec{a}, first.Ledger)

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "repair", actions[0].Action)
	assert.Equal(t, types.StateCorrupt, actions[0].State)
}
