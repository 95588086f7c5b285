package status_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/doplug/pkg/commands/status"
	"github.com/arthur-debert/doplug/pkg/commands/sync"
	"github.com/arthur-debert/doplug/pkg/filesystem"
	"github.com/arthur-debert/doplug/pkg/paths"
	"github.com/arthur-debert/doplug/pkg/testutil"
	"github.com/arthur-debert/doplug/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	revA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	revB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

const manifestJSON = `{"plugins": [
  {"name": "a", "source": "https://github.com/owner/a", "revision": "` + revA + `"},
  {"name": "b", "source": "https://github.com/owner/b", "revision": "` + revB + `"}]}`

func setup(t *testing.T) (status.Options, *testutil.FakeVCS) {
	t.Helper()
	t.Setenv(paths.EnvConfigDir, "/cfg")
	t.Setenv(paths.EnvDataDir, "/data")

	fs := filesystem.NewMemory()
	p := paths.New()
	require.NoError(t, fs.WriteFile(p.ManifestPath(), []byte(manifestJSON), 0644))

	vcs := testutil.NewFakeVCS(fs)
	vcs.AddRepo("https://github.com/owner/a", revA)
	vcs.AddRepo("https://github.com/owner/b", revB)

	return status.Options{FS: fs, VCS: vcs, Paths: p}, vcs
}

func TestExecuteBeforeAnyInstall(t *testing.T) {
	opts, _ := setup(t)

	result, err := status.Execute(context.Background(), opts)

	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.False(t, result.Converged)
	for _, row := range result.Rows {
		assert.Equal(t, types.StateAbsent, row.State)
		assert.Empty(t, row.Recorded)
	}
}

func TestExecuteAfterSyncIsConverged(t *testing.T) {
	opts, _ := setup(t)
	_, err := sync.Execute(context.Background(),
		sync.Options{FS: opts.FS, VCS: opts.VCS, Paths: opts.Paths})
	require.NoError(t, err)

	result, err := status.Execute(context.Background(), opts)

	require.NoError(t, err)
	assert.True(t, result.Converged)
	for _, row := range result.Rows {
		assert.Equal(t, types.StateCorrect, row.State)
		assert.Equal(t, row.Revision, row.Recorded)
	}
}

func TestExecuteDetectsCorruptionWithoutFixing(t *testing.T) {
	opts, vcs := setup(t)
	_, err := sync.Execute(context.Background(),
		sync.Options{FS: opts.FS, VCS: opts.VCS, Paths: opts.Paths})
	require.NoError(t, err)

	require.NoError(t, opts.FS.RemoveAll(opts.Paths.PluginPath("a")))
	cloneCalls := len(vcs.CallsMatching("clone"))

	result, err := status.Execute(context.Background(), opts)

	require.NoError(t, err)
	assert.False(t, result.Converged)
	assert.Equal(t, types.StateCorrupt, result.Rows[0].State)
	assert.Equal(t, types.StateCorrect, result.Rows[1].State)

	// verify is read-only: same detection, no repair
	assert.Len(t, vcs.CallsMatching("clone"), cloneCalls)
	_, statErr := opts.FS.Stat(opts.Paths.PluginPath("a"))
	assert.Error(t, statErr)
}
