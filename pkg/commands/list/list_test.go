package list_test

import (
	"context"
	"testing"

	"github.com/arthur-debert/doplug/pkg/commands/list"
	"github.com/arthur-debert/doplug/pkg/commands/sync"
	"github.com/arthur-debert/doplug/pkg/filesystem"
	"github.com/arthur-debert/doplug/pkg/paths"
	"github.com/arthur-debert/doplug/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	revA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	revB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

const manifestJSON = `{"plugins": [
  {"name": "telescope", "source": "https://github.com/owner/telescope",
   "revision": "` + revB + `", "dependencies": ["plenary"]},
  {"name": "plenary", "source": "https://github.com/owner/plenary",
   "revision": "` + revA + `"}]}`

func setup(t *testing.T) list.Options {
	t.Helper()
	t.Setenv(paths.EnvConfigDir, "/cfg")
	t.Setenv(paths.EnvDataDir, "/data")

	fs := filesystem.NewMemory()
	p := paths.New()
	require.NoError(t, fs.WriteFile(p.ManifestPath(), []byte(manifestJSON), 0644))

	vcs := testutil.NewFakeVCS(fs)
	vcs.AddRepo("https://github.com/owner/plenary", revA)
	vcs.AddRepo("https://github.com/owner/telescope", revB)

	return list.Options{FS: fs, VCS: vcs, Paths: p}
}

func TestExecuteKeepsDeclarationOrder(t *testing.T) {
	opts := setup(t)

	result, err := list.Execute(context.Background(), opts)

	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "telescope", result.Rows[0].Name)
	assert.Equal(t, "plenary", result.Rows[1].Name)
	assert.Equal(t, []string{"plenary"}, result.Rows[0].Dependencies)
}

func TestExecuteReportsInstalledState(t *testing.T) {
	opts := setup(t)

	before, err := list.Execute(context.Background(), opts)
	require.NoError(t, err)
	for _, row := range before.Rows {
		assert.False(t, row.Installed)
		assert.Equal(t, "absent", row.State)
	}

	_, err = sync.Execute(context.Background(),
		sync.Options{FS: opts.FS, VCS: opts.VCS, Paths: opts.Paths})
	require.NoError(t, err)

	after, err := list.Execute(context.Background(), opts)
	require.NoError(t, err)
	for _, row := range after.Rows {
		assert.True(t, row.Installed)
		assert.Equal(t, "ok", row.State)
	}
}
