package initialize_test

import (
	"testing"

	"github.com/arthur-debert/doplug/pkg/commands/initialize"
	"github.com/arthur-debert/doplug/pkg/errors"
	"github.com/arthur-debert/doplug/pkg/filesystem"
	"github.com/arthur-debert/doplug/pkg/manifest"
	"github.com/arthur-debert/doplug/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) initialize.Options {
	t.Helper()
	t.Setenv(paths.EnvConfigDir, "/cfg")
	t.Setenv(paths.EnvDataDir, "/data")
	return initialize.Options{FS: filesystem.NewMemory(), Paths: paths.New()}
}

func TestExecuteWritesValidStarterManifest(t *testing.T) {
	opts := setup(t)

	result, err := initialize.Execute(opts)

	require.NoError(t, err)
	assert.Equal(t, opts.Paths.ManifestPath(), result.ManifestPath)

	specs, err := manifest.Load(opts.FS, result.ManifestPath)
	require.NoError(t, err)
	assert.NotEmpty(t, specs)
}

func TestExecuteRefusesToOverwrite(t *testing.T) {
	opts := setup(t)
	require.NoError(t, opts.FS.WriteFile(opts.Paths.ManifestPath(),
		[]byte(`{"plugins": []}`), 0644))

	_, err := initialize.Execute(opts)

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	// the user's file is intact
	data, readErr := opts.FS.ReadFile(opts.Paths.ManifestPath())
	require.NoError(t, readErr)
	assert.Equal(t, `{"plugins": []}`, string(data))
}

func TestExecuteForceOverwrites(t *testing.T) {
	opts := setup(t)
	require.NoError(t, opts.FS.WriteFile(opts.Paths.ManifestPath(),
		[]byte(`{"plugins": []}`), 0644))
	opts.Force = true

	result, err := initialize.Execute(opts)

	require.NoError(t, err)
	specs, err := manifest.Load(opts.FS, result.ManifestPath)
	require.NoError(t, err)
	assert.NotEmpty(t, specs)
}
