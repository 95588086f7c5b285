package ledger_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/arthur-debert/doplug/pkg/errors"
	"github.com/arthur-debert/doplug/pkg/filesystem"
	"github.com/arthur-debert/doplug/pkg/ledger"
	"github.com/arthur-debert/doplug/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lockPath = "/data/plugins.lock.json"

func record(name string) types.InstalledRecord {
	return types.InstalledRecord{
		Name:        name,
		Source:      "https://github.com/owner/" + name,
		Revision:    "0123456789abcdef0123456789abcdef01234567",
		InstalledAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Path:        "/data/plugins/" + name,
	}
}

func TestLoadMissingFileIsEmptyLedger(t *testing.T) {
	fs := filesystem.NewMemory()

	l, err := ledger.Load(fs, lockPath)

	require.NoError(t, err)
	assert.Equal(t, types.LockFormatVersion, l.Version)
	assert.Empty(t, l.Plugins)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	fs := filesystem.NewMemory()
	l := types.NewLedger()
	l.Upsert(record("plenary"))
	l.Upsert(record("telescope"))

	require.NoError(t, ledger.Save(fs, lockPath, l))

	got, err := ledger.Load(fs, lockPath)
	require.NoError(t, err)
	require.Len(t, got.Plugins, 2)
	assert.Equal(t, l.Plugins, got.Plugins)
	assert.False(t, got.Generated.IsZero())

	// no temp file left behind
	_, err = fs.Stat(lockPath + ".tmp")
	assert.Error(t, err)
}

func TestSaveOnDiskShape(t *testing.T) {
	fs := filesystem.NewMemory()
	l := types.NewLedger()
	l.Upsert(record("plenary"))

	require.NoError(t, ledger.Save(fs, lockPath, l))

	data, err := fs.ReadFile(lockPath)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "version")
	assert.Contains(t, raw, "generated")
	assert.Contains(t, raw, "plugins")
}

func TestSaveEmptyLedgerWritesEmptyArray(t *testing.T) {
	fs := filesystem.NewMemory()

	require.NoError(t, ledger.Save(fs, lockPath, types.NewLedger()))

	data, err := fs.ReadFile(lockPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"plugins": []`)
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll("/data", 0755))
	require.NoError(t, fs.WriteFile(lockPath,
		[]byte(`{"version": 99, "plugins": []}`), 0644))

	_, err := ledger.Load(fs, lockPath)

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLockVersion))
	assert.True(t, errors.IsValidation(err))
}

func TestLoadRejectsGarbage(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll("/data", 0755))
	require.NoError(t, fs.WriteFile(lockPath, []byte("not json"), 0644))

	_, err := ledger.Load(fs, lockPath)

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestInvalid))
}

func TestLoadRejectsDuplicateRecords(t *testing.T) {
	fs := filesystem.NewMemory()
	l := types.NewLedger()
	l.Plugins = []types.InstalledRecord{record("plenary"), record("plenary")}
	data, err := json.Marshal(l)
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll("/data", 0755))
	require.NoError(t, fs.WriteFile(lockPath, data, 0644))

	_, err = ledger.Load(fs, lockPath)

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDuplicatePlugin))
}

func TestLedgerUpsertAndRemove(t *testing.T) {
	l := types.NewLedger()
	l.Upsert(record("a"))
	l.Upsert(record("b"))

	updated := record("a")
	updated.Revision = "ffffffffffffffffffffffffffffffffffffffff"
	l.Upsert(updated)

	require.Len(t, l.Plugins, 2)
	assert.Equal(t, "a", l.Plugins[0].Name, "upsert preserves position")
	assert.Equal(t, updated.Revision, l.Plugins[0].Revision)

	assert.True(t, l.Remove("a"))
	assert.False(t, l.Remove("a"))
	require.Len(t, l.Plugins, 1)
	assert.Nil(t, l.Find("a"))
	assert.NotNil(t, l.Find("b"))
}

func TestLedgerCloneIsIndependent(t *testing.T) {
	l := types.NewLedger()
	l.Upsert(record("a"))

	snapshot := l.Clone()
	snapshot.Upsert(record("b"))
	snapshot.Plugins[0].Revision = "ffffffffffffffffffffffffffffffffffffffff"

	require.Len(t, l.Plugins, 1)
	assert.Equal(t, record("a").Revision, l.Plugins[0].Revision)
}
