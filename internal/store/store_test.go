package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/vigil/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate())
	return s
}

func TestLoadSnapshotEmpty(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	_, symbols, ok, err := s.LoadSnapshot()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, symbols)
}

func TestReplaceAndLoadSnapshot(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	builtAt := time.Now().Truncate(time.Millisecond)
	maxMod := builtAt.Add(-time.Minute)
	symbols := []model.Symbol{
		{
			Name: "greet", Kind: model.SymbolFunction, FilePath: "utils.py", Line: 7,
			Params: []model.Param{
				{Name: "name"},
				{Name: "greeting", HasDefault: true},
			},
		},
		{
			Name: "arr", Kind: model.SymbolArray, Type: "int", FilePath: "core.c",
			Line: 1, ArraySize: model.IntPtr(10),
		},
		{
			Name: "balance", Kind: model.SymbolVariable, Type: "int",
			FilePath: "utils.py", Line: 1, Scope: "",
		},
	}

	require.NoError(t, s.ReplaceSnapshot("/repo", builtAt, maxMod, symbols))

	meta, loaded, ok, err := s.LoadSnapshot()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/repo", meta.Root)
	assert.Equal(t, builtAt.UnixNano(), meta.BuiltAt.UnixNano())
	assert.Equal(t, maxMod.UnixNano(), meta.MaxModTime.UnixNano())
	assert.Equal(t, 3, meta.SymbolCount)

	require.Len(t, loaded, 3)
	assert.Equal(t, symbols, loaded)
}

func TestReplaceSnapshotOverwrites(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	now := time.Now()

	first := []model.Symbol{
		{Name: "old", Kind: model.SymbolVariable, FilePath: "a.py", Line: 1,
			Params: nil},
	}
	require.NoError(t, s.ReplaceSnapshot("/repo", now, now, first))

	second := []model.Symbol{
		{Name: "fresh", Kind: model.SymbolFunction, FilePath: "b.py", Line: 2,
			Params: []model.Param{{Name: "x"}}},
	}
	require.NoError(t, s.ReplaceSnapshot("/repo2", now, now, second))

	meta, loaded, ok, err := s.LoadSnapshot()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/repo2", meta.Root)
	require.Len(t, loaded, 1)
	assert.Equal(t, "fresh", loaded[0].Name)
	require.Len(t, loaded[0].Params, 1)

	// Params of the old snapshot are gone too.
	var count int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM symbol_params").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.Migrate())
	require.NoError(t, s.Migrate())
}

func TestReplaceSnapshotEmptyTable(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	now := time.Now()
	require.NoError(t, s.ReplaceSnapshot("/repo", now, now,
		[]model.Symbol{{Name: "x", Kind: model.SymbolVariable, FilePath: "a.py", Line: 1}}))
	require.NoError(t, s.ReplaceSnapshot("/repo", now, now, nil))

	meta, loaded, ok, err := s.LoadSnapshot()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, meta.SymbolCount)
	assert.Empty(t, loaded)
}
