package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slot struct {
	Name  string  `json:"name"`
	Power float64 `json:"power"`
}

func openTestStore(t *testing.T) *SQLiteStore[slot] {
	t.Helper()
	store, err := OpenSQLite[slot](filepath.Join(t.TempDir(), "test.db"), "slots")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_GetPut(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	id := store.NewID()
	require.NoError(t, store.Put(ctx, id, slot{Name: "Lin", Power: 12.5}))

	got, ok, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, slot{Name: "Lin", Power: 12.5}, got)

	require.NoError(t, store.Put(ctx, id, slot{Name: "Lin", Power: 20}))
	got, _, err = store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.Power)
}

func TestSQLiteStore_DeleteAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "b", slot{Name: "second"}))
	require.NoError(t, store.Put(ctx, "a", slot{Name: "first"}))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "first", all[0].Name)

	require.NoError(t, store.Delete(ctx, "a"))
	assert.ErrorIs(t, store.Delete(ctx, "a"), ErrNotFound)

	all, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	store, err := OpenSQLite[slot](path, "slots")
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "x", slot{Name: "kept"}))
	require.NoError(t, store.Close())

	store, err = OpenSQLite[slot](path, "slots")
	require.NoError(t, err)
	defer store.Close()

	got, ok, err := store.Get(ctx, "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "kept", got.Name)
}
