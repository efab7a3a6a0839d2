package datastore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type guild struct {
	Prefix string         `json:"prefix"`
	Auth   map[string]int `json:"auth"`
}

func newStore(t *testing.T, path string) *DataStore {
	t.Helper()
	cfg := DefaultConfig(path)
	cfg.AutoSaveInterval = 0
	ds, err := NewWithConfig(cfg)
	require.NoError(t, err)
	return ds
}

func TestDataStore_PutGetPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	ds := newStore(t, path)

	require.NoError(t, ds.Put("g1", guild{Prefix: "?", Auth: map[string]int{"u1": 3}}))

	var g guild
	ok, err := ds.Get("g1", &g)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "?", g.Prefix)

	ok, err = ds.Get("missing", &g)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ds.Close())
	assert.ErrorIs(t, ds.Put("g2", guild{}), ErrClosed)

	reopened := newStore(t, path)
	defer reopened.Close()
	var again guild
	ok, err = reopened.Get("g1", &again)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, again.Auth["u1"])
	assert.Equal(t, []string{"g1"}, reopened.Keys())
}

func TestDataStore_Update(t *testing.T) {
	ds := newStore(t, filepath.Join(t.TempDir(), "store.json"))
	defer ds.Close()

	inc := func() error {
		var g guild
		return ds.Update("g1", &g, func(exists bool) error {
			if g.Auth == nil {
				g.Auth = map[string]int{}
			}
			g.Auth["u1"]++
			return nil
		})
	}
	require.NoError(t, inc())
	require.NoError(t, inc())

	var g guild
	_, err := ds.Get("g1", &g)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Auth["u1"])

	boom := errors.New("boom")
	var h guild
	err = ds.Update("g1", &h, func(bool) error {
		h.Prefix = "changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, err = ds.Get("g1", &g)
	require.NoError(t, err)
	assert.Equal(t, "", g.Prefix)
}

func TestDataStore_Backups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ds := newStore(t, path)

	for i := 0; i < 6; i++ {
		require.NoError(t, ds.Put("n", i))
		require.NoError(t, ds.SaveToFile())
	}
	require.NoError(t, ds.Close())

	backups, err := filepath.Glob(path + ".backup.*")
	require.NoError(t, err)
	assert.Len(t, backups, 3)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestDataStore_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, err := New(path)
	assert.Error(t, err)
}
