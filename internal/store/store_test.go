package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reputel/repgraph/internal/engine"
	"github.com/reputel/repgraph/internal/router"
	"github.com/reputel/repgraph/internal/store"
)

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repgraph.db")
	rt := router.New(engine.NewMemory())

	st, err := store.Open(path, rt)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	// Reopening an existing database applies the schema again without
	// error and keeps the data.
	st, err = store.Open(path, rt)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.CreateUser(context.Background(), "u1"))
	u, err := st.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}

func TestOpen_AppliesPragmas(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "repgraph.db"), nil)
	require.NoError(t, err)
	defer st.Close()

	var journalMode string
	require.NoError(t, st.DB().QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var fk int
	require.NoError(t, st.DB().QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpen_SetsSchemaVersion(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "repgraph.db"), nil)
	require.NoError(t, err)
	defer st.Close()

	var version int
	require.NoError(t, st.DB().QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestWritePathsRequireRouter(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "repgraph.db"), nil)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	assert.Error(t, st.CreateUser(ctx, "u1"))
	_, err = st.CreateBeacon(ctx, "u1", "")
	assert.Error(t, err)
}
