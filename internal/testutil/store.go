package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reputel/repgraph/internal/engine"
	"github.com/reputel/repgraph/internal/ident"
	"github.com/reputel/repgraph/internal/router"
	"github.com/reputel/repgraph/internal/store"
)

// Env bundles the pieces a store-level test needs: a temp-file store
// wired through a router to an in-memory engine, with deterministic
// content IDs.
type Env struct {
	Store  *store.Store
	Router *router.Router
	Engine *engine.Memory
}

// OpenStore creates a store in t.TempDir() backed by a fresh in-memory
// engine. ids seed the content-ID generator; when empty the production
// UUIDv7 generator is used. Cleanup is registered on t.
func OpenStore(t *testing.T, ids ...string) *Env {
	t.Helper()

	mem := engine.NewMemory()
	rt := router.New(mem)

	var opts []store.Option
	if len(ids) > 0 {
		opts = append(opts, store.WithGenerator(ident.NewFixedGenerator(ids...)))
	}

	st, err := store.Open(filepath.Join(t.TempDir(), "repgraph.db"), rt, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return &Env{Store: st, Router: rt, Engine: mem}
}

// OpenStoreWith creates a temp-file store bound to the given adapter,
// for tests that need a recording or failing adapter in the write path.
func OpenStoreWith(t *testing.T, adapter engine.Adapter, ids ...string) *store.Store {
	t.Helper()

	var opts []store.Option
	if len(ids) > 0 {
		opts = append(opts, store.WithGenerator(ident.NewFixedGenerator(ids...)))
	}

	st, err := store.Open(filepath.Join(t.TempDir(), "repgraph.db"), router.New(adapter), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}
