package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reputel/repgraph/internal/edge"
	"github.com/reputel/repgraph/internal/store"
	"github.com/reputel/repgraph/internal/testutil"
)

func TestCreateBeacon_SynthesizesEdgePair(t *testing.T) {
	env := testutil.OpenStore(t, "C")
	ctx := context.Background()

	require.NoError(t, env.Store.CreateUser(ctx, "U"))
	id, err := env.Store.CreateBeacon(ctx, "U", "hello")
	require.NoError(t, err)
	assert.Equal(t, "C", id)

	w, ok := env.Engine.Weight(edge.CategoryBeacon, "C", "U")
	require.True(t, ok)
	assert.Equal(t, 1.0, w)

	w, ok = env.Engine.Weight(edge.CategoryBeacon, "U", "C")
	require.True(t, ok)
	assert.Equal(t, 10.0, w)

	assert.Equal(t, 2, env.Engine.TotalEdges())
}

func TestCreateComment_SynthesizesEdgePair(t *testing.T) {
	env := testutil.OpenStore(t, "B", "X")
	ctx := context.Background()

	require.NoError(t, env.Store.CreateUser(ctx, "U3"))
	_, err := env.Store.CreateBeacon(ctx, "U3", "")
	require.NoError(t, err)

	id, err := env.Store.CreateComment(ctx, "U3", "B", "nice")
	require.NoError(t, err)
	assert.Equal(t, "X", id)

	w, ok := env.Engine.Weight(edge.CategoryComment, "X", "U3")
	require.True(t, ok)
	assert.Equal(t, 1.0, w)

	w, ok = env.Engine.Weight(edge.CategoryComment, "U3", "X")
	require.True(t, ok)
	assert.Equal(t, 1.0, w)
}

func TestDeleteComment_RemovesBothEdges(t *testing.T) {
	env := testutil.OpenStore(t, "B", "X")
	ctx := context.Background()

	require.NoError(t, env.Store.CreateUser(ctx, "U3"))
	_, err := env.Store.CreateBeacon(ctx, "U3", "")
	require.NoError(t, err)
	_, err = env.Store.CreateComment(ctx, "U3", "B", "")
	require.NoError(t, err)

	before := env.Engine.TotalEdges()
	require.NoError(t, env.Store.DeleteComment(ctx, "X"))

	_, ok := env.Engine.Weight(edge.CategoryComment, "X", "U3")
	assert.False(t, ok)
	_, ok = env.Engine.Weight(edge.CategoryComment, "U3", "X")
	assert.False(t, ok)

	// Exactly the pair is gone, nothing else.
	assert.Equal(t, before-2, env.Engine.TotalEdges())

	_, err = env.Store.GetComment(ctx, "X")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateBeacon_RoutesNoGraphOps(t *testing.T) {
	rec := testutil.NewRecording(nil)
	st := testutil.OpenStoreWith(t, rec, "B")
	ctx := context.Background()

	require.NoError(t, st.CreateUser(ctx, "U"))
	_, err := st.CreateBeacon(ctx, "U", "old")
	require.NoError(t, err)

	rec.Reset()
	require.NoError(t, st.UpdateBeacon(ctx, "B", "new"))
	assert.Empty(t, rec.Calls())

	b, err := st.GetBeacon(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, "new", b.Title)
}

func TestDeleteBeacon_CascadesCommentsAndVotes(t *testing.T) {
	env := testutil.OpenStore(t, "B", "X")
	ctx := context.Background()

	require.NoError(t, env.Store.CreateUser(ctx, "U1"))
	require.NoError(t, env.Store.CreateUser(ctx, "U2"))
	_, err := env.Store.CreateBeacon(ctx, "U1", "")
	require.NoError(t, err)
	_, err = env.Store.CreateComment(ctx, "U2", "B", "")
	require.NoError(t, err)
	require.NoError(t, env.Store.SetVote(ctx, edge.CategoryVoteBeacon, "U2", "B", 4))
	require.NoError(t, env.Store.SetVote(ctx, edge.CategoryVoteComment, "U1", "X", 2))

	require.NoError(t, env.Store.DeleteBeacon(ctx, "B"))

	// Every edge that depended on the beacon is gone.
	assert.Equal(t, 0, env.Engine.TotalEdges())

	_, err = env.Store.GetBeacon(ctx, "B")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = env.Store.GetComment(ctx, "X")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = env.Store.GetVote(ctx, edge.CategoryVoteBeacon, "U2", "B")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = env.Store.GetVote(ctx, edge.CategoryVoteComment, "U1", "X")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateBeacon_AdapterFailureRollsBackRow(t *testing.T) {
	// The insert maps to two adds; allow one so the failure lands
	// mid-sequence.
	failing := testutil.NewFailing(nil, 1)
	st := testutil.OpenStoreWith(t, failing, "B")
	ctx := context.Background()

	require.NoError(t, st.CreateUser(ctx, "U"))
	_, err := st.CreateBeacon(ctx, "U", "")
	require.Error(t, err)

	_, err = st.GetBeacon(ctx, "B")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteBeacon_AbsentReturnsNotFound(t *testing.T) {
	env := testutil.OpenStore(t)
	err := env.Store.DeleteBeacon(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
