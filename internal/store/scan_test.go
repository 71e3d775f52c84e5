package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reputel/repgraph/internal/edge"
	"github.com/reputel/repgraph/internal/store"
	"github.com/reputel/repgraph/internal/testutil"
)

func TestScanVotes_VisitsEveryRowInBatches(t *testing.T) {
	env := testutil.OpenStore(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.NoError(t, env.Store.CreateUser(ctx, fmt.Sprintf("u%d", i)))
	}
	for i := 1; i < 7; i++ {
		require.NoError(t, env.Store.SetVote(ctx, edge.CategoryVoteUser, "u0", fmt.Sprintf("u%d", i), float64(i)))
	}

	var seen []store.Vote
	batches := 0
	err := env.Store.ScanVotes(ctx, edge.CategoryVoteUser, 4, func(batch []store.Vote) error {
		batches++
		assert.LessOrEqual(t, len(batch), 4)
		seen = append(seen, batch...)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, batches)
	require.Len(t, seen, 6)
	for i, v := range seen {
		assert.Equal(t, "u0", v.Subject)
		assert.Equal(t, fmt.Sprintf("u%d", i+1), v.Object)
		assert.Equal(t, float64(i+1), v.Amount)
	}
}

func TestScanVotes_EmptyTable(t *testing.T) {
	env := testutil.OpenStore(t)
	err := env.Store.ScanVotes(context.Background(), edge.CategoryVoteBeacon, 10, func([]store.Vote) error {
		t.Fatal("callback should not run on an empty table")
		return nil
	})
	require.NoError(t, err)
}

func TestScanVotes_CallbackErrorStopsScan(t *testing.T) {
	env := testutil.OpenStore(t)
	ctx := context.Background()

	require.NoError(t, env.Store.CreateUser(ctx, "u1"))
	require.NoError(t, env.Store.CreateUser(ctx, "u2"))
	require.NoError(t, env.Store.SetVote(ctx, edge.CategoryVoteUser, "u1", "u2", 1))

	boom := errors.New("boom")
	err := env.Store.ScanVotes(ctx, edge.CategoryVoteUser, 1, func([]store.Vote) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestScanContent_VisitsBothSubtypes(t *testing.T) {
	env := testutil.OpenStore(t, "b1", "b2", "c1")
	ctx := context.Background()

	require.NoError(t, env.Store.CreateUser(ctx, "U"))
	_, err := env.Store.CreateBeacon(ctx, "U", "")
	require.NoError(t, err)
	_, err = env.Store.CreateBeacon(ctx, "U", "")
	require.NoError(t, err)
	_, err = env.Store.CreateComment(ctx, "U", "b1", "")
	require.NoError(t, err)

	var beacons, comments []store.Content
	require.NoError(t, env.Store.ScanContent(ctx, edge.CategoryBeacon, 1, func(batch []store.Content) error {
		beacons = append(beacons, batch...)
		return nil
	}))
	require.NoError(t, env.Store.ScanContent(ctx, edge.CategoryComment, 10, func(batch []store.Content) error {
		comments = append(comments, batch...)
		return nil
	}))

	require.Len(t, beacons, 2)
	assert.Equal(t, "b1", beacons[0].ID)
	assert.Equal(t, "b2", beacons[1].ID)
	require.Len(t, comments, 1)
	assert.Equal(t, "c1", comments[0].ID)
	assert.Equal(t, "U", comments[0].AuthorID)
}

func TestScanVotes_RejectsBadArguments(t *testing.T) {
	env := testutil.OpenStore(t)
	ctx := context.Background()

	err := env.Store.ScanVotes(ctx, edge.CategoryBeacon, 10, func([]store.Vote) error { return nil })
	assert.Error(t, err)

	err = env.Store.ScanVotes(ctx, edge.CategoryVoteUser, 0, func([]store.Vote) error { return nil })
	assert.Error(t, err)
}

func TestCountRows(t *testing.T) {
	env := testutil.OpenStore(t, "b1", "c1")
	ctx := context.Background()

	require.NoError(t, env.Store.CreateUser(ctx, "U1"))
	require.NoError(t, env.Store.CreateUser(ctx, "U2"))
	_, err := env.Store.CreateBeacon(ctx, "U1", "")
	require.NoError(t, err)
	_, err = env.Store.CreateComment(ctx, "U2", "b1", "")
	require.NoError(t, err)
	require.NoError(t, env.Store.SetVote(ctx, edge.CategoryVoteUser, "U1", "U2", 1))
	require.NoError(t, env.Store.SetVote(ctx, edge.CategoryVoteBeacon, "U2", "b1", 2))

	counts, err := env.Store.CountRows(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, counts.Users)
	assert.Equal(t, 1, counts.Beacons)
	assert.Equal(t, 1, counts.Comments)
	assert.Equal(t, 1, counts.Votes[edge.CategoryVoteUser])
	assert.Equal(t, 1, counts.Votes[edge.CategoryVoteBeacon])
	assert.Equal(t, 0, counts.Votes[edge.CategoryVoteComment])

	// 2 votes + 2 edges per content row.
	assert.Equal(t, 2+2*2, counts.EdgesExpected())
	assert.Equal(t, counts.EdgesExpected(), env.Engine.TotalEdges())
}
