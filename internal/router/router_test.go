package router_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reputel/repgraph/internal/edge"
	"github.com/reputel/repgraph/internal/engine"
	"github.com/reputel/repgraph/internal/router"
	"github.com/reputel/repgraph/internal/testutil"
)

func TestRoute_VoteInsert(t *testing.T) {
	ctx := context.Background()
	rec := testutil.NewRecording(nil)
	r := router.New(rec)

	err := r.Route(ctx, edge.Event{
		Category:  edge.CategoryVoteUser,
		Kind:      edge.Insert,
		VoteAfter: &edge.VoteRow{Subject: "u1", Object: "u2", Amount: 3},
	})
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "add", calls[0].Op)
	assert.Equal(t, edge.CategoryVoteUser, calls[0].Category)
	assert.Equal(t, 3.0, calls[0].Weight)
}

func TestRoute_VoteUpdate_OrderedDeleteThenAdd(t *testing.T) {
	ctx := context.Background()
	rec := testutil.NewRecording(nil)
	r := router.New(rec)

	err := r.Route(ctx, edge.Event{
		Category:   edge.CategoryVoteBeacon,
		Kind:       edge.Update,
		VoteBefore: &edge.VoteRow{Subject: "A", Object: "B", Amount: 2},
		VoteAfter:  &edge.VoteRow{Subject: "A", Object: "B", Amount: 7},
	})
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "delete", calls[0].Op)
	assert.Equal(t, "add", calls[1].Op)
	assert.Equal(t, 7.0, calls[1].Weight)
}

func TestRoute_ContentInsert_PairOrder(t *testing.T) {
	ctx := context.Background()
	rec := testutil.NewRecording(nil)
	r := router.New(rec)

	err := r.Route(ctx, edge.Event{
		Category:     edge.CategoryBeacon,
		Kind:         edge.Insert,
		ContentAfter: &edge.ContentRow{ID: "C", AuthorID: "U"},
	})
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "C", calls[0].Subject)
	assert.Equal(t, "U", calls[0].Object)
	assert.Equal(t, 1.0, calls[0].Weight)
	assert.Equal(t, "U", calls[1].Subject)
	assert.Equal(t, "C", calls[1].Object)
	assert.Equal(t, 10.0, calls[1].Weight)
}

func TestRoute_StopsOnFirstAdapterError(t *testing.T) {
	ctx := context.Background()
	// Allow exactly one mutation: the second add of the ownership
	// pair must fail and the error must surface.
	failing := testutil.NewFailing(nil, 1)
	rec := testutil.NewRecording(failing)
	r := router.New(rec)

	err := r.Route(ctx, edge.Event{
		Category:     edge.CategoryComment,
		Kind:         edge.Insert,
		ContentAfter: &edge.ContentRow{ID: "X", AuthorID: "U3"},
	})
	require.Error(t, err)
	assert.True(t, engine.IsUnavailable(err))

	// Both calls were attempted (fail-fast stops after the failing
	// one, not before it).
	assert.Len(t, rec.Calls(), 2)
}

func TestRoute_MapperErrorPropagates(t *testing.T) {
	ctx := context.Background()
	rec := testutil.NewRecording(nil)
	r := router.New(rec)

	err := r.Route(ctx, edge.Event{Category: edge.CategoryVoteUser, Kind: edge.Insert})
	require.Error(t, err)
	assert.Empty(t, rec.Calls(), "no adapter call on mapper error")
}

func TestApply_EmptySequence(t *testing.T) {
	r := router.New(testutil.NewRecording(nil))
	assert.NoError(t, r.Apply(context.Background(), nil))
}
