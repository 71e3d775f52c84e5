package score_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reputel/repgraph/internal/edge"
	"github.com/reputel/repgraph/internal/engine"
	"github.com/reputel/repgraph/internal/score"
	"github.com/reputel/repgraph/internal/testutil"
)

func TestGetScore_UsesFixedDepth(t *testing.T) {
	rec := testutil.NewRecording(nil)
	v := score.New(rec)

	_, err := v.GetScore(context.Background(), "u1", "u2")
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "score", calls[0].Op)
	assert.Equal(t, score.DefaultDepth, calls[0].Depth)
}

func TestGetScore_ReflectsEdgePresence(t *testing.T) {
	mem := engine.NewMemory()
	ctx := context.Background()
	v := score.New(mem)

	s, err := v.GetScore(ctx, "U1", "U2")
	require.NoError(t, err)
	assert.Zero(t, s)

	require.NoError(t, mem.Add(ctx, edge.CategoryVoteUser, "U1", "U2", 3))
	s, err = v.GetScore(ctx, "U1", "U2")
	require.NoError(t, err)
	assert.Positive(t, s)

	require.NoError(t, mem.Delete(ctx, edge.CategoryVoteUser, "U1", "U2"))
	s, err = v.GetScore(ctx, "U1", "U2")
	require.NoError(t, err)
	assert.Zero(t, s)
}

func TestGetScore_NormalizesIdentifiers(t *testing.T) {
	mem := engine.NewMemory()
	ctx := context.Background()

	// Edge stored under the composed form; query uses the decomposed
	// spelling of the same identifier.
	require.NoError(t, mem.Add(ctx, edge.CategoryVoteUser, "ré", "u2", 1))

	v := score.New(mem)
	s, err := v.GetScore(ctx, "re\u0301", "u2")
	require.NoError(t, err)
	assert.Positive(t, s)
}

func TestGetScore_PropagatesInvalidOperand(t *testing.T) {
	v := score.New(engine.NewMemory())
	_, err := v.GetScore(context.Background(), "", "u2")
	require.Error(t, err)
	assert.True(t, engine.IsInvalidOperand(err))
}

func TestGetScore_DepthOverride(t *testing.T) {
	rec := testutil.NewRecording(nil)
	v := score.New(rec, score.WithDepth(10))

	_, err := v.GetScore(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Calls()[0].Depth)
}
