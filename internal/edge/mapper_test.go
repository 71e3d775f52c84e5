package edge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_VoteInsert(t *testing.T) {
	ops, err := Map(Event{
		Category:  CategoryVoteUser,
		Kind:      Insert,
		VoteAfter: &VoteRow{Subject: "u1", Object: "u2", Amount: 3},
	})
	require.NoError(t, err)
	require.Len(t, ops, 1)

	assert.Equal(t, OpAdd, ops[0].Kind)
	assert.Equal(t, CategoryVoteUser, ops[0].Category)
	assert.Equal(t, "u1", ops[0].Subject)
	assert.Equal(t, "u2", ops[0].Object)
	assert.Equal(t, 3.0, ops[0].Weight)
}

func TestMap_VoteUpdate_DeleteThenAdd(t *testing.T) {
	ops, err := Map(Event{
		Category:   CategoryVoteBeacon,
		Kind:       Update,
		VoteBefore: &VoteRow{Subject: "A", Object: "B", Amount: 2},
		VoteAfter:  &VoteRow{Subject: "A", Object: "B", Amount: 7},
	})
	require.NoError(t, err)
	require.Len(t, ops, 2)

	assert.Equal(t, OpDelete, ops[0].Kind)
	assert.Equal(t, "A", ops[0].Subject)
	assert.Equal(t, "B", ops[0].Object)

	assert.Equal(t, OpAdd, ops[1].Kind)
	assert.Equal(t, 7.0, ops[1].Weight)
}

func TestMap_VoteUpdate_IdenticalImagesStillEmitsBoth(t *testing.T) {
	row := VoteRow{Subject: "A", Object: "B", Amount: 5}
	ops, err := Map(Event{
		Category:   CategoryVoteComment,
		Kind:       Update,
		VoteBefore: &row,
		VoteAfter:  &row,
	})
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, OpDelete, ops[0].Kind)
	assert.Equal(t, OpAdd, ops[1].Kind)
}

func TestMap_VoteDelete(t *testing.T) {
	ops, err := Map(Event{
		Category:   CategoryVoteComment,
		Kind:       Delete,
		VoteBefore: &VoteRow{Subject: "u1", Object: "c9", Amount: 4},
	})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, OpDelete, ops[0].Kind)
	assert.Equal(t, "u1", ops[0].Subject)
	assert.Equal(t, "c9", ops[0].Object)
}

func TestMap_BeaconInsert_SynthesizesPair(t *testing.T) {
	ops, err := Map(Event{
		Category:     CategoryBeacon,
		Kind:         Insert,
		ContentAfter: &ContentRow{ID: "C", AuthorID: "U"},
	})
	require.NoError(t, err)
	require.Len(t, ops, 2)

	// (content -> author, 1) first, then (author -> content, 10).
	assert.Equal(t, OpAdd, ops[0].Kind)
	assert.Equal(t, "C", ops[0].Subject)
	assert.Equal(t, "U", ops[0].Object)
	assert.Equal(t, 1.0, ops[0].Weight)

	assert.Equal(t, OpAdd, ops[1].Kind)
	assert.Equal(t, "U", ops[1].Subject)
	assert.Equal(t, "C", ops[1].Object)
	assert.Equal(t, 10.0, ops[1].Weight)
}

func TestMap_CommentInsert_UnitWeights(t *testing.T) {
	ops, err := Map(Event{
		Category:     CategoryComment,
		Kind:         Insert,
		ContentAfter: &ContentRow{ID: "X", AuthorID: "U3"},
	})
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, 1.0, ops[0].Weight)
	assert.Equal(t, 1.0, ops[1].Weight)
}

func TestMap_ContentDelete_RemovesBoth(t *testing.T) {
	ops, err := Map(Event{
		Category:      CategoryBeacon,
		Kind:          Delete,
		ContentBefore: &ContentRow{ID: "C", AuthorID: "U"},
	})
	require.NoError(t, err)
	require.Len(t, ops, 2)

	assert.Equal(t, OpDelete, ops[0].Kind)
	assert.Equal(t, "C", ops[0].Subject)
	assert.Equal(t, "U", ops[0].Object)
	assert.Equal(t, OpDelete, ops[1].Kind)
	assert.Equal(t, "U", ops[1].Subject)
	assert.Equal(t, "C", ops[1].Object)
}

func TestMap_ContentUpdate_NoOps(t *testing.T) {
	ops, err := Map(Event{
		Category:      CategoryComment,
		Kind:          Update,
		ContentBefore: &ContentRow{ID: "X", AuthorID: "U"},
		ContentAfter:  &ContentRow{ID: "X", AuthorID: "U"},
	})
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestMap_MissingImage(t *testing.T) {
	_, err := Map(Event{Category: CategoryVoteUser, Kind: Insert})
	assert.Error(t, err)

	_, err = Map(Event{Category: CategoryBeacon, Kind: Delete})
	assert.Error(t, err)
}

func TestMap_IdentityEventsProduceNoOps(t *testing.T) {
	for _, kind := range []Kind{Insert, Update, Delete} {
		ops, err := Map(Event{Category: CategoryUser, Kind: kind, IdentityID: "u1"})
		require.NoError(t, err, "kind %s", kind)
		assert.Empty(t, ops)
	}

	_, err := Map(Event{Category: CategoryUser, Kind: Insert})
	assert.Error(t, err, "missing identity id")
}

func TestMap_UnknownCategory(t *testing.T) {
	_, err := Map(Event{Category: "users", Kind: Insert})
	assert.Error(t, err)
}

func TestOwnershipWeights(t *testing.T) {
	wOut, wIn, err := OwnershipWeights(CategoryBeacon)
	require.NoError(t, err)
	assert.Equal(t, 1.0, wOut)
	assert.Equal(t, 10.0, wIn)

	wOut, wIn, err = OwnershipWeights(CategoryComment)
	require.NoError(t, err)
	assert.Equal(t, 1.0, wOut)
	assert.Equal(t, 1.0, wIn)

	_, _, err = OwnershipWeights(CategoryVoteUser)
	assert.Error(t, err)
}

func TestCategoryPredicates(t *testing.T) {
	for _, c := range VoteCategories() {
		assert.True(t, c.IsVote())
		assert.False(t, c.IsContent())
	}
	for _, c := range ContentCategories() {
		assert.True(t, c.IsContent())
		assert.False(t, c.IsVote())
	}
}
