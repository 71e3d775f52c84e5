package edge

import "fmt"

// Ownership edge weights per content subtype. A content row synthesizes
// exactly two edges on creation: (content → author, wOut) and
// (author → content, wIn). The pair is immutable until the row is
// deleted, when both edges go away together.
const (
	beaconOutWeight  = 1.0
	beaconInWeight   = 10.0
	commentOutWeight = 1.0
	commentInWeight  = 1.0
)

// OwnershipWeights returns the (content → author, author → content)
// edge weights for a content subtype.
func OwnershipWeights(c Category) (wOut, wIn float64, err error) {
	switch c {
	case CategoryBeacon:
		return beaconOutWeight, beaconInWeight, nil
	case CategoryComment:
		return commentOutWeight, commentInWeight, nil
	default:
		return 0, 0, fmt.Errorf("category %q has no ownership weights", c)
	}
}

// MapFunc is a pure mapping from a change event to adapter operations.
type MapFunc func(ev Event) ([]Op, error)

type dispatchKey struct {
	category Category
	kind     Kind
}

// dispatch binds each (source category, change kind) pair to its
// mapping function. Identity rows have no entry: they produce no edges
// of their own, and identity deletion reaches the graph through the
// cascaded deletion of dependent rows, each firing its own event.
var dispatch = map[dispatchKey]MapFunc{
	{CategoryVoteBeacon, Insert}:  mapVoteInsert,
	{CategoryVoteBeacon, Update}:  mapVoteUpdate,
	{CategoryVoteBeacon, Delete}:  mapVoteDelete,
	{CategoryVoteComment, Insert}: mapVoteInsert,
	{CategoryVoteComment, Update}: mapVoteUpdate,
	{CategoryVoteComment, Delete}: mapVoteDelete,
	{CategoryVoteUser, Insert}:    mapVoteInsert,
	{CategoryVoteUser, Update}:    mapVoteUpdate,
	{CategoryVoteUser, Delete}:    mapVoteDelete,
	{CategoryBeacon, Insert}:      mapContentInsert,
	{CategoryBeacon, Update}:      mapContentUpdate,
	{CategoryBeacon, Delete}:      mapContentDelete,
	{CategoryComment, Insert}:     mapContentInsert,
	{CategoryComment, Update}:     mapContentUpdate,
	{CategoryComment, Delete}:     mapContentDelete,
	{CategoryUser, Insert}:        mapIdentity,
	{CategoryUser, Update}:        mapIdentity,
	{CategoryUser, Delete}:        mapIdentity,
}

// Map resolves ev through the dispatch table and returns the ordered
// adapter operations to apply. Deterministic and side-effect free.
//
// An unknown (category, kind) pair is a programming error on the
// caller's side and returns an error rather than silently mapping to
// nothing.
func Map(ev Event) ([]Op, error) {
	fn, ok := dispatch[dispatchKey{ev.Category, ev.Kind}]
	if !ok {
		return nil, fmt.Errorf("no mapping for category %q kind %s", ev.Category, ev.Kind)
	}
	return fn(ev)
}

// mapVoteInsert maps a new vote row to a single add.
func mapVoteInsert(ev Event) ([]Op, error) {
	row := ev.VoteAfter
	if row == nil {
		return nil, fmt.Errorf("vote insert on %q missing after image", ev.Category)
	}
	return []Op{
		{Kind: OpAdd, Category: ev.Category, Subject: row.Subject, Object: row.Object, Weight: row.Amount},
	}, nil
}

// mapVoteUpdate maps a vote update to delete(before) followed by
// add(after). This is a full replace, never a weight patch: both calls
// are emitted even when only the amount changed, or when nothing
// changed at all (idempotent, and the simplest form that preserves the
// replace-not-accumulate property when subject or object moved).
func mapVoteUpdate(ev Event) ([]Op, error) {
	if ev.VoteBefore == nil || ev.VoteAfter == nil {
		return nil, fmt.Errorf("vote update on %q missing row image", ev.Category)
	}
	return []Op{
		{Kind: OpDelete, Category: ev.Category, Subject: ev.VoteBefore.Subject, Object: ev.VoteBefore.Object},
		{Kind: OpAdd, Category: ev.Category, Subject: ev.VoteAfter.Subject, Object: ev.VoteAfter.Object, Weight: ev.VoteAfter.Amount},
	}, nil
}

// mapVoteDelete maps a removed vote row to a single delete.
func mapVoteDelete(ev Event) ([]Op, error) {
	row := ev.VoteBefore
	if row == nil {
		return nil, fmt.Errorf("vote delete on %q missing before image", ev.Category)
	}
	return []Op{
		{Kind: OpDelete, Category: ev.Category, Subject: row.Subject, Object: row.Object},
	}, nil
}

// mapContentInsert synthesizes the ownership edge pair for a new
// content row, (content → author) first.
func mapContentInsert(ev Event) ([]Op, error) {
	row := ev.ContentAfter
	if row == nil {
		return nil, fmt.Errorf("content insert on %q missing after image", ev.Category)
	}
	wOut, wIn, err := OwnershipWeights(ev.Category)
	if err != nil {
		return nil, err
	}
	return []Op{
		{Kind: OpAdd, Category: ev.Category, Subject: row.ID, Object: row.AuthorID, Weight: wOut},
		{Kind: OpAdd, Category: ev.Category, Subject: row.AuthorID, Object: row.ID, Weight: wIn},
	}, nil
}

// mapContentUpdate is a no-op: ownership edges are immutable after
// creation. Payload edits never touch the graph.
func mapContentUpdate(ev Event) ([]Op, error) {
	if ev.ContentBefore == nil || ev.ContentAfter == nil {
		return nil, fmt.Errorf("content update on %q missing row image", ev.Category)
	}
	return nil, nil
}

// mapIdentity maps every identity event to nothing. Identity deletion
// reaches the graph through the cascaded deletion of dependent rows,
// each of which fires its own removal event.
func mapIdentity(ev Event) ([]Op, error) {
	if ev.IdentityID == "" {
		return nil, fmt.Errorf("identity %s missing id", ev.Kind)
	}
	return nil, nil
}

// mapContentDelete removes both ownership edges. The two deletes are
// independent once created, so their order is immaterial; the insert
// order is kept for symmetry.
func mapContentDelete(ev Event) ([]Op, error) {
	row := ev.ContentBefore
	if row == nil {
		return nil, fmt.Errorf("content delete on %q missing before image", ev.Category)
	}
	return []Op{
		{Kind: OpDelete, Category: ev.Category, Subject: row.ID, Object: row.AuthorID},
		{Kind: OpDelete, Category: ev.Category, Subject: row.AuthorID, Object: row.ID},
	}, nil
}
