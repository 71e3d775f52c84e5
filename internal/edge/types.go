package edge

import "fmt"

// Category identifies a source table, which doubles as the edge
// namespace: the engine keeps at most one edge slot per
// (category, subject, object).
type Category string

const (
	// Vote categories. Each vote table is an independent namespace;
	// the same (subject, object) pair may carry a different weight in
	// each without conflict.
	CategoryVoteBeacon  Category = "vote_beacon"
	CategoryVoteComment Category = "vote_comment"
	CategoryVoteUser    Category = "vote_user"

	// Ownership categories for the two authored-content subtypes.
	CategoryBeacon  Category = "beacon"
	CategoryComment Category = "comment"

	// CategoryUser covers identity rows. Identities produce no edges
	// of their own; the entry exists so the mapper is total over every
	// source table.
	CategoryUser Category = "user"
)

// VoteCategories lists the vote namespaces in a stable order.
// The order is used by rebuild scans and status reports; it is not a
// correctness requirement (namespaces are disjoint).
func VoteCategories() []Category {
	return []Category{CategoryVoteBeacon, CategoryVoteComment, CategoryVoteUser}
}

// ContentCategories lists the authored-content subtypes in a stable order.
func ContentCategories() []Category {
	return []Category{CategoryBeacon, CategoryComment}
}

// IsVote reports whether c is one of the vote namespaces.
func (c Category) IsVote() bool {
	switch c {
	case CategoryVoteBeacon, CategoryVoteComment, CategoryVoteUser:
		return true
	}
	return false
}

// IsContent reports whether c is an authored-content subtype.
func (c Category) IsContent() bool {
	return c == CategoryBeacon || c == CategoryComment
}

// Kind is the relational change kind carried by an event.
type Kind int

const (
	Insert Kind = iota
	Update
	Delete
)

// String returns the change kind name for logs and errors.
func (k Kind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// VoteRow is the row image of a vote table.
type VoteRow struct {
	Subject string
	Object  string
	Amount  float64
}

// ContentRow is the row image of an authored-content table.
// Only the identity and ownership columns participate in the mapping;
// payload columns (title, body) never reach the graph.
type ContentRow struct {
	ID       string
	AuthorID string
}

// Event is a row-level change event with before/after images.
// Exactly one of the image pairs is populated, matching the category:
// vote categories carry VoteBefore/VoteAfter, content categories carry
// ContentBefore/ContentAfter.
type Event struct {
	Category Category
	Kind     Kind

	VoteBefore *VoteRow
	VoteAfter  *VoteRow

	ContentBefore *ContentRow
	ContentAfter  *ContentRow

	// IdentityID is set for CategoryUser events; identity rows have no
	// other mapped columns.
	IdentityID string
}

// OpKind distinguishes the two mutating adapter operations.
type OpKind int

const (
	OpAdd OpKind = iota
	OpDelete
)

// String returns the operation name for logs and metrics labels.
func (k OpKind) String() string {
	if k == OpAdd {
		return "add"
	}
	return "delete"
}

// Op is a single engine-adapter mutation. Ops returned by the mapper
// are applied in order; the router stops on the first adapter error.
type Op struct {
	Kind     OpKind
	Category Category
	Subject  string
	Object   string
	Weight   float64 // meaningful for OpAdd only
}
