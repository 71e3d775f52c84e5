// Package engine defines the narrow boundary to the rank-computation
// engine and provides an in-memory reference implementation.
//
// The synchronization layer never sees inside the engine: everything it
// may do is expressed by the four Adapter operations. Production
// deployments put a remote engine behind this interface; tests and the
// embedded CLI use Memory.
package engine

import (
	"context"

	"github.com/reputel/repgraph/internal/edge"
)

// Adapter is the boundary interface to the rank-computation engine.
//
// Identifiers are opaque strings, already NFC-normalized by the caller
// (see internal/ident). The category argument carries the source
// namespace: the engine keeps at most one edge slot per
// (category, subject, object), mirroring the relational primary keys.
type Adapter interface {
	// Add upserts the directed edge, replacing any existing weight for
	// that pair in that category's namespace. Fails with an
	// InvalidOperand error if subject/object are malformed or the
	// weight is not finite.
	Add(ctx context.Context, category edge.Category, subject, object string, weight float64) error

	// Delete removes the edge if present. Deleting an absent edge is a
	// no-op success.
	Delete(ctx context.Context, category edge.Category, subject, object string) error

	// Clear removes all edges across all namespaces. Used only by the
	// rebuild coordinator.
	Clear(ctx context.Context) error

	// Score returns the rank of object as seen from subject. depth
	// bounds the engine's internal iteration budget. Read-only; an
	// unknown subject or object scores zero.
	Score(ctx context.Context, subject, object string, depth int) (float64, error)
}
