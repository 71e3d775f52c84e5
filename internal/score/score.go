// Package score is the read path from graph position to a scalar
// reputation value.
package score

import (
	"context"
	"fmt"

	"github.com/reputel/repgraph/internal/engine"
	"github.com/reputel/repgraph/internal/ident"
	"github.com/reputel/repgraph/internal/metrics"
)

// DefaultDepth bounds the engine's walk budget for score queries.
const DefaultDepth = 200

// View answers point-to-point score queries by delegating to the
// engine adapter. Stateless and uncached; callers needing caching
// compose it externally.
type View struct {
	adapter engine.Adapter
	depth   int
}

// Option configures a View.
type Option func(*View)

// WithDepth overrides the walk depth. Non-positive values are ignored.
func WithDepth(depth int) Option {
	return func(v *View) {
		if depth > 0 {
			v.depth = depth
		}
	}
}

// New creates a View over the given adapter.
func New(adapter engine.Adapter, opts ...Option) *View {
	v := &View{adapter: adapter, depth: DefaultDepth}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// GetScore returns the rank of object as seen from subject.
// Identifiers are normalized at this boundary so queries agree with
// stored edges byte-for-byte.
func (v *View) GetScore(ctx context.Context, subject, object string) (float64, error) {
	subject = ident.Normalize(subject)
	object = ident.Normalize(object)

	s, err := v.adapter.Score(ctx, subject, object, v.depth)
	if err != nil {
		return 0, fmt.Errorf("score (%s -> %s): %w", subject, object, err)
	}
	metrics.ScoreQueries.Inc()
	return s, nil
}
