// Package router executes the graph side effects of relational row
// changes.
//
// A Router is bound to one engine adapter. Store write paths call
// Route with a row change event while the row's transaction is still
// open: the mapper's operations run synchronously, in order, and the
// first adapter error propagates back so the caller rolls the
// relational write back with it. The router never alters the
// relational outcome — it only piggybacks graph mutation.
package router

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reputel/repgraph/internal/edge"
	"github.com/reputel/repgraph/internal/engine"
	"github.com/reputel/repgraph/internal/metrics"
)

// Router forwards mapped edge operations to the engine adapter.
type Router struct {
	adapter engine.Adapter
}

// New creates a Router bound to the given adapter.
func New(adapter engine.Adapter) *Router {
	return &Router{adapter: adapter}
}

// Adapter returns the bound engine adapter.
func (r *Router) Adapter() engine.Adapter {
	return r.adapter
}

// Route maps ev and applies the resulting operations fail-fast.
//
// On adapter failure the error is returned immediately; operations
// already applied in this sequence are not compensated. The caller
// aborts its transaction, which restores relational state; any graph
// skew left behind is the transient divergence the rebuild path
// recovers from.
func (r *Router) Route(ctx context.Context, ev edge.Event) error {
	ops, err := edge.Map(ev)
	if err != nil {
		return fmt.Errorf("map %s %s: %w", ev.Category, ev.Kind, err)
	}
	return r.Apply(ctx, ops)
}

// Apply executes a pre-mapped operation sequence fail-fast.
// Used directly by the rebuild coordinator, which batches its own
// mapping.
func (r *Router) Apply(ctx context.Context, ops []edge.Op) error {
	for _, op := range ops {
		if err := r.apply(ctx, op); err != nil {
			metrics.AdapterErrors.WithLabelValues(op.Kind.String()).Inc()
			return err
		}
		metrics.AdapterOps.WithLabelValues(op.Kind.String(), string(op.Category)).Inc()
	}
	return nil
}

func (r *Router) apply(ctx context.Context, op edge.Op) error {
	switch op.Kind {
	case edge.OpAdd:
		if err := r.adapter.Add(ctx, op.Category, op.Subject, op.Object, op.Weight); err != nil {
			return fmt.Errorf("add %s (%s -> %s): %w", op.Category, op.Subject, op.Object, err)
		}
		slog.Debug("edge added",
			"category", op.Category,
			"subject", op.Subject,
			"object", op.Object,
			"weight", op.Weight,
		)
		return nil

	case edge.OpDelete:
		if err := r.adapter.Delete(ctx, op.Category, op.Subject, op.Object); err != nil {
			return fmt.Errorf("delete %s (%s -> %s): %w", op.Category, op.Subject, op.Object, err)
		}
		slog.Debug("edge deleted",
			"category", op.Category,
			"subject", op.Subject,
			"object", op.Object,
		)
		return nil

	default:
		return fmt.Errorf("unknown op kind %d", op.Kind)
	}
}
