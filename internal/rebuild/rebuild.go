// Package rebuild recovers graph state from the relational system of
// record.
//
// A rebuild clears the engine, then replays every live source row
// through the edge mapper's insert rules. It is the only recovery path
// for drift: the incremental layer never reconciles, it only prevents
// divergence transaction by transaction. Rebuilds run out-of-band,
// independent of any writer transaction, and are not transactional as
// a whole — a crash mid-replay leaves the graph partially populated,
// and the next run always restarts from a fresh clear.
package rebuild

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/reputel/repgraph/internal/edge"
	"github.com/reputel/repgraph/internal/metrics"
	"github.com/reputel/repgraph/internal/router"
	"github.com/reputel/repgraph/internal/store"
)

// DefaultBatchSize is the rebuild scan batch size. Cancellation is
// checked between batches, so the batch size bounds cancellation
// latency.
const DefaultBatchSize = 500

// State is the coordinator's position in the rebuild cycle.
type State int

const (
	Idle State = iota
	Clearing
	Replaying
)

// String returns the state name for logs and status output.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Clearing:
		return "clearing"
	case Replaying:
		return "replaying"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInProgress is returned when Rebuild is invoked while another
// rebuild is still running on the same coordinator.
var ErrInProgress = errors.New("rebuild already in progress")

// InterruptedError reports a rebuild that did not run to completion.
// The graph is in a known-cleared-or-partial state; the next Rebuild
// call restarts from Clearing, never resumes.
type InterruptedError struct {
	State State // state at interruption
	Err   error // cancellation or adapter cause
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("rebuild interrupted while %s: %v", e.State, e.Err)
}

func (e *InterruptedError) Unwrap() error {
	return e.Err
}

// IsInterrupted reports whether err is a rebuild interruption.
func IsInterrupted(err error) bool {
	var ie *InterruptedError
	return errors.As(err, &ie)
}

// Stats summarizes a completed rebuild.
type Stats struct {
	Votes    int           `json:"votes"`    // vote rows replayed
	Content  int           `json:"content"`  // content rows replayed
	Edges    int           `json:"edges"`    // adapter adds issued
	Duration time.Duration `json:"duration"` // wall time
}

// Coordinator owns the Idle → Clearing → Replaying → Idle cycle.
// One rebuild runs at a time per coordinator; a second concurrent
// invocation fails with ErrInProgress rather than queueing.
type Coordinator struct {
	st        *store.Store
	rt        *router.Router
	batchSize int

	mu    sync.Mutex
	state State
	busy  bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithBatchSize overrides the scan batch size. Non-positive values are
// ignored.
func WithBatchSize(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// New creates a Coordinator over the given store and router.
func New(st *store.Store, rt *router.Router, opts ...Option) *Coordinator {
	c := &Coordinator{st: st, rt: rt, batchSize: DefaultBatchSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the coordinator's current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Rebuild clears the engine and replays every live source row through
// the mapper's insert rules: votes across all three categories, then
// content across both subtypes. Order across categories is immaterial;
// edge slots are disjoint per category.
//
// Idempotent and safe to invoke repeatedly. Cancellation via ctx is
// honored between batches and surfaces as an InterruptedError; so does
// any adapter failure mid-replay. After an interruption the graph may
// be partial, and the next call re-clears before replaying.
func (c *Coordinator) Rebuild(ctx context.Context) (Stats, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return Stats{}, ErrInProgress
	}
	c.busy = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.busy = false
		c.state = Idle
		c.mu.Unlock()
	}()

	start := time.Now()
	stats, err := c.run(ctx)
	stats.Duration = time.Since(start)

	switch {
	case err == nil:
		metrics.RebuildRuns.WithLabelValues("ok").Inc()
		slog.Info("rebuild complete",
			"votes", stats.Votes,
			"content", stats.Content,
			"edges", stats.Edges,
			"duration", stats.Duration,
		)
	case IsInterrupted(err) && errors.Is(err, context.Canceled):
		metrics.RebuildRuns.WithLabelValues("interrupted").Inc()
		slog.Warn("rebuild interrupted", "error", err)
	default:
		metrics.RebuildRuns.WithLabelValues("error").Inc()
		slog.Error("rebuild failed", "error", err)
	}
	return stats, err
}

func (c *Coordinator) run(ctx context.Context) (Stats, error) {
	var stats Stats

	c.setState(Clearing)
	if err := c.rt.Adapter().Clear(ctx); err != nil {
		return stats, &InterruptedError{State: Clearing, Err: err}
	}

	c.setState(Replaying)
	for _, cat := range edge.VoteCategories() {
		err := c.st.ScanVotes(ctx, cat, c.batchSize, func(batch []store.Vote) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, v := range batch {
				ops, err := edge.Map(edge.Event{
					Category:  cat,
					Kind:      edge.Insert,
					VoteAfter: &edge.VoteRow{Subject: v.Subject, Object: v.Object, Amount: v.Amount},
				})
				if err != nil {
					return err
				}
				if err := c.rt.Apply(ctx, ops); err != nil {
					return err
				}
				stats.Votes++
				stats.Edges += len(ops)
			}
			return nil
		})
		if err != nil {
			return stats, &InterruptedError{State: Replaying, Err: err}
		}
	}

	for _, cat := range edge.ContentCategories() {
		err := c.st.ScanContent(ctx, cat, c.batchSize, func(batch []store.Content) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, row := range batch {
				ops, err := edge.Map(edge.Event{
					Category:     cat,
					Kind:         edge.Insert,
					ContentAfter: &edge.ContentRow{ID: row.ID, AuthorID: row.AuthorID},
				})
				if err != nil {
					return err
				}
				if err := c.rt.Apply(ctx, ops); err != nil {
					return err
				}
				stats.Content++
				stats.Edges += len(ops)
			}
			return nil
		})
		if err != nil {
			return stats, &InterruptedError{State: Replaying, Err: err}
		}
	}

	return stats, nil
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
