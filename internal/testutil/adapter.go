// Package testutil provides engine-adapter fakes for tests.
//
// The synchronization layer treats the rank engine as an injected
// dependency, so tests substitute these fakes to observe the exact
// operation sequence or to inject failures at chosen points.
package testutil

import (
	"context"
	"sync"

	"github.com/reputel/repgraph/internal/edge"
	"github.com/reputel/repgraph/internal/engine"
)

// Call records one adapter invocation.
type Call struct {
	Op       string // "add", "delete", "clear", "score"
	Category edge.Category
	Subject  string
	Object   string
	Weight   float64
	Depth    int
}

// RecordingAdapter wraps an inner adapter and records every call in
// order. With a nil inner adapter it records against an in-memory
// engine, which is the common case.
type RecordingAdapter struct {
	mu    sync.Mutex
	inner engine.Adapter
	calls []Call
}

// NewRecording creates a RecordingAdapter. inner may be nil, in which
// case a fresh engine.Memory backs the recording.
func NewRecording(inner engine.Adapter) *RecordingAdapter {
	if inner == nil {
		inner = engine.NewMemory()
	}
	return &RecordingAdapter{inner: inner}
}

// Calls returns a copy of the recorded calls in invocation order.
func (a *RecordingAdapter) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Call, len(a.calls))
	copy(out, a.calls)
	return out
}

// Reset clears the recorded calls. The inner adapter is untouched.
func (a *RecordingAdapter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = nil
}

func (a *RecordingAdapter) record(c Call) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, c)
}

func (a *RecordingAdapter) Add(ctx context.Context, category edge.Category, subject, object string, weight float64) error {
	a.record(Call{Op: "add", Category: category, Subject: subject, Object: object, Weight: weight})
	return a.inner.Add(ctx, category, subject, object, weight)
}

func (a *RecordingAdapter) Delete(ctx context.Context, category edge.Category, subject, object string) error {
	a.record(Call{Op: "delete", Category: category, Subject: subject, Object: object})
	return a.inner.Delete(ctx, category, subject, object)
}

func (a *RecordingAdapter) Clear(ctx context.Context) error {
	a.record(Call{Op: "clear"})
	return a.inner.Clear(ctx)
}

func (a *RecordingAdapter) Score(ctx context.Context, subject, object string, depth int) (float64, error) {
	a.record(Call{Op: "score", Subject: subject, Object: object, Depth: depth})
	return a.inner.Score(ctx, subject, object, depth)
}

// FailingAdapter delegates to an inner adapter until its budget of
// successful mutations is spent, then fails every mutation with an
// engine-unavailable error. Score and the read path are unaffected.
//
// A budget of zero fails the first mutation, which is the setup for
// transactional-atomicity tests.
type FailingAdapter struct {
	mu        sync.Mutex
	inner     engine.Adapter
	remaining int
}

// NewFailing creates a FailingAdapter allowing `allow` successful
// mutations before failing. inner may be nil for an in-memory engine.
func NewFailing(inner engine.Adapter, allow int) *FailingAdapter {
	if inner == nil {
		inner = engine.NewMemory()
	}
	return &FailingAdapter{inner: inner, remaining: allow}
}

func (a *FailingAdapter) spend(op string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.remaining <= 0 {
		return engine.NewUnavailable(op, nil)
	}
	a.remaining--
	return nil
}

func (a *FailingAdapter) Add(ctx context.Context, category edge.Category, subject, object string, weight float64) error {
	if err := a.spend("add"); err != nil {
		return err
	}
	return a.inner.Add(ctx, category, subject, object, weight)
}

func (a *FailingAdapter) Delete(ctx context.Context, category edge.Category, subject, object string) error {
	if err := a.spend("delete"); err != nil {
		return err
	}
	return a.inner.Delete(ctx, category, subject, object)
}

func (a *FailingAdapter) Clear(ctx context.Context) error {
	if err := a.spend("clear"); err != nil {
		return err
	}
	return a.inner.Clear(ctx)
}

func (a *FailingAdapter) Score(ctx context.Context, subject, object string, depth int) (float64, error) {
	return a.inner.Score(ctx, subject, object, depth)
}
