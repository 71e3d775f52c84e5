package engine

import (
	"context"
	"math"
	"sync"

	"github.com/reputel/repgraph/internal/edge"
	"github.com/reputel/repgraph/internal/ident"
)

// DefaultDamping is the damping factor for the reference rank walk.
const DefaultDamping = 0.85

// pair is an edge slot key within one namespace.
type pair struct {
	subject string
	object  string
}

// Edge is a materialized edge as held by the reference engine.
// Returned by Edges for status reports and golden dumps.
type Edge struct {
	Category edge.Category
	Subject  string
	Object   string
	Weight   float64
}

// Memory is the in-memory reference implementation of Adapter.
//
// Edges live in per-category maps keyed by (subject, object), matching
// the relational primary keys one-to-one. Scoring walks the union of
// all namespaces; when the same pair appears in several categories the
// weights sum for traversal. That union semantic is a local decision —
// an external engine slotted behind Adapter may treat namespaces
// differently, and callers must confirm before swapping one in.
//
// Thread-safety: all operations take an internal lock. The adapter is
// expected to serialize concurrent mutations to the same edge slot;
// Memory serializes everything, which satisfies that trivially.
type Memory struct {
	mu      sync.RWMutex
	edges   map[edge.Category]map[pair]float64
	damping float64
}

// MemoryOption configures a Memory engine.
type MemoryOption func(*Memory)

// WithDamping overrides the walk damping factor. Values outside (0, 1)
// are ignored.
func WithDamping(d float64) MemoryOption {
	return func(m *Memory) {
		if d > 0 && d < 1 {
			m.damping = d
		}
	}
}

// NewMemory creates an empty reference engine.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		edges:   make(map[edge.Category]map[pair]float64),
		damping: DefaultDamping,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add upserts the directed edge, replacing any existing weight for the
// pair in the category's namespace.
func (m *Memory) Add(ctx context.Context, category edge.Category, subject, object string, weight float64) error {
	if err := validateOperands("add", subject, object); err != nil {
		return err
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return NewInvalidOperand("add", subject, object, "weight is not finite")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.edges[category]
	if !ok {
		ns = make(map[pair]float64)
		m.edges[category] = ns
	}
	ns[pair{subject, object}] = weight
	return nil
}

// Delete removes the edge if present. Absent edges are a no-op success.
func (m *Memory) Delete(ctx context.Context, category edge.Category, subject, object string) error {
	if err := validateOperands("delete", subject, object); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if ns, ok := m.edges[category]; ok {
		delete(ns, pair{subject, object})
	}
	return nil
}

// Clear removes all edges across all namespaces.
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.edges = make(map[edge.Category]map[pair]float64)
	return nil
}

// Score runs the reference rank walk from subject and returns object's
// rank. Unknown subjects or objects score zero; depth bounds the
// iteration budget.
func (m *Memory) Score(ctx context.Context, subject, object string, depth int) (float64, error) {
	if err := validateOperands("score", subject, object); err != nil {
		return 0, err
	}
	if depth <= 0 {
		return 0, NewInvalidOperand("score", subject, object, "depth must be positive")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.walk(subject, object, depth), nil
}

// EdgeCount returns the number of edges in one namespace.
func (m *Memory) EdgeCount(category edge.Category) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.edges[category])
}

// TotalEdges returns the edge count across all namespaces.
func (m *Memory) TotalEdges() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, ns := range m.edges {
		total += len(ns)
	}
	return total
}

// Edges returns every edge across all namespaces. Order is
// unspecified; callers that need determinism sort the result.
func (m *Memory) Edges() []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Edge, 0, 16)
	for category, ns := range m.edges {
		for p, w := range ns {
			out = append(out, Edge{Category: category, Subject: p.subject, Object: p.object, Weight: w})
		}
	}
	return out
}

// Weight looks up a single edge slot. Returns the weight and whether
// the edge exists. Used by tests and the status drift report.
func (m *Memory) Weight(category edge.Category, subject, object string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ns, ok := m.edges[category]
	if !ok {
		return 0, false
	}
	w, ok := ns[pair{subject, object}]
	return w, ok
}

func validateOperands(op, subject, object string) error {
	if err := ident.Validate(subject); err != nil {
		return NewInvalidOperand(op, subject, object, "subject: "+err.Error())
	}
	if err := ident.Validate(object); err != nil {
		return NewInvalidOperand(op, subject, object, "object: "+err.Error())
	}
	return nil
}
