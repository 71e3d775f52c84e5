// Package harness runs end-to-end synchronization scenarios.
//
// A scenario applies a sequence of relational operations to a fresh
// in-memory store wired to the reference engine, then snapshots the
// resulting edge set. Snapshots are deterministic — fixed content IDs,
// sorted edges — so they compare against golden files.
package harness

import (
	"context"
	"fmt"
	"sort"

	"github.com/reputel/repgraph/internal/edge"
	"github.com/reputel/repgraph/internal/engine"
	"github.com/reputel/repgraph/internal/ident"
	"github.com/reputel/repgraph/internal/rebuild"
	"github.com/reputel/repgraph/internal/router"
	"github.com/reputel/repgraph/internal/score"
	"github.com/reputel/repgraph/internal/store"
)

// EdgeState is one edge in a snapshot, ordered by
// (category, subject, object).
type EdgeState struct {
	Category string  `json:"category"`
	Subject  string  `json:"subject"`
	Object   string  `json:"object"`
	Weight   float64 `json:"weight"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Edges is the final graph state, sorted.
	Edges []EdgeState `json:"edges"`

	// Errors holds assertion failures. Empty means the scenario passed.
	Errors []string `json:"errors,omitempty"`
}

// Pass reports whether every assertion held.
func (r *Result) Pass() bool {
	return len(r.Errors) == 0
}

// Run executes a scenario against a fresh in-memory database and
// reference engine, evaluates its expectations, and returns the final
// edge state.
func Run(scenario *Scenario) (*Result, error) {
	mem := engine.NewMemory()
	rt := router.New(mem)

	st, err := store.Open(":memory:", rt,
		store.WithGenerator(ident.NewFixedGenerator(scenario.ContentIDs...)))
	if err != nil {
		return nil, fmt.Errorf("open scenario store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	for i, step := range scenario.Steps {
		if err := applyStep(ctx, st, rt, step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}

	result := &Result{Edges: snapshotEdges(mem)}
	evaluateExpect(ctx, mem, scenario.Expect, result)
	return result, nil
}

func applyStep(ctx context.Context, st *store.Store, rt *router.Router, step Step) error {
	switch step.Op {
	case "user_add":
		return st.CreateUser(ctx, step.ID)
	case "user_rm":
		return st.DeleteUser(ctx, step.ID)
	case "beacon_add":
		_, err := st.CreateBeacon(ctx, step.Author, step.Title)
		return err
	case "beacon_update":
		return st.UpdateBeacon(ctx, step.ID, step.Title)
	case "beacon_rm":
		return st.DeleteBeacon(ctx, step.ID)
	case "comment_add":
		_, err := st.CreateComment(ctx, step.Author, step.Beacon, step.Body)
		return err
	case "comment_rm":
		return st.DeleteComment(ctx, step.ID)
	case "vote_set":
		cat, err := stepVoteCategory(step.Category)
		if err != nil {
			return err
		}
		return st.SetVote(ctx, cat, step.Subject, step.Object, step.Amount)
	case "vote_rm":
		cat, err := stepVoteCategory(step.Category)
		if err != nil {
			return err
		}
		return st.DeleteVote(ctx, cat, step.Subject, step.Object)
	case "rebuild":
		_, err := rebuild.New(st, rt).Rebuild(ctx)
		return err
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

func stepVoteCategory(name string) (edge.Category, error) {
	switch name {
	case "beacon":
		return edge.CategoryVoteBeacon, nil
	case "comment":
		return edge.CategoryVoteComment, nil
	case "user":
		return edge.CategoryVoteUser, nil
	default:
		return "", fmt.Errorf("unknown vote category %q", name)
	}
}

// snapshotEdges dumps the engine's edge set in deterministic order.
func snapshotEdges(mem *engine.Memory) []EdgeState {
	raw := mem.Edges()
	out := make([]EdgeState, 0, len(raw))
	for _, e := range raw {
		out = append(out, EdgeState{
			Category: string(e.Category),
			Subject:  e.Subject,
			Object:   e.Object,
			Weight:   e.Weight,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		return a.Object < b.Object
	})
	return out
}

func evaluateExpect(ctx context.Context, mem *engine.Memory, expect Expect, result *Result) {
	if expect.Edges != nil && *expect.Edges != len(result.Edges) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("expected %d edges, got %d", *expect.Edges, len(result.Edges)))
	}

	view := score.New(mem)
	for _, sc := range expect.Scores {
		s, err := view.GetScore(ctx, sc.Subject, sc.Object)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("score (%s -> %s): %v", sc.Subject, sc.Object, err))
			continue
		}
		ok := false
		switch sc.Sign {
		case "positive":
			ok = s > 0
		case "zero":
			ok = s == 0
		case "negative":
			ok = s < 0
		}
		if !ok {
			result.Errors = append(result.Errors,
				fmt.Sprintf("score (%s -> %s) = %g, expected %s", sc.Subject, sc.Object, s, sc.Sign))
		}
	}
}
