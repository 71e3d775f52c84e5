package engine

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// walkEpsilon stops the iteration early once the rank vector is stable.
const walkEpsilon = 1e-12

// walk computes object's personalized rank as seen from subject by
// power iteration over the union of all namespaces. depth bounds the
// number of iterations.
//
// Each step distributes a node's rank across its out-edges in
// proportion to weight (normalized by the sum of absolute out-weights,
// so negative votes propagate negative mass), damped toward the
// subject. Nodes without out-edges let their mass decay, which keeps
// the result bounded.
//
// Callers hold m.mu.
func (m *Memory) walk(subject, object string, depth int) float64 {
	// Union view: weights for the same pair sum across namespaces.
	union := make(map[pair]float64)
	for _, ns := range m.edges {
		for p, w := range ns {
			union[p] += w
		}
	}
	if len(union) == 0 {
		return 0
	}

	index := make(map[string]int)
	intern := func(id string) int {
		i, ok := index[id]
		if !ok {
			i = len(index)
			index[id] = i
		}
		return i
	}
	for p := range union {
		intern(p.subject)
		intern(p.object)
	}

	si, ok := index[subject]
	if !ok {
		return 0
	}
	oi, ok := index[object]
	if !ok {
		return 0
	}

	n := len(index)
	outSum := make([]float64, n)
	for p, w := range union {
		outSum[index[p.subject]] += math.Abs(w)
	}

	rank := make([]float64, n)
	rank[si] = 1
	next := make([]float64, n)

	for i := 0; i < depth; i++ {
		for j := range next {
			next[j] = 0
		}
		for p, w := range union {
			from := index[p.subject]
			if outSum[from] == 0 {
				continue
			}
			next[index[p.object]] += rank[from] * w / outSum[from]
		}
		floats.Scale(m.damping, next)
		next[si] += 1 - m.damping

		if floats.Distance(rank, next, 1) < walkEpsilon {
			rank, next = next, rank
			break
		}
		rank, next = next, rank
	}

	return rank[oi]
}
