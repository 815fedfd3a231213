// Package actionmap implements the action-mapping contract of §4.2: for a
// belief node, the set of tried actions with per-action statistics and
// child action-node pointer. Two variants live here, discretized and
// continuous, behind the shared Mapping interface.
package actionmap

import (
	"math"

	"abtsolver/model"
)

// Entry is a per-action record held by a Mapping. ChildID is the id of the
// action-node child in the belief tree's arena, or 0 if none has been
// created yet (0 is never a valid node id; the tree reserves it as the
// sentinel).
type Entry struct {
	Action     model.Action
	Bin        int // discretized variant only
	ChildID    int
	VisitCount int
	TotalQ     float64
	Legal      bool

	order int // insertion order, used to break UCB ties deterministically
}

// MeanQ returns Σq/n, or -Inf when the entry has never been visited.
func (e *Entry) MeanQ() float64 {
	if e.VisitCount == 0 {
		return math.Inf(-1)
	}
	return e.TotalQ / float64(e.VisitCount)
}

// Mapping is the contract shared by the discretized and continuous action
// mapping variants.
type Mapping interface {
	// HasChild reports whether a has a mapping entry with a child
	// action node.
	HasChild(a model.Action) bool
	// Entry returns the mapping entry for a, creating one (illegal,
	// unvisited) if it doesn't exist yet.
	Entry(a model.Action) *Entry
	// Entries returns every entry that has a child action-node or a
	// nonzero visit count.
	Entries() []*Entry
	// NextActionToTry returns the next untried but promising action, or
	// ok=false once exhausted.
	NextActionToTry() (model.Action, bool)
	// TotalVisitCount sums visit counts across all entries (N for UCB1).
	TotalVisitCount() int
	NumberOfLegalActions() int
}

// Pool is a factory for action mappings, owned by a model per §4.1.
type Pool interface {
	CreateMapping() Mapping
}

// DefaultExplorationCoefficient is the default UCB1 constant c in
// q̄(a) + c·√(ln N / n(a)). Select below takes the coefficient explicitly so
// callers (session) can configure it.
const DefaultExplorationCoefficient = 1.0

// Select runs UCB1 over the legal entries of m that already have a child,
// breaking ties by insertion order. It returns nil if no entry qualifies
// (the caller should fall back to NextActionToTry).
func Select(m Mapping, explorationCoefficient float64) *Entry {
	entries := m.Entries()
	n := m.TotalVisitCount()
	logN := math.Log(float64(n))

	var best *Entry
	bestScore := math.Inf(-1)
	for _, e := range entries {
		if !e.Legal || e.VisitCount == 0 || e.ChildID == 0 {
			continue
		}
		score := e.MeanQ() + explorationCoefficient*math.Sqrt(logN/float64(e.VisitCount))
		if score > bestScore || (score == bestScore && best != nil && e.order < best.order) {
			best = e
			bestScore = score
		}
	}
	return best
}
