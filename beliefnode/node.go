// Package beliefnode implements the two alternating node kinds of the
// belief tree (§3, §9): belief nodes holding particles and an action
// mapping, and action nodes holding Q-statistics and an observation
// mapping. Nodes live in an arena owned by Tree and are addressed by
// stable integer id; back-references to parents are id-only ("weak"),
// needed only for repair traversals.
package beliefnode

import (
	"math"

	"abtsolver/actionmap"
	"abtsolver/obsmap"
)

// BeliefNode holds particles (state ids in the state pool) and an action
// mapping. Its id is unique and stable for the tree's lifetime.
type BeliefNode struct {
	ID             int
	ParentActionID int // 0 for the tree root
	Actions        actionmap.Mapping
	Particles      []int // state pool ids

	Value      float64
	VisitCount int

	Dirty   bool
	Deleted bool
}

// AddParticle appends a state-pool id to this node's particle set.
func (b *BeliefNode) AddParticle(stateID int) {
	b.Particles = append(b.Particles, stateID)
}

// RemoveParticle removes the first occurrence of stateID, if present.
func (b *BeliefNode) RemoveParticle(stateID int) {
	for i, id := range b.Particles {
		if id == stateID {
			b.Particles = append(b.Particles[:i], b.Particles[i+1:]...)
			return
		}
	}
}

// SequenceCount is the number of particle-sequences currently passing
// through this node — the live weight §4.3 uses when an ancestor action
// node backs up Σq from its children. It is always len(Particles); kept as
// a named accessor so callers state intent rather than reaching into the
// slice directly.
func (b *BeliefNode) SequenceCount() int { return len(b.Particles) }

// ActionNode holds visit count, running total of returns, and an
// observation mapping whose children are belief nodes.
type ActionNode struct {
	ID             int
	ParentBeliefID int
	Entry          *actionmap.Entry // the owning mapping entry in the parent belief
	Observations   obsmap.Mapping

	VisitCount int
	TotalQ     float64
}

// MeanQ returns Σq/n, or -Inf when n == 0, per §4.3.
func (a *ActionNode) MeanQ() float64 {
	if a.VisitCount == 0 {
		return math.Inf(-1)
	}
	return a.TotalQ / float64(a.VisitCount)
}

// ChangeTotalQValue applies an incremental delta to Σq and n, matching the
// original solver's ActionNode::changeTotalQValue.
func (a *ActionNode) ChangeTotalQValue(deltaQ float64, deltaNParticles int) {
	a.TotalQ += deltaQ
	a.VisitCount += deltaNParticles
	if a.Entry != nil {
		a.Entry.TotalQ = a.TotalQ
		a.Entry.VisitCount = a.VisitCount
	}
}
