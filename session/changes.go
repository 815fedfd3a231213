package session

import (
	"github.com/rs/zerolog/log"

	"abtsolver/actionmap"
	"abtsolver/beliefnode"
	"abtsolver/model"
	"abtsolver/statepool"
)

// Region is one axis-aligned box of a change and the flag it raises on the
// stored states inside it.
type Region struct {
	Min, Max []float64
	Flag     statepool.ChangeFlag
}

// ApplyChanges flags every stored state inside each of regions with that
// region's flag, then walks the belief tree root-first to mark and repair
// affected subtrees, per §4.6. The driver builds regions from the blocks
// the mapfile changes reader returns.
func (s *Session) ApplyChanges(regions []Region) {
	for _, r := range regions {
		s.pool.QueryBox(r.Min, r.Max, func(id int) {
			s.pool.SetFlag(id, r.Flag)
		})
	}
	s.repair(s.tree.Belief(s.tree.RootID))
}

// AdvanceToRealObservation commits to entry at the root, locates or
// creates the belief child for the true observation received from the
// environment, and advances the tree root to it, pruning the discarded
// siblings. This is the agent loop's "advance root" step.
func (s *Session) AdvanceToRealObservation(entry *actionmap.Entry, observation model.Observation) *beliefnode.BeliefNode {
	root := s.tree.Belief(s.tree.RootID)
	actionNode := s.tree.EnsureActionChild(root.ID, entry)
	child, _ := s.tree.EnsureBeliefChild(actionNode, observation)
	s.tree.AdvanceRoot(child.ID)
	return child
}

// repair performs the dirty-subtree recompute of §4.6: deleted-state
// particles are pruned, nodes left with zero particles are pruned
// entirely, and surviving dirty nodes have their Q recomputed from their
// children using the same incremental formula as §4.3 but with Δn=0.
func (s *Session) repair(belief *beliefnode.BeliefNode) {
	dirty := s.pruneDeletedParticles(belief)

	if len(belief.Particles) == 0 {
		belief.Deleted = true
		return
	}

	for _, e := range belief.Actions.Entries() {
		if e.ChildID == 0 {
			continue
		}
		actionNode := s.tree.Action(e.ChildID)
		if actionNode == nil {
			continue
		}
		childDirty := false
		for _, oe := range actionNode.Observations.Entries() {
			if oe.ChildID == 0 {
				continue
			}
			childBelief := s.tree.Belief(oe.ChildID)
			if childBelief == nil {
				continue
			}
			before := childBelief.SequenceCount()
			s.repair(childBelief)
			after := childBelief.SequenceCount()
			if after != before {
				// Keep the edge's visit count in lockstep with the particle
				// count it is supposed to track (invariant 3): simulate()
				// grows both by one per pass, but a repair pass only ever
				// shrinks the child, so only the removed share is credited
				// back here.
				oe.VisitCount -= before - after
				childDirty = true
			}
			if childBelief.Deleted {
				// §4.6: a node left with zero particles is pruned, not just
				// flagged — free it from the arena and clear the edge so a
				// future EnsureBeliefChild for this observation allocates a
				// fresh node instead of silently reviving the stale one.
				s.tree.Prune(childBelief.ID)
				oe.ChildID = 0
				childDirty = true
			}
		}
		if childDirty || dirty {
			s.recomputeActionQ(actionNode)
			log.Debug().Int("action_node", actionNode.ID).Msg("recomputed Q after change")
		}
	}
	belief.Value = bestActionValue(belief)
}

// recomputeActionQ recomputes an action node's Σq from its observation
// mapping's current children, per invariant 3: Σq = Σ (childQ · sequence
// count), weighted by each child's *live* particle count rather than the
// edge's visit count — a belief left with zero particles by a repair pass
// must stop contributing to its parent's Σq even though it was visited
// while still alive. n is left untouched (Δn=0 for a repair pass).
func (s *Session) recomputeActionQ(actionNode *beliefnode.ActionNode) {
	discount := s.model.DiscountFactor()
	total := 0.0
	for _, oe := range actionNode.Observations.Entries() {
		if oe.ChildID == 0 {
			continue
		}
		child := s.tree.Belief(oe.ChildID)
		if child == nil {
			continue
		}
		total += float64(child.SequenceCount()) * discount * child.Value
	}
	actionNode.TotalQ = total
	if actionNode.Entry != nil {
		actionNode.Entry.TotalQ = total
	}
}

// pruneDeletedParticles removes every particle referencing a
// Deleted-flagged state and reports whether anything changed.
func (s *Session) pruneDeletedParticles(belief *beliefnode.BeliefNode) bool {
	changed := false
	kept := belief.Particles[:0:0]
	for _, id := range belief.Particles {
		if s.pool.Flags(id).Has(statepool.Deleted) {
			changed = true
			continue
		}
		kept = append(kept, id)
	}
	belief.Particles = kept
	return changed
}
