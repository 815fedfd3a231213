package beliefnode

import (
	"abtsolver/actionmap"
	"abtsolver/model"
	"abtsolver/obsmap"
)

// Tree is the arena owning every belief and action node. Id 0 is reserved
// as the "no node" sentinel; real ids start at 1. Freeing a subtree is
// O(visited nodes) and never needs cycle detection since children are
// owned exclusively by their parent entry.
type Tree struct {
	beliefs map[int]*BeliefNode
	actions map[int]*ActionNode
	nextID  int

	RootID int

	actionPool      actionmap.Pool
	observationPool obsmap.Pool
}

func NewTree(actionPool actionmap.Pool, observationPool obsmap.Pool) *Tree {
	t := &Tree{
		beliefs:         make(map[int]*BeliefNode),
		actions:         make(map[int]*ActionNode),
		nextID:          1,
		actionPool:      actionPool,
		observationPool: observationPool,
	}
	t.RootID = t.newBelief(0)
	return t
}

func (t *Tree) allocID() int {
	id := t.nextID
	t.nextID++
	return id
}

func (t *Tree) newBelief(parentActionID int) int {
	id := t.allocID()
	b := &BeliefNode{
		ID:             id,
		ParentActionID: parentActionID,
		Actions:        t.actionPool.CreateMapping(),
	}
	t.beliefs[id] = b
	return id
}

// Belief returns the belief node for id, or nil.
func (t *Tree) Belief(id int) *BeliefNode { return t.beliefs[id] }

// Action returns the action node for id, or nil.
func (t *Tree) Action(id int) *ActionNode { return t.actions[id] }

// EnsureActionChild returns the existing action-node child of entry,
// creating one (with a fresh observation mapping) if entry.ChildID is
// still 0. This is the "expansion" step of §4.5.
func (t *Tree) EnsureActionChild(parentBeliefID int, entry *actionmap.Entry) *ActionNode {
	if entry.ChildID != 0 {
		return t.actions[entry.ChildID]
	}
	id := t.allocID()
	a := &ActionNode{
		ID:             id,
		ParentBeliefID: parentBeliefID,
		Entry:          entry,
		Observations:   t.observationPool.CreateMapping(),
	}
	t.actions[id] = a
	entry.ChildID = id
	return a
}

// EnsureBeliefChild visits o in the action node's observation mapping,
// creating a fresh belief-node child if none qualifies. Returns the child
// belief node and whether it was newly created.
func (t *Tree) EnsureBeliefChild(actionNode *ActionNode, o model.Observation) (*BeliefNode, bool) {
	var newID int
	entry, created := actionNode.Observations.Visit(o, func() int {
		newID = t.newBelief(actionNode.ID)
		return newID
	})
	return t.beliefs[entry.ChildID], created
}

// Prune removes a belief subtree from the arena: the belief node itself,
// every action-node child reachable through its action mapping, and their
// belief-node children, recursively. Called when the agent commits to an
// action-and-observation pair at the root and the sibling subtrees are
// discarded.
func (t *Tree) Prune(beliefID int) {
	b, ok := t.beliefs[beliefID]
	if !ok {
		return
	}
	for _, e := range b.Actions.Entries() {
		if e.ChildID != 0 {
			t.pruneAction(e.ChildID)
		}
	}
	delete(t.beliefs, beliefID)
}

func (t *Tree) pruneAction(actionID int) {
	a, ok := t.actions[actionID]
	if !ok {
		return
	}
	for _, e := range a.Observations.Entries() {
		if e.ChildID != 0 {
			t.Prune(e.ChildID)
		}
	}
	delete(t.actions, actionID)
}

// AdvanceRoot makes newRootID the tree's new root, pruning every other
// subtree reachable from the old root (siblings of the chosen
// action/observation pair). newRootID's ParentActionID is cleared so it is
// recognized as a root for future repair traversals.
func (t *Tree) AdvanceRoot(newRootID int) {
	if newRootID == t.RootID {
		return
	}
	newRoot, ok := t.beliefs[newRootID]
	if !ok {
		return
	}
	oldRootID := t.RootID
	newRoot.ParentActionID = 0
	t.RootID = newRootID
	t.pruneExcept(oldRootID, newRootID)
}

// pruneExcept walks the subtree rooted at beliefID, pruning every child
// subtree except the one leading to keepID.
func (t *Tree) pruneExcept(beliefID, keepID int) {
	if beliefID == keepID {
		return
	}
	b, ok := t.beliefs[beliefID]
	if !ok {
		return
	}
	for _, e := range b.Actions.Entries() {
		if e.ChildID == 0 {
			continue
		}
		if t.actionSubtreeContains(e.ChildID, keepID) {
			t.pruneActionExcept(e.ChildID, keepID)
		} else {
			t.pruneAction(e.ChildID)
		}
	}
	delete(t.beliefs, beliefID)
}

func (t *Tree) pruneActionExcept(actionID, keepID int) {
	a, ok := t.actions[actionID]
	if !ok {
		return
	}
	for _, e := range a.Observations.Entries() {
		if e.ChildID == 0 {
			continue
		}
		if e.ChildID == keepID || t.beliefSubtreeContains(e.ChildID, keepID) {
			t.pruneExcept(e.ChildID, keepID)
		} else {
			t.Prune(e.ChildID)
		}
	}
	delete(t.actions, actionID)
}

func (t *Tree) beliefSubtreeContains(beliefID, targetID int) bool {
	if beliefID == targetID {
		return true
	}
	b, ok := t.beliefs[beliefID]
	if !ok {
		return false
	}
	for _, e := range b.Actions.Entries() {
		if e.ChildID != 0 && t.actionSubtreeContains(e.ChildID, targetID) {
			return true
		}
	}
	return false
}

func (t *Tree) actionSubtreeContains(actionID, targetID int) bool {
	a, ok := t.actions[actionID]
	if !ok {
		return false
	}
	for _, e := range a.Observations.Entries() {
		if e.ChildID != 0 && t.beliefSubtreeContains(e.ChildID, targetID) {
			return true
		}
	}
	return false
}

// ReplaceNodes discards the tree's freshly allocated root and installs a
// fully reconstructed node set in its place, for use by a tree-format
// loader that has already assigned the original ids. nextID must be
// greater than every id present.
func (t *Tree) ReplaceNodes(beliefs map[int]*BeliefNode, actions map[int]*ActionNode, rootID, nextID int) {
	t.beliefs = beliefs
	t.actions = actions
	t.RootID = rootID
	t.nextID = nextID
}

// Size returns the number of belief and action nodes currently live.
func (t *Tree) Size() (beliefs, actions int) {
	return len(t.beliefs), len(t.actions)
}
