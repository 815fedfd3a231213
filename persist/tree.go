package persist

import (
	"bufio"
	"fmt"
	"io"

	"abtsolver/actionmap"
	"abtsolver/beliefnode"
	"abtsolver/model"
	"abtsolver/obsmap"
)

// ActionCodec and ObservationCodec let a model plug its own opaque Action
// and Observation encoding into the tree serializer, per the capability
// set {serialize} every Action/Observation value must provide.
type ActionCodec interface {
	Encode(a model.Action) string
	Decode(s string) (model.Action, error)
}

type ObservationCodec interface {
	Encode(o model.Observation) string
	Decode(s string) (model.Observation, error)
}

// WriteTree serializes the whole belief tree rooted at tree.RootID. The
// format is line-oriented and nests belief/action node blocks; action and
// observation pools are not persisted (§6) — a fresh one must be supplied
// to ReadTree.
func WriteTree(w io.Writer, tree *beliefnode.Tree, ac ActionCodec, oc ObservationCodec) error {
	bw := bufio.NewWriter(w)
	if err := writeBelief(bw, tree, tree.RootID, ac, oc); err != nil {
		return err
	}
	return bw.Flush()
}

func writeBelief(w *bufio.Writer, tree *beliefnode.Tree, id int, ac ActionCodec, oc ObservationCodec) error {
	b := tree.Belief(id)
	if b == nil {
		return fmt.Errorf("persist: belief node %d missing", id)
	}
	entries := b.Actions.Entries()
	fmt.Fprintf(w, "BELIEF %d %d %.17g %d\n", b.ID, b.VisitCount, b.Value, len(b.Particles))
	fmt.Fprintf(w, "ACTIONS %d\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "ENTRY %t %d %d %.17g %d\n", e.Legal, e.Bin, e.VisitCount, e.TotalQ, e.ChildID)
		fmt.Fprintln(w, ac.Encode(e.Action))
		if e.ChildID != 0 {
			if err := writeAction(w, tree, e.ChildID, ac, oc); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeAction(w *bufio.Writer, tree *beliefnode.Tree, id int, ac ActionCodec, oc ObservationCodec) error {
	a := tree.Action(id)
	if a == nil {
		return fmt.Errorf("persist: action node %d missing", id)
	}
	obsEntries := a.Observations.Entries()
	fmt.Fprintf(w, "ACTIONNODE %d %d %.17g %d\n", a.ID, a.VisitCount, a.TotalQ, len(obsEntries))
	for _, oe := range obsEntries {
		fmt.Fprintf(w, "OBSENTRY %d %d\n", oe.VisitCount, oe.ChildID)
		fmt.Fprintln(w, oc.Encode(oe.Observation))
		if err := writeBelief(w, tree, oe.ChildID, ac, oc); err != nil {
			return err
		}
	}
	return nil
}

// reader is a cursor over the serialized lines, used by ReadTree's
// recursive descent.
type reader struct {
	sc *bufio.Scanner
}

func (r *reader) line() (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return r.sc.Text(), nil
}

// ReadTree reconstructs a belief tree from its serialized form. actionPool
// and observationPool supply fresh mappings for every node exactly as a
// live session would create them; ac/oc decode the opaque Action and
// Observation values. The chooser registry (for continuous action
// mappings) is the caller's responsibility to thread into ac, per §9's
// explicit-registry design note — persist never touches the registry
// directly.
func ReadTree(r io.Reader, actionPool actionmap.Pool, observationPool obsmap.Pool, ac ActionCodec, oc ObservationCodec) (*beliefnode.Tree, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	rd := &reader{sc: sc}

	tree := &treeBuilder{actionPool: actionPool, observationPool: observationPool}
	rootID, err := tree.readBelief(rd, ac, oc)
	if err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	return tree.finish(rootID), nil
}

// treeBuilder accumulates nodes with their original ids before handing
// them to a beliefnode.Tree, since Tree normally allocates ids itself.
type treeBuilder struct {
	actionPool      actionmap.Pool
	observationPool obsmap.Pool
	beliefs         map[int]*beliefnode.BeliefNode
	actions         map[int]*beliefnode.ActionNode
	maxID           int
}

func (tb *treeBuilder) note(id int) {
	if id > tb.maxID {
		tb.maxID = id
	}
}

func (tb *treeBuilder) readBelief(r *reader, ac ActionCodec, oc ObservationCodec) (int, error) {
	if tb.beliefs == nil {
		tb.beliefs = make(map[int]*beliefnode.BeliefNode)
		tb.actions = make(map[int]*beliefnode.ActionNode)
	}
	line, err := r.line()
	if err != nil {
		return 0, err
	}
	var id, visits, particles int
	var value float64
	if _, err := fmt.Sscanf(line, "BELIEF %d %d %g %d", &id, &visits, &value, &particles); err != nil {
		return 0, fmt.Errorf("bad BELIEF line %q: %w", line, err)
	}
	tb.note(id)

	b := &beliefnode.BeliefNode{ID: id, VisitCount: visits, Value: value, Actions: tb.actionPool.CreateMapping()}
	for i := 0; i < particles; i++ {
		b.AddParticle(-1) // state pool contents are not persisted; see format notes
	}
	tb.beliefs[id] = b

	line, err = r.line()
	if err != nil {
		return 0, err
	}
	var nEntries int
	if _, err := fmt.Sscanf(line, "ACTIONS %d", &nEntries); err != nil {
		return 0, fmt.Errorf("bad ACTIONS line %q: %w", line, err)
	}

	for i := 0; i < nEntries; i++ {
		entryLine, err := r.line()
		if err != nil {
			return 0, err
		}
		var legal bool
		var bin, entryVisits, childID int
		var totalQ float64
		if _, err := fmt.Sscanf(entryLine, "ENTRY %t %d %d %g %d", &legal, &bin, &entryVisits, &totalQ, &childID); err != nil {
			return 0, fmt.Errorf("bad ENTRY line %q: %w", entryLine, err)
		}
		actionLine, err := r.line()
		if err != nil {
			return 0, err
		}
		action, err := ac.Decode(actionLine)
		if err != nil {
			return 0, err
		}

		e := b.Actions.Entry(action)
		e.Legal = legal
		e.VisitCount = entryVisits
		e.TotalQ = totalQ
		if bin != 0 {
			e.Bin = bin
		}
		if childID != 0 {
			e.ChildID = childID
			if err := tb.readAction(r, childID, e, ac, oc); err != nil {
				return 0, err
			}
		}
	}
	return id, nil
}

func (tb *treeBuilder) readAction(r *reader, expectID int, entry *actionmap.Entry, ac ActionCodec, oc ObservationCodec) error {
	line, err := r.line()
	if err != nil {
		return err
	}
	var id, visits, nObs int
	var totalQ float64
	if _, err := fmt.Sscanf(line, "ACTIONNODE %d %d %g %d", &id, &visits, &totalQ, &nObs); err != nil {
		return fmt.Errorf("bad ACTIONNODE line %q: %w", line, err)
	}
	tb.note(id)

	a := &beliefnode.ActionNode{
		ID: id, VisitCount: visits, TotalQ: totalQ, Entry: entry,
		Observations: tb.observationPool.CreateMapping(),
	}
	tb.actions[id] = a

	for i := 0; i < nObs; i++ {
		obsLine, err := r.line()
		if err != nil {
			return err
		}
		var obsVisits, childBeliefID int
		if _, err := fmt.Sscanf(obsLine, "OBSENTRY %d %d", &obsVisits, &childBeliefID); err != nil {
			return fmt.Errorf("bad OBSENTRY line %q: %w", obsLine, err)
		}
		obsValLine, err := r.line()
		if err != nil {
			return err
		}
		obs, err := oc.Decode(obsValLine)
		if err != nil {
			return err
		}
		oe, _ := a.Observations.Visit(obs, func() int { return childBeliefID })
		oe.VisitCount = obsVisits

		childID, err := tb.readBelief(r, ac, oc)
		if err != nil {
			return err
		}
		if childID != childBeliefID {
			return fmt.Errorf("persist: belief id mismatch, expected %d got %d", childBeliefID, childID)
		}
	}
	return nil
}

// finish assembles the accumulated nodes into a beliefnode.Tree whose
// internal id counter continues past the highest id seen, so further
// planning after a load allocates fresh, non-colliding ids.
func (tb *treeBuilder) finish(rootID int) *beliefnode.Tree {
	tree := beliefnode.NewTree(tb.actionPool, tb.observationPool)
	tree.ReplaceNodes(tb.beliefs, tb.actions, rootID, tb.maxID+1)
	return tree
}
