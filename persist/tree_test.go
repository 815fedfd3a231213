package persist

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"abtsolver/actionmap"
	"abtsolver/beliefnode"
	"abtsolver/model"
	"abtsolver/obsmap"
)

type treeAction struct{ bin int }

func (a treeAction) Copy() model.Action       { return a }
func (a treeAction) Equal(o model.Action) bool { b, ok := o.(treeAction); return ok && b.bin == a.bin }
func (a treeAction) Hash() uint64              { return uint64(a.bin) }
func (a treeAction) String() string            { return fmt.Sprintf("bin%d", a.bin) }
func (a treeAction) Bin() int                  { return a.bin }

type treeObservation struct{ id int }

func (o treeObservation) Copy() model.Observation { return o }
func (o treeObservation) Equal(other model.Observation) bool {
	b, ok := other.(treeObservation)
	return ok && b.id == o.id
}
func (o treeObservation) Hash() uint64   { return uint64(o.id) }
func (o treeObservation) String() string { return fmt.Sprintf("obs%d", o.id) }

type treeActionCodec struct{}

func (treeActionCodec) Encode(a model.Action) string { return fmt.Sprintf("%d", a.(treeAction).bin) }
func (treeActionCodec) Decode(s string) (model.Action, error) {
	var bin int
	if _, err := fmt.Sscanf(s, "%d", &bin); err != nil {
		return nil, err
	}
	return treeAction{bin: bin}, nil
}

type treeObservationCodec struct{}

func (treeObservationCodec) Encode(o model.Observation) string {
	return fmt.Sprintf("%d", o.(treeObservation).id)
}
func (treeObservationCodec) Decode(s string) (model.Observation, error) {
	var id int
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return nil, err
	}
	return treeObservation{id: id}, nil
}

type treeActionPool struct{}

func (treeActionPool) CreateMapping() actionmap.Mapping {
	return actionmap.NewDiscretized(func(bin int) model.Action { return treeAction{bin: bin} }, []int{0, 1})
}

type treeObservationPool struct{}

func (treeObservationPool) CreateMapping() obsmap.Mapping { return obsmap.NewDiscrete() }

func buildSampleTree() *beliefnode.Tree {
	tree := beliefnode.NewTree(treeActionPool{}, treeObservationPool{})
	root := tree.Belief(tree.RootID)
	root.AddParticle(-1)
	root.AddParticle(-1)

	entry := root.Actions.Entry(treeAction{bin: 0})
	entry.Legal = true
	entry.VisitCount = 2
	entry.TotalQ = 4

	actionNode := tree.EnsureActionChild(root.ID, entry)
	actionNode.VisitCount = 2
	actionNode.TotalQ = 4

	child, _ := tree.EnsureBeliefChild(actionNode, treeObservation{id: 7})
	child.AddParticle(-1)
	child.VisitCount = 2
	child.Value = 2

	return tree
}

func TestTreeRoundTripPreservesStructureAndCounts(t *testing.T) {
	tree := buildSampleTree()

	var buf bytes.Buffer
	require.NoError(t, WriteTree(&buf, tree, treeActionCodec{}, treeObservationCodec{}))

	loaded, err := ReadTree(&buf, treeActionPool{}, treeObservationPool{}, treeActionCodec{}, treeObservationCodec{})
	require.NoError(t, err)

	origBeliefs, origActions := tree.Size()
	gotBeliefs, gotActions := loaded.Size()
	require.Equal(t, origBeliefs, gotBeliefs)
	require.Equal(t, origActions, gotActions)

	root := loaded.Belief(loaded.RootID)
	require.Len(t, root.Particles, 2, "particle counts must round-trip exactly even though contents are not persisted")

	entries := root.Actions.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, 2, entries[0].VisitCount)
	require.Equal(t, 4.0, entries[0].TotalQ)
	require.NotZero(t, entries[0].ChildID)

	childAction := loaded.Action(entries[0].ChildID)
	require.NotNil(t, childAction)
	require.Equal(t, 2, childAction.VisitCount)

	obsEntries := childAction.Observations.Entries()
	require.Len(t, obsEntries, 1)
	grandchild := loaded.Belief(obsEntries[0].ChildID)
	require.NotNil(t, grandchild)
	require.Equal(t, 2.0, grandchild.Value)
}
