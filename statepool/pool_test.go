package statepool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"abtsolver/model"
)

type locatableState struct {
	x, y float64
}

func (s locatableState) Copy() model.State          { return s }
func (s locatableState) Equal(o model.State) bool    { b, ok := o.(locatableState); return ok && b == s }
func (s locatableState) Hash() uint64                { return uint64(s.x*1000 + s.y) }
func (s locatableState) String() string              { return "state" }
func (s locatableState) Coordinates() []float64       { return []float64{s.x, s.y} }

type discreteState struct{ id int }

func (s discreteState) Copy() model.State       { return s }
func (s discreteState) Equal(o model.State) bool { b, ok := o.(discreteState); return ok && b.id == s.id }
func (s discreteState) Hash() uint64             { return uint64(s.id) }
func (s discreteState) String() string           { return "discrete" }

func TestQueryBoxFindsOnlyStatesInside(t *testing.T) {
	p := NewPool()
	inside := p.Add(locatableState{x: 1, y: 1})
	outside := p.Add(locatableState{x: 10, y: 10})

	var found []int
	p.QueryBox([]float64{0, 0}, []float64{2, 2}, func(id int) { found = append(found, id) })

	require.Contains(t, found, inside)
	require.NotContains(t, found, outside)
}

func TestSetFlagAndFlags(t *testing.T) {
	p := NewPool()
	id := p.Add(locatableState{x: 0, y: 0})

	require.False(t, p.Flags(id).Has(Deleted))
	p.SetFlag(id, Deleted)
	require.True(t, p.Flags(id).Has(Deleted))
	p.ClearFlag(id, Deleted)
	require.False(t, p.Flags(id).Has(Deleted))
}

func TestQueryBoxIgnoresDiscreteStates(t *testing.T) {
	p := NewPool()
	p.Add(discreteState{id: 1})

	var found []int
	p.QueryBox([]float64{-1e9, -1e9}, []float64{1e9, 1e9}, func(id int) { found = append(found, id) })
	require.Empty(t, found, "a state without Coordinates() must never be matched by a box query")
}

func TestQueryDiscreteFindsByHash(t *testing.T) {
	p := NewPool()
	s := discreteState{id: 7}
	id := p.Add(s)

	var found []int
	p.QueryDiscrete(s.Hash(), func(fid int) { found = append(found, fid) })
	require.Equal(t, []int{id}, found)
}

func TestRemoveDeletesState(t *testing.T) {
	p := NewPool()
	id := p.Add(locatableState{x: 0, y: 0})
	p.Remove(id)

	_, ok := p.Get(id)
	require.False(t, ok)
	require.Equal(t, 0, p.Size())
}
