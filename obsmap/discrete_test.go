package obsmap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"abtsolver/model"
)

type mockObservation struct {
	id int
}

func (o mockObservation) Copy() model.Observation       { return o }
func (o mockObservation) Equal(other model.Observation) bool {
	m, ok := other.(mockObservation)
	return ok && m.id == o.id
}
func (o mockObservation) Hash() uint64 { return uint64(o.id) }
func (o mockObservation) String() string { return "obs" }

func TestDiscreteVisitCreatesOnceAndReuses(t *testing.T) {
	d := NewDiscrete()
	nextID := 10

	e1, created1 := d.Visit(mockObservation{id: 1}, func() int { nextID++; return nextID })
	require.True(t, created1)
	require.Equal(t, 1, e1.VisitCount)

	e2, created2 := d.Visit(mockObservation{id: 1}, func() int {
		t.Fatal("create should not be called for an existing exact match")
		return 0
	})
	require.False(t, created2)
	require.Same(t, e1, e2)
	require.Equal(t, 2, e1.VisitCount)
}

func TestDiscreteDistinguishesByEquality(t *testing.T) {
	d := NewDiscrete()
	e1, _ := d.Visit(mockObservation{id: 1}, func() int { return 1 })
	e2, _ := d.Visit(mockObservation{id: 2}, func() int { return 2 })
	require.NotSame(t, e1, e2)
	require.Len(t, d.Entries(), 2)
	require.Equal(t, 2, d.TotalVisitCount())
}
