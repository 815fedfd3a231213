package obsmap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"abtsolver/model"
)

type pointObservation struct {
	x float64
}

func (o pointObservation) Copy() model.Observation { return o }
func (o pointObservation) Equal(other model.Observation) bool {
	p, ok := other.(pointObservation)
	return ok && p.x == o.x
}
func (o pointObservation) Hash() uint64   { return uint64(o.x) }
func (o pointObservation) String() string { return "pt" }
func (o pointObservation) Distance(other model.Observation) float64 {
	p, ok := other.(pointObservation)
	if !ok {
		return math.Inf(1)
	}
	return math.Abs(p.x - o.x)
}

func TestApproximateMergesWithinDmax(t *testing.T) {
	a := NewApproximate(1.0)

	e1, created1 := a.Visit(pointObservation{x: 0}, func() int { return 1 })
	require.True(t, created1)

	e2, created2 := a.Visit(pointObservation{x: 0.5}, func() int {
		t.Fatal("create should not run when an existing representative is within dmax")
		return 0
	})
	require.False(t, created2)
	require.Same(t, e1, e2, "an observation within dmax of an existing representative should merge into it")
	require.Equal(t, 2, e1.VisitCount)
}

func TestApproximateSeparatesBeyondDmax(t *testing.T) {
	a := NewApproximate(1.0)

	a.Visit(pointObservation{x: 0}, func() int { return 1 })
	e2, created2 := a.Visit(pointObservation{x: 5}, func() int { return 2 })
	require.True(t, created2)
	require.Equal(t, 1, e2.VisitCount)
	require.Len(t, a.Entries(), 2)
}

func TestApproximateRepresentativeNeverMigrates(t *testing.T) {
	a := NewApproximate(2.0)

	e1, _ := a.Visit(pointObservation{x: 0}, func() int { return 1 })
	a.Visit(pointObservation{x: 1.5}, func() int { return 2 })

	require.Equal(t, pointObservation{x: 0}, e1.Observation, "the first representative should remain fixed even as later observations merge into it")
}
