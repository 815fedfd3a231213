package persist

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"abtsolver/actionmap"
	"abtsolver/model"
	"abtsolver/obsmap"
)

type fmtAction struct{ bin int }

func (a fmtAction) Copy() model.Action       { return a }
func (a fmtAction) Equal(o model.Action) bool { b, ok := o.(fmtAction); return ok && b.bin == a.bin }
func (a fmtAction) Hash() uint64              { return uint64(a.bin) }
func (a fmtAction) String() string            { return "act" }
func (a fmtAction) Bin() int                  { return a.bin }

type fmtObservation struct{ id int }

func (o fmtObservation) Copy() model.Observation { return o }
func (o fmtObservation) Equal(other model.Observation) bool {
	b, ok := other.(fmtObservation)
	return ok && b.id == o.id
}
func (o fmtObservation) Hash() uint64   { return uint64(o.id) }
func (o fmtObservation) String() string { return "obs" }

func TestWriteObservationMappingFormat(t *testing.T) {
	m := obsmap.NewDiscrete()
	m.Visit(fmtObservation{id: 1}, func() int { return 1 })

	var buf bytes.Buffer
	require.NoError(t, WriteObservationMapping(&buf, m))

	out := buf.String()
	require.Contains(t, out, "1 observation children; 1 visits {")
	require.Contains(t, out, "obs -> NODE 1; 1 visits")
	require.True(t, len(out) > 0 && out[len(out)-2] == '}')
}

func TestWriteActionMappingFormat(t *testing.T) {
	m := actionmap.NewDiscretized(func(bin int) model.Action { return fmtAction{bin: bin} }, []int{0})
	a, _ := m.NextActionToTry()
	e := m.Entry(a)
	e.ChildID = 1
	e.VisitCount = 3
	e.TotalQ = 6

	var buf bytes.Buffer
	require.NoError(t, WriteActionMapping(&buf, m))

	out := buf.String()
	require.Contains(t, out, "1 action children; 3 visits {")
	require.Contains(t, out, "q=2")
}
