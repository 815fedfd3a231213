package actionmap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"abtsolver/model"
)

type mockAction struct {
	bin int
}

func (a mockAction) Copy() model.Action          { return a }
func (a mockAction) Equal(o model.Action) bool    { b, ok := o.(mockAction); return ok && b.bin == a.bin }
func (a mockAction) Hash() uint64                 { return uint64(a.bin) }
func (a mockAction) String() string               { return "bin" }
func (a mockAction) Bin() int                     { return a.bin }

func sampleMock(bin int) model.Action { return mockAction{bin: bin} }

func TestDiscretizedNextActionToTryExhaustsInOrder(t *testing.T) {
	d := NewDiscretized(sampleMock, []int{2, 0, 1})

	a1, ok := d.NextActionToTry()
	require.True(t, ok)
	require.Equal(t, 2, a1.(mockAction).bin, "should offer bins in the supplied sequence order")

	a2, ok := d.NextActionToTry()
	require.True(t, ok)
	require.Equal(t, 0, a2.(mockAction).bin)

	a3, ok := d.NextActionToTry()
	require.True(t, ok)
	require.Equal(t, 1, a3.(mockAction).bin)

	_, ok = d.NextActionToTry()
	require.False(t, ok, "sequence should be exhausted after every bin is offered once")
}

func TestDiscretizedEntryIsSharedAcrossCallers(t *testing.T) {
	d := NewDiscretized(sampleMock, []int{0})

	tried, _ := d.NextActionToTry()
	fromEntry := d.Entry(tried)
	require.True(t, fromEntry.Legal, "entry populated by NextActionToTry should be legal")

	again := d.Entry(mockAction{bin: 0})
	require.Same(t, fromEntry, again, "Entry should return the same record for a bin already seen")
}

func TestDiscretizedEntriesOmitsNeverVisitedBins(t *testing.T) {
	d := NewDiscretized(sampleMock, []int{0, 1})
	require.Empty(t, d.Entries(), "entries with no child and no visits should not be reported")

	a, _ := d.NextActionToTry()
	e := d.Entry(a)
	e.ChildID = 1
	require.Len(t, d.Entries(), 1)
}
