package actionmap

import "abtsolver/model"

// Sampler produces a concrete action for a bin number, provided by the
// action pool that owns this kind of mapping.
type Sampler func(bin int) model.Action

// Discretized is the action mapping variant parameterized by a finite bin
// count B. A bin sequence — the FIFO order bins are offered to
// NextActionToTry — is supplied at construction.
type Discretized struct {
	sample      Sampler
	binSequence []int // remaining untried bins, head first
	entries     map[int]*Entry
	order       []*Entry
	nextOrder   int
}

// NewDiscretized builds an empty discretized mapping. It keeps its own copy
// of binSequence, which NextActionToTry consumes; the caller's slice is
// left unchanged, so one sequence can seed many mappings.
func NewDiscretized(sample Sampler, binSequence []int) *Discretized {
	return &Discretized{
		sample:      sample,
		binSequence: append([]int(nil), binSequence...),
		entries:     make(map[int]*Entry),
	}
}

func (d *Discretized) HasChild(a model.Action) bool {
	b, ok := a.(model.Binned)
	if !ok {
		return false
	}
	e, ok := d.entries[b.Bin()]
	return ok && e.ChildID != 0
}

func (d *Discretized) Entry(a model.Action) *Entry {
	bin := a.(model.Binned).Bin()
	return d.entryForBin(bin, a)
}

func (d *Discretized) entryForBin(bin int, a model.Action) *Entry {
	if e, ok := d.entries[bin]; ok {
		return e
	}
	e := &Entry{Action: a, Bin: bin, Legal: false, order: d.nextOrder}
	d.nextOrder++
	d.entries[bin] = e
	d.order = append(d.order, e)
	return e
}

func (d *Discretized) Entries() []*Entry {
	out := make([]*Entry, 0, len(d.order))
	for _, e := range d.order {
		if e.ChildID != 0 || e.VisitCount > 0 {
			out = append(out, e)
		}
	}
	return out
}

// NextActionToTry pops the head of the bin sequence, samples the
// corresponding action and marks its entry legal and untried. Two
// different actions resolving to the same bin share a mapping entry, so a
// bin already populated by an earlier call (e.g. by Entry) is simply
// marked legal and returned again.
func (d *Discretized) NextActionToTry() (model.Action, bool) {
	if len(d.binSequence) == 0 {
		return nil, false
	}
	bin := d.binSequence[0]
	d.binSequence = d.binSequence[1:]

	a := d.sample(bin)
	e := d.entryForBin(bin, a)
	e.Legal = true
	return a, true
}

func (d *Discretized) TotalVisitCount() int {
	total := 0
	for _, e := range d.order {
		total += e.VisitCount
	}
	return total
}

func (d *Discretized) NumberOfLegalActions() int {
	n := 0
	for _, e := range d.order {
		if e.Legal {
			n++
		}
	}
	return n
}
