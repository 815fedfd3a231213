package obsmap

import "abtsolver/model"

// Discrete is the observation mapping variant keyed by hash/equality of the
// observation, per §4.3.
type Discrete struct {
	buckets   map[uint64][]*Entry
	order     []*Entry
	nextOrder int
}

func NewDiscrete() *Discrete {
	return &Discrete{buckets: make(map[uint64][]*Entry)}
}

func (d *Discrete) find(o model.Observation) *Entry {
	for _, e := range d.buckets[o.Hash()] {
		if e.Observation.Equal(o) {
			return e
		}
	}
	return nil
}

func (d *Discrete) Visit(o model.Observation, create CreateChild) (*Entry, bool) {
	if e := d.find(o); e != nil {
		e.VisitCount++
		if e.ChildID == 0 {
			// A repair pass pruned the previous child and reset ChildID to
			// 0 without dropping the entry itself; allocate a fresh one
			// rather than handing back a dangling reference.
			e.ChildID = create()
			return e, true
		}
		return e, false
	}
	e := &Entry{Observation: o, ChildID: create(), VisitCount: 1, order: d.nextOrder}
	d.nextOrder++
	h := o.Hash()
	d.buckets[h] = append(d.buckets[h], e)
	d.order = append(d.order, e)
	return e, true
}

func (d *Discrete) Entries() []*Entry {
	out := make([]*Entry, len(d.order))
	copy(out, d.order)
	return out
}

func (d *Discrete) TotalVisitCount() int {
	total := 0
	for _, e := range d.order {
		total += e.VisitCount
	}
	return total
}
