package obsmap

import "abtsolver/model"

// Approximate is the observation mapping variant parameterized by a
// maximum observation distance dmax, per §4.3. A lookup returns the
// existing edge whose representative observation is closest to the query
// if that distance is <= dmax; otherwise a new edge is created with the
// query as representative. Representatives never migrate once created.
type Approximate struct {
	dmax      float64
	order     []*Entry
	nextOrder int
}

func NewApproximate(dmax float64) *Approximate {
	return &Approximate{dmax: dmax}
}

func (a *Approximate) nearest(o model.Observation) (*Entry, float64) {
	var best *Entry
	bestDist := 0.0
	d, ok := o.(model.Distancer)
	if !ok {
		return nil, 0
	}
	for _, e := range a.order {
		dist := d.Distance(e.Observation)
		if best == nil || dist < bestDist {
			best = e
			bestDist = dist
		}
	}
	return best, bestDist
}

func (a *Approximate) Visit(o model.Observation, create CreateChild) (*Entry, bool) {
	if nearest, dist := a.nearest(o); nearest != nil && dist <= a.dmax {
		nearest.VisitCount++
		if nearest.ChildID == 0 {
			nearest.ChildID = create()
			return nearest, true
		}
		return nearest, false
	}
	e := &Entry{Observation: o, ChildID: create(), VisitCount: 1, order: a.nextOrder}
	a.nextOrder++
	a.order = append(a.order, e)
	return e, true
}

func (a *Approximate) Entries() []*Entry {
	out := make([]*Entry, len(a.order))
	copy(out, a.order)
	return out
}

func (a *Approximate) TotalVisitCount() int {
	total := 0
	for _, e := range a.order {
		total += e.VisitCount
	}
	return total
}
