package statepool

import "sort"

// index is a sorted-interval spatial index for low-dimensional real-vector
// states (binary search on the first coordinate, linear filter on the
// rest — sub-linear for the typical case of a handful of change regions
// against many states clustered along one axis) plus a hash bucket for
// discrete enumerated states. No third-party R-tree library exists
// anywhere in the reference corpus this module was grounded on; see
// DESIGN.md for the full justification. §4.4 itself allows this fallback
// explicitly for low-dimensional and enumerated state spaces.
type index struct {
	entries   []coordEntry // sorted by entries[i].coords[0]
	sorted    bool
	discrete  map[uint64][]int
	positions map[int]int // id -> index into entries, for remove
}

type coordEntry struct {
	id     int
	coords []float64
}

func newIndex() *index {
	return &index{discrete: make(map[uint64][]int), positions: make(map[int]int)}
}

func (ix *index) insert(id int, coords []float64) {
	ix.entries = append(ix.entries, coordEntry{id: id, coords: coords})
	ix.sorted = false
}

func (ix *index) insertDiscrete(id int, h uint64) {
	ix.discrete[h] = append(ix.discrete[h], id)
}

func (ix *index) ensureSorted() {
	if ix.sorted {
		return
	}
	sort.Slice(ix.entries, func(i, j int) bool {
		return ix.entries[i].coords[0] < ix.entries[j].coords[0]
	})
	ix.positions = make(map[int]int, len(ix.entries))
	for i, e := range ix.entries {
		ix.positions[e.id] = i
	}
	ix.sorted = true
}

func (ix *index) queryBox(min, max []float64, visit func(id int)) {
	ix.ensureSorted()
	lo := sort.Search(len(ix.entries), func(i int) bool { return ix.entries[i].coords[0] >= min[0] })
	for i := lo; i < len(ix.entries) && ix.entries[i].coords[0] <= max[0]; i++ {
		e := ix.entries[i]
		if inBox(e.coords, min, max) {
			visit(e.id)
		}
	}
}

func inBox(coords, min, max []float64) bool {
	for d := 0; d < len(coords) && d < len(min) && d < len(max); d++ {
		if coords[d] < min[d] || coords[d] > max[d] {
			return false
		}
	}
	return true
}

func (ix *index) queryDiscrete(h uint64, visit func(id int)) {
	for _, id := range ix.discrete[h] {
		visit(id)
	}
}

func (ix *index) remove(id int) {
	if pos, ok := ix.positions[id]; ok && ix.sorted {
		ix.entries = append(ix.entries[:pos], ix.entries[pos+1:]...)
		ix.sorted = false
		delete(ix.positions, id)
		return
	}
	for i, e := range ix.entries {
		if e.id == id {
			ix.entries = append(ix.entries[:i], ix.entries[i+1:]...)
			ix.sorted = false
			break
		}
	}
	for h, ids := range ix.discrete {
		for i, existing := range ids {
			if existing == id {
				ix.discrete[h] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}
}
