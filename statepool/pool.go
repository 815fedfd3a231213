// Package statepool implements the state pool of §4.4: an append-only
// store of sampled environment states with a spatial/ordinal index used to
// invalidate affected histories after a model change.
package statepool

import "abtsolver/model"

// ChangeFlag marks which aspect of the dynamics at a stored state has been
// invalidated by a model change, per §4.6.
type ChangeFlag uint8

const (
	Deleted ChangeFlag = 1 << iota
	ObservationBefore
	ObservationAfter
	RewardBefore
	RewardAfter
	Transition
)

func (f ChangeFlag) Has(bit ChangeFlag) bool { return f&bit != 0 }

// Locatable is implemented by states that participate in box queries
// (real-vector states). States that don't implement it are only reachable
// through the discrete fallback bucket.
type Locatable interface {
	Coordinates() []float64
}

// Pool owns State values; particles elsewhere hold only a StateID
// reference into it.
type Pool struct {
	states map[int]model.State
	flags  map[int]ChangeFlag
	nextID int

	index *index
}

func NewPool() *Pool {
	return &Pool{
		states: make(map[int]model.State),
		flags:  make(map[int]ChangeFlag),
		nextID: 1,
		index:  newIndex(),
	}
}

// Add stores s and returns its pool id.
func (p *Pool) Add(s model.State) int {
	id := p.nextID
	p.nextID++
	p.states[id] = s
	if loc, ok := s.(Locatable); ok {
		p.index.insert(id, loc.Coordinates())
	} else {
		p.index.insertDiscrete(id, s.Hash())
	}
	return id
}

// Get returns the state for id. ok is false if the id is unknown (e.g. a
// stale reference kept after a Clear).
func (p *Pool) Get(id int) (model.State, bool) {
	s, ok := p.states[id]
	return s, ok
}

// Flags returns the change flags currently set on id.
func (p *Pool) Flags(id int) ChangeFlag { return p.flags[id] }

// SetFlag ORs flag into id's change flags.
func (p *Pool) SetFlag(id int, flag ChangeFlag) { p.flags[id] |= flag }

// ClearFlag unsets flag on id.
func (p *Pool) ClearFlag(id int, flag ChangeFlag) { p.flags[id] &^= flag }

// QueryBox visits every stored state whose coordinates lie within
// [min, max] (inclusive), calling visit for each. States without
// coordinates (discrete states) are never matched by a box query; use
// QueryDiscrete for those.
func (p *Pool) QueryBox(min, max []float64, visit func(id int)) {
	p.index.queryBox(min, max, visit)
}

// QueryDiscrete visits every stored state whose hash matches h.
func (p *Pool) QueryDiscrete(h uint64, visit func(id int)) {
	p.index.queryDiscrete(h, visit)
}

// Clear empties the pool. Intended for use between independent planning
// episodes that don't need to retain history; the online agent loop
// typically never calls it.
func (p *Pool) Clear() {
	p.states = make(map[int]model.State)
	p.flags = make(map[int]ChangeFlag)
	p.index = newIndex()
}

// Remove deletes id, its flags and its index entry from the pool. The
// session's repair traversal does not call it.
func (p *Pool) Remove(id int) {
	delete(p.states, id)
	delete(p.flags, id)
	p.index.remove(id)
}

// Size returns the number of live states.
func (p *Pool) Size() int { return len(p.states) }
