// Package model defines the interface the search engine calls into: a
// generative model of a POMDP, plus the opaque value capabilities that
// states, actions and observations must provide.
package model

import "golang.org/x/exp/rand"

// State is an opaque environment state. Implementations carry domain data
// (position, orientation, inventory, ...); the engine only ever touches
// states through this capability set.
type State interface {
	Copy() State
	Equal(other State) bool
	Hash() uint64
	String() string
}

// Action is an opaque action value. The discretized and continuous action
// mapping variants add capabilities of their own (Bin, ConstructionData)
// via the optional interfaces below.
type Action interface {
	Copy() Action
	Equal(other Action) bool
	Hash() uint64
	String() string
}

// Binned is implemented by actions used with the discretized action
// mapping.
type Binned interface {
	Bin() int
}

// ConstructionDataProvider is implemented by actions used with the
// continuous action mapping.
type ConstructionDataProvider interface {
	ConstructionData() []float64
}

// Observation is an opaque observation value. Distance is required only by
// the approximate observation mapping.
type Observation interface {
	Copy() Observation
	Equal(other Observation) bool
	Hash() uint64
	String() string
}

// Distancer is implemented by observations used with the approximate
// observation mapping.
type Distancer interface {
	Distance(other Observation) float64
}

// StepResult is the outcome of a single generative draw.
type StepResult struct {
	Action      Action
	NextState   State
	Observation Observation
	Reward      float64
	IsTerminal  bool
}

// Model is the generative model the engine is polymorphic over. The action
// pool and observation pool mentioned by §4.1 are deliberately not part of
// this interface: their concrete mapping types live in the actionmap and
// obsmap packages, which import model for Action/Observation — declaring
// pool accessors here would close an import cycle. Concrete models expose
// them instead through the session.ModelWithPools interface, which embeds
// Model and adds the two pool accessors at the type the engine actually
// needs.
type Model interface {
	// SampleInitialState draws a state from the initial belief.
	SampleInitialState(rng *rand.Rand) State
	// SampleStateUniform draws a state uniformly from the full state
	// space. The session never calls it.
	SampleStateUniform(rng *rand.Rand) State
	IsTerminal(s State) bool

	// Step performs one generative draw: sampling successor state, reward
	// and observation together.
	Step(rng *rand.Rand, s State, a Action) (StepResult, error)
	// GenerateNextState and GenerateObservation are exposed separately for
	// models that can sample them independently of Step.
	GenerateNextState(rng *rand.Rand, s State, a Action) (State, error)
	GenerateObservation(rng *rand.Rand, a Action, next State) (Observation, error)

	// HeuristicValue bootstraps the return of an unexpanded leaf. It may
	// return any finite real; non-finite values are coerced to
	// DefaultValue by the caller.
	HeuristicValue(s State) float64
	// DefaultValue is the return assumed for a trajectory that cannot be
	// evaluated.
	DefaultValue() float64
	DiscountFactor() float64

	// LoadChanges supports mutable worlds; models that never change may
	// return (nil, nil). This interface has no ApplyChanges method: changes
	// are applied to the state pool by session.ApplyChanges, not by the
	// model.
	LoadChanges(path string) ([]int64, error)
}

// FiniteOrDefault coerces a non-finite heuristic estimate to m's default
// value, per the error-handling contract in §4.1 of the specification.
func FiniteOrDefault(m Model, v float64) float64 {
	if v != v || v > 1e308 || v < -1e308 { // NaN or overflowed-to-huge
		return m.DefaultValue()
	}
	return v
}
