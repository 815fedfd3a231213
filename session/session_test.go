package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"abtsolver/actionmap"
	"abtsolver/model"
	"abtsolver/obsmap"
)

// lineState is a 3-point linear world {0,1,2}=={A,B,C}; C is the goal.
type lineState struct{ pos int }

func (s lineState) Copy() model.State       { return s }
func (s lineState) Equal(o model.State) bool { b, ok := o.(lineState); return ok && b.pos == s.pos }
func (s lineState) Hash() uint64             { return uint64(s.pos) }
func (s lineState) String() string           { return fmt.Sprintf("pos%d", s.pos) }

// lineAction is one of STAY(0), LEFT(1), RIGHT(2).
type lineAction struct{ bin int }

func (a lineAction) Copy() model.Action       { return a }
func (a lineAction) Equal(o model.Action) bool { b, ok := o.(lineAction); return ok && b.bin == a.bin }
func (a lineAction) Hash() uint64              { return uint64(a.bin) }
func (a lineAction) String() string            { return fmt.Sprintf("bin%d", a.bin) }
func (a lineAction) Bin() int                  { return a.bin }

type lineObservation struct{ pos int }

func (o lineObservation) Copy() model.Observation { return o }
func (o lineObservation) Equal(other model.Observation) bool {
	b, ok := other.(lineObservation)
	return ok && b.pos == o.pos
}
func (o lineObservation) Hash() uint64   { return uint64(o.pos) }
func (o lineObservation) String() string { return fmt.Sprintf("obs%d", o.pos) }

type lineActionPool struct{}

func (lineActionPool) CreateMapping() actionmap.Mapping {
	sample := func(bin int) model.Action { return lineAction{bin: bin} }
	return actionmap.NewDiscretized(sample, []int{0, 1, 2}) // STAY, LEFT, RIGHT
}

type lineObservationPool struct{}

func (lineObservationPool) CreateMapping() obsmap.Mapping { return obsmap.NewDiscrete() }

// lineModel is a trivial deterministic world, no observation noise, used
// to check that back-propagation produces the analytically correct action
// value for a known shortest path to the goal.
type lineModel struct{}

func (lineModel) SampleInitialState(rng *rand.Rand) model.State { return lineState{pos: 0} }
func (lineModel) SampleStateUniform(rng *rand.Rand) model.State { return lineState{pos: 0} }
func (lineModel) IsTerminal(s model.State) bool                 { return s.(lineState).pos == 2 }

func (lineModel) Step(rng *rand.Rand, s model.State, a model.Action) (model.StepResult, error) {
	st := s.(lineState)
	act := a.(lineAction)
	next := st.pos
	switch act.bin {
	case 1: // LEFT
		if next > 0 {
			next--
		}
	case 2: // RIGHT
		if next < 2 {
			next++
		}
	}
	reward := -1.0
	terminal := false
	if next == 2 {
		reward = 9.0 // step cost folded together with the +10 goal bonus
		terminal = true
	}
	nextState := lineState{pos: next}
	return model.StepResult{
		Action:      a,
		NextState:   nextState,
		Observation: lineObservation{pos: next},
		Reward:      reward,
		IsTerminal:  terminal,
	}, nil
}

func (m lineModel) GenerateNextState(rng *rand.Rand, s model.State, a model.Action) (model.State, error) {
	r, err := m.Step(rng, s, a)
	return r.NextState, err
}

func (m lineModel) GenerateObservation(rng *rand.Rand, a model.Action, next model.State) (model.Observation, error) {
	return lineObservation{pos: next.(lineState).pos}, nil
}

func (lineModel) HeuristicValue(s model.State) float64 { return 0 }
func (lineModel) DefaultValue() float64                 { return -100 }
func (lineModel) DiscountFactor() float64                { return 0.95 }
func (lineModel) LoadChanges(path string) ([]int64, error) { return nil, nil }
func (lineModel) ActionPool() actionmap.Pool                { return lineActionPool{} }
func (lineModel) ObservationPool() obsmap.Pool               { return lineObservationPool{} }

func TestSimulateConvergesToTheAnalyticallyCorrectBestAction(t *testing.T) {
	m := lineModel{}
	particles := make([]model.State, 100)
	for i := range particles {
		particles[i] = lineState{pos: 0}
	}

	s := NewSession(m, 42, particles,
		WithHorizon(6),
		WithMaxSimulations(5000),
		WithExplorationCoefficient(1.0),
	)

	require.NoError(t, s.Run())

	best := s.BestAction()
	require.NotNil(t, best)
	require.Equal(t, 2, best.Action.(lineAction).bin, "RIGHT is the only action that reaches the goal")
	require.InDelta(t, 7.5975, best.MeanQ(), 0.5, "q̄(RIGHT) should be close to -1 + 0.95*9")
}

func TestSimulateErrorsWhenRootHasNoParticles(t *testing.T) {
	m := lineModel{}
	s := NewSession(m, 1, nil, WithMaxSimulations(1))
	err := s.Run()
	require.Error(t, err)
	var inv *InvariantViolation
	require.ErrorAs(t, err, &inv)
}

func TestAdvanceToRealObservationMovesRoot(t *testing.T) {
	m := lineModel{}
	particles := []model.State{lineState{pos: 0}}
	s := NewSession(m, 1, particles, WithMaxSimulations(50), WithHorizon(4))
	require.NoError(t, s.Run())

	best := s.BestAction()
	require.NotNil(t, best)
	oldRoot := s.Tree().RootID

	child := s.AdvanceToRealObservation(best, lineObservation{pos: 1})
	require.NotEqual(t, oldRoot, s.Tree().RootID)
	require.Equal(t, child.ID, s.Tree().RootID)
}
