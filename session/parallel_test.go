package session

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"abtsolver/model"
)

func TestRunParallelConvergesToTheSameBestAction(t *testing.T) {
	m := lineModel{}
	particles := make([]model.State, 0, 100)
	for i := 0; i < 100; i++ {
		particles = append(particles, lineState{pos: 0})
	}

	s := NewSession(m, 7, particles,
		WithHorizon(6),
		WithMaxSimulations(4000),
		WithExplorationCoefficient(1.0),
	)

	require.NoError(t, s.RunParallel(4))

	best := s.BestAction()
	require.NotNil(t, best)
	require.Equal(t, 2, best.Action.(lineAction).bin, "RIGHT remains the only action that reaches the goal")
	require.InDelta(t, 7.5975, best.MeanQ(), 0.75, "parallel merge should settle near the analytically correct value")
}

func TestRunParallelWithOneWorkerDelegatesToRun(t *testing.T) {
	m := lineModel{}
	s := NewSession(m, 3, []model.State{lineState{pos: 0}}, WithMaxSimulations(20))
	require.NoError(t, s.RunParallel(1))
	require.NotNil(t, s.BestAction())
}

func TestSimulateReadOnlyNeverTouchesTheSharedRNG(t *testing.T) {
	m := lineModel{}
	s := NewSession(m, 9, []model.State{lineState{pos: 0}}, WithHorizon(4))
	sharedBefore := s.rng

	workerRNG := rand.New(rand.NewSource(123))
	_, _, err := s.simulateReadOnly(workerRNG)
	require.NoError(t, err)
	require.Same(t, sharedBefore, s.rng, "simulateReadOnly must draw only from the worker-local generator passed in, never the session's shared one")
}
