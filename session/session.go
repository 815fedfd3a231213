// Package session implements the episode simulator, back-propagation and
// change-tracking of §4.5/§4.6, wired into a single-threaded cooperative
// planning session per §5.
package session

import (
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"abtsolver/actionmap"
	"abtsolver/beliefnode"
	"abtsolver/model"
	"abtsolver/obsmap"
	"abtsolver/session/metrics"
	"abtsolver/statepool"
)

// ModelWithPools is the full contract a concrete model implements: the
// generative Model interface, plus the action pool and observation pool
// §4.1 says the model owns. Split out from model.Model itself to avoid an
// import cycle (actionmap/obsmap import model for Action/Observation).
type ModelWithPools interface {
	model.Model
	ActionPool() actionmap.Pool
	ObservationPool() obsmap.Pool
}

// Session owns one belief tree, one state pool and the single explicit
// random generator threaded through every sampling call — no method here
// or in model ever reads package-level math/rand state, per the
// single-threaded-RNG design note.
type Session struct {
	model ModelWithPools
	tree  *beliefnode.Tree
	pool  *statepool.Pool
	rng   *rand.Rand

	explorationCoefficient float64
	horizon                int
	maxSimulations         int
	deadline               time.Time
	collector              metrics.Collector
}

// Option configures a Session, mirroring the functional-options style used
// throughout this codebase's search package.
type Option func(*Session)

func WithExplorationCoefficient(c float64) Option {
	return func(s *Session) { s.explorationCoefficient = c }
}

func WithHorizon(h int) Option {
	return func(s *Session) { s.horizon = h }
}

func WithMaxSimulations(n int) Option {
	return func(s *Session) { s.maxSimulations = n }
}

func WithDeadline(t time.Time) Option {
	return func(s *Session) { s.deadline = t }
}

func WithMetrics(c metrics.Collector) Option {
	return func(s *Session) { s.collector = c }
}

// NewSession builds a session rooted at a fresh belief node with the given
// initial particles already added to the pool.
func NewSession(m ModelWithPools, seed uint64, initialParticles []model.State, opts ...Option) *Session {
	pool := statepool.NewPool()
	tree := beliefnode.NewTree(m.ActionPool(), m.ObservationPool())
	root := tree.Belief(tree.RootID)
	for _, s := range initialParticles {
		root.AddParticle(pool.Add(s))
	}

	s := &Session{
		model:                  m,
		tree:                   tree,
		pool:                   pool,
		rng:                    rand.New(rand.NewSource(seed)),
		explorationCoefficient: actionmap.DefaultExplorationCoefficient,
		horizon:                100,
		maxSimulations:         0,
		collector:              metrics.Dummy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Tree() *beliefnode.Tree { return s.tree }
func (s *Session) Pool() *statepool.Pool  { return s.pool }

// SetDeadline updates the wall-clock cutoff Run checks between
// simulations, letting an online agent loop give each planning call a
// fresh budget without rebuilding the session.
func (s *Session) SetDeadline(t time.Time) { s.deadline = t }

// Run executes simulate() repeatedly until the deadline passes or
// maxSimulations is reached, whichever first. Checks occur only between
// simulations, matching §5's cancellation contract; a deadline expiring
// mid-session always leaves the tree in a state where every invariant in
// §3 holds.
func (s *Session) Run() error {
	count := 0
	for {
		if s.maxSimulations > 0 && count >= s.maxSimulations {
			return nil
		}
		if !s.deadline.IsZero() && time.Now().After(s.deadline) {
			return nil
		}
		if err := s.simulate(); err != nil {
			if _, ok := err.(*ModelError); ok {
				log.Error().Err(err).Msg("dropping simulation after model error")
				count++
				continue
			}
			return err
		}
		count++
		s.collector.IncSimulations()
	}
}

// trajStep records one (belief, action, observation, reward) hop along a
// simulated trajectory, for back-propagation.
type trajStep struct {
	parentBeliefID int
	actionNode     *beliefnode.ActionNode
	reward         float64
}

// simulate performs one pass of §4.5: draw a particle from the root,
// descend the tree using the tree policy until terminal or horizon,
// bootstrap the tail value, and back-propagate discounted returns.
func (s *Session) simulate() error {
	root := s.tree.Belief(s.tree.RootID)
	if len(root.Particles) == 0 {
		return NewInvariantViolation("root belief has no particles to sample from")
	}
	startID := root.Particles[s.rng.Intn(len(root.Particles))]
	state, ok := s.pool.Get(startID)
	if !ok {
		return NewInvariantViolation("particle references a state no longer in the pool")
	}

	belief := root
	var traj []trajStep
	terminal := false

	for depth := 0; depth < s.horizon; depth++ {
		entry, err := s.selectEntry(belief)
		if err != nil {
			return err
		}
		actionNode := s.tree.EnsureActionChild(belief.ID, entry)

		result, err := s.model.Step(s.rng, state, entry.Action)
		if err != nil {
			return NewModelError(err)
		}
		if result.NextState == nil {
			return NewModelError(errors.New("model returned a null next state"))
		}

		childBelief, _ := s.tree.EnsureBeliefChild(actionNode, result.Observation)
		nextStateID := s.pool.Add(result.NextState)
		childBelief.AddParticle(nextStateID)

		traj = append(traj, trajStep{parentBeliefID: belief.ID, actionNode: actionNode, reward: result.Reward})

		if result.IsTerminal {
			terminal = true
			break
		}
		state = result.NextState
		belief = childBelief
	}

	tail := 0.0
	if !terminal {
		if belief.VisitCount == 0 {
			tail = model.FiniteOrDefault(s.model, s.model.HeuristicValue(state))
			belief.Value = tail
		} else {
			tail = belief.Value
		}
	}
	belief.VisitCount++

	discount := s.model.DiscountFactor()
	g := tail
	for i := len(traj) - 1; i >= 0; i-- {
		st := traj[i]
		g = st.reward + discount*g
		st.actionNode.ChangeTotalQValue(g, 1)

		parent := s.tree.Belief(st.parentBeliefID)
		parent.Value = bestActionValue(parent)
		parent.VisitCount++
	}
	return nil
}

// selectEntry implements the action-selection half of §4.2: untried
// actions via NextActionToTry are offered before UCB1 considers visited
// entries.
func (s *Session) selectEntry(belief *beliefnode.BeliefNode) (*actionmap.Entry, error) {
	if a, ok := belief.Actions.NextActionToTry(); ok {
		return belief.Actions.Entry(a), nil
	}
	if e := actionmap.Select(belief.Actions, s.explorationCoefficient); e != nil {
		return e, nil
	}
	return nil, NewInvariantViolation("belief node has no legal action to select")
}

// bestActionValue returns max_a meanQ(a) over belief's visited legal
// entries, the value used to bootstrap the parent action node's backup.
func bestActionValue(belief *beliefnode.BeliefNode) float64 {
	best := math.Inf(-1)
	for _, e := range belief.Actions.Entries() {
		if !e.Legal || e.ChildID == 0 {
			continue
		}
		if q := e.MeanQ(); q > best {
			best = q
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}

// BestAction returns the mapping entry for the highest-mean-Q legal action
// at the root, for the agent's "choose" step.
func (s *Session) BestAction() *actionmap.Entry {
	root := s.tree.Belief(s.tree.RootID)
	var best *actionmap.Entry
	bestQ := math.Inf(-1)
	for _, e := range root.Actions.Entries() {
		if !e.Legal || e.ChildID == 0 {
			continue
		}
		if q := e.MeanQ(); q > bestQ {
			best = e
			bestQ = q
		}
	}
	return best
}
