package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"abtsolver/model"
)

// partition is a worker's private slice of the parallel-episode extension
// from §5: its own RNG and its own accumulated backups, merged into the
// shared tree only after every worker has joined.
type partition struct {
	rng     *rand.Rand
	backups []pendingBackup
}

type pendingBackup struct {
	traj []trajStep
	tail float64
}

// RunParallel runs count independent workers, each descending the current
// tree read-only and recording its own trajectory/tail, then merges every
// worker's backups into the shared tree serially. This mirrors the
// goroutine-pool simulation driver used elsewhere in this codebase
// (a fixed worker count, a shared atomic simulation counter checked only
// between simulations, one writer at merge time) while honoring §5's rule
// that shared mutation of node statistics is not permitted during the
// parallel phase itself.
func (s *Session) RunParallel(workers int) error {
	if workers <= 1 {
		return s.Run()
	}

	var remaining int64
	if s.maxSimulations > 0 {
		remaining = int64(s.maxSimulations)
	} else {
		remaining = -1
	}

	partitions := make([]*partition, workers)
	for i := range partitions {
		partitions[i] = &partition{rng: rand.New(rand.NewSource(s.rng.Uint64() + uint64(i)))}
	}

	var wg sync.WaitGroup
	var modelErr atomic.Value
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(p *partition) {
			defer wg.Done()
			for {
				if !s.deadline.IsZero() && time.Now().After(s.deadline) {
					return
				}
				if remaining >= 0 {
					if atomic.AddInt64(&remaining, -1) < 0 {
						return
					}
				}
				traj, tail, err := s.simulateReadOnly(p.rng)
				if err != nil {
					if _, ok := err.(*ModelError); ok {
						log.Error().Err(err).Msg("dropping simulation after model error")
						continue
					}
					modelErr.Store(err)
					return
				}
				p.backups = append(p.backups, pendingBackup{traj: traj, tail: tail})
			}
		}(partitions[i])
	}
	wg.Wait()

	if v := modelErr.Load(); v != nil {
		return v.(error)
	}

	discount := s.model.DiscountFactor()
	for _, p := range partitions {
		for _, b := range p.backups {
			s.merge(b.traj, b.tail, discount)
			s.collector.IncSimulations()
		}
	}
	return nil
}

// simulateReadOnly performs the descent half of simulate() using rng
// instead of the session's shared generator, so concurrent workers never
// contend on randomness state. It still mutates the tree to expand
// unvisited entries and create child nodes — per §5 this is safe because
// node *creation* is monotonic and idempotent-to-read, while the backup
// (Q-statistics) mutation is deferred to the serial merge step.
func (s *Session) simulateReadOnly(rng *rand.Rand) ([]trajStep, float64, error) {
	root := s.tree.Belief(s.tree.RootID)
	if len(root.Particles) == 0 {
		return nil, 0, NewInvariantViolation("root belief has no particles to sample from")
	}
	startID := root.Particles[rng.Intn(len(root.Particles))]
	state, ok := s.pool.Get(startID)
	if !ok {
		return nil, 0, NewInvariantViolation("particle references a state no longer in the pool")
	}

	belief := root
	var traj []trajStep
	terminal := false

	for depth := 0; depth < s.horizon; depth++ {
		entry, err := s.selectEntry(belief)
		if err != nil {
			return nil, 0, err
		}
		actionNode := s.tree.EnsureActionChild(belief.ID, entry)

		result, err := s.model.Step(rng, state, entry.Action)
		if err != nil {
			return nil, 0, NewModelError(err)
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
		} else {
			tail = belief.Value
		}
	}
	return traj, tail, nil
}

// merge applies one worker's trajectory and tail value to the shared tree,
// identical to the tail of simulate()'s backup loop.
func (s *Session) merge(traj []trajStep, tail float64, discount float64) {
	g := tail
	for i := len(traj) - 1; i >= 0; i-- {
		st := traj[i]
		g = st.reward + discount*g
		st.actionNode.ChangeTotalQValue(g, 1)

		parent := s.tree.Belief(st.parentBeliefID)
		parent.Value = bestActionValue(parent)
		parent.VisitCount++
	}
}
