package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"abtsolver/mapfile"
	"abtsolver/persist"
	"abtsolver/session"
	"abtsolver/statepool"
)

var (
	playSteps          int
	playDuration       time.Duration
	playSimulations    int
	playParticles      int
	playExploration    float64
	playHorizon        int
	playChangesPath    string
	playTreeOut        string
	playCheckpoint     string
	playCheckpointName string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run the full agent loop: plan, act, observe, advance root, repeat",
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().IntVar(&playSteps, "steps", 20, "number of agent steps to take")
	playCmd.Flags().DurationVar(&playDuration, "duration", 100*time.Millisecond, "per-step wall-clock planning budget")
	playCmd.Flags().IntVar(&playSimulations, "simulations", 0, "per-step simulation cap (0 disables)")
	playCmd.Flags().IntVar(&playParticles, "particles", 200, "initial particle count sampled from the start belief")
	playCmd.Flags().Float64Var(&playExploration, "exploration", 1.0, "UCB1 exploration coefficient")
	playCmd.Flags().IntVar(&playHorizon, "horizon", 100, "maximum simulation depth")
	playCmd.Flags().StringVar(&playChangesPath, "changes", "", "optional changes file applied as the world evolves")
	playCmd.Flags().StringVar(&playTreeOut, "tree-out", "", "if set, write the final belief tree to this path")
	playCmd.Flags().StringVar(&playCheckpoint, "checkpoint", "", "if set, path to a badger directory used to checkpoint the belief tree after every step")
	playCmd.Flags().StringVar(&playCheckpointName, "checkpoint-session", "play", "session id the checkpoint is saved/loaded under")
}

// changeFlagFor maps an area type to the change flag its addition should
// raise on overlapping stored particles, per §4.6's category split.
func changeFlagFor(t mapfile.AreaType) statepool.ChangeFlag {
	switch t {
	case mapfile.Goal:
		return statepool.RewardAfter
	case mapfile.Observation:
		return statepool.ObservationAfter
	default:
		return statepool.Transition
	}
}

func regionsFromBlock(block mapfile.ChangeBlock) []session.Region {
	regions := make([]session.Region, 0, len(block.Ops))
	for _, op := range block.Ops {
		r := op.Area.Rect
		regions = append(regions, session.Region{
			Min:  []float64{r.X0, r.Y0},
			Max:  []float64{r.X1, r.Y1},
			Flag: changeFlagFor(op.Area.Type),
		})
	}
	return regions
}

func runPlay(cmd *cobra.Command, args []string) error {
	m, err := buildModel(mapPath, configPath)
	if err != nil {
		return err
	}

	var changeBlocks []mapfile.ChangeBlock
	if playChangesPath != "" {
		f, err := os.Open(playChangesPath)
		if err != nil {
			return fmt.Errorf("abtsolver: open changes file: %w", err)
		}
		changeBlocks, err = mapfile.ReadChanges(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("abtsolver: parse changes file: %w", err)
		}
	}

	worldRNG := newRNG(seed + 1)
	trueState := m.SampleInitialState(worldRNG)

	particles := sampleInitialParticles(m, seed, playParticles)
	opts := []session.Option{
		session.WithExplorationCoefficient(playExploration),
		session.WithHorizon(playHorizon),
		session.WithMaxSimulations(playSimulations),
	}
	s := session.NewSession(m, seed, particles, opts...)

	var checkpoints *persist.TreeStore
	ac, oc := nav2dCodecs()
	if playCheckpoint != "" {
		checkpoints, err = persist.OpenTreeStore(playCheckpoint)
		if err != nil {
			return fmt.Errorf("abtsolver: open checkpoint store: %w", err)
		}
		defer checkpoints.Close()

		if prev, loadErr := checkpoints.Load(playCheckpointName, m.ActionPool(), m.ObservationPool(), ac, oc); loadErr == nil {
			beliefs, actions := prev.Size()
			log.Info().
				Str("session", playCheckpointName).
				Int("belief_nodes", beliefs).
				Int("action_nodes", actions).
				Msg("found a previous checkpoint (structure only; particle contents are never persisted, so planning still starts from the fresh belief above)")
		}
	}

	totalReward := 0.0
	blockIdx := 0
	for step := 0; step < playSteps; step++ {
		for blockIdx < len(changeBlocks) && changeBlocks[blockIdx].Time <= int64(step) {
			s.ApplyChanges(regionsFromBlock(changeBlocks[blockIdx]))
			blockIdx++
		}

		s.SetDeadline(time.Now().Add(playDuration))
		if err := s.Run(); err != nil {
			return fmt.Errorf("abtsolver: planning failed at step %d: %w", step, err)
		}

		best := s.BestAction()
		if best == nil {
			return fmt.Errorf("abtsolver: no legal action at step %d", step)
		}

		result, err := m.Step(worldRNG, trueState, best.Action)
		if err != nil {
			return fmt.Errorf("abtsolver: world step failed at step %d: %w", step, err)
		}
		totalReward += result.Reward
		trueState = result.NextState

		s.AdvanceToRealObservation(best, result.Observation)

		if checkpoints != nil {
			if err := checkpoints.Save(playCheckpointName, s.Tree(), ac, oc); err != nil {
				return fmt.Errorf("abtsolver: checkpoint save failed at step %d: %w", step, err)
			}
		}

		log.Info().
			Int("step", step).
			Str("action", best.Action.String()).
			Str("observation", result.Observation.String()).
			Float64("reward", result.Reward).
			Float64("total_reward", totalReward).
			Bool("terminal", result.IsTerminal).
			Msg("step")

		if result.IsTerminal {
			log.Info().Int("step", step).Msg("reached a terminal state, stopping")
			break
		}
	}

	if playTreeOut != "" {
		if err := writeTree(playTreeOut, s); err != nil {
			return err
		}
	}
	return nil
}

