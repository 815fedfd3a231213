package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"abtsolver/model"
	"abtsolver/persist"
	"abtsolver/session"
)

var (
	planDuration     time.Duration
	planSimulations  int
	planParticles    int
	planExploration  float64
	planHorizon      int
	planTreeOut      string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run a single planning session from the initial belief and print the best action",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().DurationVar(&planDuration, "duration", 0, "wall-clock planning budget (0 disables)")
	planCmd.Flags().IntVar(&planSimulations, "simulations", 1000, "maximum simulation count (0 disables)")
	planCmd.Flags().IntVar(&planParticles, "particles", 100, "initial particle count sampled from the start belief")
	planCmd.Flags().Float64Var(&planExploration, "exploration", 1.0, "UCB1 exploration coefficient")
	planCmd.Flags().IntVar(&planHorizon, "horizon", 100, "maximum simulation depth")
	planCmd.Flags().StringVar(&planTreeOut, "tree-out", "", "if set, write the resulting belief tree to this path")
}

func runPlan(cmd *cobra.Command, args []string) error {
	m, err := buildModel(mapPath, configPath)
	if err != nil {
		return err
	}

	opts := []session.Option{
		session.WithExplorationCoefficient(planExploration),
		session.WithHorizon(planHorizon),
		session.WithMaxSimulations(planSimulations),
	}
	if planDuration > 0 {
		opts = append(opts, session.WithDeadline(time.Now().Add(planDuration)))
	}

	particles := sampleInitialParticles(m, seed, planParticles)
	s := session.NewSession(m, seed, particles, opts...)

	start := time.Now()
	if err := s.Run(); err != nil {
		return fmt.Errorf("abtsolver: planning failed: %w", err)
	}
	elapsed := time.Since(start)

	best := s.BestAction()
	if best == nil {
		return fmt.Errorf("abtsolver: no legal action was ever expanded at the root")
	}
	beliefs, actions := s.Tree().Size()
	log.Info().
		Dur("elapsed", elapsed).
		Int("belief_nodes", beliefs).
		Int("action_nodes", actions).
		Str("best_action", best.Action.String()).
		Float64("best_q", best.MeanQ()).
		Int("best_visits", best.VisitCount).
		Msg("planning finished")

	if planTreeOut != "" {
		if err := writeTree(planTreeOut, s); err != nil {
			return err
		}
	}
	return nil
}

func sampleInitialParticles(m model.Model, seedVal uint64, n int) []model.State {
	rng := newRNG(seedVal)
	particles := make([]model.State, n)
	for i := range particles {
		particles[i] = m.SampleInitialState(rng)
	}
	return particles
}

func writeTree(path string, s *session.Session) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("abtsolver: create tree output: %w", err)
	}
	defer f.Close()
	ac, oc := nav2dCodecs()
	if err := persist.WriteTree(f, s.Tree(), ac, oc); err != nil {
		return fmt.Errorf("abtsolver: write tree: %w", err)
	}
	return nil
}
