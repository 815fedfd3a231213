package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"abtsolver/session"
	"abtsolver/session/metrics"
)

var (
	benchTrials      int
	benchDuration    time.Duration
	benchSimulations int
	benchParticles   int
	benchExploration float64
	benchHorizon     int
	benchWorkers     int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run repeated independent planning sessions and write a CSV summary",
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchTrials, "trials", 10, "number of independent sessions to run")
	benchCmd.Flags().DurationVar(&benchDuration, "duration", 500*time.Millisecond, "wall-clock planning budget per session (0 disables)")
	benchCmd.Flags().IntVar(&benchSimulations, "simulations", 0, "maximum simulation count per session (0 disables)")
	benchCmd.Flags().IntVar(&benchParticles, "particles", 200, "initial particle count per session")
	benchCmd.Flags().Float64Var(&benchExploration, "exploration", 1.0, "UCB1 exploration coefficient")
	benchCmd.Flags().IntVar(&benchHorizon, "horizon", 100, "maximum simulation depth")
	benchCmd.Flags().IntVar(&benchWorkers, "workers", 1, "goroutines per session (1 runs Session.Run serially)")
}

func runBench(cmd *cobra.Command, args []string) error {
	m, err := buildModel(mapPath, configPath)
	if err != nil {
		return err
	}

	writer, err := metrics.NewWriter()
	if err != nil {
		return fmt.Errorf("abtsolver: create metrics writer: %w", err)
	}

	records := make([]metrics.SessionRecord, 0, benchTrials)
	for trial := 0; trial < benchTrials; trial++ {
		trialSeed := seed + uint64(trial)
		particles := sampleInitialParticles(m, trialSeed, benchParticles)
		collector := metrics.New()

		opts := []session.Option{
			session.WithExplorationCoefficient(benchExploration),
			session.WithHorizon(benchHorizon),
			session.WithMaxSimulations(benchSimulations),
			session.WithMetrics(collector),
		}
		if benchDuration > 0 {
			opts = append(opts, session.WithDeadline(time.Now().Add(benchDuration)))
		}

		s := session.NewSession(m, trialSeed, particles, opts...)

		start := time.Now()
		var runErr error
		if benchWorkers > 1 {
			runErr = s.RunParallel(benchWorkers)
		} else {
			runErr = s.Run()
		}
		elapsed := time.Since(start)
		if runErr != nil {
			return fmt.Errorf("abtsolver: trial %d failed: %w", trial, runErr)
		}

		best := s.BestAction()
		bestQ := 0.0
		if best != nil {
			bestQ = best.MeanQ()
		}
		snap := collector.Snapshot()

		records = append(records, metrics.SessionRecord{
			ID:           trial,
			Simulations:  snap.Simulations,
			NodesCreated: snap.NodesCreated,
			BestActionQ:  bestQ,
			Duration:     elapsed,
		})
		log.Info().Int("trial", trial).Int64("simulations", snap.Simulations).Dur("elapsed", elapsed).Msg("trial finished")
	}

	if err := writer.WriteSessionRecords(records); err != nil {
		return fmt.Errorf("abtsolver: write session records: %w", err)
	}
	return nil
}
