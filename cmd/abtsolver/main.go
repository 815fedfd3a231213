package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"abtsolver/internal/logging"
)

var (
	mapPath    string
	configPath string
	seed       uint64
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "abtsolver",
		Short: "An online POMDP belief-tree solver",
		Long: `abtsolver plans over a belief tree built with Monte-Carlo tree
search, keeping the particles of the branch it commits to between planning
calls as the environment changes and real observations arrive.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			logging.Init(level)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&mapPath, "map", "map.txt", "path to the map file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.txt", "path to the key=value config file")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 1, "random seed for the session's explicit RNG")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(benchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("abtsolver exited with an error")
		os.Exit(1)
	}
}
