package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/ossim/sim/scenario"
)

var (
	mutexActors int
	mutexMode   string
	mutexRounds int
	mutexSteps  int
	mutexSeed   int64
)

var mutexCmd = &cobra.Command{
	Use:   "mutex",
	Short: "Arbitrate a critical section between actors with flags and a turn token",
	Run: func(cmd *cobra.Command, args []string) {
		spec := &scenario.Spec{
			Seed: mutexSeed,
			Mutex: &scenario.MutexSpec{
				Actors: mutexActors,
				Mode:   mutexMode,
				Rounds: mutexRounds,
				Steps:  mutexSteps,
			},
		}
		if err := runSpec(spec, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Mutex run failed: %v", err)
		}
	},
}

func init() {
	mutexCmd.Flags().IntVar(&mutexActors, "actors", 2, "Number of actors")
	mutexCmd.Flags().StringVar(&mutexMode, "mode", scenario.ModeRoundRobin, "Driver mode (round-robin, interleaved)")
	mutexCmd.Flags().IntVar(&mutexRounds, "rounds", 3, "Passes over all actors in round-robin mode")
	mutexCmd.Flags().IntVar(&mutexSteps, "steps", 100, "Random protocol calls in interleaved mode")
	mutexCmd.Flags().Int64Var(&mutexSeed, "seed", 42, "Seed for the interleaved actor picker")

	rootCmd.AddCommand(mutexCmd)
}
