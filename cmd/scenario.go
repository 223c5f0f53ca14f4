package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/ossim/sim/scenario"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Print the built-in demo scenario as YAML",
	Long:  "Print the demo scenario that `ossim run` uses by default. Edit the output and pass it back with --scenario.",
	Run: func(cmd *cobra.Command, args []string) {
		if err := scenario.DefaultSpec().Write(cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Failed to write scenario: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}
