package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/ossim/sim/paging"
	"github.com/inference-sim/ossim/sim/scenario"
)

var (
	pagingCapacity int
	pagingPolicy   string
	pagingSequence []int
)

var pagingCmd = &cobra.Command{
	Use:   "paging",
	Short: "Replay a page-reference string under FIFO, LRU or Optimal replacement",
	Run: func(cmd *cobra.Command, args []string) {
		spec := &scenario.Spec{Paging: &scenario.PagingSpec{
			Capacity: pagingCapacity,
			Policy:   paging.PolicyKind(pagingPolicy),
			Sequence: pagingSequence,
		}}
		if err := runSpec(spec, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Paging run failed: %v", err)
		}
	},
}

func init() {
	pagingCmd.Flags().IntVar(&pagingCapacity, "capacity", 3, "Number of frames")
	pagingCmd.Flags().StringVar(&pagingPolicy, "policy", string(paging.FIFO), "Replacement policy (fifo, lru, optimal)")
	pagingCmd.Flags().IntSliceVar(&pagingSequence, "sequence", []int{1, 2, 3, 4, 1, 2, 5, 1, 2, 3}, "Comma-separated page reference string")

	rootCmd.AddCommand(pagingCmd)
}
