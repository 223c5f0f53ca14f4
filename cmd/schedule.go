package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/ossim/sim/scenario"
	"github.com/inference-sim/ossim/sim/scheduling"
)

var (
	schedulePolicy     string
	scheduleJobs       []string
	schedulePreemptive bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Serve a job set under FCFS or SRTF",
	Run: func(cmd *cobra.Command, args []string) {
		jobs, err := parseJobs(scheduleJobs)
		if err != nil {
			logrus.Fatalf("Invalid --jobs: %v", err)
		}
		spec := &scenario.Spec{Scheduling: &scenario.SchedulingSpec{
			Policy:     scheduling.Policy(schedulePolicy),
			Preemptive: schedulePreemptive,
			Jobs:       jobs,
		}}
		if err := runSpec(spec, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Scheduling run failed: %v", err)
		}
	},
}

// parseJobs reads "arrival:service" pairs.
func parseJobs(items []string) ([]scheduling.JobSpec, error) {
	jobs := make([]scheduling.JobSpec, 0, len(items))
	for _, item := range items {
		arrival, service, ok := strings.Cut(strings.TrimSpace(item), ":")
		if !ok {
			return nil, fmt.Errorf("job %q: want arrival:service", item)
		}
		a, err := strconv.ParseInt(arrival, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("job %q: arrival: %w", item, err)
		}
		s, err := strconv.ParseInt(service, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("job %q: service: %w", item, err)
		}
		jobs = append(jobs, scheduling.JobSpec{ArrivalTime: a, ServiceTime: s})
	}
	return jobs, nil
}

func init() {
	scheduleCmd.Flags().StringVar(&schedulePolicy, "policy", string(scheduling.FCFS), "Scheduling policy (fcfs, srtf)")
	scheduleCmd.Flags().StringSliceVar(&scheduleJobs, "jobs", []string{"0:8", "1:4", "2:9", "3:5"}, "Comma-separated arrival:service pairs")
	scheduleCmd.Flags().BoolVar(&schedulePreemptive, "preemptive", false, "Preempt the running job when a shorter one arrives (srtf only)")

	rootCmd.AddCommand(scheduleCmd)
}
