package scenario

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/ossim/sim"
	"github.com/inference-sim/ossim/sim/scheduling"
)

// SchedulingResult is the outcome of one scheduling run.
type SchedulingResult struct {
	Policy        scheduling.Policy
	Preemptive    bool
	Jobs          []scheduling.Job // final job records, input order
	Order         []int            // job IDs in completion order
	Preemptions   int
	AvgWaiting    float64
	AvgTurnaround float64
	Makespan      int64 // completion time of the last job
	WaitingP50    float64
	WaitingP90    float64
	WaitingMax    int64
}

// RunScheduling serves every job on a fresh engine. The driver jumps the
// clock from one decision point to the next: a completion, or with
// preemption enabled, an arrival that makes a waiting job shorter than the
// one in service.
func RunScheduling(policy scheduling.Policy, preemptive bool, jobs []scheduling.JobSpec, sink sim.EventSink) (*SchedulingResult, error) {
	e, err := scheduling.NewEngine(policy, sink)
	if err != nil {
		return nil, err
	}
	if err := e.LoadJobs(jobs); err != nil {
		return nil, err
	}
	arrivals := distinctArrivals(jobs)

	res := &SchedulingResult{Policy: policy, Preemptive: preemptive}
	var now int64
	for e.Completed() < len(jobs) {
		if _, err := e.Dispatch(now); err != nil {
			return nil, fmt.Errorf("dispatch at %d: %w", now, err)
		}
		cur, _ := e.Current()
		finish := cur.StartTime + cur.RemainingTime

		preempted := false
		if preemptive {
			for _, t := range arrivals {
				if t <= cur.StartTime || t >= finish {
					continue
				}
				if e.Preemptable(t) {
					if _, err := e.Preempt(t); err != nil {
						return nil, fmt.Errorf("preempt at %d: %w", t, err)
					}
					res.Preemptions++
					now = t
					preempted = true
					break
				}
			}
		}
		if preempted {
			continue
		}

		done, err := e.Complete(finish)
		if err != nil {
			return nil, fmt.Errorf("complete at %d: %w", finish, err)
		}
		res.Order = append(res.Order, done.ID)
		now = finish
	}

	res.Jobs = e.Jobs()
	res.AvgWaiting, res.AvgTurnaround = e.Averages()
	res.Makespan = now
	waits := make([]int64, len(res.Jobs))
	for i, j := range res.Jobs {
		waits[i] = j.WaitingTime
		res.WaitingMax = max(res.WaitingMax, j.WaitingTime)
	}
	res.WaitingP50 = sim.CalculatePercentile(waits, 50)
	res.WaitingP90 = sim.CalculatePercentile(waits, 90)
	logrus.Infof("scheduling: policy=%s preemptive=%v avg_waiting=%.2f avg_turnaround=%.2f",
		policy, preemptive, res.AvgWaiting, res.AvgTurnaround)
	return res, nil
}

func distinctArrivals(jobs []scheduling.JobSpec) []int64 {
	seen := make(map[int64]bool, len(jobs))
	var out []int64
	for _, j := range jobs {
		if !seen[j.ArrivalTime] {
			seen[j.ArrivalTime] = true
			out = append(out, j.ArrivalTime)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
