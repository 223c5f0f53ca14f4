package scenario

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/ossim/sim"
	"github.com/inference-sim/ossim/sim/paging"
)

// Report collects the results of every section a scenario configured.
// Sections that were not configured stay nil.
type Report struct {
	Seed       int64
	Paging     *PagingResult
	Scheduling *SchedulingResult
	Mutex      *MutexResult
}

// Run validates spec and drives each configured engine in a fixed order:
// paging, scheduling, mutex. Generated inputs draw from per-subsystem RNGs
// derived from spec.Seed, so the same spec always yields the same events.
func Run(spec *Spec, sink sim.EventSink) (*Report, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(spec.Seed))
	rep := &Report{Seed: spec.Seed}
	logrus.Debugf("scenario: seed=%d", spec.Seed)

	if p := spec.Paging; p != nil {
		seq := toPages(p.Sequence)
		if p.Generate != nil {
			seq = GenerateSequence(*p.Generate, rng.ForSubsystem(sim.SubsystemPages))
		}
		res, err := RunPaging(p.Capacity, p.Policy, seq, sink)
		if err != nil {
			return nil, fmt.Errorf("paging: %w", err)
		}
		rep.Paging = res
	}

	if c := spec.Scheduling; c != nil {
		jobs := c.Jobs
		if c.Generate != nil {
			jobs = GenerateJobs(*c.Generate, rng.ForSubsystem(sim.SubsystemJobs))
		}
		res, err := RunScheduling(c.Policy, c.Preemptive, jobs, sink)
		if err != nil {
			return nil, fmt.Errorf("scheduling: %w", err)
		}
		rep.Scheduling = res
	}

	if m := spec.Mutex; m != nil {
		res, err := RunMutex(*m, rng.ForSubsystem(sim.SubsystemActors), sink)
		if err != nil {
			return nil, fmt.Errorf("mutex: %w", err)
		}
		rep.Mutex = res
	}
	return rep, nil
}

// Print writes a human-readable summary of the report.
func (r *Report) Print(w io.Writer) {
	if p := r.Paging; p != nil {
		fmt.Fprintln(w, "=== Paging Metrics ===")
		fmt.Fprintf(w, "Policy               : %s\n", p.Policy)
		fmt.Fprintf(w, "Capacity             : %d\n", p.Capacity)
		fmt.Fprintf(w, "References           : %d\n", len(p.Sequence))
		fmt.Fprintf(w, "Hits                 : %d\n", p.Stats.Hits)
		fmt.Fprintf(w, "Faults               : %d\n", p.Stats.Faults)
		fmt.Fprintf(w, "Hit Ratio            : %.2f\n", p.Stats.HitRatio)
		fmt.Fprintf(w, "Final Slots          : %s\n", formatSlots(p.Residents))
	}
	if s := r.Scheduling; s != nil {
		fmt.Fprintln(w, "=== Scheduling Metrics ===")
		fmt.Fprintf(w, "Policy               : %s\n", s.Policy)
		fmt.Fprintf(w, "Preemptive           : %v\n", s.Preemptive)
		fmt.Fprintf(w, "Completed Jobs       : %d\n", len(s.Order))
		fmt.Fprintf(w, "Completion Order     : %v\n", s.Order)
		if len(s.Order) > 0 {
			fmt.Fprintf(w, "Average Waiting      : %.2f ticks\n", s.AvgWaiting)
			fmt.Fprintf(w, "Average Turnaround   : %.2f ticks\n", s.AvgTurnaround)
			fmt.Fprintf(w, "Waiting P50/P90/Max  : %.2f / %.2f / %d ticks\n", s.WaitingP50, s.WaitingP90, s.WaitingMax)
			fmt.Fprintf(w, "Makespan             : %d ticks\n", s.Makespan)
		}
		if s.Preemptive {
			fmt.Fprintf(w, "Preemptions          : %d\n", s.Preemptions)
		}
	}
	if m := r.Mutex; m != nil {
		fmt.Fprintln(w, "=== Mutex Metrics ===")
		fmt.Fprintf(w, "Actors               : %d\n", m.Actors)
		fmt.Fprintf(w, "Mode                 : %s\n", m.Mode)
		fmt.Fprintf(w, "Calls                : %d\n", m.Calls)
		fmt.Fprintf(w, "Entries              : %v\n", m.Entries)
		fmt.Fprintf(w, "Blocked Attempts     : %d\n", m.Blocked)
		fmt.Fprintf(w, "Guard Refusals       : %d\n", m.GuardRefusals)
		fmt.Fprintf(w, "Max Occupancy        : %d\n", m.MaxOccupancy)
	}
}

func formatSlots(slots []paging.Slot) string {
	out := "["
	for i, s := range slots {
		if i > 0 {
			out += " "
		}
		if s.Occupied {
			out += fmt.Sprint(int(s.Page))
		} else {
			out += "-"
		}
	}
	return out + "]"
}
