// Defines the Job struct that models one unit of CPU work in the simulation.
// Tracks arrival, service demand, remaining demand, and the timestamps from
// which waiting and turnaround times are derived.

package scheduling

import "fmt"

// JobState represents the lifecycle state of a job.
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
)

// JobSpec is the driver's description of a job: when it arrives and how much
// service it needs, both in simulated ticks.
type JobSpec struct {
	ArrivalTime int64 `yaml:"arrival"`
	ServiceTime int64 `yaml:"service"`
}

// Job tracks one job through pending -> running -> completed. A preempted job
// returns to pending with less RemainingTime.
type Job struct {
	ID int // input order, 0-based

	ArrivalTime   int64 // tick the job becomes eligible
	ServiceTime   int64 // total service demand
	RemainingTime int64 // service still owed; only consumed by preemption or completion

	State          JobState
	StartTime      int64 // start of the most recent service period
	CompletionTime int64
	WaitingTime    int64 // ticks spent pending after arrival
	TurnaroundTime int64 // CompletionTime - ArrivalTime

	readySince int64 // when the job last became pending
}

func (j Job) String() string {
	return fmt.Sprintf("Job: (ID: %d, State: %s, Arrival: %d, Service: %d, Remaining: %d)",
		j.ID, j.State, j.ArrivalTime, j.ServiceTime, j.RemainingTime)
}

// Served reports whether the job has completed.
func (j Job) Served() bool { return j.State == StateCompleted }

func newJob(id int, spec JobSpec) *Job {
	j := &Job{ID: id, ArrivalTime: spec.ArrivalTime, ServiceTime: spec.ServiceTime}
	j.reset()
	return j
}

func (j *Job) reset() {
	*j = Job{
		ID:            j.ID,
		ArrivalTime:   j.ArrivalTime,
		ServiceTime:   j.ServiceTime,
		RemainingTime: j.ServiceTime,
		State:         StatePending,
		readySince:    j.ArrivalTime,
	}
}
