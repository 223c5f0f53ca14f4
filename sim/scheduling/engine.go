package scheduling

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/ossim/sim"
)

// Engine serves jobs one at a time under a selectable Discipline.
// It is not safe for concurrent use.
type Engine struct {
	discipline Discipline

	jobs    []*Job // every loaded job, input order
	pool    []*Job // pending jobs; order carries no meaning
	current *Job   // job in service, nil when the CPU is idle

	totalWaiting    int64
	totalTurnaround int64
	completed       int

	clock int64 // latest simulated time seen; never decreases
	step  int64
	sink  sim.EventSink
}

// NewEngine creates an idle engine with no jobs. A nil sink discards events.
func NewEngine(policy Policy, sink sim.EventSink) (*Engine, error) {
	e := &Engine{sink: sim.SinkOrDiscard(sink)}
	if err := e.SelectPolicy(policy); err != nil {
		return nil, err
	}
	return e, nil
}

// SelectPolicy switches the discipline used by subsequent dispatches.
func (e *Engine) SelectPolicy(p Policy) error {
	if !ValidPolicies[p] {
		return fmt.Errorf("%w: unknown scheduling policy %q", sim.ErrInvalidConfiguration, p)
	}
	d, err := NewDiscipline(p)
	if err != nil {
		return fmt.Errorf("%w: %v", sim.ErrInvalidConfiguration, err)
	}
	e.discipline = d
	logrus.Debugf("scheduling: policy=%s", p)
	return nil
}

// LoadJobs replaces the job set and clears all statistics.
// Arrival times must be non-negative and service times positive.
func (e *Engine) LoadJobs(specs []JobSpec) error {
	for i, s := range specs {
		if s.ArrivalTime < 0 {
			return fmt.Errorf("%w: job %d: arrival time must be non-negative, got %d", sim.ErrInvalidConfiguration, i, s.ArrivalTime)
		}
		if s.ServiceTime <= 0 {
			return fmt.Errorf("%w: job %d: service time must be positive, got %d", sim.ErrInvalidConfiguration, i, s.ServiceTime)
		}
	}
	e.jobs = make([]*Job, len(specs))
	for i, s := range specs {
		e.jobs[i] = newJob(i, s)
	}
	e.restart()
	logrus.Debugf("scheduling: loaded %d jobs", len(specs))
	return nil
}

// Dispatch picks the next job per the active discipline and puts it in
// service. Service starts at max(now, arrival); the returned value is the job ID.
func (e *Engine) Dispatch(now int64) (int, error) {
	if e.current != nil {
		return 0, fmt.Errorf("%w: job %d is running", sim.ErrAlreadyInService, e.current.ID)
	}
	if len(e.pool) == 0 {
		return 0, fmt.Errorf("%w: no pending jobs", sim.ErrEmptyQueue)
	}
	if err := e.checkClock(now); err != nil {
		return 0, err
	}

	candidates := append([]*Job(nil), e.pool...)
	e.discipline.OrderQueue(candidates, now)
	j := candidates[0]
	e.removeFromPool(j)

	start := max(now, j.ArrivalTime)
	j.WaitingTime += start - j.readySince
	j.StartTime = start
	j.State = StateRunning
	e.current = j
	e.clock = start
	e.step++

	logrus.Debugf("<< Dispatch: job %d at %d (remaining=%d, policy=%s)", j.ID, start, j.RemainingTime, e.discipline.Policy())
	e.emit(sim.EventDispatched, j)
	return j.ID, nil
}

// Complete finishes the job in service at time now and folds its waiting
// and turnaround times into the running totals.
func (e *Engine) Complete(now int64) (Job, error) {
	j := e.current
	if j == nil {
		return Job{}, fmt.Errorf("%w: no job in service", sim.ErrInvalidTransition)
	}
	if now < j.StartTime {
		return Job{}, fmt.Errorf("%w: completion at %d precedes start at %d", sim.ErrInvalidTransition, now, j.StartTime)
	}

	j.CompletionTime = now
	j.TurnaroundTime = now - j.ArrivalTime
	j.RemainingTime = 0
	j.State = StateCompleted
	e.totalWaiting += j.WaitingTime
	e.totalTurnaround += j.TurnaroundTime
	e.completed++
	e.current = nil
	e.clock = now
	e.step++

	logrus.Debugf("<< Complete: job %d at %d (waiting=%d, turnaround=%d)", j.ID, now, j.WaitingTime, j.TurnaroundTime)
	e.emit(sim.EventCompleted, j)
	return *j, nil
}

// Preempt returns the job in service to the pending pool at time now,
// charging it for the service it received.
func (e *Engine) Preempt(now int64) (int, error) {
	j := e.current
	if j == nil {
		return 0, fmt.Errorf("%w: no job in service", sim.ErrInvalidTransition)
	}
	if now < j.StartTime {
		return 0, fmt.Errorf("%w: preemption at %d precedes start at %d", sim.ErrInvalidTransition, now, j.StartTime)
	}
	left := j.RemainingTime - (now - j.StartTime)
	if left <= 0 {
		return 0, fmt.Errorf("%w: job %d has no service left at %d; complete it instead", sim.ErrInvalidTransition, j.ID, now)
	}

	j.RemainingTime = left
	j.State = StatePending
	j.readySince = now
	e.pool = append(e.pool, j)
	e.current = nil
	e.clock = now
	e.step++

	logrus.Debugf("<< Preempt: job %d at %d (remaining=%d)", j.ID, now, left)
	e.emit(sim.EventPreempted, j)
	return j.ID, nil
}

// Preemptable reports whether, at time now, SRTF would prefer an arrived
// pending job over the one in service. Always false under FCFS.
func (e *Engine) Preemptable(now int64) bool {
	j := e.current
	if j == nil || e.discipline.Policy() != SRTF || now < j.StartTime {
		return false
	}
	left := j.RemainingTime - (now - j.StartTime)
	for _, p := range e.pool {
		if p.ArrivalTime <= now && p.RemainingTime < left {
			return true
		}
	}
	return false
}

// Averages returns mean waiting and turnaround times over completed jobs,
// or zeros when none has completed.
func (e *Engine) Averages() (waiting, turnaround float64) {
	if e.completed == 0 {
		return 0, 0
	}
	n := float64(e.completed)
	return float64(e.totalWaiting) / n, float64(e.totalTurnaround) / n
}

// Reset returns every job to pending with its full service time and clears totals.
func (e *Engine) Reset() {
	if e.discipline == nil {
		return
	}
	e.restart()
	logrus.Debugf("scheduling: reset")
	e.sink.Emit(sim.Event{Engine: sim.EngineScheduling, Kind: sim.EventReset, SubjectID: -1, State: string(StatePending)})
}

// Jobs returns copies of all jobs in input order.
func (e *Engine) Jobs() []Job {
	out := make([]Job, len(e.jobs))
	for i, j := range e.jobs {
		out[i] = *j
	}
	return out
}

// Pending returns copies of the pending jobs in input order.
func (e *Engine) Pending() []Job {
	var out []Job
	for _, j := range e.jobs {
		if j.State == StatePending {
			out = append(out, *j)
		}
	}
	return out
}

// Current returns the job in service, if any.
func (e *Engine) Current() (Job, bool) {
	if e.current == nil {
		return Job{}, false
	}
	return *e.current, true
}

func (e *Engine) InService() bool { return e.current != nil }
func (e *Engine) Completed() int  { return e.completed }
func (e *Engine) Clock() int64    { return e.clock }
func (e *Engine) Policy() Policy  { return e.discipline.Policy() }

func (e *Engine) restart() {
	e.pool = make([]*Job, len(e.jobs))
	for i, j := range e.jobs {
		j.reset()
		e.pool[i] = j
	}
	e.current = nil
	e.totalWaiting = 0
	e.totalTurnaround = 0
	e.completed = 0
	e.clock = 0
	e.step = 0
}

func (e *Engine) checkClock(now int64) error {
	if now < e.clock {
		return fmt.Errorf("%w: time %d precedes engine clock %d", sim.ErrInvalidTransition, now, e.clock)
	}
	return nil
}

func (e *Engine) removeFromPool(j *Job) {
	for i, p := range e.pool {
		if p == j {
			e.pool = append(e.pool[:i], e.pool[i+1:]...)
			return
		}
	}
}

func (e *Engine) emit(kind sim.EventKind, j *Job) {
	avgW, avgT := e.Averages()
	e.sink.Emit(sim.Event{
		Engine:    sim.EngineScheduling,
		Kind:      kind,
		SubjectID: j.ID,
		State:     string(j.State),
		Step:      e.step,
		Clock:     e.clock,
		Metrics: map[string]float64{
			"waiting":        float64(j.WaitingTime),
			"turnaround":     float64(j.TurnaroundTime),
			"remaining":      float64(j.RemainingTime),
			"avg_waiting":    avgW,
			"avg_turnaround": avgT,
			"completed":      float64(e.completed),
			"pending":        float64(len(e.pool)),
		},
	})
}
