package scheduling

import (
	"fmt"
	"sort"
)

// Policy names a scheduling discipline.
type Policy string

const (
	FCFS Policy = "fcfs"
	SRTF Policy = "srtf"
)

// ValidPolicies is the set of recognized scheduling policy names.
var ValidPolicies = map[Policy]bool{FCFS: true, SRTF: true}

// Discipline orders the ready pool before each dispatch; the engine serves
// the first job. Implementations sort in place with sort.SliceStable so equal
// keys keep their pool order, and break every tie explicitly for determinism.
type Discipline interface {
	Policy() Policy
	OrderQueue(jobs []*Job, now int64)
}

// FCFSDiscipline sorts by arrival time (ascending), then by ID (input order).
// Service demand is ignored.
type FCFSDiscipline struct{}

func (FCFSDiscipline) Policy() Policy { return FCFS }

func (FCFSDiscipline) OrderQueue(jobs []*Job, _ int64) {
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].ArrivalTime != jobs[j].ArrivalTime {
			return jobs[i].ArrivalTime < jobs[j].ArrivalTime
		}
		return jobs[i].ID < jobs[j].ID
	})
}

// SRTFDiscipline puts jobs that have arrived by now first, ordered by remaining
// time (ascending), then arrival time, then ID. Jobs still in the future follow
// in arrival order, so an idle CPU picks whichever arrives next.
type SRTFDiscipline struct{}

func (SRTFDiscipline) Policy() Policy { return SRTF }

func (SRTFDiscipline) OrderQueue(jobs []*Job, now int64) {
	sort.SliceStable(jobs, func(i, j int) bool {
		ai, aj := jobs[i].ArrivalTime <= now, jobs[j].ArrivalTime <= now
		if ai != aj {
			return ai
		}
		if !ai && jobs[i].ArrivalTime != jobs[j].ArrivalTime {
			return jobs[i].ArrivalTime < jobs[j].ArrivalTime
		}
		if jobs[i].RemainingTime != jobs[j].RemainingTime {
			return jobs[i].RemainingTime < jobs[j].RemainingTime
		}
		if jobs[i].ArrivalTime != jobs[j].ArrivalTime {
			return jobs[i].ArrivalTime < jobs[j].ArrivalTime
		}
		return jobs[i].ID < jobs[j].ID
	})
}

// NewDiscipline creates a Discipline by policy name.
func NewDiscipline(p Policy) (Discipline, error) {
	switch p {
	case FCFS:
		return FCFSDiscipline{}, nil
	case SRTF:
		return SRTFDiscipline{}, nil
	default:
		return nil, fmt.Errorf("unknown scheduling policy %q", p)
	}
}
