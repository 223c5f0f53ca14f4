package scenario

import (
	"math/rand"
	"sort"

	"github.com/inference-sim/ossim/sim/paging"
	"github.com/inference-sim/ossim/sim/scheduling"
)

// GenerateSequence draws a reference string from pages 1..DistinctPages.
// Deterministic given the same rng state.
func GenerateSequence(g SequenceGenSpec, rng *rand.Rand) []paging.Page {
	seq := make([]paging.Page, g.Length)
	for i := range seq {
		seq[i] = paging.Page(1 + rng.Intn(g.DistinctPages))
	}
	return seq
}

// GenerateJobs draws Count jobs and returns them sorted by arrival time, so
// input order (the FCFS tiebreak) follows arrival.
func GenerateJobs(g JobGenSpec, rng *rand.Rand) []scheduling.JobSpec {
	jobs := make([]scheduling.JobSpec, g.Count)
	for i := range jobs {
		jobs[i] = scheduling.JobSpec{
			ArrivalTime: rng.Int63n(g.MaxArrival + 1),
			ServiceTime: g.MinService + rng.Int63n(g.MaxService-g.MinService+1),
		}
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].ArrivalTime < jobs[j].ArrivalTime
	})
	return jobs
}

func toPages(ints []int) []paging.Page {
	pages := make([]paging.Page, len(ints))
	for i, v := range ints {
		pages[i] = paging.Page(v)
	}
	return pages
}
