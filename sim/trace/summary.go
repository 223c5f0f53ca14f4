package trace

import "github.com/inference-sim/ossim/sim"

// Summary aggregates statistics from a Recorder.
type Summary struct {
	TotalEvents      int
	ByEngine         map[sim.EngineKind]int
	ByKind           map[sim.EventKind]int
	DistinctSubjects map[sim.EngineKind]int // distinct subject IDs per engine, reset markers excluded
	Digest           uint64
}

// Summarize computes aggregate statistics from a Recorder.
// Safe for nil or empty recorders (returns zero-value counts).
func Summarize(r *Recorder) *Summary {
	s := &Summary{
		ByEngine:         make(map[sim.EngineKind]int),
		ByKind:           make(map[sim.EventKind]int),
		DistinctSubjects: make(map[sim.EngineKind]int),
	}
	if r == nil {
		return s
	}

	seen := make(map[sim.EngineKind]map[int]bool)
	for _, ev := range r.Events {
		s.TotalEvents++
		s.ByEngine[ev.Engine]++
		s.ByKind[ev.Kind]++
		if ev.Kind == sim.EventReset {
			continue
		}
		if seen[ev.Engine] == nil {
			seen[ev.Engine] = make(map[int]bool)
		}
		seen[ev.Engine][ev.SubjectID] = true
	}
	for engine, subjects := range seen {
		s.DistinctSubjects[engine] = len(subjects)
	}
	s.Digest = Digest(r.Events)
	return s
}
