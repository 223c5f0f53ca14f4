package trace

import (
	"testing"

	"github.com/inference-sim/ossim/sim"
)

func TestSummarize_NilRecorder_ZeroValues(t *testing.T) {
	// GIVEN no recorder
	// WHEN summarized
	summary := Summarize(nil)

	// THEN all counts are zero and maps are usable
	if summary.TotalEvents != 0 {
		t.Errorf("expected 0 events, got %d", summary.TotalEvents)
	}
	if len(summary.ByKind) != 0 || len(summary.ByEngine) != 0 {
		t.Error("expected empty count maps")
	}
	summary.ByKind[sim.EventHit]++ // must not panic
}

func TestSummarize_PopulatedRecorder_CorrectCounts(t *testing.T) {
	// GIVEN a recorder with mixed events
	r := NewRecorder()
	r.Emit(sim.Event{Engine: sim.EnginePaging, Kind: sim.EventFault, SubjectID: 1})
	r.Emit(sim.Event{Engine: sim.EnginePaging, Kind: sim.EventFault, SubjectID: 2})
	r.Emit(sim.Event{Engine: sim.EnginePaging, Kind: sim.EventHit, SubjectID: 1})
	r.Emit(sim.Event{Engine: sim.EngineMutex, Kind: sim.EventEnteredWaiting, SubjectID: 0})
	r.Emit(sim.Event{Engine: sim.EngineMutex, Kind: sim.EventReset, SubjectID: -1})

	// WHEN summarized
	summary := Summarize(r)

	// THEN counts are per kind and per engine, reset markers excluded from subjects
	if summary.TotalEvents != 5 {
		t.Errorf("expected 5 events, got %d", summary.TotalEvents)
	}
	if summary.ByKind[sim.EventFault] != 2 || summary.ByKind[sim.EventHit] != 1 {
		t.Errorf("kind counts wrong: %v", summary.ByKind)
	}
	if summary.ByEngine[sim.EnginePaging] != 3 || summary.ByEngine[sim.EngineMutex] != 2 {
		t.Errorf("engine counts wrong: %v", summary.ByEngine)
	}
	if summary.DistinctSubjects[sim.EnginePaging] != 2 || summary.DistinctSubjects[sim.EngineMutex] != 1 {
		t.Errorf("distinct subjects wrong: %v", summary.DistinctSubjects)
	}
	if summary.Digest != Digest(r.Events) {
		t.Error("summary digest should match Digest over the same events")
	}
}
