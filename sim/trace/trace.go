// Package trace records engine events for replay, summaries and determinism checks.
// This package depends only on sim/ and never imports an engine.
package trace

import "github.com/inference-sim/ossim/sim"

// Recorder collects events in emission order. It implements sim.EventSink.
type Recorder struct {
	Events []sim.Event
}

// NewRecorder creates a Recorder ready for recording.
func NewRecorder() *Recorder {
	return &Recorder{Events: make([]sim.Event, 0)}
}

// Emit appends an event. Metrics maps are copied so later mutation by the
// producer cannot rewrite history.
func (r *Recorder) Emit(ev sim.Event) {
	if ev.Metrics != nil {
		m := make(map[string]float64, len(ev.Metrics))
		for k, v := range ev.Metrics {
			m[k] = v
		}
		ev.Metrics = m
	}
	r.Events = append(r.Events, ev)
}

// Filter returns the recorded events produced by one engine, in order.
func (r *Recorder) Filter(engine sim.EngineKind) []sim.Event {
	var out []sim.Event
	for _, ev := range r.Events {
		if ev.Engine == engine {
			out = append(out, ev)
		}
	}
	return out
}

// Kinds returns the event kinds in order, handy for asserting sequences.
func (r *Recorder) Kinds() []sim.EventKind {
	out := make([]sim.EventKind, len(r.Events))
	for i, ev := range r.Events {
		out[i] = ev.Kind
	}
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int { return len(r.Events) }
