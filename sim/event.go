package sim

import "github.com/sirupsen/logrus"

// EngineKind names the engine that produced an Event.
type EngineKind string

const (
	EnginePaging     EngineKind = "paging"
	EngineScheduling EngineKind = "scheduling"
	EngineMutex      EngineKind = "mutex"
)

// EventKind names the state change an Event describes.
type EventKind string

const (
	EventHit            EventKind = "hit"
	EventFault          EventKind = "fault"
	EventEvicted        EventKind = "evicted"
	EventDispatched     EventKind = "dispatched"
	EventPreempted      EventKind = "preempted"
	EventCompleted      EventKind = "completed"
	EventEnteredWaiting EventKind = "entered-waiting"
	EventEnteredSection EventKind = "entered-section"
	EventExitedSection  EventKind = "exited-section"
	EventReset          EventKind = "reset"
)

// Event is the structured record an engine emits after each state change.
// Step counts engine calls that changed state; Clock is the simulated time
// supplied by the driver (0 for engines that have no notion of time).
type Event struct {
	Engine    EngineKind         `json:"engine"`
	Kind      EventKind          `json:"event"`
	SubjectID int                `json:"subject_id"`
	State     string             `json:"state"`
	Step      int64              `json:"step"`
	Clock     int64              `json:"clock"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// EventSink consumes events. Engines call Emit synchronously, in order, from
// the goroutine that drives them; a sink must not call back into the engine.
type EventSink interface {
	Emit(Event)
}

type discard struct{}

func (discard) Emit(Event) {}

// Discard is an EventSink that drops every event.
var Discard EventSink = discard{}

// SinkOrDiscard returns s, or Discard when s is nil.
func SinkOrDiscard(s EventSink) EventSink {
	if s == nil {
		return Discard
	}
	return s
}

// MultiSink fans every event out to each sink in order. Nil entries are skipped.
type MultiSink []EventSink

func (m MultiSink) Emit(ev Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(ev)
		}
	}
}

// LogSink writes each event as a structured logrus entry at Level.
type LogSink struct {
	Level logrus.Level
}

func (l LogSink) Emit(ev Event) {
	fields := logrus.Fields{
		"engine":  ev.Engine,
		"subject": ev.SubjectID,
		"state":   ev.State,
		"step":    ev.Step,
		"clock":   ev.Clock,
	}
	for k, v := range ev.Metrics {
		fields[k] = v
	}
	logrus.WithFields(fields).Log(l.Level, string(ev.Kind))
}
