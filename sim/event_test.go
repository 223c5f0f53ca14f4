package sim

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct{ events []Event }

func (r *recordingSink) Emit(ev Event) { r.events = append(r.events, ev) }

func TestSinkOrDiscard(t *testing.T) {
	assert.Equal(t, Discard, SinkOrDiscard(nil))

	r := &recordingSink{}
	assert.Same(t, r, SinkOrDiscard(r))
}

func TestMultiSink_FansOutInOrderSkippingNil(t *testing.T) {
	// GIVEN two recorders with a nil between them
	a, b := &recordingSink{}, &recordingSink{}
	m := MultiSink{a, nil, b}

	// WHEN two events are emitted
	m.Emit(Event{Kind: EventHit, SubjectID: 1})
	m.Emit(Event{Kind: EventFault, SubjectID: 2})

	// THEN both recorders saw both, in order
	for _, r := range []*recordingSink{a, b} {
		require.Len(t, r.events, 2)
		assert.Equal(t, EventHit, r.events[0].Kind)
		assert.Equal(t, 2, r.events[1].SubjectID)
	}
}

func TestLogSink_WritesStructuredEntry(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	prev := logrus.GetLevel()
	logrus.SetLevel(logrus.DebugLevel)
	defer logrus.SetLevel(prev)

	LogSink{Level: logrus.InfoLevel}.Emit(Event{
		Engine:    EngineScheduling,
		Kind:      EventCompleted,
		SubjectID: 3,
		Clock:     17,
		Metrics:   map[string]float64{"turnaround": 9},
	})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "completed", entry.Message)
	assert.Equal(t, 3, entry.Data["subject"])
	assert.Equal(t, int64(17), entry.Data["clock"])
	assert.Equal(t, 9.0, entry.Data["turnaround"])
}
