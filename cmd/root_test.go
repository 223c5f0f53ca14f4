package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/ossim/sim"
	"github.com/inference-sim/ossim/sim/scenario"
	"github.com/inference-sim/ossim/sim/trace"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		eventsPath = ""
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestScenarioCommand_PrintsLoadableDefault(t *testing.T) {
	// GIVEN the scenario command output
	out := execute(t, "scenario")

	// WHEN parsed back as a scenario
	spec, err := scenario.ParseSpec([]byte(out))

	// THEN it is the default scenario
	require.NoError(t, err)
	assert.Equal(t, scenario.DefaultSpec(), spec)
}

func TestPagingCommand_PrintsMetrics(t *testing.T) {
	out := execute(t, "paging", "--policy", "optimal", "--capacity", "3", "--sequence", "1,2,3,4,1,2,5,1,2,3")

	assert.Contains(t, out, "=== Paging Metrics ===")
	assert.Contains(t, out, "Hits                 : 4")
	assert.Contains(t, out, "Faults               : 6")
	assert.Contains(t, out, "=== Trace Summary ===")
}

func TestScheduleCommand_Preemptive(t *testing.T) {
	out := execute(t, "schedule", "--policy", "srtf", "--preemptive", "--jobs", "0:8,1:4,2:9,3:5")

	assert.Contains(t, out, "Average Waiting      : 6.50 ticks")
	assert.Contains(t, out, "Average Turnaround   : 13.00 ticks")
	assert.Contains(t, out, "Preemptions          : 1")
}

func TestRunSpec_WritesEventsFile(t *testing.T) {
	// GIVEN an events path in a temp dir
	eventsPath = filepath.Join(t.TempDir(), "events.jsonl")
	t.Cleanup(func() { eventsPath = "" })

	// WHEN the default scenario runs
	var out bytes.Buffer
	require.NoError(t, runSpec(scenario.DefaultSpec(), &out))

	// THEN every line decodes as an event and the summary count matches
	f, err := os.Open(eventsPath)
	require.NoError(t, err)
	defer f.Close()
	lines := 0
	engines := map[sim.EngineKind]bool{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev sim.Event
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		engines[ev.Engine] = true
		lines++
	}
	require.NoError(t, sc.Err())
	assert.Len(t, engines, 3)
	assert.Contains(t, out.String(), "Total Events         : "+strconv.Itoa(lines))
}

func TestRunSpec_InvalidSpec(t *testing.T) {
	err := runSpec(&scenario.Spec{Paging: &scenario.PagingSpec{Capacity: 0, Policy: "fifo", Sequence: []int{1}}}, &bytes.Buffer{})
	assert.ErrorIs(t, err, sim.ErrInvalidConfiguration)
}

func TestParseJobs(t *testing.T) {
	jobs, err := parseJobs([]string{"0:8", " 1:4"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, int64(1), jobs[1].ArrivalTime)
	assert.Equal(t, int64(4), jobs[1].ServiceTime)

	for _, bad := range []string{"5", "a:1", "1:b", ""} {
		_, err := parseJobs([]string{bad})
		assert.Error(t, err, "input %q", bad)
	}
}

type failingCloser struct{ closed bool }

func (c *failingCloser) Close() error {
	c.closed = true
	return errors.New("disk full")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestFinishEvents_ReportsCloseError(t *testing.T) {
	// GIVEN a sink that wrote cleanly to a file whose close fails
	jsonl := trace.NewJSONLinesSink(&bytes.Buffer{})
	jsonl.Emit(sim.Event{Engine: sim.EnginePaging, Kind: sim.EventFault})
	c := &failingCloser{}

	// WHEN the events output is finished
	err := finishEvents(jsonl, c)

	// THEN the close error surfaces
	assert.True(t, c.closed)
	assert.ErrorContains(t, err, "closing events file: disk full")
}

func TestFinishEvents_WriteErrorWinsAndFileStillCloses(t *testing.T) {
	jsonl := trace.NewJSONLinesSink(failingWriter{})
	jsonl.Emit(sim.Event{Engine: sim.EnginePaging, Kind: sim.EventFault})
	c := &failingCloser{}

	err := finishEvents(jsonl, c)

	assert.True(t, c.closed)
	assert.ErrorContains(t, err, "writing events: broken pipe")
}

func TestFinishEvents_StdoutHasNothingToClose(t *testing.T) {
	assert.NoError(t, finishEvents(trace.NewJSONLinesSink(&bytes.Buffer{}), nil))
}
