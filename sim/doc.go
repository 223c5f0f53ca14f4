// Package sim provides the shared kernel of the OS-teaching simulation core.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - event.go: the Event record every engine emits, and the EventSink contract
//   - errors.go: sentinel errors returned by every engine
//   - rng.go: deterministic per-subsystem randomness for scenario generation
//   - stats.go: percentile and mean helpers for driver reports
//
// # Architecture
//
// The sim package defines the types engines share; the engines live in
// sub-packages:
//   - sim/paging/: page-replacement cache (FIFO, LRU, Optimal)
//   - sim/scheduling/: CPU scheduling (FCFS, SRTF) with waiting/turnaround statistics
//   - sim/mutex/: turn/flag critical-section arbitration for N actors
//   - sim/trace/: event recording, JSON-lines output, summaries and digests
//   - sim/scenario/: YAML scenarios, seeded generation and reference drivers
//
// Every engine is a single-threaded state machine. A driver issues one call at
// a time, each call returns synchronously, and "waiting" is an explicit state
// rather than a blocked goroutine. Simulated time is always passed in by the
// driver; no engine reads the wall clock or sleeps.
//
// # Key Interfaces
//
//   - EventSink: receives one Event per state change (rendering, telemetry, tests)
//   - paging.ReplacementPolicy: victim selection, one implementation per policy
//   - scheduling.Discipline: orders the ready pool before each dispatch
package sim
