// Implements turn/flag critical-section arbitration (Peterson's scheme) for N
// actors. Each actor cycles Idle -> Waiting -> InSection -> Idle; waiting is
// an explicit phase the driver polls with TryAdvance, never a blocked call.

package mutex

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/ossim/sim"
)

// Phase is an actor's position in the entry protocol.
type Phase string

const (
	Idle      Phase = "idle"
	Waiting   Phase = "waiting"
	InSection Phase = "in-section"
)

// Stats counts protocol outcomes since the last reset.
type Stats struct {
	Entries       []int // critical-section entries per actor
	Blocked       int   // TryAdvance calls that left the actor waiting
	GuardRefusals int   // refusals the neighbor rule alone would have admitted
}

// Engine arbitrates one critical section between N actors using an intent
// flag per actor and a shared turn token.
//
// Entry rule for actor i with neighbor next = (i+1) mod N:
//
//	admit if next == i || !flag[next] || turn != next
//
// For two actors this is Peterson's algorithm and admits at most one actor.
// For N > 2 the rule alone can admit a second actor, so the engine also
// refuses entry while the section is occupied and counts such refusals in
// Stats.GuardRefusals.
//
// Engine is not safe for concurrent use.
type Engine struct {
	n        int
	flags    []bool
	turn     int
	phases   []Phase
	occupant int // actor in section, -1 when free

	entries       []int
	blocked       int
	guardRefusals int

	step int64
	sink sim.EventSink
}

// NewEngine creates an engine for the given number of actors, all Idle.
// A nil sink discards events.
func NewEngine(actors int, sink sim.EventSink) (*Engine, error) {
	e := &Engine{sink: sim.SinkOrDiscard(sink)}
	if err := e.Configure(actors); err != nil {
		return nil, err
	}
	return e, nil
}

// Configure sets the actor count and returns every actor to Idle.
func (e *Engine) Configure(actors int) error {
	if actors <= 0 {
		return fmt.Errorf("%w: actor count must be positive, got %d", sim.ErrInvalidConfiguration, actors)
	}
	e.n = actors
	e.clear()
	logrus.Debugf("mutex: configured %d actors", actors)
	return nil
}

// RequestEntry raises the actor's intent flag, hands the turn to its
// neighbor, and moves it to Waiting. It never blocks.
func (e *Engine) RequestEntry(id int) error {
	if err := e.expect(id, Idle, "RequestEntry"); err != nil {
		return err
	}
	e.flags[id] = true
	e.turn = e.next(id)
	e.phases[id] = Waiting
	e.step++
	logrus.Debugf("<< Request: actor %d waiting, turn=%d", id, e.turn)
	e.emit(sim.EventEnteredWaiting, id)
	return nil
}

// TryAdvance evaluates the entry rule for a Waiting actor and moves it into
// the critical section when admitted. A false result leaves all state as is
// apart from the blocked counters.
func (e *Engine) TryAdvance(id int) (bool, error) {
	if err := e.expect(id, Waiting, "TryAdvance"); err != nil {
		return false, err
	}
	next := e.next(id)
	admit := next == id || !e.flags[next] || e.turn != next
	if admit && e.occupant >= 0 {
		e.guardRefusals++
		logrus.Debugf("<< Guard: actor %d admitted by neighbor rule while actor %d in section", id, e.occupant)
		admit = false
	}
	if !admit {
		e.blocked++
		return false, nil
	}

	e.phases[id] = InSection
	e.occupant = id
	e.entries[id]++
	e.step++
	logrus.Debugf("<< Enter: actor %d in critical section", id)
	e.emit(sim.EventEnteredSection, id)
	return true, nil
}

// ReleaseEntry lowers the actor's flag and returns it to Idle, freeing the section.
func (e *Engine) ReleaseEntry(id int) error {
	if err := e.expect(id, InSection, "ReleaseEntry"); err != nil {
		return err
	}
	e.flags[id] = false
	e.phases[id] = Idle
	e.occupant = -1
	e.step++
	logrus.Debugf("<< Exit: actor %d left critical section", id)
	e.emit(sim.EventExitedSection, id)
	return nil
}

// Reset returns every actor to Idle with flags down and the turn at 0.
func (e *Engine) Reset() {
	if e.n == 0 {
		return
	}
	e.clear()
	logrus.Debugf("mutex: reset")
	e.sink.Emit(sim.Event{Engine: sim.EngineMutex, Kind: sim.EventReset, SubjectID: -1, State: string(Idle)})
}

// Phase returns the actor's current phase.
func (e *Engine) Phase(id int) (Phase, error) {
	if err := e.checkID(id); err != nil {
		return "", err
	}
	return e.phases[id], nil
}

// Occupant returns the actor in the critical section, if any.
func (e *Engine) Occupant() (int, bool) {
	return e.occupant, e.occupant >= 0
}

// Flags returns a copy of the intent flags.
func (e *Engine) Flags() []bool { return append([]bool(nil), e.flags...) }

func (e *Engine) Turn() int   { return e.turn }
func (e *Engine) Actors() int { return e.n }

// Stats returns a snapshot of the protocol counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Entries:       append([]int(nil), e.entries...),
		Blocked:       e.blocked,
		GuardRefusals: e.guardRefusals,
	}
}

func (e *Engine) next(id int) int { return (id + 1) % e.n }

func (e *Engine) clear() {
	e.flags = make([]bool, e.n)
	e.phases = make([]Phase, e.n)
	for i := range e.phases {
		e.phases[i] = Idle
	}
	e.entries = make([]int, e.n)
	e.turn = 0
	e.occupant = -1
	e.blocked = 0
	e.guardRefusals = 0
	e.step = 0
}

func (e *Engine) checkID(id int) error {
	if id < 0 || id >= e.n {
		return fmt.Errorf("%w: actor %d out of range [0, %d)", sim.ErrInvalidConfiguration, id, e.n)
	}
	return nil
}

func (e *Engine) expect(id int, want Phase, op string) error {
	if err := e.checkID(id); err != nil {
		return err
	}
	if e.phases[id] != want {
		return fmt.Errorf("%w: %s on actor %d in phase %s, want %s", sim.ErrInvalidTransition, op, id, e.phases[id], want)
	}
	return nil
}

func (e *Engine) emit(kind sim.EventKind, id int) {
	total := 0
	for _, n := range e.entries {
		total += n
	}
	e.sink.Emit(sim.Event{
		Engine:    sim.EngineMutex,
		Kind:      kind,
		SubjectID: id,
		State:     string(e.phases[id]),
		Step:      e.step,
		Metrics: map[string]float64{
			"turn":           float64(e.turn),
			"entries":        float64(total),
			"blocked":        float64(e.blocked),
			"guard_refusals": float64(e.guardRefusals),
		},
	})
}
