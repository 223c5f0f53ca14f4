// Implements the page-replacement engine: a fixed number of slots, a reference
// string, and one ReplacementPolicy deciding which resident to evict.

package paging

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/hashmap"

	"github.com/inference-sim/ossim/sim"
)

// Page identifies a page by value.
type Page int

// Slot is one cache position. An empty slot has Occupied == false.
type Slot struct {
	Index    int
	Page     Page
	Occupied bool
}

// OutcomeKind reports whether an access hit or faulted.
type OutcomeKind string

const (
	Hit   OutcomeKind = "hit"
	Fault OutcomeKind = "fault"
)

// Outcome describes one Access. Evicted is meaningful only when HasEvicted is set.
type Outcome struct {
	Kind       OutcomeKind
	Page       Page
	Slot       int
	Evicted    Page
	HasEvicted bool
}

func (o Outcome) String() string {
	if o.HasEvicted {
		return fmt.Sprintf("%s page=%d slot=%d evicted=%d", o.Kind, o.Page, o.Slot, o.Evicted)
	}
	return fmt.Sprintf("%s page=%d slot=%d", o.Kind, o.Page, o.Slot)
}

// Stats holds cumulative counters. HitRatio is 0 before the first access.
type Stats struct {
	Hits     int
	Faults   int
	HitRatio float64
}

// Engine simulates a page cache. It is not safe for concurrent use.
type Engine struct {
	capacity int
	kind     PolicyKind
	policy   ReplacementPolicy

	slots    []Slot
	resident *hashmap.Map[Page, int] // page -> slot index
	sequence []Page                  // reference string; Optimal looks ahead in it
	cursor   int                     // index of the next access in sequence

	hits   int
	faults int
	step   int64
	sink   sim.EventSink
}

// NewEngine creates an engine with the given capacity and policy.
// A nil sink discards events.
func NewEngine(capacity int, policy PolicyKind, sink sim.EventSink) (*Engine, error) {
	e := &Engine{sink: sim.SinkOrDiscard(sink)}
	if err := e.Configure(capacity, policy); err != nil {
		return nil, err
	}
	return e, nil
}

// Configure sets the slot count and the active policy, clearing all state.
// The loaded reference string is kept.
func (e *Engine) Configure(capacity int, kind PolicyKind) error {
	if capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", sim.ErrInvalidConfiguration, capacity)
	}
	if !ValidPolicies[kind] {
		return fmt.Errorf("%w: unknown replacement policy %q", sim.ErrInvalidConfiguration, kind)
	}
	policy, err := NewPolicy(kind)
	if err != nil {
		return fmt.Errorf("%w: %v", sim.ErrInvalidConfiguration, err)
	}
	e.capacity = capacity
	e.kind = kind
	e.policy = policy
	e.clear()
	logrus.Debugf("paging: configured capacity=%d policy=%s", capacity, kind)
	return nil
}

// LoadSequence installs the reference string and rewinds the cursor.
// Counters and resident pages are not touched.
func (e *Engine) LoadSequence(pages []Page) {
	e.sequence = append([]Page(nil), pages...)
	e.cursor = 0
}

// Step serves the next reference in the loaded sequence.
func (e *Engine) Step() (Outcome, error) {
	if e.cursor >= len(e.sequence) {
		return Outcome{}, fmt.Errorf("%w: reference string exhausted after %d accesses", sim.ErrEmptyQueue, e.cursor)
	}
	return e.Access(e.sequence[e.cursor])
}

// Access serves one page reference. The cursor advances only when page is
// the next reference of the loaded sequence; an out-of-sequence access
// leaves Optimal looking ahead from the same position.
func (e *Engine) Access(page Page) (Outcome, error) {
	if e.policy == nil {
		return Outcome{}, fmt.Errorf("%w: engine not configured", sim.ErrInvalidConfiguration)
	}
	e.step++
	inSequence := e.cursor < len(e.sequence) && e.sequence[e.cursor] == page

	if slot, ok := e.resident.Get(page); ok {
		e.hits++
		e.policy.Touched(page)
		if inSequence {
			e.cursor++
		}
		logrus.Debugf("<< Hit: page %d in slot %d", page, slot)
		e.emit(sim.EventHit, int(page), "resident", slot)
		return Outcome{Kind: Hit, Page: page, Slot: slot}, nil
	}

	e.faults++
	out := Outcome{Kind: Fault, Page: page, Slot: e.freeSlot()}
	if out.Slot < 0 {
		victim := e.policy.Victim(e.residentPages(), e.future(inSequence))
		out.Slot, _ = e.resident.Delete(victim)
		out.Evicted, out.HasEvicted = victim, true
		e.policy.Removed(victim)
		e.slots[out.Slot].Occupied = false
		logrus.Debugf("<< Evict: page %d from slot %d (%s)", victim, out.Slot, e.kind)
		e.emit(sim.EventEvicted, int(victim), "evicted", out.Slot)
	}

	e.slots[out.Slot] = Slot{Index: out.Slot, Page: page, Occupied: true}
	e.resident.Set(page, out.Slot)
	e.policy.Admitted(page)
	if inSequence {
		e.cursor++
	}
	logrus.Debugf("<< Fault: page %d into slot %d", page, out.Slot)
	e.emit(sim.EventFault, int(page), "resident", out.Slot)
	return out, nil
}

// Stats returns cumulative hit and fault counts.
func (e *Engine) Stats() Stats {
	s := Stats{Hits: e.hits, Faults: e.faults}
	if total := e.hits + e.faults; total > 0 {
		s.HitRatio = float64(e.hits) / float64(total)
	}
	return s
}

// Reset returns the engine to empty slots and zero counters.
// Capacity, policy and the loaded reference string survive.
func (e *Engine) Reset() {
	if e.policy == nil {
		return
	}
	e.clear()
	logrus.Debugf("paging: reset")
	e.sink.Emit(sim.Event{Engine: sim.EnginePaging, Kind: sim.EventReset, SubjectID: -1, State: "empty"})
}

// Residents returns a copy of the slots in index order.
func (e *Engine) Residents() []Slot {
	return append([]Slot(nil), e.slots...)
}

// Contains reports whether page is resident.
func (e *Engine) Contains(page Page) bool {
	if e.resident == nil {
		return false
	}
	_, ok := e.resident.Get(page)
	return ok
}

func (e *Engine) Capacity() int      { return e.capacity }
func (e *Engine) Policy() PolicyKind { return e.kind }
func (e *Engine) Cursor() int        { return e.cursor }

// Remaining returns how many references of the loaded sequence are still unserved.
func (e *Engine) Remaining() int {
	if e.cursor >= len(e.sequence) {
		return 0
	}
	return len(e.sequence) - e.cursor
}

func (e *Engine) clear() {
	e.slots = make([]Slot, e.capacity)
	for i := range e.slots {
		e.slots[i].Index = i
	}
	e.resident = hashmap.New[Page, int](e.capacity)
	e.policy.Reset()
	e.cursor = 0
	e.hits = 0
	e.faults = 0
	e.step = 0
}

// freeSlot returns the lowest empty slot index, or -1 when all are occupied.
func (e *Engine) freeSlot() int {
	if e.resident.Len() >= e.capacity {
		return -1
	}
	for i, s := range e.slots {
		if !s.Occupied {
			return i
		}
	}
	return -1
}

func (e *Engine) residentPages() []Page {
	pages := make([]Page, 0, e.capacity)
	for _, s := range e.slots {
		if s.Occupied {
			pages = append(pages, s.Page)
		}
	}
	return pages
}

// future is the reference string after the access being served. An
// out-of-sequence access has not consumed sequence[cursor], so it stays.
func (e *Engine) future(inSequence bool) []Page {
	from := e.cursor
	if inSequence {
		from++
	}
	if from >= len(e.sequence) {
		return nil
	}
	return e.sequence[from:]
}

func (e *Engine) emit(kind sim.EventKind, subject int, state string, slot int) {
	s := e.Stats()
	e.sink.Emit(sim.Event{
		Engine:    sim.EnginePaging,
		Kind:      kind,
		SubjectID: subject,
		State:     state,
		Step:      e.step,
		Metrics: map[string]float64{
			"hits":      float64(s.Hits),
			"faults":    float64(s.Faults),
			"hit_ratio": s.HitRatio,
			"slot":      float64(slot),
		},
	})
}
