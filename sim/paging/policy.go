package paging

import (
	"container/list"
	"fmt"
	"math"
)

// PolicyKind selects a replacement policy.
type PolicyKind string

const (
	FIFO    PolicyKind = "fifo"
	LRU     PolicyKind = "lru"
	Optimal PolicyKind = "optimal"
)

// ValidPolicies is the set of recognized policy names.
// Shared by Configure and scenario validation.
var ValidPolicies = map[PolicyKind]bool{FIFO: true, LRU: true, Optimal: true}

// ReplacementPolicy keeps whatever ordering a policy needs and picks victims.
// The engine calls Admitted after a page takes a slot, Touched on every hit,
// and Removed after evicting the page Victim returned.
//
// Victim must not mutate the policy: the engine may still reject the access.
// residents lists resident pages in slot order; future is the part of the
// reference string strictly after the access being served.
type ReplacementPolicy interface {
	Kind() PolicyKind
	Admitted(p Page)
	Touched(p Page)
	Removed(p Page)
	Victim(residents []Page, future []Page) Page
	Reset()
}

// NewPolicy creates a ReplacementPolicy by kind.
// Returns an error for unrecognized kinds.
func NewPolicy(kind PolicyKind) (ReplacementPolicy, error) {
	switch kind {
	case FIFO:
		return &fifoPolicy{}, nil
	case LRU:
		return newLRUPolicy(), nil
	case Optimal:
		return &optimalPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown replacement policy %q", kind)
	}
}

// fifoPolicy evicts the page admitted earliest. Hits do not reorder.
type fifoPolicy struct {
	order []Page // arrival order, head is oldest
}

func (f *fifoPolicy) Kind() PolicyKind { return FIFO }

func (f *fifoPolicy) Admitted(p Page) { f.order = append(f.order, p) }

func (f *fifoPolicy) Touched(Page) {}

func (f *fifoPolicy) Removed(p Page) {
	for i, q := range f.order {
		if q == p {
			f.order = append(f.order[:i], f.order[i+1:]...)
			return
		}
	}
}

func (f *fifoPolicy) Victim([]Page, []Page) Page { return f.order[0] }

func (f *fifoPolicy) Reset() { f.order = nil }

// lruPolicy keeps pages in recency order: front is most recently used.
type lruPolicy struct {
	recency *list.List
	entries map[Page]*list.Element
}

func newLRUPolicy() *lruPolicy {
	return &lruPolicy{recency: list.New(), entries: make(map[Page]*list.Element)}
}

func (l *lruPolicy) Kind() PolicyKind { return LRU }

func (l *lruPolicy) Admitted(p Page) {
	l.entries[p] = l.recency.PushFront(p)
}

func (l *lruPolicy) Touched(p Page) {
	if e, ok := l.entries[p]; ok {
		l.recency.MoveToFront(e)
	}
}

func (l *lruPolicy) Removed(p Page) {
	if e, ok := l.entries[p]; ok {
		l.recency.Remove(e)
		delete(l.entries, p)
	}
}

func (l *lruPolicy) Victim([]Page, []Page) Page {
	return l.recency.Back().Value.(Page)
}

func (l *lruPolicy) Reset() {
	l.recency.Init()
	l.entries = make(map[Page]*list.Element)
}

// optimalPolicy evicts the resident whose next reference lies farthest ahead.
// It needs no bookkeeping beyond the reference string handed to Victim.
type optimalPolicy struct{}

func (optimalPolicy) Kind() PolicyKind { return Optimal }
func (optimalPolicy) Admitted(Page)    {}
func (optimalPolicy) Touched(Page)     {}
func (optimalPolicy) Removed(Page)     {}
func (optimalPolicy) Reset()           {}

// Victim picks the resident with the latest next use; pages that never recur
// rank as infinitely far. Ties go to the lowest page id.
func (optimalPolicy) Victim(residents []Page, future []Page) Page {
	victim, farthest := residents[0], -1
	for _, p := range residents {
		d := nextUse(p, future)
		if d > farthest || (d == farthest && p < victim) {
			victim, farthest = p, d
		}
	}
	return victim
}

// nextUse returns the offset of p's first occurrence in future, or math.MaxInt.
func nextUse(p Page, future []Page) int {
	for i, q := range future {
		if q == p {
			return i
		}
	}
	return math.MaxInt
}
