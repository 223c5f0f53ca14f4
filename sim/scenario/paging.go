package scenario

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/ossim/sim"
	"github.com/inference-sim/ossim/sim/paging"
)

// PagingResult is the outcome of one paging run.
type PagingResult struct {
	Policy    paging.PolicyKind
	Capacity  int
	Sequence  []paging.Page
	Outcomes  []paging.Outcome
	Stats     paging.Stats
	Residents []paging.Slot // final slot contents
}

// RunPaging steps a fresh engine through the whole reference string.
func RunPaging(capacity int, policy paging.PolicyKind, sequence []paging.Page, sink sim.EventSink) (*PagingResult, error) {
	e, err := paging.NewEngine(capacity, policy, sink)
	if err != nil {
		return nil, err
	}
	e.LoadSequence(sequence)

	res := &PagingResult{
		Policy:   policy,
		Capacity: capacity,
		Sequence: append([]paging.Page(nil), sequence...),
		Outcomes: make([]paging.Outcome, 0, len(sequence)),
	}
	for {
		out, err := e.Step()
		if errors.Is(err, sim.ErrEmptyQueue) {
			break
		}
		if err != nil {
			return nil, err
		}
		res.Outcomes = append(res.Outcomes, out)
	}
	res.Stats = e.Stats()
	res.Residents = e.Residents()
	logrus.Infof("paging: policy=%s capacity=%d hits=%d faults=%d", policy, capacity, res.Stats.Hits, res.Stats.Faults)
	return res, nil
}
