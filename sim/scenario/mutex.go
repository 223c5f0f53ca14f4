package scenario

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/ossim/sim"
	"github.com/inference-sim/ossim/sim/mutex"
)

// MutexResult is the outcome of one mutex run.
type MutexResult struct {
	Actors        int
	Mode          string
	Calls         int   // protocol calls made by the driver
	EntryOrder    []int // actor IDs in the order they entered the section
	Entries       []int
	Blocked       int
	GuardRefusals int
	MaxOccupancy  int // most actors ever observed in the section at once
}

// RunMutex drives a fresh engine per cfg. Round-robin mode lets each actor in
// turn request, enter and release. Interleaved mode picks a random actor per
// step from rng and makes that actor's next legal call. rng is only used in
// interleaved mode and may be nil otherwise.
func RunMutex(cfg MutexSpec, rng *rand.Rand, sink sim.EventSink) (*MutexResult, error) {
	e, err := mutex.NewEngine(cfg.Actors, sink)
	if err != nil {
		return nil, err
	}
	d := &mutexDriver{e: e, res: &MutexResult{Actors: cfg.Actors, Mode: cfg.EffectiveMode()}}

	switch cfg.EffectiveMode() {
	case ModeRoundRobin:
		err = d.roundRobin(cfg.Rounds)
	case ModeInterleaved:
		if rng == nil {
			return nil, fmt.Errorf("%w: interleaved mode needs a random source", sim.ErrInvalidConfiguration)
		}
		err = d.interleaved(cfg.Steps, rng)
	default:
		return nil, fmt.Errorf("%w: unknown mutex mode %q", sim.ErrInvalidConfiguration, cfg.Mode)
	}
	if err != nil {
		return nil, err
	}

	st := e.Stats()
	d.res.Entries = st.Entries
	d.res.Blocked = st.Blocked
	d.res.GuardRefusals = st.GuardRefusals
	logrus.Infof("mutex: actors=%d mode=%s entries=%v blocked=%d", cfg.Actors, d.res.Mode, st.Entries, st.Blocked)
	return d.res, nil
}

type mutexDriver struct {
	e   *mutex.Engine
	res *MutexResult
}

func (d *mutexDriver) roundRobin(rounds int) error {
	n := d.e.Actors()
	for r := 0; r < rounds; r++ {
		for id := 0; id < n; id++ {
			if err := d.call(id); err != nil {
				return err
			}
			entered := false
			for attempt := 0; attempt <= n && !entered; attempt++ {
				if err := d.call(id); err != nil {
					return err
				}
				ph, _ := d.e.Phase(id)
				entered = ph == mutex.InSection
			}
			if !entered {
				return fmt.Errorf("actor %d could not enter an idle section in round %d", id, r)
			}
			if err := d.call(id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *mutexDriver) interleaved(steps int, rng *rand.Rand) error {
	n := d.e.Actors()
	for s := 0; s < steps; s++ {
		if err := d.call(rng.Intn(n)); err != nil {
			return err
		}
	}
	return nil
}

// call makes the next legal protocol call for id and checks occupancy.
func (d *mutexDriver) call(id int) error {
	ph, err := d.e.Phase(id)
	if err != nil {
		return err
	}
	switch ph {
	case mutex.Idle:
		err = d.e.RequestEntry(id)
	case mutex.Waiting:
		var ok bool
		ok, err = d.e.TryAdvance(id)
		if ok {
			d.res.EntryOrder = append(d.res.EntryOrder, id)
		}
	case mutex.InSection:
		err = d.e.ReleaseEntry(id)
	}
	if err != nil {
		return err
	}
	d.res.Calls++

	inside := 0
	for a := 0; a < d.e.Actors(); a++ {
		if p, _ := d.e.Phase(a); p == mutex.InSection {
			inside++
		}
	}
	d.res.MaxOccupancy = max(d.res.MaxOccupancy, inside)
	if inside > 1 {
		return fmt.Errorf("%d actors in the critical section after call %d", inside, d.res.Calls)
	}
	return nil
}
