// Package scenario describes batch runs of the simulation engines in YAML and
// drives the engines through them. Drivers play the external clock: every
// simulated time value is computed here and passed into the engines.
package scenario

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/ossim/sim"
	"github.com/inference-sim/ossim/sim/paging"
	"github.com/inference-sim/ossim/sim/scheduling"
)

// Spec is the top-level scenario configuration.
// Loaded from YAML via LoadSpec(path). Sections left out are not run.
type Spec struct {
	Seed       int64           `yaml:"seed"`
	Paging     *PagingSpec     `yaml:"paging,omitempty"`
	Scheduling *SchedulingSpec `yaml:"scheduling,omitempty"`
	Mutex      *MutexSpec      `yaml:"mutex,omitempty"`
}

// PagingSpec configures a page-replacement run. Exactly one of Sequence and
// Generate must be set.
type PagingSpec struct {
	Capacity int               `yaml:"capacity"`
	Policy   paging.PolicyKind `yaml:"policy"`
	Sequence []int             `yaml:"sequence,omitempty"`
	Generate *SequenceGenSpec  `yaml:"generate,omitempty"`
}

// SequenceGenSpec draws Length references uniformly from pages 1..DistinctPages.
type SequenceGenSpec struct {
	Length        int `yaml:"length"`
	DistinctPages int `yaml:"distinct_pages"`
}

// SchedulingSpec configures a CPU-scheduling run. Exactly one of Jobs and
// Generate must be set. Preemptive is only meaningful with SRTF.
type SchedulingSpec struct {
	Policy     scheduling.Policy    `yaml:"policy"`
	Preemptive bool                 `yaml:"preemptive,omitempty"`
	Jobs       []scheduling.JobSpec `yaml:"jobs,omitempty"`
	Generate   *JobGenSpec          `yaml:"generate,omitempty"`
}

// JobGenSpec draws Count jobs with arrivals in [0, MaxArrival] and service
// times in [MinService, MaxService].
type JobGenSpec struct {
	Count      int   `yaml:"count"`
	MaxArrival int64 `yaml:"max_arrival"`
	MinService int64 `yaml:"min_service"`
	MaxService int64 `yaml:"max_service"`
}

// Mutex driver modes.
const (
	ModeRoundRobin  = "round-robin"
	ModeInterleaved = "interleaved"
)

// ValidMutexModes is the set of recognized mutex driver modes.
var ValidMutexModes = map[string]bool{"": true, ModeRoundRobin: true, ModeInterleaved: true}

// MutexSpec configures a critical-section run. Round-robin mode runs Rounds
// full passes over the actors; interleaved mode makes Steps random moves.
type MutexSpec struct {
	Actors int    `yaml:"actors"`
	Mode   string `yaml:"mode,omitempty"`
	Rounds int    `yaml:"rounds,omitempty"`
	Steps  int    `yaml:"steps,omitempty"`
}

// EffectiveMode returns Mode with the empty default resolved.
func (m *MutexSpec) EffectiveMode() string {
	if m.Mode == "" {
		return ModeRoundRobin
	}
	return m.Mode
}

// LoadSpec reads and parses a YAML scenario file.
// Unknown fields are rejected so typos fail instead of being ignored.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseSpec(data)
}

// ParseSpec parses scenario YAML with strict field checking.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &spec, nil
}

// Write renders the spec as YAML.
func (s *Spec) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding scenario: %w", err)
	}
	return enc.Close()
}

// DefaultSpec reproduces the classroom demos: the ten-reference string on a
// three-slot shelf, a four-job textbook queue, and two actors taking turns.
func DefaultSpec() *Spec {
	return &Spec{
		Seed: 42,
		Paging: &PagingSpec{
			Capacity: 3,
			Policy:   paging.FIFO,
			Sequence: []int{1, 2, 3, 4, 1, 2, 5, 1, 2, 3},
		},
		Scheduling: &SchedulingSpec{
			Policy: scheduling.FCFS,
			Jobs: []scheduling.JobSpec{
				{ArrivalTime: 0, ServiceTime: 8},
				{ArrivalTime: 1, ServiceTime: 4},
				{ArrivalTime: 2, ServiceTime: 9},
				{ArrivalTime: 3, ServiceTime: 5},
			},
		},
		Mutex: &MutexSpec{Actors: 2, Mode: ModeRoundRobin, Rounds: 3},
	}
}

// Validate checks every configured section.
// Errors wrap sim.ErrInvalidConfiguration.
func (s *Spec) Validate() error {
	if s.Paging == nil && s.Scheduling == nil && s.Mutex == nil {
		return invalid("scenario configures no engine; set paging, scheduling or mutex")
	}
	if s.Paging != nil {
		if err := s.Paging.validate(); err != nil {
			return err
		}
	}
	if s.Scheduling != nil {
		if err := s.Scheduling.validate(); err != nil {
			return err
		}
	}
	if s.Mutex != nil {
		if err := s.Mutex.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p *PagingSpec) validate() error {
	if p.Capacity <= 0 {
		return invalid("paging.capacity must be positive, got %d", p.Capacity)
	}
	if !paging.ValidPolicies[p.Policy] {
		return invalid("unknown paging.policy %q; valid: fifo, lru, optimal", p.Policy)
	}
	if (len(p.Sequence) > 0) == (p.Generate != nil) {
		return invalid("paging needs exactly one of sequence or generate")
	}
	if g := p.Generate; g != nil {
		if g.Length <= 0 {
			return invalid("paging.generate.length must be positive, got %d", g.Length)
		}
		if g.DistinctPages <= 0 {
			return invalid("paging.generate.distinct_pages must be positive, got %d", g.DistinctPages)
		}
	}
	return nil
}

func (c *SchedulingSpec) validate() error {
	if !scheduling.ValidPolicies[c.Policy] {
		return invalid("unknown scheduling.policy %q; valid: fcfs, srtf", c.Policy)
	}
	if c.Preemptive && c.Policy != scheduling.SRTF {
		return invalid("scheduling.preemptive requires policy srtf, got %q", c.Policy)
	}
	if (len(c.Jobs) > 0) == (c.Generate != nil) {
		return invalid("scheduling needs exactly one of jobs or generate")
	}
	for i, j := range c.Jobs {
		if j.ArrivalTime < 0 {
			return invalid("scheduling.jobs[%d].arrival must be non-negative, got %d", i, j.ArrivalTime)
		}
		if j.ServiceTime <= 0 {
			return invalid("scheduling.jobs[%d].service must be positive, got %d", i, j.ServiceTime)
		}
	}
	if g := c.Generate; g != nil {
		if g.Count <= 0 {
			return invalid("scheduling.generate.count must be positive, got %d", g.Count)
		}
		if g.MaxArrival < 0 {
			return invalid("scheduling.generate.max_arrival must be non-negative, got %d", g.MaxArrival)
		}
		if g.MaxArrival == math.MaxInt64 {
			return invalid("scheduling.generate.max_arrival must be below %d", int64(math.MaxInt64))
		}
		if g.MaxService-g.MinService == math.MaxInt64 {
			return invalid("scheduling.generate service range %d..%d is too wide", g.MinService, g.MaxService)
		}
		if g.MinService <= 0 || g.MaxService < g.MinService {
			return invalid("scheduling.generate needs 0 < min_service <= max_service, got %d..%d", g.MinService, g.MaxService)
		}
	}
	return nil
}

func (m *MutexSpec) validate() error {
	if m.Actors <= 0 {
		return invalid("mutex.actors must be positive, got %d", m.Actors)
	}
	if !ValidMutexModes[m.Mode] {
		return invalid("unknown mutex.mode %q; valid: round-robin, interleaved", m.Mode)
	}
	switch m.EffectiveMode() {
	case ModeRoundRobin:
		if m.Rounds <= 0 {
			return invalid("mutex.rounds must be positive in round-robin mode, got %d", m.Rounds)
		}
	case ModeInterleaved:
		if m.Steps <= 0 {
			return invalid("mutex.steps must be positive in interleaved mode, got %d", m.Steps)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", sim.ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
