package sim

import (
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

// SimulationKey uniquely identifies a reproducible scenario run.
// Two runs with the same SimulationKey and identical configuration
// MUST produce identical event streams.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

const (
	// SubsystemPages draws generated page-reference strings.
	SubsystemPages = "pages"

	// SubsystemJobs draws generated job arrival and service times.
	SubsystemJobs = "jobs"

	// SubsystemActors picks which actor moves next in interleaved mutex runs.
	SubsystemActors = "actors"
)

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem,
// so adding draws in one subsystem never shifts the sequence seen by another.
//
// Derivation: subsystem seed = masterSeed XOR xxhash64(subsystemName).
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	derived := int64(p.key) ^ int64(xxhash.Sum64String(name))
	rng := rand.New(rand.NewSource(derived))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}
