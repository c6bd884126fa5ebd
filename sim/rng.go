package sim

import (
	"hash/fnv"
	"math/rand"
)

// RunKey uniquely identifies a reproducible simulation run.
// Two runs with the same RunKey and identical configuration draw
// identical fault and workload sequences.
type RunKey int64

// RNG subsystem names. Each subsystem gets an isolated stream so that,
// for example, adding workload draws never perturbs the fault sequence.
const (
	SubsystemFaults     = "faults"
	SubsystemErrorCodes = "error_codes"
	SubsystemWorkload   = "workload"
)

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation: runKey XOR fnv1a64(subsystemName).
//
// Thread-safety: NOT thread-safe. Callers that draw from multiple goroutines
// must serialize access (RandomFaults does).
type PartitionedRNG struct {
	key        RunKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a RunKey.
func NewPartitionedRNG(key RunKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the RunKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() RunKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
