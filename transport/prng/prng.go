// Package prng defines the Source collaborator interface spec §1 scopes out
// of the core module as an external dependency (the real implementation is
// the target platform's default generator, typically a Mersenne Twister),
// plus PartitionedSource, a deterministic per-subsystem RNG derivation layer
// adopted nearly verbatim from the teacher's PartitionedRNG: a run's
// subsystems (Coulomb hard-event sampling, DEL target/energy drawing,
// magnetic-deflection jitter, decay sampling) each get their own
// independent stream derived from one master seed, so enabling or disabling
// one subsystem never perturbs another's draws.
package prng

import (
	"hash/fnv"
	"math/rand"
)

// Source is the minimal uniform-variate interface every sampler in this
// module consumes: a stream of independent Uniform(0,1) draws. Spec §1
// scopes the concrete default generator out as an external collaborator;
// Mersenne below is a reference implementation good enough to exercise
// transport end to end.
type Source interface {
	Float64() float64
}

// Mersenne wraps the standard library's math/rand generator (itself an
// Additive Lagged Fibonacci variant, not literally MT19937, but the
// simplest stdlib stand-in for the "platform default PRNG" collaborator
// spec §6 leaves unspecified).
type Mersenne struct {
	r *rand.Rand
}

// NewMersenne seeds a reference Source from seed.
func NewMersenne(seed int64) *Mersenne {
	return &Mersenne{r: rand.New(rand.NewSource(seed))}
}

func (m *Mersenne) Float64() float64 { return m.r.Float64() }

// Subsystem names, matching the teacher's SubsystemWorkload/SubsystemRouter
// naming convention, generalized to this module's physics subsystems.
const (
	SubsystemCoulomb    = "coulomb"
	SubsystemDEL        = "del"
	SubsystemDeflection = "deflection"
	SubsystemDecay      = "decay"
	SubsystemScattering = "scattering"
	SubsystemStraggling = "straggling"
)

// PartitionedSource provides deterministic, isolated RNG streams per
// subsystem, derived from one master seed: masterSeed XOR fnv1a64(name).
// Thread-safety: NOT thread-safe, matching the teacher's PartitionedRNG;
// callers must confine a PartitionedSource to a single goroutine.
type PartitionedSource struct {
	masterSeed int64
	streams    map[string]*Mersenne
}

// NewPartitionedSource derives a PartitionedSource from a single master
// seed; the same seed always produces the same subsystem streams
// bit-for-bit, the determinism invariant spec §3/§8 require of a transport
// run.
func NewPartitionedSource(masterSeed int64) *PartitionedSource {
	return &PartitionedSource{masterSeed: masterSeed, streams: make(map[string]*Mersenne)}
}

// For returns the (cached) Source for subsystem name, creating and seeding
// it on first use.
func (p *PartitionedSource) For(name string) Source {
	if s, ok := p.streams[name]; ok {
		return s
	}
	derived := p.masterSeed ^ int64(fnv1a64(name))
	s := NewMersenne(derived)
	p.streams[name] = s
	return s
}

func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
