// Package transport implements L7 (single-step advance), L8 (discrete-event
// sampling: DEL target/energy draw, magnetic deflection, multiple soft
// scattering), and L9 (the transport driver: CSDA fast path plus the
// general event-stepping loop) on top of a built physics/tables.PhysicsTables.
//
// The stepping/driver split is grounded on sim/cluster's Event interface
// (Timestamp()/Execute(*ClusterSimulator)) and container/heap-backed event
// queue: transport.Event plays the same role, ordering the candidate
// discrete interactions (hard Coulomb scattering, a discrete energy loss,
// the caller's own distance/time/energy limits) within one step. The
// per-subsystem RNG partitioning is sim/rng.go's PartitionedRNG, adopted as
// transport/prng.PartitionedSource.
package transport

import (
	"github.com/inference-sim/pumas-go/physics/interp"
	"github.com/inference-sim/pumas-go/physics/tables"
	"github.com/inference-sim/pumas-go/transport/prng"
	"github.com/inference-sim/pumas-go/transport/recorder"
)

// Limits bounds a transport run: the particle stops (without a physical
// decay or absorption) once any of these is exceeded.
type Limits struct {
	MinKinetic float64 // GeV; stop once K drops below this
	MaxDistance float64 // kg/m^2; stop once accumulated grammage exceeds this
	MaxTime     float64 // s (proper time); stop once exceeded
	MaxSteps    int     // safety bound on the stepping loop
}

// DefaultLimits returns permissive limits suitable for a single full-range
// CSDA run (spec §5's "a transport run always terminates" invariant, backed
// here by MaxSteps as the last-resort guard).
func DefaultLimits() Limits {
	return Limits{MinKinetic: 1e-6, MaxDistance: 1e12, MaxTime: 1e6, MaxSteps: 100000}
}

// DecayMode selects how (or whether) particle decay is accounted for
// during a run.
type DecayMode int

const (
	// DecayDisabled tracks the particle as stable (muon/tau lifetime
	// ignored), the default for a pure energy-loss/scattering study.
	DecayDisabled DecayMode = iota
	// DecayWeighted applies decay as a continuous survival-probability
	// attenuation of Particle.Weight each step, never terminating the
	// trajectory on its own — the analogue of PUMAS's "weight" decay mode.
	DecayWeighted
	// DecayRandomised draws an explicit proper-time-to-decay each step and
	// terminates the trajectory once it elapses, recording a decay event.
	DecayRandomised
)

// Modes selects which physical effects a run includes.
type Modes struct {
	Scheme       tables.Scheme
	Scattering   bool // multiple soft scattering / hard Coulomb events
	Magnetic     bool // Larmor deflection in an external field
	Straggling   bool // PENELOPE-style fluctuated continuous loss, vs pure CSDA
	Backward     bool // adjoint (backward) transport vs forward
	Decay        DecayMode
	MagneticField [3]float64 // Tesla, lab frame
}

// RunStats accumulates ambient per-run metrics, in the spirit of
// sim/metrics.go's plain accumulate-then-report struct.
type RunStats struct {
	Steps        int
	HardScatters int
	DELs         int
	Decays       int
	FinalWeight  float64
}

// Particle is the mutable per-trajectory state advanced by Advance and Run.
type Particle struct {
	Position  [3]float64
	Direction [3]float64 // unit vector
	Kinetic   float64    // GeV
	Weight    float64    // 1 for forward transport, tracked for backward (adjoint)
	Distance  float64    // accumulated grammage, kg/m^2
	Time      float64    // proper time, s
	Alive     bool
}

// NewParticle returns a particle ready for forward transport starting at
// the origin along +z with the given kinetic energy.
func NewParticle(kinetic float64) Particle {
	return Particle{Direction: [3]float64{0, 0, 1}, Kinetic: kinetic, Weight: 1, Alive: true}
}

// Context bundles everything a single Advance call needs: the physics
// tables for the current material, the material's density (for
// grammage<->length conversion), the particle's rest mass, rng streams,
// and a recorder.
type Context struct {
	Tables       *tables.PhysicsTables
	MaterialIdx  int
	Density      float64 // kg/m^3
	Mass         float64 // GeV
	MeanLifetime float64 // rest-frame mean lifetime, s (0 disables decay regardless of Modes.Decay)
	Limits       Limits
	Modes        Modes
	RNG          *prng.PartitionedSource
	Recorder     recorder.Recorder
	cache        interp.Cache
	stats        RunStats
}

func (c *Context) material() *tables.MaterialTable {
	return c.Tables.Get(c.MaterialIdx)
}
