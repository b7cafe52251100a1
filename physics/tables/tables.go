// Package tables defines PhysicsTables, the arena-like, write-once/read-many
// data type holding every tabulated quantity a transport run consults:
// per-material CSDA/mixed range, proper time, total and per-process stopping
// power, process cross sections, multiple-scattering moments, straggling
// variance, hard-Coulomb cutoff, and DCS envelopes, all as functions of
// kinetic energy on the shared grid. Built once by physics/tabulate, never
// mutated afterward (spec §3's PhysicsTables lifecycle), and addressed by
// (material index, scheme) rather than by pointer chasing so it serializes
// as a flat set of typed slices.
package tables

import (
	"github.com/inference-sim/pumas-go/physics/dcs"
	"github.com/inference-sim/pumas-go/physics/interp"
)

// Scheme selects which energy-loss accounting a property accessor uses:
// detailed (discrete events above a cutoff, continuous below), hybrid
// (CSDA for soft losses, discrete for hard), or CSDA (fully continuous).
type Scheme int

const (
	Detailed Scheme = iota
	Hybrid
	CSDA
)

// NLarmor is the highest proper-time Taylor moment order tabulated for the
// closed-form magnetic-deflection fast path (Li[0..NLarmor]).
const NLarmor = 8

// MaterialTable holds every per-material tabulated quantity, each as an
// interp.Table over the shared kinetic-energy grid.
type MaterialTable struct {
	Name    string
	Density float64 // kg/m^3, carried through from materials.Registry so a loaded dump is self-contained

	// CSDARange is the cumulative integral of 1/dE_csda: the range a
	// particle would travel if ALL energy loss (including what detailed/
	// mixed schemes draw as discrete events) were continuous. MixedRange is
	// the same integral against dE_mixed, the continuous-below-cutoff rate
	// alone; since dE_csda >= dE_mixed pointwise, CSDARange <= MixedRange
	// everywhere, the invariant spec §3 requires of the two range tables.
	CSDARange  *interp.Table // kg/m^2
	MixedRange *interp.Table // kg/m^2

	// TCsda/TMixed are the companion proper-time-to-stop tables, m*integral
	// of dK/(p*dE), built against DECsda and TotalLoss respectively.
	TCsda  *interp.Table // s
	TMixed *interp.Table // s

	DECsda    *interp.Table // GeV*m^2/kg, full-range mean stopping power (no DEL cutoff)
	TotalLoss *interp.Table // GeV*m^2/kg, dE_mixed: continuous loss below the DEL cutoff only
	BremsLoss *interp.Table
	PairLoss  *interp.Table
	PhotoLoss *interp.Table
	IonLoss   *interp.Table

	BremsCS *interp.Table // m^2/kg, macroscopic cross section above the DEL cutoff
	PairCS  *interp.Table
	PhotoCS *interp.Table

	// CS is the total macroscopic cross section (sum of BremsCS/PairCS/
	// PhotoCS); CSf holds, per process, the cumulative fraction of CS
	// contributed by that process and everything listed before it in
	// radiativeProcesses order, so CSf[Photonuclear] == 1 everywhere by
	// construction.
	CS  *interp.Table
	CSf map[dcs.Process]*interp.Table

	// NIel/NIin are cumulative interaction counts vs grammage: the number
	// of hard Coulomb events (1/ScatteringLength integrated) and radiative
	// discrete events (CS integrated) expected by the time a particle
	// starting at K has traveled a given grammage.
	NIel *interp.Table
	NIin *interp.Table

	ScatteringLength *interp.Table // m, mean free path between hard Coulomb events
	Omega            *interp.Table // first transport coefficient Ms1 = 1/lambda1, 1/m

	// StragglingVariance is the energy-loss straggling variance per unit
	// grammage (GeV^2*m^2/kg), distinct from Omega (which is an angular
	// moment, not an energy variance).
	StragglingVariance *interp.Table

	// Mu0 is the normalized EHS angular cutoff, 0.5*(1-muCut), so
	// 0 <= Mu0 <= 0.5*(1-cos(1 degree)) by construction. Lb is defined so
	// that 1/lambda_EHS(K) == Lb(K)/p(K)^2 exactly.
	Mu0 *interp.Table
	Lb  *interp.Table

	// Li holds the proper-time Taylor moments order 0..NLarmor used by the
	// closed-form CSDA+homogeneous-field magnetic deflection fast path;
	// only Li[1] is consumed by the current direction-only transport model
	// (see DESIGN.md), the rest are carried for data-model completeness.
	Li [NLarmor + 1]*interp.Table

	Kt   float64 // GeV, regularization threshold: smallest K where CS > 0
	AMax float64 // GeV*m^2/kg, asymptotic ionization-like term of the a(E)+b(E)*E decomposition
	BMax float64 // m^2/kg, asymptotic radiative-loss slope of the same decomposition

	EffectiveZ int     // mass-fraction-weighted average atomic number, used by the Coulomb hard-event sampler
	EffectiveA float64 // mass-fraction-weighted average mass number

	Envelopes map[dcs.Process]*interp.Table // tabulated envelope Max as f(K); Alpha is stored separately
	Alphas    map[dcs.Process]float64
}

// PhysicsTables is the complete tabulation for a physics build: the shared
// kinetic-energy grid plus one MaterialTable per base and composite
// material, indexed identically to materials.Registry.
type PhysicsTables struct {
	Grid      []float64
	Materials []MaterialTable
}

// Get returns the MaterialTable for materialIndex, or nil if out of range.
func (t *PhysicsTables) Get(materialIndex int) *MaterialTable {
	if materialIndex < 0 || materialIndex >= len(t.Materials) {
		return nil
	}
	return &t.Materials[materialIndex]
}
