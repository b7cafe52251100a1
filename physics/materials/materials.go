// Package materials holds the element and material data model from spec §3
// (AtomicElement, MaterialComponent, BaseMaterial, CompositeMaterial,
// KineticGrid) plus the interfaces for the two collaborators spec §1
// explicitly scopes out of this module: the materials description file
// (MDF) parser and the per-material stopping-power text table reader. Only
// a minimal reference implementation of each collaborator is provided, good
// enough to exercise physics/tabulate end to end; a production deployment
// is expected to supply its own.
package materials

import (
	"fmt"
	"math"

	"github.com/inference-sim/pumas-go/internal/errcat"
)

// AtomicElement is immutable after load.
type AtomicElement struct {
	Name  string
	Z     int     // atomic number
	A     float64 // atomic mass, g/mol
	I     float64 // mean excitation energy, GeV
	Index int     // tabulation index, assigned by the owning Registry
}

// MaterialComponent pairs an element (by registry index) with a mass
// fraction.
type MaterialComponent struct {
	ElementIndex int
	Fraction     float64
}

// BaseMaterial is an ordered list of element components with a reference
// density and derived quantities. Indexed in [0, N_base) by its owning
// Registry.
type BaseMaterial struct {
	Name       string
	Components []MaterialComponent
	Density    float64 // kg/m^3
	IOverride  float64 // 0 means "not overridden": use the Bragg-rule I
	ZoverA     float64 // computed <Z/A>
	AS         float64 // Sternheimer-like scaling a_S
	StoppingFile string
}

// CompositeMaterial is an ordered list of base-material components with
// mass fractions; density and element-level composition are derived.
// Indexed in [N_base, N_base+N_composite).
type CompositeMaterial struct {
	Name       string
	Components []struct {
		BaseIndex int
		Fraction  float64
	}
	Density float64 // kg/m^3, derived
}

// KineticGrid is the strictly increasing sequence of kinetic-energy nodes
// (GeV) shared by every tabulated material.
type KineticGrid struct {
	K []float64
}

// Validate enforces the §3 invariant that the grid is strictly monotone and
// every value finite.
func (g KineticGrid) Validate() error {
	if len(g.K) < 2 {
		return errcat.New(errcat.Configuration, "KineticGrid.Validate", "grid needs at least 2 nodes, got %d", len(g.K))
	}
	for i, k := range g.K {
		if math.IsNaN(k) || math.IsInf(k, 0) {
			return errcat.New(errcat.Format, "KineticGrid.Validate", "non-finite node at index %d", i)
		}
		if i > 0 && k <= g.K[i-1] {
			return errcat.New(errcat.Format, "KineticGrid.Validate", "grid not strictly increasing at index %d: %v <= %v", i, k, g.K[i-1])
		}
	}
	return nil
}

// Registry owns the full element/material namespace for one physics build:
// elements by name, base materials [0, N_base), composite materials
// [N_base, N_base+N_composite).
type Registry struct {
	Elements []AtomicElement
	byName   map[string]int
	Base     []BaseMaterial
	Composite []CompositeMaterial
}

// NewRegistry returns an empty Registry ready for AddElement/AddBase/AddComposite calls.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// AddElement registers an element, returning its Index. Re-registering the
// same name returns the existing index (idempotent, matching how an MDF may
// be re-parsed across the two-pass construction procedure of spec §6).
func (r *Registry) AddElement(e AtomicElement) int {
	if idx, ok := r.byName[e.Name]; ok {
		return idx
	}
	e.Index = len(r.Elements)
	r.Elements = append(r.Elements, e)
	r.byName[e.Name] = e.Index
	return e.Index
}

// ElementByName looks up a previously registered element.
func (r *Registry) ElementByName(name string) (AtomicElement, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return AtomicElement{}, false
	}
	return r.Elements[idx], true
}

// NBase returns the number of base materials.
func (r *Registry) NBase() int { return len(r.Base) }

// NMaterials returns the total number of base + composite materials.
func (r *Registry) NMaterials() int { return len(r.Base) + len(r.Composite) }

// AddBase appends a base material, computing <Z/A> from its components and
// the Registry's element table. The material's effective mean excitation
// energy (I, in GeV) is the Bragg additivity rule unless IOverride is set.
func (r *Registry) AddBase(m BaseMaterial) (int, error) {
	if m.Density <= 0 {
		return -1, errcat.New(errcat.Physics, "Registry.AddBase", "base material %q must have positive density, got %v", m.Name, m.Density)
	}
	var sumFrac float64
	var zOverA float64
	for _, c := range m.Components {
		if c.ElementIndex < 0 || c.ElementIndex >= len(r.Elements) {
			return -1, errcat.New(errcat.Format, "Registry.AddBase", "unknown element index %d in material %q", c.ElementIndex, m.Name)
		}
		el := r.Elements[c.ElementIndex]
		zOverA += c.Fraction * float64(el.Z) / el.A
		sumFrac += c.Fraction
	}
	if math.Abs(sumFrac-1) > 1e-6 {
		return -1, errcat.New(errcat.Format, "Registry.AddBase", "component fractions of %q sum to %v, want ~1", m.Name, sumFrac)
	}
	m.ZoverA = zOverA
	idx := len(r.Base)
	r.Base = append(r.Base, m)
	return idx, nil
}

// EffectiveI returns the material's mean excitation energy in GeV, applying
// the Bragg additivity rule (mass-fraction-weighted ln I) when IOverride is
// unset.
func (r *Registry) EffectiveI(baseIndex int) (float64, error) {
	if baseIndex < 0 || baseIndex >= len(r.Base) {
		return 0, errcat.New(errcat.Configuration, "Registry.EffectiveI", "invalid base material index %d", baseIndex)
	}
	m := r.Base[baseIndex]
	if m.IOverride > 0 {
		return m.IOverride, nil
	}
	var lnI float64
	for _, c := range m.Components {
		el := r.Elements[c.ElementIndex]
		lnI += c.Fraction * math.Log(el.I)
	}
	return math.Exp(lnI), nil
}

// AddComposite appends a composite material, deriving its density from the
// inverse-density-weighted sum of its base-material components.
func (r *Registry) AddComposite(m CompositeMaterial) (int, error) {
	var sumFrac, invDensity float64
	for _, c := range m.Components {
		if c.BaseIndex < 0 || c.BaseIndex >= len(r.Base) {
			return -1, errcat.New(errcat.Format, "Registry.AddComposite", "unknown base material index %d in composite %q", c.BaseIndex, m.Name)
		}
		base := r.Base[c.BaseIndex]
		invDensity += c.Fraction / base.Density
		sumFrac += c.Fraction
	}
	if math.Abs(sumFrac-1) > 1e-6 {
		return -1, errcat.New(errcat.Format, "Registry.AddComposite", "component fractions of %q sum to %v, want ~1", m.Name, sumFrac)
	}
	if invDensity <= 0 {
		return -1, errcat.New(errcat.Physics, "Registry.AddComposite", "composite %q density must be positive", m.Name)
	}
	m.Density = 1 / invDensity
	idx := len(r.Base) + len(r.Composite)
	r.Composite = append(r.Composite, m)
	return idx, nil
}

// ElementFractions flattens a material (base or composite) into per-element
// mass fractions, recursing through composite members, per spec §3's "mass
// fractions propagate recursively to the element-level composition."
func (r *Registry) ElementFractions(materialIndex int) (map[int]float64, error) {
	out := make(map[int]float64)
	if err := r.accumulateFractions(materialIndex, 1.0, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Registry) accumulateFractions(materialIndex int, weight float64, out map[int]float64) error {
	nBase := len(r.Base)
	switch {
	case materialIndex < nBase:
		for _, c := range r.Base[materialIndex].Components {
			out[c.ElementIndex] += weight * c.Fraction
		}
		return nil
	case materialIndex < nBase+len(r.Composite):
		comp := r.Composite[materialIndex-nBase]
		for _, c := range comp.Components {
			if err := r.accumulateFractions(c.BaseIndex, weight*c.Fraction, out); err != nil {
				return err
			}
		}
		return nil
	default:
		return errcat.New(errcat.Configuration, "Registry.accumulateFractions", "material index %d out of range", materialIndex)
	}
}

// Density returns the material's density in kg/m^3, whether base or
// composite.
func (r *Registry) Density(materialIndex int) (float64, error) {
	nBase := len(r.Base)
	switch {
	case materialIndex < nBase:
		return r.Base[materialIndex].Density, nil
	case materialIndex < nBase+len(r.Composite):
		return r.Composite[materialIndex-nBase].Density, nil
	default:
		return 0, errcat.New(errcat.Configuration, "Registry.Density", "material index %d out of range", materialIndex)
	}
}

// Name returns the material's display name.
func (r *Registry) Name(materialIndex int) string {
	nBase := len(r.Base)
	if materialIndex < nBase {
		return r.Base[materialIndex].Name
	}
	if materialIndex < nBase+len(r.Composite) {
		return r.Composite[materialIndex-nBase].Name
	}
	return fmt.Sprintf("<invalid material %d>", materialIndex)
}
