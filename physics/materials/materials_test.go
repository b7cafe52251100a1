package materials

import (
	"strings"
	"testing"
)

func waterMDF() string {
	return `<pumas>
<!-- simple two-element MDF for testing -->
<element name="Hydrogen" Z="1" A="1.008" I="19.2"/>
<element name="Oxygen" Z="8" A="15.999" I="95.0"/>
<material name="Water" density="1.0">
  <component name="Hydrogen" fraction="0.111894"/>
  <component name="Oxygen" fraction="0.888106"/>
</material>
<material name="WetRock" kind="composite">
  <component name="Water" fraction="0.3"/>
</material>
</pumas>`
}

func TestParseMDFBuildsRegistry(t *testing.T) {
	reg := NewRegistry()
	err := ReferenceMDFParser{}.Parse(strings.NewReader(waterMDF()), reg, true)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(reg.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(reg.Elements))
	}
	if len(reg.Base) != 1 {
		t.Fatalf("expected 1 base material, got %d", len(reg.Base))
	}
	water := reg.Base[0]
	if water.StoppingFile != "water.txt" {
		t.Errorf("expected default stopping file water.txt, got %q", water.StoppingFile)
	}
	if water.ZoverA <= 0 || water.ZoverA >= 1 {
		t.Errorf("unexpected <Z/A> for water: %v", water.ZoverA)
	}
}

func TestElementFractionsRecurseThroughComposite(t *testing.T) {
	reg := NewRegistry()
	if err := (ReferenceMDFParser{}).Parse(strings.NewReader(waterMDF()), reg, true); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// composite is index 1 (after the single base material at index 0)
	fracs, err := reg.ElementFractions(1)
	if err != nil {
		t.Fatalf("ElementFractions: %v", err)
	}
	// WetRock is 30% water by mass; water is ~11.2% H / 88.8% O by mass.
	hIdx, _ := reg.ElementByName("Hydrogen")
	if got := fracs[hIdx.Index]; got < 0.03 || got > 0.04 {
		t.Errorf("hydrogen fraction in composite = %v, want ~0.0336", got)
	}
}

func TestAddBaseRejectsNonPositiveDensity(t *testing.T) {
	reg := NewRegistry()
	h := reg.AddElement(AtomicElement{Name: "H", Z: 1, A: 1.008, I: 19.2e-9})
	_, err := reg.AddBase(BaseMaterial{
		Name:       "Bad",
		Density:    0,
		Components: []MaterialComponent{{ElementIndex: h, Fraction: 1}},
	})
	if err == nil {
		t.Fatal("expected an error for non-positive density")
	}
}

func TestCompositeDensityIsInverseWeighted(t *testing.T) {
	reg := NewRegistry()
	h := reg.AddElement(AtomicElement{Name: "H", Z: 1, A: 1.008, I: 19.2e-9})
	baseA, _ := reg.AddBase(BaseMaterial{Name: "A", Density: 1000, Components: []MaterialComponent{{ElementIndex: h, Fraction: 1}}})
	baseB, _ := reg.AddBase(BaseMaterial{Name: "B", Density: 2000, Components: []MaterialComponent{{ElementIndex: h, Fraction: 1}}})
	idx, err := reg.AddComposite(CompositeMaterial{Name: "Mix", Components: []struct {
		BaseIndex int
		Fraction  float64
	}{{BaseIndex: baseA, Fraction: 0.5}, {BaseIndex: baseB, Fraction: 0.5}}})
	if err != nil {
		t.Fatalf("AddComposite: %v", err)
	}
	density, _ := reg.Density(idx)
	want := 1 / (0.5/1000 + 0.5/2000)
	if diff := density - want; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("composite density = %v, want %v", density, want)
	}
}

func TestStoppingPowerReaderSkipsHeaderAndAnnotationLines(t *testing.T) {
	text := ` Muon kinetic energy   dE/dx ...
 Minimum ionization at some value
   1.000E+01  0.0  1.0E-03  2.0E-04  3.0E-05  2.0E+00  2.0031E+00  4.0E+02
`
	rows, err := ReferenceStoppingPowerReader{}.Read(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 data row, got %d", len(rows))
	}
	if rows[0].KineticEnergy != 0.01 {
		t.Errorf("expected K=0.01 GeV, got %v", rows[0].KineticEnergy)
	}
}
