package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/inference-sim/pumas-go/physics/materials"
)

func waterMDF() string {
	return `<pumas>
<element name="Hydrogen" Z="1" A="1.008" I="19.2"/>
<element name="Oxygen" Z="8" A="15.999" I="95.0"/>
<material name="Water" density="1.0">
  <component name="Hydrogen" fraction="0.111894"/>
  <component name="Oxygen" fraction="0.888106"/>
</material>
</pumas>`
}

func TestMissingStoppingPowerFilesDetectsMissing(t *testing.T) {
	reg := materials.NewRegistry()
	h := reg.AddElement(materials.AtomicElement{Name: "H", Z: 1, A: 1.008, I: 19.2e-9})
	if _, err := reg.AddBase(materials.BaseMaterial{
		Name:       "Water",
		Density:    1000,
		Components: []materials.MaterialComponent{{ElementIndex: h, Fraction: 1}},
	}); err != nil {
		t.Fatalf("AddBase: %v", err)
	}
	missing := missingStoppingPowerFiles(reg, t.TempDir())
	if len(missing) != 1 || missing[0] != "Water" {
		t.Errorf("missing = %v, want [Water]", missing)
	}
}

func TestMissingStoppingPowerFilesNoneMissingWhenPresent(t *testing.T) {
	dir := t.TempDir()
	reg := materials.NewRegistry()
	h := reg.AddElement(materials.AtomicElement{Name: "H", Z: 1, A: 1.008, I: 19.2e-9})
	if _, err := reg.AddBase(materials.BaseMaterial{
		Name:       "Water",
		Density:    1000,
		Components: []materials.MaterialComponent{{ElementIndex: h, Fraction: 1}},
	}); err != nil {
		t.Fatalf("AddBase: %v", err)
	}
	body := " Muon kinetic energy   dE/dx ...\n   1.000E+01  0.0  1.0E-03  2.0E-04  3.0E-05  2.0E+00  2.0031E+00  4.0E+02\n"
	if err := os.WriteFile(filepath.Join(dir, "Water.txt"), []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	missing := missingStoppingPowerFiles(reg, dir)
	if len(missing) != 0 {
		t.Errorf("missing = %v, want none", missing)
	}
}
