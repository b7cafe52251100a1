package cmd

import (
	"path/filepath"

	"github.com/inference-sim/pumas-go/physics/materials"
)

// missingStoppingPowerFiles checks, for every base material in reg, whether
// a "<tablesDir>/<name>.txt" stopping-power file exists and parses, matching
// spec §6's "checks for and optionally generates missing stopping-power
// files." Generation itself is out of scope (delegated to the external
// stopping-power-table collaborator); this only detects and reports.
func missingStoppingPowerFiles(reg *materials.Registry, tablesDir string) []string {
	var missing []string
	for i := 0; i < reg.NBase(); i++ {
		name := reg.Name(i)
		path := filepath.Join(tablesDir, name+".txt")
		if _, err := materials.OpenStoppingPower(path); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}
