package cmd

import (
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/pumas-go/physics/materials"
	"github.com/inference-sim/pumas-go/physics/tables"
	"github.com/inference-sim/pumas-go/physics/tabulate"
)

var (
	buildMDFPath  string
	buildTablesDir string
	buildOutPath  string
	buildConfig   string
	buildParticle string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build physics tables from an MDF material description",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(buildConfig)
		if err != nil {
			logrus.Fatalf("loading config: %v", err)
		}
		defaults := cfg.particleOrFatal(buildParticle)

		reg := materials.NewRegistry()
		if err := materials.OpenMDF(buildMDFPath, reg, false); err != nil {
			logrus.Fatalf("parsing MDF %s: %v", buildMDFPath, err)
		}
		if buildTablesDir != "" {
			if missing := missingStoppingPowerFiles(reg, buildTablesDir); len(missing) > 0 {
				logrus.Warnf("missing stopping-power files for materials: %v (tabulating from DCS models instead)", missing)
			}
		}

		grid := logGrid(cfg.GridMin, cfg.GridMax, cfg.GridNodes)
		settings := tabulate.DefaultSettings()
		settings.ProjectileMass = defaults.MassGeV
		if defaults.CutFraction > 0 {
			settings.CutFraction = defaults.CutFraction
		}

		pt, err := tabulate.Build(reg, grid, settings)
		if err != nil {
			logrus.Fatalf("building physics tables: %v", err)
		}

		data, err := (tables.JSONDump{}).WriteDump(pt)
		if err != nil {
			logrus.Fatalf("serializing physics dump: %v", err)
		}
		if err := os.WriteFile(buildOutPath, data, 0644); err != nil {
			logrus.Fatalf("writing dump %s: %v", buildOutPath, err)
		}
		logrus.Infof("built physics tables for %d materials, %d grid nodes -> %s",
			reg.NMaterials(), len(grid.K), buildOutPath)
	},
}

func logGrid(lo, hi float64, n int) materials.KineticGrid {
	if n < 2 {
		n = 2
	}
	xs := make([]float64, n)
	logLo, logHi := math.Log(lo), math.Log(hi)
	for i := range xs {
		xs[i] = math.Exp(logLo + (logHi-logLo)*float64(i)/float64(n-1))
	}
	return materials.KineticGrid{K: xs}
}

func init() {
	buildCmd.Flags().StringVar(&buildMDFPath, "mdf", "", "Path to the material description file (required)")
	buildCmd.Flags().StringVar(&buildTablesDir, "tables", "", "Directory of precomputed stopping-power text files (optional; checked, not required)")
	buildCmd.Flags().StringVar(&buildOutPath, "out", "physics.json", "Path to write the physics dump")
	buildCmd.Flags().StringVar(&buildConfig, "config", "", "Path to pumas.yaml (defaults used if empty)")
	buildCmd.Flags().StringVar(&buildParticle, "particle", "muon", "Projectile: muon or tau")
	buildCmd.MarkFlagRequired("mdf")
}
