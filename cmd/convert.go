package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/pumas-go/physics/materials"
)

var (
	convertMDFPath    string
	convertTablesDir  string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Validate an MDF and report missing stopping-power files, without tabulating",
	Run: func(cmd *cobra.Command, args []string) {
		reg := materials.NewRegistry()
		if err := materials.OpenMDF(convertMDFPath, reg, true); err != nil {
			logrus.Fatalf("parsing MDF %s: %v", convertMDFPath, err)
		}
		logrus.Infof("MDF valid: %d elements, %d base materials, %d composite materials",
			len(reg.Elements), reg.NBase(), reg.NMaterials()-reg.NBase())

		if convertTablesDir == "" {
			logrus.Info("no --tables directory given, skipping stopping-power check")
			return
		}
		missing := missingStoppingPowerFiles(reg, convertTablesDir)
		if len(missing) == 0 {
			logrus.Info("all base materials have a stopping-power file")
			return
		}
		logrus.Warnf("missing stopping-power files for: %v", missing)
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertMDFPath, "mdf", "", "Path to the material description file (required)")
	convertCmd.Flags().StringVar(&convertTablesDir, "tables", "", "Directory of stopping-power text files to check")
	convertCmd.MarkFlagRequired("mdf")
}
