package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/pumas-go/physics/tables"
	"github.com/inference-sim/pumas-go/transport"
	"github.com/inference-sim/pumas-go/transport/prng"
	"github.com/inference-sim/pumas-go/transport/recorder"
)

var (
	runPhysicsPath   string
	runParticle      string
	runK0            float64
	runDirection     string
	runScheme        string
	runScattering    string
	runBackward      bool
	runDecay         string
	runSeed          int64
	runLimitEnergy   float64
	runLimitDistance float64
	runRecordPath    string
	runMaterial      string
	runConfig        string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one particle transport through a built physics medium",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(runConfig)
		if err != nil {
			logrus.Fatalf("loading config: %v", err)
		}
		defaults := cfg.particleOrFatal(runParticle)

		data, err := os.ReadFile(runPhysicsPath)
		if err != nil {
			logrus.Fatalf("reading physics dump %s: %v", runPhysicsPath, err)
		}
		pt, err := (tables.JSONDump{}).ReadDump(data)
		if err != nil {
			logrus.Fatalf("decoding physics dump: %v", err)
		}

		materialIdx, err := resolveMaterial(pt, runMaterial)
		if err != nil {
			logrus.Fatalf("resolving material: %v", err)
		}

		scheme, straggling, err := parseScheme(runScheme)
		if err != nil {
			logrus.Fatalf("parsing --scheme: %v", err)
		}

		direction, err := parseDirection(runDirection)
		if err != nil {
			logrus.Fatalf("parsing --direction: %v", err)
		}

		decay, err := parseDecay(runDecay)
		if err != nil {
			logrus.Fatalf("parsing --decay: %v", err)
		}

		rec := recorder.Recorder(recorder.Noop{})
		if runRecordPath != "" {
			rec = recorder.NewInMemory(recorder.LevelEvents)
		}

		ctx := &transport.Context{
			Tables:       pt,
			MaterialIdx:  materialIdx,
			Density:      pt.Materials[materialIdx].Density,
			Mass:         defaults.MassGeV,
			MeanLifetime: defaults.MeanLifetimeSec,
			Limits:       transport.DefaultLimits(),
			Modes: transport.Modes{
				Scheme:     scheme,
				Scattering: runScattering == "mixed" || (!cmd.Flags().Changed("scattering") && defaults.Scattering),
				Straggling: straggling,
				Backward:   runBackward,
				Decay:      decay,
			},
			RNG: prng.NewPartitionedSource(runSeed),
		}
		ctx.Recorder = rec
		if runLimitEnergy > 0 {
			ctx.Limits.MinKinetic = runLimitEnergy
		}
		if runLimitDistance > 0 {
			ctx.Limits.MaxDistance = runLimitDistance
		}

		p := transport.NewParticle(runK0)
		p.Direction = direction

		stats, err := transport.Run(ctx, &p)
		if err != nil {
			logrus.Fatalf("transport run failed: %v", err)
		}

		fmt.Printf("steps=%d hard_scatters=%d dels=%d decays=%d final_weight=%.6g final_kinetic=%.6g final_distance=%.6g\n",
			stats.Steps, stats.HardScatters, stats.DELs, stats.Decays, stats.FinalWeight, p.Kinetic, p.Distance)

		if runRecordPath != "" {
			if err := writeTrace(rec.(*recorder.InMemory), runRecordPath); err != nil {
				logrus.Fatalf("writing trace: %v", err)
			}
		}
	},
}

func resolveMaterial(pt *tables.PhysicsTables, name string) (int, error) {
	if name == "" {
		if len(pt.Materials) == 0 {
			return 0, fmt.Errorf("physics dump has no materials")
		}
		return 0, nil
	}
	for i, m := range pt.Materials {
		if m.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("material %q not found in physics dump", name)
}

func parseScheme(s string) (tables.Scheme, bool, error) {
	switch s {
	case "csda":
		return tables.CSDA, false, nil
	case "mixed":
		return tables.Hybrid, false, nil
	case "detailed":
		return tables.Detailed, false, nil
	case "straggled":
		return tables.Detailed, true, nil
	default:
		return 0, false, fmt.Errorf("unknown scheme %q (want csda, mixed, detailed, or straggled)", s)
	}
}

func parseDecay(s string) (transport.DecayMode, error) {
	switch s {
	case "", "disabled":
		return transport.DecayDisabled, nil
	case "weighted":
		return transport.DecayWeighted, nil
	case "randomised", "randomized":
		return transport.DecayRandomised, nil
	default:
		return 0, fmt.Errorf("unknown decay mode %q (want disabled, weighted, or randomised)", s)
	}
}

func parseDirection(s string) ([3]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return [3]float64{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var out [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [3]float64{}, err
		}
		out[i] = v
	}
	return out, nil
}

func writeTrace(rec *recorder.InMemory, path string) error {
	var b strings.Builder
	for _, s := range rec.Steps {
		fmt.Fprintf(&b, "step K=%.6g distance=%.6g time=%.6g pos=%v\n", s.Kinetic, s.Distance, s.Time, s.Position)
	}
	for _, e := range rec.Events {
		fmt.Fprintf(&b, "event kind=%s K=%.6g distance=%.6g\n", e.Kind, e.State.Kinetic, e.State.Distance)
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

func init() {
	runCmd.Flags().StringVar(&runPhysicsPath, "physics", "", "Path to a physics dump produced by pumas build (required)")
	runCmd.Flags().StringVar(&runParticle, "particle", "muon", "Projectile: muon or tau")
	runCmd.Flags().Float64Var(&runK0, "k0", 1.0, "Initial kinetic energy (GeV)")
	runCmd.Flags().StringVar(&runDirection, "direction", "0,0,1", "Initial direction, comma-separated x,y,z")
	runCmd.Flags().StringVar(&runScheme, "scheme", "detailed", "csda, mixed, detailed, or straggled")
	runCmd.Flags().StringVar(&runScattering, "scattering", "disabled", "disabled or mixed")
	runCmd.Flags().BoolVar(&runBackward, "backward", false, "Run adjoint (backward) transport")
	runCmd.Flags().StringVar(&runDecay, "decay", "disabled", "disabled, weighted, or randomised")
	runCmd.Flags().Int64Var(&runSeed, "seed", 1, "Master RNG seed")
	runCmd.Flags().Float64Var(&runLimitEnergy, "limit-energy", 0, "Stop once kinetic energy drops below this (GeV)")
	runCmd.Flags().Float64Var(&runLimitDistance, "limit-distance", 0, "Stop once accumulated grammage exceeds this (kg/m^2)")
	runCmd.Flags().StringVar(&runRecordPath, "record", "", "Path to write a recorded step/event trace")
	runCmd.Flags().StringVar(&runMaterial, "material", "", "Material name in the physics dump (defaults to the first material)")
	runCmd.Flags().StringVar(&runConfig, "config", "", "Path to pumas.yaml (defaults used if empty)")
	runCmd.MarkFlagRequired("physics")
}
