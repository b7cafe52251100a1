package cmd

import (
	"bytes"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/pumas-go/internal/errcat"
)

// ParticleDefaults bundles a projectile's rest mass and its default
// settings. pumas build reads MassGeV and CutFraction; pumas run reads
// MassGeV, MeanLifetimeSec, and Scattering (the last only when --scattering
// is not given). Scheme, Magnetic, and Straggling are loaded but read by
// neither command.
type ParticleDefaults struct {
	MassGeV         float64 `yaml:"mass_gev"`
	MeanLifetimeSec float64 `yaml:"mean_lifetime_sec"`
	Scheme          string  `yaml:"scheme"`
	CutFraction     float64 `yaml:"cut_fraction"`
	Scattering      bool    `yaml:"scattering"`
	Magnetic        bool    `yaml:"magnetic"`
	Straggling      bool    `yaml:"straggling"`
}

// Config is the full pumas.yaml structure: one section per known particle,
// plus the tabulation grid shared by every build. All top-level sections
// must be listed to satisfy KnownFields(true) strict parsing, so a typo in
// a settings key is a load-time error rather than a silently ignored field.
type Config struct {
	Version   string                      `yaml:"version"`
	Particles map[string]ParticleDefaults `yaml:"particles"`
	GridMin   float64                     `yaml:"grid_min_gev"`
	GridMax   float64                     `yaml:"grid_max_gev"`
	GridNodes int                         `yaml:"grid_nodes"`
}

// defaultConfig is used whenever --config is not given, mirroring the
// teacher's hardcoded fallback for defaults.yaml.
func defaultConfig() Config {
	return Config{
		Version: "1",
		Particles: map[string]ParticleDefaults{
			"muon": {MassGeV: 0.1056583745, MeanLifetimeSec: 2.1969811e-6, Scheme: "detailed", CutFraction: 0.05, Scattering: true},
			"tau":  {MassGeV: 1.77686, MeanLifetimeSec: 2.903e-13, Scheme: "detailed", CutFraction: 0.05, Scattering: true},
		},
		GridMin:   1e-3,
		GridMax:   1e3,
		GridNodes: 64,
	}
}

// loadConfig parses path into a Config struct with strict field checking: an
// unrecognised YAML key is a load-time error, matching cmd/default_config.go's
// original KnownFields(true) idiom.
func loadConfig(path string) (Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errcat.Wrap(errcat.IO, "loadConfig", err)
	}
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, errcat.Wrap(errcat.Format, "loadConfig", err)
	}
	return cfg, nil
}

func (c Config) particleOrFatal(name string) ParticleDefaults {
	d, ok := c.Particles[name]
	if !ok {
		logrus.Fatalf("unknown particle %q in config", name)
	}
	return d
}
