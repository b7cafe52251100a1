package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigHasMuonAndTau(t *testing.T) {
	cfg := defaultConfig()
	if _, ok := cfg.Particles["muon"]; !ok {
		t.Fatal("default config missing muon")
	}
	if _, ok := cfg.Particles["tau"]; !ok {
		t.Fatal("default config missing tau")
	}
	if cfg.GridNodes < 2 {
		t.Errorf("GridNodes = %d, want >= 2", cfg.GridNodes)
	}
}

func TestLoadConfigEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig(\"\"): %v", err)
	}
	if cfg.Version != defaultConfig().Version {
		t.Errorf("expected default config, got version %q", cfg.Version)
	}
}

func TestLoadConfigParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pumas.yaml")
	body := `
version: "1"
grid_min_gev: 0.01
grid_max_gev: 100
grid_nodes: 32
particles:
  muon:
    mass_gev: 0.1056583745
    scheme: detailed
    cut_fraction: 0.05
    scattering: true
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.GridNodes != 32 {
		t.Errorf("GridNodes = %d, want 32", cfg.GridNodes)
	}
	muon, ok := cfg.Particles["muon"]
	if !ok {
		t.Fatal("expected muon entry")
	}
	if muon.Scheme != "detailed" {
		t.Errorf("Scheme = %q, want detailed", muon.Scheme)
	}
}

func TestLoadConfigRejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pumas.yaml")
	body := "version: \"1\"\nbogus_field: true\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Fatal("expected an error for an unknown field under strict decoding")
	}
}

func TestLoadConfigMissingFileReturnsIOError(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
