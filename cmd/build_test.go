package cmd

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/inference-sim/pumas-go/physics/tables"
)

func TestLogGridIsMonotonicAndLogSpaced(t *testing.T) {
	grid := logGrid(1e-3, 1e3, 8)
	if len(grid.K) != 8 {
		t.Fatalf("expected 8 nodes, got %d", len(grid.K))
	}
	if grid.K[0] != 1e-3 {
		t.Errorf("first node = %v, want 1e-3", grid.K[0])
	}
	if math.Abs(grid.K[len(grid.K)-1]-1e3) > 1e-9 {
		t.Errorf("last node = %v, want 1e3", grid.K[len(grid.K)-1])
	}
	for i := 1; i < len(grid.K); i++ {
		if grid.K[i] <= grid.K[i-1] {
			t.Fatalf("grid not monotonically increasing at index %d: %v", i, grid.K)
		}
	}
}

func TestLogGridClampsNodeCountAboveOne(t *testing.T) {
	grid := logGrid(1, 10, 1)
	if len(grid.K) != 2 {
		t.Errorf("expected node count clamped to 2, got %d", len(grid.K))
	}
}

func TestBuildCmdWritesPhysicsDump(t *testing.T) {
	dir := t.TempDir()
	mdfPath := filepath.Join(dir, "water.xml")
	if err := os.WriteFile(mdfPath, []byte(waterMDF()), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	outPath := filepath.Join(dir, "physics.json")

	buildMDFPath = mdfPath
	buildTablesDir = ""
	buildOutPath = outPath
	buildConfig = ""
	buildParticle = "muon"

	buildCmd.Run(buildCmd, nil)

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}
	pt, err := (tables.JSONDump{}).ReadDump(data)
	if err != nil {
		t.Fatalf("ReadDump: %v", err)
	}
	if len(pt.Materials) != 1 {
		t.Fatalf("expected 1 material, got %d", len(pt.Materials))
	}
	if pt.Materials[0].Name != "Water" {
		t.Errorf("material name = %q, want Water", pt.Materials[0].Name)
	}
	if pt.Materials[0].TotalLoss == nil {
		t.Error("expected a non-nil TotalLoss table")
	}
}
