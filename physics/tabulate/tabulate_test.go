package tabulate

import (
	"math"
	"testing"

	"github.com/inference-sim/pumas-go/physics/materials"
)

func waterRegistry(t *testing.T) (*materials.Registry, int) {
	t.Helper()
	reg := materials.NewRegistry()
	h := reg.AddElement(materials.AtomicElement{Name: "H", Z: 1, A: 1.008, I: 19.2e-9})
	o := reg.AddElement(materials.AtomicElement{Name: "O", Z: 8, A: 15.999, I: 95.0e-9})
	idx, err := reg.AddBase(materials.BaseMaterial{
		Name:    "Water",
		Density: 1000,
		Components: []materials.MaterialComponent{
			{ElementIndex: h, Fraction: 0.111894},
			{ElementIndex: o, Fraction: 0.888106},
		},
	})
	if err != nil {
		t.Fatalf("AddBase: %v", err)
	}
	return reg, idx
}

func logGrid(lo, hi float64, n int) materials.KineticGrid {
	xs := make([]float64, n)
	logLo, logHi := math.Log(lo), math.Log(hi)
	for i := 0; i < n; i++ {
		xs[i] = math.Exp(logLo + (logHi-logLo)*float64(i)/float64(n-1))
	}
	return materials.KineticGrid{K: xs}
}

func TestBuildProducesMonotoneCSDARange(t *testing.T) {
	reg, waterIdx := waterRegistry(t)
	grid := logGrid(1e-3, 1e2, 12)
	pt, err := Build(reg, grid, DefaultSettings())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	mt := pt.Get(waterIdx)
	if mt == nil || mt.CSDARange == nil {
		t.Fatal("expected a built CSDA range table for water")
	}
	_, ys := mt.CSDARange.Nodes()
	for i := 1; i < len(ys); i++ {
		if ys[i] < ys[i-1] {
			t.Fatalf("CSDA range not monotone at index %d: %v < %v", i, ys[i], ys[i-1])
		}
	}
}

func TestBuildTotalLossIsPositiveEverywhere(t *testing.T) {
	reg, waterIdx := waterRegistry(t)
	grid := logGrid(1e-3, 1e2, 12)
	pt, err := Build(reg, grid, DefaultSettings())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	mt := pt.Get(waterIdx)
	_, ys := mt.TotalLoss.Nodes()
	for i, v := range ys {
		if v <= 0 || math.IsNaN(v) {
			t.Errorf("total loss at node %d = %v, want finite positive", i, v)
		}
	}
}

func TestCompositeLinearCombinationMatchesWeightedSum(t *testing.T) {
	reg, waterIdx := waterRegistry(t)
	h := reg.Elements[0]
	_ = h
	leadIdx, err := reg.AddBase(materials.BaseMaterial{
		Name:    "Lead",
		Density: 11340,
		Components: []materials.MaterialComponent{
			{ElementIndex: reg.AddElement(materials.AtomicElement{Name: "Pb", Z: 82, A: 207.2, I: 823.0e-9}), Fraction: 1},
		},
	})
	if err != nil {
		t.Fatalf("AddBase Lead: %v", err)
	}
	compIdx, err := reg.AddComposite(materials.CompositeMaterial{
		Name: "WaterLeadMix",
		Components: []struct {
			BaseIndex int
			Fraction  float64
		}{{BaseIndex: waterIdx, Fraction: 0.5}, {BaseIndex: leadIdx, Fraction: 0.5}},
	})
	if err != nil {
		t.Fatalf("AddComposite: %v", err)
	}

	grid := logGrid(1e-3, 1e2, 10)
	pt, err := Build(reg, grid, DefaultSettings())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	mix := pt.Get(compIdx)
	water := pt.Get(waterIdx)
	lead := pt.Get(leadIdx)

	K := 1.0
	got := mix.TotalLoss.Eval(K, nil)
	want := 0.5*water.TotalLoss.Eval(K, nil) + 0.5*lead.TotalLoss.Eval(K, nil)
	if rel := math.Abs(got-want) / want; rel > 1e-9 {
		t.Errorf("composite total loss = %v, want linear combination %v", got, want)
	}
}
