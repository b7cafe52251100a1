package transport

import (
	"math"
	"testing"

	"github.com/inference-sim/pumas-go/physics/materials"
	"github.com/inference-sim/pumas-go/physics/tables"
	"github.com/inference-sim/pumas-go/physics/tabulate"
	"github.com/inference-sim/pumas-go/transport/prng"
)

func waterContext(t *testing.T) (*Context, int) {
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
	xs := make([]float64, 16)
	logLo, logHi := math.Log(1e-3), math.Log(1e2)
	for i := range xs {
		xs[i] = math.Exp(logLo + (logHi-logLo)*float64(i)/float64(len(xs)-1))
	}
	pt, err := tabulate.Build(reg, materials.KineticGrid{K: xs}, tabulate.DefaultSettings())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ctx := &Context{
		Tables:      pt,
		MaterialIdx: idx,
		Density:     1000,
		Mass:        0.1056583745,
		Limits:      DefaultLimits(),
		Modes:       Modes{Scheme: tables.Detailed},
		RNG:         prng.NewPartitionedSource(1),
	}
	return ctx, idx
}

func TestAdvanceMovesAlongDirectionAndLosesEnergy(t *testing.T) {
	ctx, _ := waterContext(t)
	p := NewParticle(1.0)
	Advance(ctx, &p, 10)
	if p.Distance != 10 {
		t.Errorf("Distance = %v, want 10", p.Distance)
	}
	if p.Kinetic >= 1.0 {
		t.Errorf("Kinetic = %v, want < 1.0 after losing energy", p.Kinetic)
	}
	if p.Position[2] <= 0 {
		t.Errorf("Position[2] = %v, want > 0 after advancing along +z", p.Position[2])
	}
}

func TestAdvanceZeroStepIsNoop(t *testing.T) {
	ctx, _ := waterContext(t)
	p := NewParticle(1.0)
	before := p
	Advance(ctx, &p, 0)
	if p != before {
		t.Errorf("zero-length Advance changed particle state: got %+v, want %+v", p, before)
	}
}

func TestAdvanceBelowMinKineticKillsParticle(t *testing.T) {
	ctx, _ := waterContext(t)
	ctx.Limits.MinKinetic = 0.999
	p := NewParticle(1.0)
	Advance(ctx, &p, 10)
	if p.Alive {
		t.Errorf("expected particle to die once kinetic energy dropped below MinKinetic")
	}
}

func TestStragglingFluctuationVariesByMasterSeed(t *testing.T) {
	ctxA, _ := waterContext(t)
	ctxA.Modes.Straggling = true
	ctxB, _ := waterContext(t)
	ctxB.Modes.Straggling = true
	ctxB.RNG = prng.NewPartitionedSource(2)

	pA, pB := NewParticle(1.0), NewParticle(1.0)
	Advance(ctxA, &pA, 50)
	Advance(ctxB, &pB, 50)
	if pA.Kinetic == pB.Kinetic {
		t.Errorf("expected straggled energy loss to differ across master seeds")
	}
}
