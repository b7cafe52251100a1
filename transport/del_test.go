package transport

import (
	"testing"

	"github.com/inference-sim/pumas-go/physics/dcs"
)

func TestSampleForwardDELTargetsAreWithinKinematicRange(t *testing.T) {
	ctx, _ := waterContext(t)
	p := NewParticle(10.0) // high enough K that radiative processes have nonzero cross section
	accepted := 0
	for i := 0; i < 500; i++ {
		out := SampleForwardDEL(ctx, &p)
		if !out.Accepted {
			continue
		}
		accepted++
		rangeFn, err := dcs.RangeFor(out.Process)
		if err != nil {
			t.Fatalf("RangeFor(%v): %v", out.Process, err)
		}
		qMin, qMax := rangeFn(ctx.Mass, p.Kinetic)
		if out.EnergyTransfer < qMin || out.EnergyTransfer > qMax {
			t.Errorf("draw %v outside kinematic range [%v, %v] for process %v", out.EnergyTransfer, qMin, qMax, out.Process)
		}
	}
	if accepted == 0 {
		t.Errorf("expected at least one accepted forward DEL draw out of 500 trials")
	}
}

func TestSampleForwardDELNilMaterialReturnsUnaccepted(t *testing.T) {
	ctx, _ := waterContext(t)
	ctx.MaterialIdx = 999 // not tabulated
	p := NewParticle(10.0)
	out := SampleForwardDEL(ctx, &p)
	if out.Accepted {
		t.Errorf("expected no outcome for an untabulated material")
	}
}

func TestSampleBackwardDELUpdatesWeight(t *testing.T) {
	ctx, _ := waterContext(t)
	p := NewParticle(10.0)
	startWeight := p.Weight
	out := SampleBackwardDEL(ctx, &p, 0) // pCEL=0 forces a discrete draw every time
	if !out.Accepted {
		t.Fatal("expected a discrete draw with pCEL=0")
	}
	if p.Weight == startWeight {
		t.Errorf("expected backward DEL to update particle weight via the Jacobian ratio")
	}
}

func TestSampleBackwardDELAlwaysContinuousWhenPCELIsOne(t *testing.T) {
	ctx, _ := waterContext(t)
	p := NewParticle(10.0)
	out := SampleBackwardDEL(ctx, &p, 1)
	if out.Accepted {
		t.Errorf("expected pCEL=1 to always take the continuous-only branch")
	}
}

func TestInversePowerLawStaysWithinBounds(t *testing.T) {
	qMin, qMax := 1e-3, 1.0
	for _, alpha := range []float64{-2.5, -1.8, -1.0, 0.5} {
		for _, u := range []float64{0, 0.25, 0.5, 0.75, 1} {
			q := inversePowerLaw(alpha, qMin, qMax, u)
			if q < qMin-1e-9 || q > qMax+1e-9 {
				t.Errorf("alpha=%v u=%v: q=%v outside [%v, %v]", alpha, u, q, qMin, qMax)
			}
		}
	}
}
