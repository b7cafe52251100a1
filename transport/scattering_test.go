package transport

import (
	"math"
	"testing"
)

func TestApplyMultipleScatteringPreservesDirectionNorm(t *testing.T) {
	ctx, _ := waterContext(t)
	ctx.Modes.Scattering = true
	p := NewParticle(0.1)
	ApplyMultipleScattering(ctx, &p, 5, p.Kinetic, p.Kinetic)
	norm := math.Sqrt(p.Direction[0]*p.Direction[0] + p.Direction[1]*p.Direction[1] + p.Direction[2]*p.Direction[2])
	if math.Abs(norm-1) > 1e-9 {
		t.Errorf("direction norm = %v, want 1", norm)
	}
}

func TestApplyMultipleScatteringNoopWhenDisabled(t *testing.T) {
	ctx, _ := waterContext(t)
	p := NewParticle(0.1)
	before := p.Direction
	ApplyMultipleScattering(ctx, &p, 5, p.Kinetic, p.Kinetic)
	if p.Direction != before {
		t.Errorf("direction changed while Modes.Scattering is false: got %v, want %v", p.Direction, before)
	}
}

func TestApplyMultipleScatteringNoopForZeroStep(t *testing.T) {
	ctx, _ := waterContext(t)
	ctx.Modes.Scattering = true
	p := NewParticle(0.1)
	before := p.Direction
	ApplyMultipleScattering(ctx, &p, 0, p.Kinetic, p.Kinetic)
	if p.Direction != before {
		t.Errorf("direction changed for a zero-length step: got %v, want %v", p.Direction, before)
	}
}

func TestPerpendicularAxisIsOrthogonalToDirection(t *testing.T) {
	dir := [3]float64{0, 0, 1}
	for _, phi := range []float64{0, 0.7, 2.1, 4.5} {
		axis := perpendicularAxis(dir, phi)
		dot := dotProduct(dir, axis)
		if math.Abs(dot) > 1e-9 {
			t.Errorf("phi=%v: axis not perpendicular to direction, dot=%v", phi, dot)
		}
		norm := math.Sqrt(dotProduct(axis, axis))
		if math.Abs(norm-1) > 1e-9 {
			t.Errorf("phi=%v: axis not unit length, norm=%v", phi, norm)
		}
	}
}
