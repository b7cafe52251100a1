package transport

import (
	"testing"

	"github.com/inference-sim/pumas-go/physics/tables"
	"github.com/inference-sim/pumas-go/transport/prng"
)

func TestRunCSDAReachesMinKineticOrMaxDistance(t *testing.T) {
	ctx, _ := waterContext(t)
	ctx.Modes.Scheme = tables.CSDA
	p := NewParticle(1.0)
	stats, err := Run(ctx, &p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Steps != 1 {
		t.Errorf("CSDA run should take exactly one step, got %d", stats.Steps)
	}
	if p.Distance <= 0 {
		t.Errorf("expected nonzero grammage traversed in CSDA mode, got %v", p.Distance)
	}
}

func TestRunSteppingIsDeterministicForSameSeed(t *testing.T) {
	run := func(seed int64) Particle {
		ctx, _ := waterContext(t)
		ctx.Modes.Scheme = tables.Detailed
		ctx.Modes.Scattering = true
		ctx.Limits.MaxSteps = 20
		ctx.Limits.MaxDistance = 100
		ctx.RNG = prng.NewPartitionedSource(seed)
		p := NewParticle(1.0)
		if _, err := Run(ctx, &p); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return p
	}
	a := run(42)
	b := run(42)
	if a != b {
		t.Errorf("same master seed produced different trajectories: %+v vs %+v", a, b)
	}
}

func TestRunSteppingDiffersAcrossSeeds(t *testing.T) {
	run := func(seed int64) Particle {
		ctx, _ := waterContext(t)
		ctx.Modes.Scheme = tables.Detailed
		ctx.Modes.Scattering = true
		ctx.Limits.MaxSteps = 20
		ctx.Limits.MaxDistance = 100
		ctx.RNG = prng.NewPartitionedSource(seed)
		p := NewParticle(1.0)
		if _, err := Run(ctx, &p); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return p
	}
	a := run(1)
	b := run(2)
	if a.Direction == b.Direction && a.Kinetic == b.Kinetic {
		t.Errorf("expected different master seeds to produce different trajectories")
	}
}

func TestRunSteppingStopsAtMaxDistance(t *testing.T) {
	ctx, _ := waterContext(t)
	ctx.Modes.Scheme = tables.Detailed
	ctx.Limits.MaxDistance = 5
	ctx.Limits.MaxSteps = 1000
	p := NewParticle(1.0)
	if _, err := Run(ctx, &p); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.Distance < ctx.Limits.MaxDistance {
		t.Errorf("expected accumulated distance to reach the MaxDistance limit, got %v", p.Distance)
	}
}

func TestRunSteppingUnknownMaterialReturnsError(t *testing.T) {
	ctx, _ := waterContext(t)
	ctx.Modes.Scheme = tables.Detailed
	ctx.MaterialIdx = 999
	p := NewParticle(1.0)
	if _, err := Run(ctx, &p); err == nil {
		t.Errorf("expected an error for an untabulated material")
	}
}

func TestRunRandomisedDecayEventuallyTerminatesTrajectory(t *testing.T) {
	ctx, _ := waterContext(t)
	ctx.Modes.Scheme = tables.Detailed
	ctx.Modes.Decay = DecayRandomised
	ctx.Mass = 0.1056583745
	// An astronomically short mean lifetime makes the decay grammage draw
	// negligible next to the Coulomb/DEL draws, so the first step's decay
	// event wins with overwhelming probability regardless of seed.
	ctx.MeanLifetime = 1e-30
	ctx.Limits.MaxDistance = 1e12
	ctx.Limits.MaxSteps = 100000
	p := NewParticle(1.0)
	stats, err := Run(ctx, &p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Decays != 1 {
		t.Errorf("expected exactly one recorded decay, got %d", stats.Decays)
	}
	if p.Alive {
		t.Error("expected the particle to be dead after a decay event")
	}
}

func TestRunWeightedDecayAttenuatesWeightWithoutTerminating(t *testing.T) {
	ctx, _ := waterContext(t)
	ctx.Modes.Scheme = tables.Detailed
	ctx.Modes.Decay = DecayWeighted
	ctx.Mass = 0.1056583745
	ctx.MeanLifetime = 2.1969811e-6
	ctx.Limits.MaxSteps = 20
	ctx.Limits.MaxDistance = 50
	p := NewParticle(1.0)
	stats, err := Run(ctx, &p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Decays != 0 {
		t.Errorf("weighted decay mode should never record a discrete decay event, got %d", stats.Decays)
	}
	if p.Weight >= 1 {
		t.Errorf("expected decay weighting to attenuate Particle.Weight below 1, got %v", p.Weight)
	}
}

func TestHardCoulombEventExecuteDeflectsDirection(t *testing.T) {
	ctx, _ := waterContext(t)
	p := NewParticle(1.0)
	before := p.Direction
	event := hardCoulombEvent{grammage: 0}
	event.Execute(ctx, &p)
	if p.Direction == before {
		t.Errorf("expected the hard Coulomb event to deflect direction away from %v", before)
	}
	if ctx.stats.HardScatters != 1 {
		t.Errorf("expected HardScatters = 1, got %d", ctx.stats.HardScatters)
	}
}

func TestDelEventExecuteBackwardAddsEnergyInsteadOfSubtracting(t *testing.T) {
	ctx, _ := waterContext(t)
	ctx.Modes.Backward = true
	p := NewParticle(10.0)
	startK := p.Kinetic
	event := delEvent{grammage: 0}
	event.Execute(ctx, &p)
	if p.Kinetic < startK {
		t.Errorf("expected backward DEL to add energy, got Kinetic %v < start %v", p.Kinetic, startK)
	}
}

func TestRunSteppingBackwardAppliesWeightCorrection(t *testing.T) {
	ctx, _ := waterContext(t)
	ctx.Modes.Scheme = tables.Detailed
	ctx.Modes.Backward = true
	ctx.Limits.MaxSteps = 50
	ctx.Limits.MaxDistance = 1e12
	p := NewParticle(1.0)
	stats, err := Run(ctx, &p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.FinalWeight == 1.0 {
		t.Errorf("expected backward transport's per-step weight correction to move FinalWeight away from 1, got %v", stats.FinalWeight)
	}
}

func TestSampleDecayGrammageDisabledWithoutMeanLifetime(t *testing.T) {
	ctx, _ := waterContext(t)
	ctx.MeanLifetime = 0
	p := NewParticle(1.0)
	if _, ok := sampleDecayGrammage(ctx, &p); ok {
		t.Error("expected sampleDecayGrammage to report disabled when MeanLifetime is zero")
	}
}
