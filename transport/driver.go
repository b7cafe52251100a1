package transport

import (
	"container/heap"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/pumas-go/internal/errcat"
	"github.com/inference-sim/pumas-go/physics/coulomb"
	"github.com/inference-sim/pumas-go/physics/tables"
	"github.com/inference-sim/pumas-go/transport/prng"
	"github.com/inference-sim/pumas-go/transport/recorder"
)

// Event is one candidate occurrence competing to end the current step: a
// hard Coulomb scattering, a discrete energy loss, or one of the caller's
// own limits. Grounded on sim/cluster's Event interface
// (Timestamp()/Execute(*ClusterSimulator)) and its container/heap-backed
// priority queue, generalized from wall-clock time to remaining grammage
// as the ordering key.
type Event interface {
	// Grammage is the distance (kg/m^2) from the current particle state at
	// which this event would occur, were nothing else to intervene first.
	Grammage() float64
	// Execute applies the event's effect to p once it is selected as the
	// step's terminating event.
	Execute(ctx *Context, p *Particle)
}

// eventQueue is a min-heap of Events ordered by Grammage, used once per
// step to pick the nearest candidate occurrence.
type eventQueue []Event

func (q eventQueue) Len() int            { return len(q) }
func (q eventQueue) Less(i, j int) bool  { return q[i].Grammage() < q[j].Grammage() }
func (q eventQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *eventQueue) Push(x interface{}) { *q = append(*q, x.(Event)) }
func (q *eventQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// boundaryEvent ends the step at a fixed grammage without drawing any
// discrete interaction; used for the caller's MaxDistance limit and as the
// fallback when a step would otherwise run unbounded.
type boundaryEvent struct{ grammage float64 }

func (b boundaryEvent) Grammage() float64 { return b.grammage }
func (b boundaryEvent) Execute(ctx *Context, p *Particle) {}

// hardCoulombEvent draws a hard single-scattering deflection when selected.
type hardCoulombEvent struct{ grammage float64 }

func (h hardCoulombEvent) Grammage() float64 { return h.grammage }
func (h hardCoulombEvent) Execute(ctx *Context, p *Particle) {
	ctx.RunStatsHardScatter()
	deflectHardCoulomb(ctx, p)
	if ctx.Recorder != nil {
		ctx.Recorder.RecordEvent(recorder.EventRecord{Kind: recorder.EventHardCoulomb, State: snapshot(p)})
	}
}

// deflectHardCoulomb draws the lab-frame scattering cosine for a hard
// single-Coulomb-scattering vertex via physics/coulomb.SampleHardEvent,
// using the material's EffectiveZ/EffectiveA as the representative element
// and its tabulated Mu0 (the EHS angular cutoff, Mu0 = 0.5*(1-muCut)) to
// recover muCut, then rotates p's direction by the resulting polar angle
// around a uniformly drawn azimuth — the disguised no-op this event used to
// be only recorded the hit, it never actually deflected the particle.
func deflectHardCoulomb(ctx *Context, p *Particle) {
	mt := ctx.material()
	if mt == nil || mt.Mu0 == nil {
		return
	}
	p3 := momentumOf(ctx.Mass, p.Kinetic)
	if p3 <= 0 {
		return
	}
	mu0 := mt.Mu0.Eval(p.Kinetic, &ctx.cache)
	muCut := clamp(1-2*mu0, -1, 1)
	screening := coulomb.ScreeningFor(mt.EffectiveZ)
	kin := coulomb.NewKinematics(ctx.Mass, p.Kinetic, mt.EffectiveA)

	rng := ctx.RNG.For(prng.SubsystemCoulomb)
	muLab := clamp(coulomb.SampleHardEvent(screening, kin, p3, muCut, rng.Float64), -1, 1)
	theta := math.Acos(muLab)
	if theta == 0 {
		return
	}
	phi := 2 * math.Pi * rng.Float64()
	axis := perpendicularAxis(p.Direction, phi)
	p.Direction = rotateAroundAxis(p.Direction, axis, theta)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// delEvent draws a discrete energy loss when selected.
type delEvent struct{ grammage float64 }

func (d delEvent) Grammage() float64 { return d.grammage }
func (d delEvent) Execute(ctx *Context, p *Particle) {
	if ctx.Modes.Backward {
		mt := ctx.material()
		pCEL := pCELFor(mt, p.Kinetic, &ctx.cache)
		outcome := SampleBackwardDEL(ctx, p, pCEL)
		if !outcome.Accepted {
			return
		}
		// Backward (adjoint) transport runs the energy axis in reverse: a
		// discrete loss forward in time is a discrete gain walking
		// backward from the detector toward the source.
		p.Kinetic += outcome.EnergyTransfer
		ctx.stats.DELs++
		if ctx.Recorder != nil {
			ctx.Recorder.RecordEvent(recorder.EventRecord{Kind: recorder.EventDEL, State: snapshot(p)})
		}
		return
	}
	outcome := SampleForwardDEL(ctx, p)
	if !outcome.Accepted {
		return
	}
	p.Kinetic -= outcome.EnergyTransfer
	if p.Kinetic < 0 {
		p.Kinetic = 0
	}
	ctx.stats.DELs++
	if ctx.Recorder != nil {
		ctx.Recorder.RecordEvent(recorder.EventRecord{Kind: recorder.EventDEL, State: snapshot(p)})
	}
}

// decayEvent ends the trajectory when selected, used only under
// Modes.Decay == DecayRandomised.
type decayEvent struct{ grammage float64 }

func (d decayEvent) Grammage() float64 { return d.grammage }
func (d decayEvent) Execute(ctx *Context, p *Particle) {
	ctx.stats.Decays++
	p.Alive = false
	if ctx.Recorder != nil {
		ctx.Recorder.RecordEvent(recorder.EventRecord{Kind: recorder.EventDecay, State: snapshot(p)})
	}
}

// sampleDecayGrammage draws the grammage at which this step's particle
// would decay, were nothing else to intervene first, from a fresh
// exponential proper-time-to-decay (valid by the memoryless property of
// the exponential distribution, redrawn every step the same way
// hardCoulombEvent/delEvent redraw their distances).
func sampleDecayGrammage(ctx *Context, p *Particle) (float64, bool) {
	beta := betaOf(ctx.Mass, p.Kinetic)
	if beta <= 0 || ctx.MeanLifetime <= 0 {
		return 0, false
	}
	gamma := (p.Kinetic + ctx.Mass) / ctx.Mass
	u := ctx.RNG.For(prng.SubsystemDecay).Float64()
	properTime := -ctx.MeanLifetime * math.Log(math.Max(u, 1e-300))
	labTime := gamma * properTime
	length := beta * 299792458.0 * labTime
	return length * ctx.Density, true
}

// decayWeightFactor returns the survival-probability attenuation to apply
// to Particle.Weight over a step of grammage ds, used only under
// Modes.Decay == DecayWeighted (the trajectory is never terminated by decay
// in this mode, only down-weighted).
func decayWeightFactor(ctx *Context, p *Particle, ds float64) float64 {
	beta := betaOf(ctx.Mass, p.Kinetic)
	if beta <= 0 || ctx.MeanLifetime <= 0 || ds <= 0 {
		return 1
	}
	gamma := (p.Kinetic + ctx.Mass) / ctx.Mass
	dl := ds / ctx.Density
	labTime := dl / (beta * 299792458.0)
	properTime := labTime / gamma
	return math.Exp(-properTime / ctx.MeanLifetime)
}

// applyBackwardWeightCorrection applies the per-step statistical-weight
// correction adjoint (backward) transport requires: a forward trajectory
// through a given grammage is exponentially less likely the steeper the
// stopping power is at its starting energy versus its ending energy, so
// walking backward must reweight each step by dE(Kf)/dE(Ki) to keep the
// backward walk's distribution consistent with the forward one it inverts
// (spec §4.9's adjoint weight-correction requirement).
func applyBackwardWeightCorrection(ctx *Context, Ki, Kf float64, p *Particle) {
	dEi, err := tables.StoppingPower(ctx.Tables, ctx.MaterialIdx, ctx.Modes.Scheme, Ki, &ctx.cache)
	if err != nil || dEi <= 0 {
		return
	}
	dEf, err := tables.StoppingPower(ctx.Tables, ctx.MaterialIdx, ctx.Modes.Scheme, Kf, &ctx.cache)
	if err != nil {
		return
	}
	p.Weight *= dEf / dEi
}

func snapshot(p *Particle) recorder.State {
	return recorder.State{
		Position:  p.Position,
		Direction: p.Direction,
		Kinetic:   p.Kinetic,
		Time:      p.Time,
		Distance:  p.Distance,
		Weight:    p.Weight,
	}
}

// stats is the driver's private accumulator; RunStatsHardScatter is the
// exported bump used by hardCoulombEvent.Execute. The other events'
// Execute methods update ctx.stats directly.
func (ctx *Context) RunStatsHardScatter() { ctx.stats.HardScatters++ }

// Run drives a single particle from its initial state to termination
// (kinetic energy below Limits.MinKinetic, grammage/time limit reached, or
// MaxSteps exhausted), returning the final RunStats. CSDA mode (Modes.Scheme
// == tables.CSDA) takes the fast path: a single direct lookup of the
// remaining range via physics/tables.CSDARange and one Advance call, with
// no discrete events and no event queue, per spec §4.9's "CSDA is a closed-
// form endpoint computation, not a stepping loop."
func Run(ctx *Context, p *Particle) (RunStats, error) {
	ctx.stats = RunStats{}
	if ctx.Modes.Scheme == tables.CSDA {
		return runCSDA(ctx, p)
	}
	return runStepping(ctx, p)
}

func runCSDA(ctx *Context, p *Particle) (RunStats, error) {
	startRange, err := tables.CSDARange(ctx.Tables, ctx.MaterialIdx, p.Kinetic, &ctx.cache)
	if err != nil {
		return RunStats{}, errcat.Wrap(errcat.Physics, "transport.Run", err)
	}
	endRange, err := tables.CSDARange(ctx.Tables, ctx.MaterialIdx, ctx.Limits.MinKinetic, &ctx.cache)
	if err != nil {
		return RunStats{}, errcat.Wrap(errcat.Physics, "transport.Run", err)
	}
	ds := startRange - endRange
	if ds < 0 {
		ds = 0
	}
	if ds > ctx.Limits.MaxDistance {
		ds = ctx.Limits.MaxDistance
	}
	Ki := p.Kinetic
	Advance(ctx, p, ds)
	if ctx.Modes.Magnetic {
		ApplyMagneticDeflectionCSDA(ctx, p, Ki, p.Kinetic)
	}
	if ctx.Recorder != nil {
		ctx.Recorder.RecordStep(snapshot(p))
	}
	ctx.stats.Steps = 1
	ctx.stats.FinalWeight = p.Weight
	return ctx.stats, nil
}

// runStepping is the general event-driven loop: each iteration, draw
// candidate distances-to-next-occurrence for every enabled discrete
// process plus the caller's own MaxDistance limit, push them onto an
// eventQueue, pop the nearest, advance continuously to it, then execute it.
func runStepping(ctx *Context, p *Particle) (RunStats, error) {
	for step := 0; step < ctx.Limits.MaxSteps && p.Alive; step++ {
		mt := ctx.material()
		if mt == nil {
			return ctx.stats, errcat.New(errcat.Configuration, "transport.Run", "material %d not tabulated", ctx.MaterialIdx)
		}

		q := &eventQueue{}
		heap.Init(q)
		heap.Push(q, boundaryEvent{grammage: ctx.Limits.MaxDistance - p.Distance})

		if ctx.Modes.Scattering && mt.ScatteringLength != nil {
			meanFreePath := mt.ScatteringLength.Eval(p.Kinetic, &ctx.cache)
			if meanFreePath > 0 && !math.IsInf(meanFreePath, 1) {
				u := ctx.RNG.For(prng.SubsystemCoulomb).Float64()
				draw := -meanFreePath * math.Log(math.Max(u, 1e-300))
				heap.Push(q, hardCoulombEvent{grammage: draw})
			}
		}

		totalCS := crossSectionForMaterial(mt, radiativeProcesses[0], p.Kinetic, &ctx.cache) +
			crossSectionForMaterial(mt, radiativeProcesses[1], p.Kinetic, &ctx.cache) +
			crossSectionForMaterial(mt, radiativeProcesses[2], p.Kinetic, &ctx.cache)
		if totalCS > 0 {
			u := ctx.RNG.For(prng.SubsystemDEL).Float64()
			draw := -1 / totalCS * math.Log(math.Max(u, 1e-300))
			heap.Push(q, delEvent{grammage: draw})
		}

		if ctx.Modes.Decay == DecayRandomised {
			if grammage, ok := sampleDecayGrammage(ctx, p); ok {
				heap.Push(q, decayEvent{grammage: grammage})
			}
		}

		next := heap.Pop(q).(Event)
		ds := next.Grammage()
		if ds < 0 {
			ds = 0
		}
		logrus.Debugf("[step %04d] %T at ds=%g, K=%g", step, next, ds, p.Kinetic)

		if ctx.Modes.Decay == DecayWeighted {
			p.Weight *= decayWeightFactor(ctx, p, ds)
		}
		Ki := p.Kinetic
		Advance(ctx, p, ds)
		Kf := p.Kinetic
		if ctx.Modes.Backward && ds > 0 {
			applyBackwardWeightCorrection(ctx, Ki, Kf, p)
		}
		dl := ds / ctx.Density
		ApplyMultipleScattering(ctx, p, ds, Ki, Kf)
		ApplyMagneticDeflection(ctx, p, dl, Ki, Kf)
		next.Execute(ctx, p)

		if ctx.Recorder != nil {
			ctx.Recorder.RecordStep(snapshot(p))
		}
		ctx.stats.Steps++

		if p.Time > ctx.Limits.MaxTime || p.Distance > ctx.Limits.MaxDistance {
			p.Alive = false
		}
	}
	ctx.stats.FinalWeight = p.Weight
	logrus.Debugf("transport run ended after %d steps, final K=%g", ctx.stats.Steps, p.Kinetic)
	return ctx.stats, nil
}
