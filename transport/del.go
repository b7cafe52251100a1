package transport

import (
	"math"

	"github.com/inference-sim/pumas-go/physics/dcs"
	"github.com/inference-sim/pumas-go/physics/interp"
	"github.com/inference-sim/pumas-go/physics/tables"
	"github.com/inference-sim/pumas-go/transport/prng"
)

// maxEnvelopeTrials bounds the forward DEL rejection loop, per spec §4.7's
// "the forward sampler retries at most a fixed number of times before
// giving up and treating the step as continuous-only," matching the
// teacher's retry-then-degrade error policy (internal/errcat's local
// recovery) rather than panicking.
const maxEnvelopeTrials = 100

// radiativeProcesses lists the processes DEL draws a discrete target from;
// ionisation is not drawn as a discrete event here, its whole loss stays in
// the continuous rate.
var radiativeProcesses = [...]dcs.Process{dcs.Bremsstrahlung, dcs.PairProduction, dcs.Photonuclear}

// DELOutcome is a drawn discrete energy loss: which process fired and how
// much kinetic energy the secondary carried away.
type DELOutcome struct {
	Process        dcs.Process
	EnergyTransfer float64 // GeV
	Accepted       bool
}

// SampleForwardDEL draws a single discrete energy-loss target by forward
// envelope rejection: pick a candidate process proportional to its
// macroscopic cross section, propose q from its tabulated power-law
// envelope, and accept with probability dsigma/dq(q) / envelope(q).
func SampleForwardDEL(ctx *Context, p *Particle) DELOutcome {
	mt := ctx.material()
	if mt == nil {
		return DELOutcome{}
	}
	rng := ctx.RNG.For(prng.SubsystemDEL)

	weights := make([]float64, len(radiativeProcesses))
	var total float64
	for i, proc := range radiativeProcesses {
		cs := crossSectionForMaterial(mt, proc, p.Kinetic, &ctx.cache)
		weights[i] = cs
		total += cs
	}
	if total <= 0 {
		return DELOutcome{}
	}

	u := rng.Float64() * total
	var cum float64
	chosen := radiativeProcesses[len(radiativeProcesses)-1]
	for i, proc := range radiativeProcesses {
		cum += weights[i]
		if u <= cum {
			chosen = proc
			break
		}
	}

	env := mt.Envelopes[chosen]
	if env == nil {
		return DELOutcome{}
	}
	alpha := mt.Alphas[chosen]
	maxVal := env.Eval(p.Kinetic, &ctx.cache)

	rangeFn, err := dcs.RangeFor(chosen)
	if err != nil {
		return DELOutcome{}
	}
	qMin, qMax := rangeFn(ctx.Mass, p.Kinetic)
	if qMax <= qMin {
		return DELOutcome{}
	}

	fn, err := dcs.Lookup(chosen, dcs.DefaultModel[chosen])
	if err != nil {
		return DELOutcome{}
	}

	for trial := 0; trial < maxEnvelopeTrials; trial++ {
		q := inversePowerLaw(alpha, qMin, qMax, rng.Float64())
		envVal := maxVal * math.Pow(q, alpha)
		if envVal <= 0 {
			continue
		}
		// Approximate the true DCS value at this (process, q) via the
		// process default model evaluated at the material's effective <Z>
		// and <A>, the same averages the tabulated envelope was fitted
		// with, so acceptance compares shapes, not absolute scale
		// mismatches.
		trueVal := fn(mt.EffectiveZ, mt.EffectiveA, ctx.Mass, p.Kinetic, q)
		if rng.Float64()*envVal <= trueVal {
			return DELOutcome{Process: chosen, EnergyTransfer: q, Accepted: true}
		}
	}
	return DELOutcome{}
}

// crossSectionForMaterial returns the material's tabulated macroscopic
// cross section for proc at K, 0 if proc has no tabulated cross section
// (e.g. ionisation, which has no discrete-event rate).
func crossSectionForMaterial(mt *tables.MaterialTable, proc dcs.Process, K float64, cache *interp.Cache) float64 {
	var table *interp.Table
	switch proc {
	case dcs.Bremsstrahlung:
		table = mt.BremsCS
	case dcs.PairProduction:
		table = mt.PairCS
	case dcs.Photonuclear:
		table = mt.PhotoCS
	}
	if table == nil {
		return 0
	}
	kMin, _ := table.First()
	if K < kMin {
		return 0
	}
	return table.Eval(K, cache)
}

// inversePowerLaw inverts the CDF of a power-law proposal q^alpha over
// [qMin, qMax] (alpha != -1, enforced upstream by the envelope fit's
// clamp-to-1 rule) at uniform variate u.
func inversePowerLaw(alpha, qMin, qMax, u float64) float64 {
	p1 := alpha + 1
	lo := math.Pow(qMin, p1)
	hi := math.Pow(qMax, p1)
	return math.Pow(lo+u*(hi-lo), 1/p1)
}

// SampleBackwardDEL draws a discrete energy-loss target for adjoint
// (backward) transport: q is proposed from a biased power-law favoring
// larger energy transfers (since backward transport runs from a detector
// energy back toward the source, where large discrete losses are
// proportionally more likely to have occurred), and the particle's
// statistical weight is updated by the ratio of the true cross section to
// the biased proposal density (the Jacobian weight), per spec §4.9's
// backward/adjoint transport formulation. The p_CEL (continuous-energy-
// loss probability) branch returns Accepted=false to signal "treat this
// step as continuous-only. "
func SampleBackwardDEL(ctx *Context, p *Particle, pCEL float64) DELOutcome {
	mt := ctx.material()
	if mt == nil {
		return DELOutcome{}
	}
	rng := ctx.RNG.For(prng.SubsystemDEL)
	if rng.Float64() < pCEL {
		return DELOutcome{}
	}

	chosen := radiativeProcesses[0]
	var bestCS float64
	for _, proc := range radiativeProcesses {
		cs := crossSectionForMaterial(mt, proc, p.Kinetic, &ctx.cache)
		if cs > bestCS {
			bestCS = cs
			chosen = proc
		}
	}
	rangeFn, err := dcs.RangeFor(chosen)
	if err != nil {
		return DELOutcome{}
	}
	qMin, qMax := rangeFn(ctx.Mass, p.Kinetic)
	if qMax <= qMin {
		return DELOutcome{}
	}

	const biasAlpha = -1.5 // biased toward larger q than the true envelope exponent
	q := inversePowerLaw(biasAlpha, qMin, qMax, rng.Float64())

	fn, err := dcs.Lookup(chosen, dcs.DefaultModel[chosen])
	if err != nil {
		return DELOutcome{}
	}
	trueVal := fn(1, 1, ctx.Mass, p.Kinetic, q)
	proposalDensity := biasedDensity(biasAlpha, qMin, qMax, q)
	if proposalDensity > 0 {
		p.Weight *= trueVal / proposalDensity
	}
	return DELOutcome{Process: chosen, EnergyTransfer: q, Accepted: true}
}

// pCELFor returns the probability that a backward step at kinetic energy K
// should be treated as continuous-only (no discrete energy-loss event
// sampled): the continuous-below-cutoff rate's share of the full-range
// loss rate, TotalLoss(K)/DECsda(K), clamped to [0,1]. This mirrors the
// forward sampler's process-selection weighting (proportional to each
// process's share of the total macroscopic cross section) one level up:
// the backward sampler first decides discrete-vs-continuous proportional
// to the continuous rate's share of the full-range rate, before drawing
// which process and how much.
func pCELFor(mt *tables.MaterialTable, K float64, cache *interp.Cache) float64 {
	if mt == nil || mt.TotalLoss == nil || mt.DECsda == nil {
		return 1
	}
	full := mt.DECsda.Eval(K, cache)
	if full <= 0 {
		return 1
	}
	pCEL := mt.TotalLoss.Eval(K, cache) / full
	if pCEL < 0 {
		pCEL = 0
	} else if pCEL > 1 {
		pCEL = 1
	}
	return pCEL
}

func biasedDensity(alpha, qMin, qMax, q float64) float64 {
	p1 := alpha + 1
	norm := (math.Pow(qMax, p1) - math.Pow(qMin, p1)) / p1
	if norm <= 0 {
		return 0
	}
	return math.Pow(q, alpha) / norm
}
