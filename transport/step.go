package transport

import (
	"math"

	"github.com/inference-sim/pumas-go/physics/interp"
	"github.com/inference-sim/pumas-go/physics/tables"
	"github.com/inference-sim/pumas-go/transport/prng"
)

// Advance moves particle forward by grammage ds (kg/m^2) of continuous
// losses, updating position, kinetic energy, distance, and proper time.
// Under the CSDA and Hybrid schemes the mean kinetic energy after the step
// is obtained by inverting the material's cumulative range table (spec
// §3/§8's exact CSDA round-trip: Advance must agree with
// KineticEnergyForRange/KineticEnergyForMixedRange to within interpolation
// error, not just approximate them via a first-order rate times ds), since
// the Euler estimate dE = lossRate*ds drifts from the range table over
// many steps. The Detailed scheme keeps the rate-based update, since its
// continuous contribution is only the narrow below-cutoff slice and the
// hard component is drawn separately as discrete events. Straggling (when
// Modes.Straggling is set) then perturbs that mean loss around its
// PENELOPE-style variance.
func Advance(ctx *Context, p *Particle, ds float64) {
	if ds <= 0 || !p.Alive {
		return
	}
	Ki := p.Kinetic
	var newK float64
	switch ctx.Modes.Scheme {
	case tables.CSDA:
		newK = advanceByInverseRange(ctx, tables.CSDARange, tables.KineticEnergyForRange, Ki, ds)
	case tables.Hybrid:
		newK = advanceByInverseRange(ctx, tables.MixedRange, tables.KineticEnergyForMixedRange, Ki, ds)
	default:
		lossRate, _ := tables.StoppingPower(ctx.Tables, ctx.MaterialIdx, ctx.Modes.Scheme, Ki, &ctx.cache)
		newK = Ki - lossRate*ds
	}
	if newK < 0 {
		newK = 0
	}
	if ctx.Modes.Straggling {
		newK = stochasticKineticEnergy(ctx, Ki, newK, ds)
	}

	beta := betaOf(ctx.Mass, Ki)
	dl := ds / ctx.Density // grammage -> path length, m
	for i := 0; i < 3; i++ {
		p.Position[i] += p.Direction[i] * dl
	}
	p.Distance += ds
	if beta > 0 {
		p.Time += dl / (beta * 299792458.0)
	}
	p.Kinetic = newK
	if p.Kinetic <= ctx.Limits.MinKinetic {
		p.Alive = false
	}
}

// advanceByInverseRange maps Ki to the mean kinetic energy after losing
// grammage ds, by converting Ki to its tabulated range, subtracting ds, and
// inverting back via invFn. This is the exact range-table round trip
// rather than an Euler step: accumulating many such calls reproduces
// rangeFn(Ki) - rangeFn(Kf) to interpolation accuracy instead of drifting
// with step size the way dE = lossRate*ds does.
func advanceByInverseRange(
	ctx *Context,
	rangeFn func(*tables.PhysicsTables, int, float64, *interp.Cache) (float64, error),
	invFn func(*tables.PhysicsTables, int, float64) (float64, error),
	Ki, ds float64,
) float64 {
	x0, err := rangeFn(ctx.Tables, ctx.MaterialIdx, Ki, &ctx.cache)
	if err != nil {
		return Ki
	}
	x1 := x0 - ds
	if x1 <= 0 {
		return 0
	}
	Kf, err := invFn(ctx.Tables, ctx.MaterialIdx, x1)
	if err != nil {
		return Ki
	}
	return Kf
}

func betaOf(m, K float64) float64 {
	E := K + m
	if E <= 0 {
		return 0
	}
	gamma := E / m
	beta2 := 1 - 1/(gamma*gamma)
	if beta2 < 0 {
		return 0
	}
	return math.Sqrt(beta2)
}

// stochasticKineticEnergy perturbs the mean post-step kinetic energy Kmean
// (Ki having lost dK = Ki - Kmean on average) around the material's
// tabulated straggling variance, scaled by the grammage traversed, via the
// PENELOPE-style three-regime sampler in sampleStraggledLoss.
func stochasticKineticEnergy(ctx *Context, Ki, Kmean, ds float64) float64 {
	mt := ctx.material()
	if mt == nil || mt.StragglingVariance == nil {
		return Kmean
	}
	varPerGrammage := mt.StragglingVariance.Eval(Ki, &ctx.cache)
	sigma2 := varPerGrammage * ds
	if sigma2 <= 0 {
		return Kmean
	}
	dK := Ki - Kmean
	if dK <= 0 {
		return Kmean
	}
	rng := ctx.RNG.For(prng.SubsystemStraggling)
	loss := sampleStraggledLoss(rng, dK, math.Sqrt(sigma2))
	newK := Ki - loss
	if newK < 0 {
		newK = 0
	}
	return newK
}

// sampleStraggledLoss draws an energy-loss fluctuation around mean loss dK
// with variance sigma^2, following PENELOPE's three-regime construction:
// a (truncated) Gaussian when the mean is many sigma away from the dK>=0
// boundary, a variance-matched uniform distribution in the intermediate
// regime, and a point-mass-at-zero/uniform mixture closest to the
// boundary, where a true Gaussian would put too much mass at negative
// loss.
func sampleStraggledLoss(rng prng.Source, dK, sigma float64) float64 {
	if sigma <= 0 {
		return dK
	}
	switch {
	case dK >= 3*sigma:
		return sampleTruncatedGaussian(rng, dK, sigma)
	case dK >= math.Sqrt(3)*sigma:
		u := rng.Float64()
		lo := dK - math.Sqrt(3)*sigma
		hi := dK + math.Sqrt(3)*sigma
		return lo + u*(hi-lo)
	default:
		sigma2 := sigma * sigma
		dK2 := dK * dK
		denom := 3*sigma2 + 3*dK2
		var p0 float64
		if denom > 0 {
			p0 = (3*sigma2 - dK2) / denom
		}
		if p0 < 0 {
			p0 = 0
		} else if p0 > 1 {
			p0 = 1
		}
		if rng.Float64() < p0 {
			return 0
		}
		if p0 >= 1 {
			return 0
		}
		// b chosen so the mixture's mean is exactly dK: (1-p0)*b/2 = dK.
		b := 2 * dK / (1 - p0)
		return rng.Float64() * b
	}
}

// sampleTruncatedGaussian draws from N(dK, sigma) truncated to [0, 2*dK]
// via rejection on a Box-Muller draw, falling back to the mean after a
// bounded number of rejections (the truncation almost never triggers once
// dK >= 3*sigma, so 10 tries is generous headroom, not a real budget).
func sampleTruncatedGaussian(rng prng.Source, dK, sigma float64) float64 {
	for i := 0; i < 10; i++ {
		u1, u2 := rng.Float64(), rng.Float64()
		if u1 <= 0 {
			u1 = 1e-12
		}
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
		loss := dK + sigma*z
		if loss >= 0 && loss <= 2*dK {
			return loss
		}
	}
	return dK
}
