package transport

import (
	"math"

	"github.com/inference-sim/pumas-go/transport/prng"
)

// ApplyMultipleScattering perturbs particle's direction by a single
// Gaussian-equivalent deflection summarizing every soft Coulomb collision
// over a step of grammage ds between kinetic energies Ki (before) and Kf
// (after). The deflection cosine is drawn as
//
//	mu = -0.25*ds*(1/lambda1(Ki) + 1/lambda1(Kf))*log(u),  cos(theta) = 1 - 2*mu
//
// endpoint-averaging the material's first transport coefficient (Omega,
// Ms1 = 1/lambda1) the same way the stopping power itself is evaluated at
// both ends of a step, then redrawing u (bounded tries) whenever mu > 1
// would give |cos(theta)| > 1 — the Gaussian-equivalent model's domain of
// validity, per spec §4.6's "soft multiple scattering accumulates as a
// Gaussian-equivalent deflection between hard events."
func ApplyMultipleScattering(ctx *Context, p *Particle, ds, Ki, Kf float64) {
	if !ctx.Modes.Scattering || !p.Alive || ds <= 0 {
		return
	}
	mt := ctx.material()
	if mt == nil || mt.Omega == nil {
		return
	}
	invLambda1Ki := mt.Omega.Eval(Ki, &ctx.cache)
	invLambda1Kf := mt.Omega.Eval(Kf, &ctx.cache)

	rng := ctx.RNG.For(prng.SubsystemScattering)
	var mu float64
	for i := 0; i < 10; i++ {
		u := rng.Float64()
		if u <= 0 {
			u = 1e-12
		}
		mu = -0.25 * ds * (invLambda1Ki + invLambda1Kf) * math.Log(u)
		if mu <= 1 {
			break
		}
	}
	if mu <= 0 {
		return
	}
	if mu > 1 {
		mu = 1
	}
	cosTheta := 1 - 2*mu
	if cosTheta > 1 {
		cosTheta = 1
	} else if cosTheta < -1 {
		cosTheta = -1
	}
	theta := math.Acos(cosTheta)
	if theta == 0 {
		return
	}
	phi := 2 * math.Pi * rng.Float64()

	axis := perpendicularAxis(p.Direction, phi)
	p.Direction = rotateAroundAxis(p.Direction, axis, theta)
}

// perpendicularAxis returns a unit vector perpendicular to dir, rotated by
// phi in the plane transverse to dir, used as the Rodrigues rotation axis
// for a scattering kick drawn in the particle's own transverse frame.
func perpendicularAxis(dir [3]float64, phi float64) [3]float64 {
	ref := [3]float64{0, 1, 0}
	if math.Abs(dir[1]) > 0.9 {
		ref = [3]float64{1, 0, 0}
	}
	e1 := normalize(crossProduct(dir, ref))
	e2 := crossProduct(dir, e1)
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = e1[i]*math.Cos(phi) + e2[i]*math.Sin(phi)
	}
	return normalize(out)
}
