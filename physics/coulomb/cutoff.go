package coulomb

import (
	"math"

	"github.com/inference-sim/pumas-go/internal/errcat"
)

// maxEHSAngleRad is the hard upper bound on the EHS (extreme hard single
// scattering) cutoff angle: one degree, per spec §4.3's "the cutoff angle
// is bounded above by 1 degree regardless of the target restricted cross
// section value."
const maxEHSAngleRad = math.Pi / 180.0

// EHSCutoff solves for the cosine muCut of the angular cutoff separating
// soft multiple scattering from hard single-scattering events, such that
// RestrictedCrossSection(s, p, beta, muCut) equals the target cross
// section sigmaTarget (spec §4.3's inverse problem: given a desired mean
// number of hard events per unit path, find the angle). The root is found
// with Ridders' method, bracketed between cos(1 degree) and 1, so the
// cutoff angle never exceeds one degree.
func EHSCutoff(s Screening, p, beta, sigmaTarget float64) (float64, error) {
	muUpper := math.Cos(maxEHSAngleRad)
	f := func(mu float64) float64 {
		return RestrictedCrossSection(s, p, beta, mu) - sigmaTarget
	}
	lo, hi := muUpper, 1.0
	fLo, fHi := f(lo), f(hi)
	if fLo*fHi > 0 {
		// The target cross section is unreachable within the allowed
		// angular window; clamp to the boundary closest to the target
		// rather than erroring, matching the "local recovery, not an
		// error" policy for boundary degeneracies.
		if math.Abs(fLo) < math.Abs(fHi) {
			return lo, nil
		}
		return hi, nil
	}
	mu, err := ridders(f, lo, hi, 1e-12, 100)
	if err != nil {
		return 0, errcat.Wrap(errcat.Physics, "EHSCutoff", err)
	}
	return mu, nil
}

// ridders implements Ridders' root-finding method on a bracketed interval
// [a, b] with f(a)*f(b) < 0, converging to tolerance tol in at most
// maxIter iterations.
func ridders(f func(float64) float64, a, b, tol float64, maxIter int) (float64, error) {
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	for i := 0; i < maxIter; i++ {
		mid := 0.5 * (a + b)
		fm := f(mid)
		s := math.Sqrt(fm*fm - fa*fb)
		if s == 0 {
			return mid, nil
		}
		sign := 1.0
		if fa-fb < 0 {
			sign = -1.0
		}
		next := mid + (mid-a)*sign*fm/s
		fNext := f(next)
		if math.Abs(b-a) < tol {
			return next, nil
		}
		switch {
		case sign_(fm)*sign_(fNext) != 1 && fm != 0:
			a, fa = mid, fm
			b, fb = next, fNext
		case sign_(fa)*sign_(fNext) != 1 && fa != 0:
			b, fb = next, fNext
		case sign_(fb)*sign_(fNext) != 1 && fb != 0:
			a, fa = next, fNext
		default:
			return next, nil
		}
		if math.Abs(fNext) < tol {
			return next, nil
		}
	}
	return 0, errcat.New(errcat.Physics, "ridders", "did not converge within %d iterations", maxIter)
}

func sign_(x float64) float64 {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}
