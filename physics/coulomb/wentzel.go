package coulomb

import (
	"math"

	"github.com/inference-sim/pumas-go/internal/xmath"
)

// RestrictedCrossSection returns the total cross section (m^2) for
// scattering with cos(theta) <= muMax (i.e. scattering angle at least the
// corresponding angle), integrating the multi-pole Wentzel screened
// Rutherford law pole-by-pole using a Kahan-compensated sum across poles
// (spec §4.3's extended-precision pole reduction: summing 3 poles whose
// individual magnitudes can differ by orders of magnitude at small angle).
func RestrictedCrossSection(s Screening, p, beta float64, muMax float64) float64 {
	rutherford := rutherfordPrefactor(s.Z, p, beta)
	var sum xmath.Sum
	for k := 0; k < 3; k++ {
		eta := s.ScreeningAngle(k, p)
		term := s.Weight[k] * poleIntegral(eta, muMax)
		sum.Add(term)
	}
	return rutherford * sum.Value()
}

// FirstTransportCoefficient returns the first transport coefficient
// (the mean 1-cos(theta) per unit path, restricted to muMax), used by the
// multiple-soft-scattering moments in spec §4.3 and consumed directly by
// transport's deflection-variance accumulation.
func FirstTransportCoefficient(s Screening, p, beta float64, muMax float64) float64 {
	rutherford := rutherfordPrefactor(s.Z, p, beta)
	var sum xmath.Sum
	for k := 0; k < 3; k++ {
		eta := s.ScreeningAngle(k, p)
		term := s.Weight[k] * poleFirstMoment(eta, muMax)
		sum.Add(term)
	}
	return rutherford * sum.Value()
}

// rutherfordPrefactor is the point-nucleus Rutherford normalization,
// 2*pi*(Z*alpha/(p*beta))^2 in natural units (m^2).
func rutherfordPrefactor(Z int, p, beta float64) float64 {
	zAlpha := float64(Z) * alphaEM
	const hbarcGeVfm = 0.19732698
	const fmToM = 1e-15
	x := zAlpha / (p * beta) * hbarcGeVfm * fmToM
	return 2 * math.Pi * x * x
}

// poleIntegral is the closed form of integral_{-1}^{muMax} dmu /
// (1-mu+2*eta)^2, i.e. the single-pole Wentzel cross section restricted to
// cos(theta) <= muMax:
//
//	1/(1+2*eta-muMax) - 1/(2+2*eta)
func poleIntegral(eta, muMax float64) float64 {
	return 1/(1+2*eta-muMax) - 1/(2+2*eta)
}

// poleFirstMoment is the closed form of integral_{-1}^{muMax} (1-mu) dmu /
// (1-mu+2*eta)^2, the first-moment (transport) integral of a single
// Wentzel pole.
func poleFirstMoment(eta, muMax float64) float64 {
	lnTerm := math.Log((2 + 2*eta) / (1 + 2*eta - muMax))
	return lnTerm - 2*eta*poleIntegral(eta, muMax)
}
