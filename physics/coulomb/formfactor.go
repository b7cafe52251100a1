package coulomb

import "math"

// nuclearRadiusFm returns the nuclear charge radius in femtometers via the
// standard A^(1/3) parameterization.
func nuclearRadiusFm(A float64) float64 {
	return 1.2 * math.Cbrt(A)
}

// FormFactor is the fourth-order-pole nuclear form factor suppression
// applied to the point-nucleus Rutherford cross section at momentum
// transfer corresponding to scattering angle theta (via cosTheta) for a
// projectile of momentum p (GeV) off a nucleus of mass number A:
//
//	F(q) = 1 / (1 + (q*R/hbarc)^2)^2
//
// where q is the momentum transfer 2*p*sin(theta/2) and R is the nuclear
// charge radius.
func FormFactor(p, cosTheta, A float64) float64 {
	sinHalf2 := (1 - cosTheta) / 2
	if sinHalf2 < 0 {
		sinHalf2 = 0
	}
	q := 2 * p * math.Sqrt(sinHalf2)
	const hbarcFmGeV = 0.19732698 // GeV*fm
	x := q * nuclearRadiusFm(A) / hbarcFmGeV
	denom := 1 + x*x
	return 1 / (denom * denom)
}

// BornCorrection applies the leading Kuraev-Tkachov-Verkhovsky correction to
// the first Born approximation, a small multiplicative factor that grows
// with Z*alpha and with the scattering angle; it keeps the high-Z, large-
// angle cross section from diverging from the exact phase-shift result
// the way the uncorrected Born series would.
func BornCorrection(Z int, beta, cosTheta float64) float64 {
	zAlpha := float64(Z) * alphaEM
	sinHalf := math.Sqrt(math.Max(0, (1-cosTheta)/2))
	if sinHalf == 0 {
		return 1
	}
	return 1 + 2*zAlpha*math.Pi*beta*sinHalf
}

// SpinFactor is the relativistic Mott spin-correction to the scattering
// cross section, 1 - beta^2*sin^2(theta/2).
func SpinFactor(beta, cosTheta float64) float64 {
	sinHalf2 := (1 - cosTheta) / 2
	return 1 - beta*beta*sinHalf2
}
