package coulomb

import "math"

// SampleHardEvent draws the lab-frame cosine of a single hard Coulomb
// scattering event with cos(theta) < muCut, via single-pole Wentzel
// rejection sampling against the dominant (largest-weight) screening pole,
// per spec §4.3's "hard events are drawn by rejection against the
// single-pole Wentzel law, with an exact (not small-angle) CM-to-lab
// transform applied to the accepted angle."
func SampleHardEvent(s Screening, kin Kinematics, p float64, muCut float64, rng func() float64) float64 {
	dominant := dominantPole(s)
	eta := s.ScreeningAngle(dominant, p)

	for trial := 0; trial < 1000; trial++ {
		muCM := sampleSinglePole(eta, muCut, rng())
		weight := acceptanceWeight(s, p, muCM)
		if rng() < weight {
			return kin.LabCosine(muCM)
		}
	}
	// Exhausted trials (pathological screening configuration): return the
	// dominant pole's unweighted draw rather than looping forever.
	return kin.LabCosine(sampleSinglePole(eta, muCut, rng()))
}

// dominantPole returns the index of the screening pole carrying the
// largest weight, the proposal distribution for rejection sampling.
func dominantPole(s Screening) int {
	best := 0
	for k := 1; k < 3; k++ {
		if s.Weight[k] > s.Weight[best] {
			best = k
		}
	}
	return best
}

// sampleSinglePole inverts the single-pole Wentzel CDF restricted to
// cos(theta) in [-1, muCut] by analytic inversion of
// integral dmu/(1-mu+2*eta)^2.
func sampleSinglePole(eta, muCut, u float64) float64 {
	aLo := 1 / (2 + 2*eta)
	aHi := 1 / (1 + 2*eta - muCut)
	a := aLo + u*(aHi-aLo)
	return 1 + 2*eta - 1/a
}

// acceptanceWeight is the ratio of the true multi-pole differential cross
// section to the single dominant-pole proposal at cos(theta) = muCM,
// clamped to [0, 1] for numerical robustness near the boundary.
func acceptanceWeight(s Screening, p, muCM float64) float64 {
	dominant := dominantPole(s)
	etaD := s.ScreeningAngle(dominant, p)
	proposal := s.Weight[dominant] / math.Pow(1-muCM+2*etaD, 2)

	var full float64
	for k := 0; k < 3; k++ {
		eta := s.ScreeningAngle(k, p)
		full += s.Weight[k] / math.Pow(1-muCM+2*eta, 2)
	}
	if proposal <= 0 {
		return 0
	}
	w := full / proposal
	if w > 1 {
		w = 1
	}
	if w < 0 {
		w = 0
	}
	return w
}
