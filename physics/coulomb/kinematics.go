package coulomb

import "math"

// Kinematics holds the projectile/target frame quantities needed to convert
// between the nucleus-projectile center-of-mass frame (where the Wentzel
// scattering law is isotropic in its own angle) and the lab frame (where
// transport accumulates deflection).
type Kinematics struct {
	Beta   float64 // projectile lab-frame velocity / c
	Gamma  float64
	Mratio float64 // projectile mass / target nucleus mass
}

// NewKinematics derives the CM-frame parameters for a projectile of mass m
// (GeV) and kinetic energy K (GeV) scattering off a nucleus of atomic mass A
// (g/mol, converted to GeV via the standard nucleon mass).
func NewKinematics(m, K, A float64) Kinematics {
	const nucleonMassGeV = 0.938272
	E := K + m
	p := math.Sqrt(math.Max(0, E*E-m*m))
	beta := p / E
	gamma := E / m
	M := A * nucleonMassGeV
	return Kinematics{Beta: beta, Gamma: gamma, Mratio: m / M}
}

// LabCosine converts a CM-frame scattering cosine muCM into the lab-frame
// cosine, exactly when Mratio is tiny (target effectively infinite mass)
// and via the standard nonrelativistic two-body transform otherwise
// (spec §4.3's "exact transform below, asymptotic (mu_lab = mu_CM) above a
// target-mass threshold").
func (k Kinematics) LabCosine(muCM float64) float64 {
	if k.Mratio < 1e-4 {
		return muCM
	}
	num := muCM + k.Mratio
	den := math.Sqrt(1 + 2*k.Mratio*muCM + k.Mratio*k.Mratio)
	return num / den
}
