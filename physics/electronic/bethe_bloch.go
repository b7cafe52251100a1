package electronic

import "math"

// MeanStoppingPower returns the modified Bethe-Bloch mean electronic energy
// loss, -dE/dx, in GeV*m^2/kg, for a projectile of mass m (GeV) and kinetic
// energy K (GeV) traversing a material of <Z/A> and mean excitation energy
// meanI (GeV), with the given density-effect correction applied.
func MeanStoppingPower(zOverA, meanI float64, de DensityEffect, m, K float64) float64 {
	const kConst = 0.307075e-3 // GeV*mol^-1*cm^2, converted below
	E := K + m
	gamma := E / m
	beta2 := 1 - 1/(gamma*gamma)
	if beta2 <= 0 {
		return 0
	}
	betaGamma := math.Sqrt(beta2) * gamma
	X := math.Log10(betaGamma)
	delta := de.Delta(X)

	Tmax := maxEnergyTransfer(m, gamma, beta2)

	lnTerm := math.Log(2*electronMass*beta2*gamma*gamma*Tmax/(meanI*meanI)) / 2
	bracket := lnTerm - beta2 - delta/2

	// kConst is in GeV cm^2/g/mol; convert to GeV m^2/kg: 1 cm^2/g = 0.1 m^2/kg.
	prefactor := kConst * zOverA / beta2 * 0.1
	return prefactor * bracket
}

// maxEnergyTransfer is the standard Moller kinematic maximum energy
// transfer to a free electron at rest.
func maxEnergyTransfer(m, gamma, beta2 float64) float64 {
	num := 2 * electronMass * beta2 * gamma * gamma
	den := 1 + 2*gamma*electronMass/m + (electronMass/m)*(electronMass/m)
	return num / den
}
