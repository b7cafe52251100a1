package electronic

// StragglingVariance returns the Bohr variance of the energy-loss
// distribution per unit grammage, Omega^2/Delta x (GeV^2*m^2/kg), for a
// projectile of mass m (GeV) and kinetic energy K (GeV) traversing a
// material of <Z/A>. It reuses MeanStoppingPower's kinematic building
// blocks (Tmax, the Moller kinematic maximum transfer, and the same
// kConst/zOverA scaling), since the Gaussian-approximation straggling
// variance is the second moment of the same close-collision spectrum whose
// first moment is the mean stopping power.
func StragglingVariance(zOverA, m, K float64) float64 {
	const kConst = 0.307075e-3 // GeV*mol^-1*cm^2, same constant as MeanStoppingPower
	E := K + m
	gamma := E / m
	beta2 := 1 - 1/(gamma*gamma)
	if beta2 <= 0 {
		return 0
	}
	Tmax := maxEnergyTransfer(m, gamma, beta2)
	// kConst is GeV cm^2/g/mol; convert to GeV m^2/kg: 1 cm^2/g = 0.1 m^2/kg.
	prefactor := kConst * zOverA * electronMass / beta2 * 0.1
	return prefactor * Tmax * (1 - beta2/2)
}
