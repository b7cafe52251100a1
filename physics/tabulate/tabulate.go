// Package tabulate builds a tables.PhysicsTables from a materials.Registry:
// the multi-pass tabulation procedure of spec §6 — regularize the shared
// grid, tabulate each base material's losses/cross sections/scattering
// moments and DCS envelopes, then derive every composite material by
// linear combination of its base materials (except the Coulomb/soft-
// scattering moments, recomputed from the composite's own element mixture)
// — plus UpdateComposite, a partial retabulation entry point for when only
// a composite's mixing fractions change.
package tabulate

import (
	"math"

	"github.com/inference-sim/pumas-go/internal/errcat"
	"github.com/inference-sim/pumas-go/physics/coulomb"
	"github.com/inference-sim/pumas-go/physics/dcs"
	"github.com/inference-sim/pumas-go/physics/electronic"
	"github.com/inference-sim/pumas-go/physics/interp"
	"github.com/inference-sim/pumas-go/physics/materials"
	"github.com/inference-sim/pumas-go/physics/tables"
)

// Settings controls the kinematic cutoffs and model selection used while
// building a PhysicsTables, spec §6's tabulation configuration.
type Settings struct {
	ProjectileMass float64 // GeV (muon or tau)
	CutFraction    float64 // fraction of K separating soft (continuous) from hard (discrete) radiative losses
	Models         map[dcs.Process]string
}

// DefaultSettings returns the muon/default-model settings used when the
// caller does not override anything.
func DefaultSettings() Settings {
	return Settings{
		ProjectileMass: 0.1056583745,
		CutFraction:    0.05,
		Models:         dcs.DefaultModel,
	}
}

// ehsElasticRatio is the fraction of the hard-scattering budget
// max(Ms1, 1/X_csda) allocated to EHS (extended hard single scattering)
// rather than other hard-event channels. The retrieval pack does not carry
// a tabulated elastic/total ratio, so this is a documented simplification:
// the full hard-event budget is attributed to EHS (ratio 1), which keeps
// the Lb/Mu0 construction exact by definition (see scatteringCutoffs
// below) at the cost of not splitting EHS from other hard-event channels.
const ehsElasticRatio = 1.0

// ehsPathMax floors sigma_hard so the EHS rate never vanishes even where
// the restricted cross section underflows, spec §4.3's "lower-clamped to
// 1/EHS_PATH_MAX."
const ehsPathMax = 1e7 // kg/m^2

// Build runs the full tabulation pass: base materials first (step 1-5),
// composite materials second (step 6), returning a ready-to-use
// PhysicsTables.
func Build(reg *materials.Registry, grid materials.KineticGrid, settings Settings) (*tables.PhysicsTables, error) {
	if err := grid.Validate(); err != nil {
		return nil, errcat.Wrap(errcat.Configuration, "tabulate.Build", err)
	}
	pt := &tables.PhysicsTables{
		Grid:      grid.K,
		Materials: make([]tables.MaterialTable, reg.NMaterials()),
	}
	for i := 0; i < reg.NBase(); i++ {
		mt, err := tabulateBase(reg, i, grid, settings)
		if err != nil {
			return nil, err
		}
		pt.Materials[i] = *mt
	}
	for i := reg.NBase(); i < reg.NMaterials(); i++ {
		mt, err := tabulateComposite(reg, pt, i, grid, settings)
		if err != nil {
			return nil, err
		}
		pt.Materials[i] = *mt
	}
	return pt, nil
}

// UpdateComposite re-tabulates only materialIndex (which must be a
// composite material), leaving every base material's tables untouched.
// This is the partial-retabulation operation spec §6 calls out for the
// case where only a composite's mixing fractions changed.
func UpdateComposite(reg *materials.Registry, pt *tables.PhysicsTables, materialIndex int, grid materials.KineticGrid, settings Settings) error {
	if materialIndex < reg.NBase() {
		return errcat.New(errcat.Configuration, "tabulate.UpdateComposite", "material %d is a base material, not composite", materialIndex)
	}
	mt, err := tabulateComposite(reg, pt, materialIndex, grid, settings)
	if err != nil {
		return err
	}
	pt.Materials[materialIndex] = *mt
	return nil
}

// tabulateBase implements steps 1-5 of spec §6 for one base material: the
// per-process stopping power tables, their sum, the cumulative CSDA/mixed
// range integrals and their proper-time companions, per-process
// macroscopic cross sections above the DEL cutoff and their cumulative
// fractions, the Coulomb scattering length/Ms1/EHS-cutoff moments, the
// straggling variance, the Larmor proper-time moments, and per-process DCS
// envelopes.
func tabulateBase(reg *materials.Registry, materialIndex int, grid materials.KineticGrid, settings Settings) (*tables.MaterialTable, error) {
	base := reg.Base[materialIndex]
	meanI, err := reg.EffectiveI(materialIndex)
	if err != nil {
		return nil, err
	}
	plasma := electronic.PlasmaEnergy(base.ZoverA, base.Density)
	de := electronic.NewDensityEffect(plasma, meanI)
	m := settings.ProjectileMass

	n := len(grid.K)
	brems := make([]float64, n)
	pair := make([]float64, n)
	photo := make([]float64, n)
	ion := make([]float64, n)
	total := make([]float64, n)
	fullDE := make([]float64, n)
	bremsCS := make([]float64, n)
	pairCS := make([]float64, n)
	photoCS := make([]float64, n)
	omega := make([]float64, n)
	scatLen := make([]float64, n)
	straggle := make([]float64, n)

	elementFractions := elementWeights(reg, base)
	avgZ, avgA := averageElement(reg, elementFractions)
	screening := coulomb.ScreeningFor(avgZ)

	for i, K := range grid.K {
		ion[i] = electronic.MeanStoppingPower(base.ZoverA, meanI, de, m, K)

		brems[i] = radiativeLoss(reg, elementFractions, dcs.Bremsstrahlung, settings.Models[dcs.Bremsstrahlung], m, K, settings.CutFraction, false)
		pair[i] = radiativeLoss(reg, elementFractions, dcs.PairProduction, settings.Models[dcs.PairProduction], m, K, settings.CutFraction, false)
		photo[i] = radiativeLoss(reg, elementFractions, dcs.Photonuclear, settings.Models[dcs.Photonuclear], m, K, settings.CutFraction, false)
		total[i] = ion[i] + brems[i] + pair[i] + photo[i]

		fullDE[i] = ion[i] +
			fullRadiativeLoss(reg, elementFractions, dcs.Bremsstrahlung, settings.Models[dcs.Bremsstrahlung], m, K) +
			fullRadiativeLoss(reg, elementFractions, dcs.PairProduction, settings.Models[dcs.PairProduction], m, K) +
			fullRadiativeLoss(reg, elementFractions, dcs.Photonuclear, settings.Models[dcs.Photonuclear], m, K)
		if fullDE[i] < total[i] {
			fullDE[i] = total[i]
		}

		bremsCS[i] = radiativeLoss(reg, elementFractions, dcs.Bremsstrahlung, settings.Models[dcs.Bremsstrahlung], m, K, settings.CutFraction, true)
		pairCS[i] = radiativeLoss(reg, elementFractions, dcs.PairProduction, settings.Models[dcs.PairProduction], m, K, settings.CutFraction, true)
		photoCS[i] = radiativeLoss(reg, elementFractions, dcs.Photonuclear, settings.Models[dcs.Photonuclear], m, K, settings.CutFraction, true)

		o, l := scatteringMoments(reg, elementFractions, m, K)
		omega[i] = o
		scatLen[i] = l

		straggle[i] = electronic.StragglingVariance(base.ZoverA, m, K)
	}

	regularize(grid.K, total, ion, brems, pair, photo, fullDE, bremsCS, pairCS, photoCS, omega, scatLen, straggle)
	kt := regularizationThreshold(grid.K, bremsCS, pairCS, photoCS)

	totalTable := interp.New(grid.K, total)
	fullDETable := interp.New(grid.K, fullDE)
	mixedRange := interp.New(grid.K, invert(total)).Integral(0)
	csdaRange := interp.New(grid.K, invert(fullDE)).Integral(0)
	tMixed := properTimeTable(grid.K, m, total)
	tCsda := properTimeTable(grid.K, m, fullDE)

	csArr := make([]float64, n)
	csfBrems := make([]float64, n)
	csfPair := make([]float64, n)
	csfPhoto := make([]float64, n)
	for i := range grid.K {
		cs := bremsCS[i] + pairCS[i] + photoCS[i]
		csArr[i] = cs
		if cs > 0 {
			csfBrems[i] = bremsCS[i] / cs
			csfPair[i] = (bremsCS[i] + pairCS[i]) / cs
		} else {
			csfBrems[i] = 1
			csfPair[i] = 1
		}
		csfPhoto[i] = 1
	}
	csTable := interp.New(grid.K, csArr)
	niIn := interp.New(grid.K, csArr).Integral(0)

	invScatLen := make([]float64, n)
	for i, l := range scatLen {
		if l > 0 && !math.IsInf(l, 1) {
			invScatLen[i] = 1 / l
		}
	}
	niEl := interp.New(grid.K, invScatLen).Integral(0)

	mu0, lb := scatteringCutoffs(grid.K, screening, m, omega, csdaRange)

	li := larmorMoments(grid.K, m, fullDE)

	aMax := ion[n-1]
	var bMax float64
	if grid.K[n-1] > 0 {
		bMax = (brems[n-1] + pair[n-1] + photo[n-1]) / grid.K[n-1]
	}

	envelopes := map[dcs.Process]*interp.Table{}
	alphas := map[dcs.Process]float64{}
	for _, proc := range []dcs.Process{dcs.Bremsstrahlung, dcs.PairProduction, dcs.Photonuclear} {
		model := settings.Models[proc]
		fn, err := dcs.Lookup(proc, model)
		if err != nil {
			return nil, err
		}
		maxima := make([]float64, n)
		var lastAlpha float64
		for i, K := range grid.K {
			rangeFn, err := dcs.RangeFor(proc)
			if err != nil {
				return nil, err
			}
			qMin, qMax := rangeFn(m, K)
			if qMax <= qMin {
				maxima[i] = 0
				continue
			}
			env := dcs.FitEnvelope(wrapElementAverage(fn, avgZ, avgA), 1, 1, m, K, qMin, qMax)
			maxima[i] = env.Max
			lastAlpha = env.Alpha
		}
		envelopes[proc] = interp.New(grid.K, maxima)
		alphas[proc] = lastAlpha
	}

	return &tables.MaterialTable{
		Name:               base.Name,
		Density:            base.Density,
		CSDARange:          csdaRange,
		MixedRange:         mixedRange,
		TCsda:              tCsda,
		TMixed:             tMixed,
		DECsda:             fullDETable,
		TotalLoss:          totalTable,
		BremsLoss:          interp.New(grid.K, brems),
		PairLoss:           interp.New(grid.K, pair),
		PhotoLoss:          interp.New(grid.K, photo),
		IonLoss:            interp.New(grid.K, ion),
		BremsCS:            interp.New(grid.K, bremsCS),
		PairCS:             interp.New(grid.K, pairCS),
		PhotoCS:            interp.New(grid.K, photoCS),
		CS:                 csTable,
		CSf: map[dcs.Process]*interp.Table{
			dcs.Bremsstrahlung:  interp.New(grid.K, csfBrems),
			dcs.PairProduction:  interp.New(grid.K, csfPair),
			dcs.Photonuclear:    interp.New(grid.K, csfPhoto),
		},
		NIel:               niEl,
		NIin:               niIn,
		ScatteringLength:   interp.New(grid.K, scatLen),
		Omega:              interp.New(grid.K, omega),
		StragglingVariance: interp.New(grid.K, straggle),
		Mu0:                mu0,
		Lb:                 lb,
		Li:                 li,
		Kt:                 kt,
		AMax:               aMax,
		BMax:               bMax,
		EffectiveZ:         avgZ,
		EffectiveA:         avgA,
		Envelopes:          envelopes,
		Alphas:             alphas,
	}, nil
}

// invert returns the elementwise reciprocal of xs, 0 where xs is
// non-positive (matching the teacher's "degrade to 0 rather than panic on
// a non-physical rate" policy used throughout this package).
func invert(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		if v > 0 {
			out[i] = 1 / v
		}
	}
	return out
}

// properTimeTable builds the cumulative proper-time-to-stop table T(K) =
// m*integral(dK/(p(K)*dE(K))), spec §3/§4.5's T_csda/T_mixed.
func properTimeTable(grid []float64, mass float64, dE []float64) *interp.Table {
	integrand := make([]float64, len(grid))
	for i, K := range grid {
		p := momentumFor(mass, K)
		if p <= 0 || dE[i] <= 0 {
			continue
		}
		integrand[i] = mass / (p * dE[i])
	}
	return interp.New(grid, integrand).Integral(0)
}

// larmorMoments builds the order 0..NLarmor proper-time Taylor moment
// tables Li[n](K) = integral(dK'/(dE(K')*p(K')^n)) from the grid minimum,
// used by the closed-form CSDA+homogeneous-field deflection: the total
// rotation angle over a CSDA step from Ki to Kf is exactly
// q*B_perp*0.299792458/rho * (Li[1](Ki) - Li[1](Kf)). Only order 1 is
// consumed by the current direction-only transport model; orders 0 and
// 2..8 are tabulated for data-model completeness (see DESIGN.md).
func larmorMoments(grid []float64, mass float64, dE []float64) [tables.NLarmor + 1]*interp.Table {
	var li [tables.NLarmor + 1]*interp.Table
	for order := 0; order <= tables.NLarmor; order++ {
		integrand := make([]float64, len(grid))
		for i, K := range grid {
			p := momentumFor(mass, K)
			if p <= 0 || dE[i] <= 0 {
				continue
			}
			integrand[i] = 1 / (dE[i] * math.Pow(p, float64(order)))
		}
		li[order] = interp.New(grid, integrand).Integral(0)
	}
	return li
}

// scatteringCutoffs solves the EHS angular cutoff at every grid point via
// coulomb.EHSCutoff, given sigma_hard = ehsElasticRatio *
// max(Ms1(K), 1/X_csda(K)), floored at 1/ehsPathMax, and derives Lb(K) :=
// sigmaHard(K)*p(K)^2 so that 1/lambda_EHS(K) == Lb(K)/p(K)^2 holds
// exactly by construction. ms1 is the already-tabulated first transport
// coefficient (this package's "omega" slice, spec's Ms1 = 1/lambda1).
func scatteringCutoffs(grid []float64, s coulomb.Screening, mass float64, ms1 []float64, csdaRange *interp.Table) (mu0, lb *interp.Table) {
	mu0Arr := make([]float64, len(grid))
	lbArr := make([]float64, len(grid))
	for i, K := range grid {
		E := K + mass
		p := math.Sqrt(math.Max(0, E*E-mass*mass))
		if p <= 0 {
			continue
		}
		beta := p / E
		xCsda := csdaRange.Eval(K, nil)
		var sigmaHard float64
		if xCsda > 0 {
			sigmaHard = math.Max(ms1[i], 1/xCsda)
		} else {
			sigmaHard = ms1[i]
		}
		sigmaHard *= ehsElasticRatio
		if sigmaHard < 1/ehsPathMax {
			sigmaHard = 1 / ehsPathMax
		}
		muCut, err := coulomb.EHSCutoff(s, p, beta, sigmaHard)
		if err != nil {
			muCut = math.Cos(math.Pi / 180.0)
		}
		mu0Arr[i] = 0.5 * (1 - muCut)
		lbArr[i] = sigmaHard * p * p
	}
	return interp.New(grid, mu0Arr), interp.New(grid, lbArr)
}

// regularize implements spec §6's regularization pass: below the smallest
// K where the first series (the total energy loss, as Build passes it) is
// positive, replace every row with the first well-defined row's values, avoiding degenerate zero/negative
// entries feeding the cumulative integrals.
func regularize(grid []float64, series ...[]float64) {
	if len(series) == 0 {
		return
	}
	n := len(grid)
	idx := 0
	for ; idx < n; idx++ {
		if series[0][idx] > 0 {
			break
		}
	}
	if idx == 0 || idx >= n {
		return
	}
	for _, s := range series {
		for i := 0; i < idx; i++ {
			s[i] = s[idx]
		}
	}
}

// regularizationThreshold returns the smallest grid K where the combined
// radiative cross section is positive, spec §3's Kt.
func regularizationThreshold(grid []float64, css ...[]float64) float64 {
	for i, K := range grid {
		var sum float64
		for _, cs := range css {
			sum += cs[i]
		}
		if sum > 0 {
			return K
		}
	}
	if len(grid) > 0 {
		return grid[len(grid)-1]
	}
	return 0
}

// momentumFor is the tabulation package's own copy of the relativistic
// momentum-from-kinetic-energy relation (transport/magnetic.go's
// momentumOf, duplicated here since physics/tabulate cannot import the
// transport package).
func momentumFor(m, K float64) float64 {
	E := K + m
	return math.Sqrt(math.Max(0, E*E-m*m))
}

// elementWeights flattens a base material into (element index -> mass
// fraction).
func elementWeights(reg *materials.Registry, base materials.BaseMaterial) map[int]float64 {
	out := make(map[int]float64, len(base.Components))
	for _, c := range base.Components {
		out[c.ElementIndex] += c.Fraction
	}
	return out
}

// averageElement returns the mass-fraction-weighted average Z and A of an
// element mixture, used when a DCS call site needs a single representative
// element (the envelope fit's probe points, and the Coulomb hard-event
// sampler's representative screening).
func averageElement(reg *materials.Registry, fractions map[int]float64) (int, float64) {
	var z, a, wsum float64
	for idx, frac := range fractions {
		el := reg.Elements[idx]
		z += frac * float64(el.Z)
		a += frac * el.A
		wsum += frac
	}
	if wsum == 0 {
		return 1, 1
	}
	return int(math.Round(z / wsum)), a / wsum
}

// wrapElementAverage closes fn's (Z, A) parameters over a fixed average
// element so FitEnvelope (which calls Func with explicit Z/A already) can
// be handed a materials-level average rather than looping per element
// itself; FitEnvelope's Z/A arguments are simply ignored by this wrapper in
// favor of the closed-over average.
func wrapElementAverage(fn dcs.Func, Z int, A float64) dcs.Func {
	return func(_ int, _ float64, m, K, q float64) float64 {
		return fn(Z, A, m, K, q)
	}
}

// radiativeLoss sums a process's contribution, either as a continuous
// energy-loss rate (integral of q*dsigma/dq below the DEL cutoff, when
// asCrossSection is false) or as a macroscopic hard-event rate (integral of
// dsigma/dq above the cutoff, when true), over every element in the
// material weighted by its mass fraction and number density proportional
// to fraction/A.
func radiativeLoss(reg *materials.Registry, fractions map[int]float64, proc dcs.Process, model string, m, K, cutFraction float64, asCrossSection bool) float64 {
	fn, err := dcs.Lookup(proc, model)
	if err != nil {
		return 0
	}
	rangeFn, err := dcs.RangeFor(proc)
	if err != nil {
		return 0
	}
	qMin, qMax := rangeFn(m, K)
	if qMax <= qMin {
		return 0
	}
	cut := cutFraction * K
	var lo, hi float64
	if asCrossSection {
		lo, hi = math.Max(qMin, cut), qMax
	} else {
		lo, hi = qMin, math.Min(qMax, cut)
	}
	if hi <= lo {
		return 0
	}

	var total float64
	const steps = 64
	dq := (hi - lo) / steps
	for idx, frac := range fractions {
		el := reg.Elements[idx]
		var integral float64
		for i := 0; i < steps; i++ {
			q := lo + dq*(float64(i)+0.5)
			v := fn(el.Z, el.A, m, K, q)
			if !asCrossSection {
				v *= q
			}
			integral += v * dq
		}
		numberDensity := frac / el.A
		total += integral * numberDensity
	}
	return total
}

// fullRadiativeLoss is radiativeLoss's uncapped sibling: the continuous
// energy-loss rate integrated over the ENTIRE kinematic range [qMin, qMax],
// with no DEL cutoff, used to build DECsda (dE_csda), the full-range rate
// CSDA mode advances by.
func fullRadiativeLoss(reg *materials.Registry, fractions map[int]float64, proc dcs.Process, model string, m, K float64) float64 {
	fn, err := dcs.Lookup(proc, model)
	if err != nil {
		return 0
	}
	rangeFn, err := dcs.RangeFor(proc)
	if err != nil {
		return 0
	}
	qMin, qMax := rangeFn(m, K)
	if qMax <= qMin {
		return 0
	}
	var total float64
	const steps = 64
	dq := (qMax - qMin) / steps
	for idx, frac := range fractions {
		el := reg.Elements[idx]
		var integral float64
		for i := 0; i < steps; i++ {
			q := qMin + dq*(float64(i)+0.5)
			integral += fn(el.Z, el.A, m, K, q) * q * dq
		}
		numberDensity := frac / el.A
		total += integral * numberDensity
	}
	return total
}

// scatteringMoments returns the (Ms1, scattering length) pair for a base
// material's element mixture, aggregating each element's restricted
// Coulomb cross section and first transport coefficient weighted by its
// number density.
func scatteringMoments(reg *materials.Registry, fractions map[int]float64, m, K float64) (ms1, scatteringLength float64) {
	E := K + m
	p := math.Sqrt(math.Max(0, E*E-m*m))
	beta := p / E
	const muCut = 0.999
	var sigmaTotal, transport float64
	for idx, frac := range fractions {
		el := reg.Elements[idx]
		s := coulomb.ScreeningFor(el.Z)
		sigma := coulomb.RestrictedCrossSection(s, p, beta, muCut)
		tc := coulomb.FirstTransportCoefficient(s, p, beta, muCut)
		numberDensity := frac / el.A
		sigmaTotal += sigma * numberDensity
		transport += tc * numberDensity
	}
	if sigmaTotal <= 0 {
		return 0, math.Inf(1)
	}
	return transport, 1 / sigmaTotal
}
