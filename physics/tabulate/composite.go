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

// tabulateComposite implements step 6 of spec §6: every per-process
// stopping power, cross section, and envelope-max table for a composite
// material is the mass-fraction-weighted linear combination of its base
// materials' already-built tables, while the Coulomb scattering moments
// (Ms1/Omega, scattering length, Mu0, Lb, straggling variance, Li) are
// recomputed from scratch from the composite's own flattened element
// mixture, because multiple scattering does not combine linearly across a
// heterogeneous mixture the way energy loss does.
func tabulateComposite(reg *materials.Registry, pt *tables.PhysicsTables, materialIndex int, grid materials.KineticGrid, settings Settings) (*tables.MaterialTable, error) {
	nBase := reg.NBase()
	comp := reg.Composite[materialIndex-nBase]
	n := len(grid.K)
	m := settings.ProjectileMass

	combine := func(get func(*tables.MaterialTable) *interp.Table) *interp.Table {
		out := make([]float64, n)
		dOut := make([]float64, n)
		for _, c := range comp.Components {
			bt := pt.Get(c.BaseIndex)
			table := get(bt)
			if table == nil {
				continue
			}
			for i, K := range grid.K {
				out[i] += c.Fraction * table.Eval(K, nil)
				dOut[i] += c.Fraction * table.EvalDeriv(K, nil)
			}
		}
		// Combining the node slopes too keeps the composite's interpolant
		// the same weighted sum of the base interpolants between nodes.
		return interp.NewWithDerivatives(grid.K, out, dOut)
	}

	totalLoss := combine(func(m *tables.MaterialTable) *interp.Table { return m.TotalLoss })
	deCsda := combine(func(m *tables.MaterialTable) *interp.Table { return m.DECsda })
	ionLoss := combine(func(m *tables.MaterialTable) *interp.Table { return m.IonLoss })
	bremsLoss := combine(func(m *tables.MaterialTable) *interp.Table { return m.BremsLoss })
	pairLoss := combine(func(m *tables.MaterialTable) *interp.Table { return m.PairLoss })
	photoLoss := combine(func(m *tables.MaterialTable) *interp.Table { return m.PhotoLoss })
	bremsCS := combine(func(m *tables.MaterialTable) *interp.Table { return m.BremsCS })
	pairCS := combine(func(m *tables.MaterialTable) *interp.Table { return m.PairCS })
	photoCS := combine(func(m *tables.MaterialTable) *interp.Table { return m.PhotoCS })

	mixedRange := interp.New(grid.K, invert(evalAll(totalLoss, grid.K))).Integral(0)
	csdaRange := interp.New(grid.K, invert(evalAll(deCsda, grid.K))).Integral(0)
	tMixed := properTimeTable(grid.K, m, evalAll(totalLoss, grid.K))
	tCsda := properTimeTable(grid.K, m, evalAll(deCsda, grid.K))

	csArr := make([]float64, n)
	csfBrems := make([]float64, n)
	csfPair := make([]float64, n)
	csfPhoto := make([]float64, n)
	bremsCSvals, pairCSvals, photoCSvals := evalAll(bremsCS, grid.K), evalAll(pairCS, grid.K), evalAll(photoCS, grid.K)
	for i := range grid.K {
		cs := bremsCSvals[i] + pairCSvals[i] + photoCSvals[i]
		csArr[i] = cs
		if cs > 0 {
			csfBrems[i] = bremsCSvals[i] / cs
			csfPair[i] = (bremsCSvals[i] + pairCSvals[i]) / cs
		} else {
			csfBrems[i] = 1
			csfPair[i] = 1
		}
		csfPhoto[i] = 1
	}
	csTable := interp.New(grid.K, csArr)
	niIn := interp.New(grid.K, csArr).Integral(0)

	fractions, err := reg.ElementFractions(materialIndex)
	if err != nil {
		return nil, errcat.Wrap(errcat.Physics, "tabulateComposite", err)
	}
	omega := make([]float64, n)
	scatLen := make([]float64, n)
	straggle := make([]float64, n)
	for i, K := range grid.K {
		o, l := scatteringMoments(reg, fractions, m, K)
		omega[i] = o
		scatLen[i] = l
	}
	avgZ, avgA := averageElement(reg, fractions)
	screening := coulomb.ScreeningFor(avgZ)
	zOverA, err := compositeZOverA(reg, fractions)
	if err != nil {
		return nil, errcat.Wrap(errcat.Physics, "tabulateComposite", err)
	}
	for i, K := range grid.K {
		straggle[i] = electronic.StragglingVariance(zOverA, m, K)
	}

	invScatLen := make([]float64, n)
	for i, l := range scatLen {
		if l > 0 && !math.IsInf(l, 1) {
			invScatLen[i] = 1 / l
		}
	}
	niEl := interp.New(grid.K, invScatLen).Integral(0)

	mu0, lb := scatteringCutoffs(grid.K, screening, m, omega, csdaRange)
	li := larmorMoments(grid.K, m, evalAll(deCsda, grid.K))

	density, err := reg.Density(materialIndex)
	if err != nil {
		return nil, errcat.Wrap(errcat.Physics, "tabulateComposite", err)
	}

	ionVals := evalAll(ionLoss, grid.K)
	bremsVals := evalAll(bremsLoss, grid.K)
	pairVals := evalAll(pairLoss, grid.K)
	photoVals := evalAll(photoLoss, grid.K)
	aMax := ionVals[n-1]
	var bMax float64
	if grid.K[n-1] > 0 {
		bMax = (bremsVals[n-1] + pairVals[n-1] + photoVals[n-1]) / grid.K[n-1]
	}

	envelopes := map[dcs.Process]*interp.Table{}
	alphas := map[dcs.Process]float64{}
	for _, proc := range []dcs.Process{dcs.Bremsstrahlung, dcs.PairProduction, dcs.Photonuclear} {
		var get func(*tables.MaterialTable) *interp.Table
		switch proc {
		case dcs.Bremsstrahlung:
			get = func(m *tables.MaterialTable) *interp.Table { return m.Envelopes[dcs.Bremsstrahlung] }
		case dcs.PairProduction:
			get = func(m *tables.MaterialTable) *interp.Table { return m.Envelopes[dcs.PairProduction] }
		case dcs.Photonuclear:
			get = func(m *tables.MaterialTable) *interp.Table { return m.Envelopes[dcs.Photonuclear] }
		}
		envelopes[proc] = combine(get)
		var alphaSum float64
		for _, c := range comp.Components {
			bt := pt.Get(c.BaseIndex)
			alphaSum += c.Fraction * bt.Alphas[proc]
		}
		alphas[proc] = alphaSum
	}

	return &tables.MaterialTable{
		Name:               comp.Name,
		Density:            density,
		CSDARange:          csdaRange,
		MixedRange:         mixedRange,
		TCsda:              tCsda,
		TMixed:             tMixed,
		DECsda:             deCsda,
		TotalLoss:          totalLoss,
		BremsLoss:          bremsLoss,
		PairLoss:           pairLoss,
		PhotoLoss:          photoLoss,
		IonLoss:            ionLoss,
		BremsCS:            bremsCS,
		PairCS:             pairCS,
		PhotoCS:            photoCS,
		CS:                 csTable,
		CSf: map[dcs.Process]*interp.Table{
			dcs.Bremsstrahlung: interp.New(grid.K, csfBrems),
			dcs.PairProduction: interp.New(grid.K, csfPair),
			dcs.Photonuclear:   interp.New(grid.K, csfPhoto),
		},
		NIel:               niEl,
		NIin:               niIn,
		ScatteringLength:   interp.New(grid.K, scatLen),
		Omega:              interp.New(grid.K, omega),
		StragglingVariance: interp.New(grid.K, straggle),
		Mu0:                mu0,
		Lb:                 lb,
		Li:                 li,
		Kt:                 regularizationThreshold(grid.K, bremsCSvals, pairCSvals, photoCSvals),
		AMax:               aMax,
		BMax:               bMax,
		EffectiveZ:         avgZ,
		EffectiveA:         avgA,
		Envelopes:          envelopes,
		Alphas:             alphas,
	}, nil
}

// evalAll samples table at every grid point, used when a combined table
// needs to feed a plain []float64 numeric pass (cumulative integrals,
// proper-time moments) the same way the base-material tabulation does.
func evalAll(table *interp.Table, grid []float64) []float64 {
	out := make([]float64, len(grid))
	for i, K := range grid {
		out[i] = table.Eval(K, nil)
	}
	return out
}

// compositeZOverA returns the composite's own mass-fraction-weighted <Z/A>,
// used to recompute the straggling variance from scratch the same way the
// scattering moments are recomputed from scratch, rather than linearly
// combining each base material's already-tabulated straggling variance
// (which would double-count the shared electron-density dependence).
func compositeZOverA(reg *materials.Registry, fractions map[int]float64) (float64, error) {
	var zOverA float64
	for idx, frac := range fractions {
		el := reg.Elements[idx]
		if el.A <= 0 {
			continue
		}
		zOverA += frac * float64(el.Z) / el.A
	}
	return zOverA, nil
}
