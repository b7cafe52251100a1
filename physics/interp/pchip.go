// Package interp implements the monotone cubic Hermite (PCHIP) interpolation
// kernel shared by every tabulated physical quantity in pumas-go: energy
// loss, cross sections, ranges, straggling variance, multiple-scattering
// moments, and single-scattering DCS tables. It is the concrete realization
// of layer L1 from the design: PCHIP construction and evaluation, analytic
// cumulative integration, and a dichotomic index lookup with a per-context
// memoised cache.
//
// pumas-go hand-rolls this kernel on the standard library rather than
// reaching for a general-purpose spline package: the monotonicity-preserving
// Fritsch–Butland derivative rule, the deliberately non-monotone linear
// first span (it straddles the nonphysical K=0 node), and the two-slot
// memoised bracket cache are all spec-mandated specifics that no off-the-
// shelf interpolation library exposes as a unit.
package interp

import (
	"math"
	"sort"
)

// Table is an immutable monotone cubic Hermite interpolant over strictly
// increasing nodes Xs with values Ys. Once built, a Table is safe for
// concurrent read-only use by any number of Cache-carrying callers.
type Table struct {
	xs     []float64
	ys     []float64
	derivs []float64 // per-node slope m_i, already in dy/dx units (not yet scaled by h)
}

// New builds a Table from nodes (xs, ys) using the Fritsch–Butland harmonic
// mean for interior derivatives and a monotonicity-clamped 3-point finite
// difference at the endpoints. xs must be strictly increasing and at least
// 2 elements long.
func New(xs, ys []float64) *Table {
	n := len(xs)
	if n < 2 {
		panic("interp: at least two nodes are required")
	}
	derivs := make([]float64, n)

	h := make([]float64, n-1)
	s := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		h[i] = xs[i+1] - xs[i]
		s[i] = (ys[i+1] - ys[i]) / h[i]
	}

	for i := 1; i < n-1; i++ {
		if s[i-1]*s[i] > 0 {
			w := (h[i-1] + 2*h[i]) / (3 * (h[i-1] + h[i]))
			derivs[i] = s[i-1] * s[i] / ((1-w)*s[i-1] + w*s[i])
		} else {
			derivs[i] = 0
		}
	}

	if n == 2 {
		derivs[0], derivs[1] = s[0], s[0]
	} else {
		derivs[0] = endpointDerivative(h[0], h[1], s[0], s[1])
		derivs[n-1] = endpointDerivative(h[n-2], h[n-3], s[n-2], s[n-3])
	}

	return &Table{xs: append([]float64(nil), xs...), ys: append([]float64(nil), ys...), derivs: derivs}
}

// endpointDerivative computes the standard second-order one-sided finite
// difference at a boundary node, then clamps it so the resulting Hermite
// piece stays monotone whenever the boundary secant itself is monotone:
// the slope is zeroed if its sign disagrees with the adjacent secant, and
// capped to 3x the adjacent secant's magnitude when the two nearest secants
// differ in sign.
func endpointDerivative(h0, h1, s0, s1 float64) float64 {
	d := ((2*h0+h1)*s0 - h0*s1) / (h0 + h1)
	if d*s0 <= 0 {
		return 0
	}
	if s0*s1 <= 0 && math.Abs(d) > 3*math.Abs(s0) {
		return 3 * s0
	}
	return d
}

// NewWithDerivatives builds a Table from explicit slopes (the "derivative
// provided" mode from spec §4.1), clamping every slope, endpoints included,
// against a secant: the adjacent one at the two ends, the centred one
// (x[i-1] to x[i+1]) inside. A slope whose sign disagrees is zeroed, and
// one larger than 3x the secant's magnitude is capped there.
func NewWithDerivatives(xs, ys, derivs []float64) *Table {
	n := len(xs)
	if n < 2 || len(derivs) != n {
		panic("interp: derivs must match node count")
	}
	clamped := make([]float64, n)
	for i := 0; i < n; i++ {
		var secant float64
		switch {
		case i == 0:
			secant = (ys[1] - ys[0]) / (xs[1] - xs[0])
		case i == n-1:
			secant = (ys[n-1] - ys[n-2]) / (xs[n-1] - xs[n-2])
		default:
			secant = (ys[i+1] - ys[i-1]) / (xs[i+1] - xs[i-1])
		}
		m := derivs[i]
		if m*secant <= 0 {
			m = 0
		} else if math.Abs(m) > 3*math.Abs(secant) {
			m = 3 * secant * sign(m)
		}
		clamped[i] = m
	}
	return &Table{xs: append([]float64(nil), xs...), ys: append([]float64(nil), ys...), derivs: clamped}
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// Len returns the number of nodes.
func (t *Table) Len() int { return len(t.xs) }

// Nodes returns the node coordinates. The returned slices must not be
// mutated by the caller.
func (t *Table) Nodes() (xs, ys []float64) { return t.xs, t.ys }

// First and Last expose the grid endpoints, used by property accessors to
// decide between below-grid, interior, and above-grid (extrapolated)
// evaluation branches.
func (t *Table) First() (x, y float64) { return t.xs[0], t.ys[0] }
func (t *Table) Last() (x, y float64)  { return t.xs[len(t.xs)-1], t.ys[len(t.ys)-1] }

// hermite evaluates the cubic Hermite polynomial on [0,1] given endpoint
// values p0,p1 and endpoint slopes m0,m1 already scaled by the span width,
// per spec §4.1's formula.
func hermite(t, p0, p1, m0, m1 float64) float64 {
	return p0 + t*(m0+t*(-3*(p0-p1)-2*m0-m1+t*(2*(p0-p1)+m0+m1)))
}

// hermiteDeriv evaluates d/dt of the same polynomial (not yet rescaled by
// 1/Δx), used by straggling-variance and transport-coefficient derivative
// checks.
func hermiteDeriv(t, p0, p1, m0, m1 float64) float64 {
	return m0 + t*(2*(-3*(p0-p1)-2*m0-m1)+t*3*(2*(p0-p1)+m0+m1))
}

// bracket finds the index i such that xs[i] <= x <= xs[i+1] via dichotomy,
// clamping x outside the grid to the nearest span. It does not consult or
// update a Cache; see (*Table).Index for the cache-aware entry point.
func (t *Table) bracket(x float64) int {
	n := len(t.xs)
	if x <= t.xs[0] {
		return 0
	}
	if x >= t.xs[n-1] {
		return n - 2
	}
	i := sort.Search(n, func(i int) bool { return t.xs[i] > x }) - 1
	if i < 0 {
		i = 0
	}
	if i > n-2 {
		i = n - 2
	}
	return i
}

// Index returns the bracketing span index for x, consulting and then
// updating cache's two-slot memo. Passing a nil cache skips memoisation
// (used by one-shot callers such as the tabulator's construction passes).
func (t *Table) Index(x float64, cache *Cache) int {
	if cache != nil {
		if i, ok := cache.lookup(t.xs, x); ok {
			return i
		}
	}
	i := t.bracket(x)
	if cache != nil {
		cache.remember(i, t.xs[i], t.xs[i+1])
	}
	return i
}

// Eval returns the interpolated value at x. The first span ([xs[0],xs[1]])
// is always evaluated by plain linear interpolation because it straddles
// the nonphysical K=0 node and is not part of the monotone region; every
// later span uses the cubic Hermite polynomial.
func (t *Table) Eval(x float64, cache *Cache) float64 {
	i := t.Index(x, cache)
	x0, x1 := t.xs[i], t.xs[i+1]
	dx := x1 - x0
	u := (x - x0) / dx
	if i == 0 {
		return t.ys[0] + u*(t.ys[1]-t.ys[0])
	}
	m0 := t.derivs[i] * dx
	m1 := t.derivs[i+1] * dx
	return hermite(u, t.ys[i], t.ys[i+1], m0, m1)
}

// EvalDeriv returns dy/dx at x, consistent with Eval's choice of linear vs.
// Hermite representation for the span containing x.
func (t *Table) EvalDeriv(x float64, cache *Cache) float64 {
	i := t.Index(x, cache)
	x0, x1 := t.xs[i], t.xs[i+1]
	dx := x1 - x0
	if i == 0 {
		return (t.ys[1] - t.ys[0]) / dx
	}
	u := (x - x0) / dx
	m0 := t.derivs[i] * dx
	m1 := t.derivs[i+1] * dx
	return hermiteDeriv(u, t.ys[i], t.ys[i+1], m0, m1) / dx
}

// Integral returns a new Table whose value at xs[i] is the cumulative
// integral of this Table from xs[0] to xs[i]: F(x) = F(xs[0]) + ∫ y dx.
// Each interior span is integrated analytically from the Hermite
// polynomial; the first span (linear region) uses the trapezoid rule, per
// spec §4.1.
func (t *Table) Integral(f0 float64) *Table {
	n := len(t.xs)
	cum := make([]float64, n)
	cum[0] = f0
	for i := 0; i < n-1; i++ {
		dx := t.xs[i+1] - t.xs[i]
		if i == 0 {
			cum[1] = cum[0] + 0.5*dx*(t.ys[0]+t.ys[1])
			continue
		}
		m0 := t.derivs[i] * dx
		m1 := t.derivs[i+1] * dx
		cum[i+1] = cum[i] + hermiteIntegral(t.ys[i], t.ys[i+1], m0, m1)*dx
	}
	return New(t.xs, cum)
}

// hermiteIntegral computes ∫_0^1 H(t) dt for the Hermite basis in spec
// §4.1's formula, evaluated analytically term by term.
func hermiteIntegral(p0, p1, m0, m1 float64) float64 {
	// H(t) = p0 + t*m0 + t^2*(-3(p0-p1)-2m0-m1) + t^3*(2(p0-p1)+m0+m1)
	a := p0
	b := m0
	c := -3*(p0-p1) - 2*m0 - m1
	d := 2*(p0-p1) + m0 + m1
	return a + b/2 + c/3 + d/4
}
