// Package xmath holds small numeric helpers shared by the physics packages
// that need precision beyond a single float64 accumulation but for which Go
// has no native extended-precision ("long double") type.
package xmath

// Sum is a Kahan–Babuška compensated accumulator. It is the concrete
// realization of spec §4.3's "coefficients are precomputed in extended
// (long-double) precision" requirement for the Coulomb pole-reduction sum:
// the physical quantity being accumulated (a handful of rational terms with
// cancelling signs) is exactly the kind of sum compensated summation was
// designed for.
type Sum struct {
	total float64
	comp  float64 // running compensation for lost low-order bits
}

// Add folds x into the running total.
func (s *Sum) Add(x float64) {
	t := s.total + x
	if abs(s.total) >= abs(x) {
		s.comp += (s.total - t) + x
	} else {
		s.comp += (x - t) + s.total
	}
	s.total = t
}

// Value returns the compensated total.
func (s *Sum) Value() float64 { return s.total + s.comp }

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// DotCompensated computes sum(a[i]*b[i]) with Kahan compensation, used by the
// pole-reduction coefficient solve where several O(1) terms of alternating
// sign must combine to an O(1e-3) residual without catastrophic cancellation.
func DotCompensated(a, b []float64) float64 {
	var s Sum
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		s.Add(a[i] * b[i])
	}
	return s.Value()
}
