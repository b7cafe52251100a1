package xmath

import "testing"

func TestSumMatchesNaiveForWellScaledInputs(t *testing.T) {
	var s Sum
	want := 0.0
	for i := 0; i < 1000; i++ {
		x := float64(i) * 0.0001
		s.Add(x)
		want += x
	}
	got := s.Value()
	if diff := got - want; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("Sum() = %v, naive = %v, diff %v", got, want, diff)
	}
}

func TestDotCompensatedEmpty(t *testing.T) {
	if got := DotCompensated(nil, nil); got != 0 {
		t.Fatalf("DotCompensated(nil, nil) = %v, want 0", got)
	}
}
