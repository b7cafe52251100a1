package dcs

import "github.com/inference-sim/pumas-go/internal/errcat"

// PolarSampler draws cos(theta) of a secondary's emission angle relative to
// the projectile's incoming direction, given the projectile mass m, its
// kinetic energy before (Ki) and after (Kf) the interaction, and a uniform
// [0,1) source rng. Each process registers exactly one sampler (spec §4.2:
// "the polar angle law is a property of the process, not of the selected
// DCS model").
type PolarSampler func(m, Ki, Kf float64, rng func() float64) float64

var polarSamplers = map[Process]PolarSampler{}

// RegisterPolar installs the polar-angle sampler for process.
func RegisterPolar(process Process, fn PolarSampler) {
	polarSamplers[process] = fn
}

// Polar draws cos(theta) for a secondary of process, using the registered
// sampler. rng must return independent uniform variates on [0,1).
func Polar(process Process, m, Ki, Kf float64, rng func() float64) (float64, error) {
	fn, ok := polarSamplers[process]
	if !ok {
		return 0, errcat.New(errcat.Configuration, "dcs.Polar", "no polar sampler registered for process %v", process)
	}
	return fn(m, Ki, Kf, rng), nil
}
