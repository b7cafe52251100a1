// Package dcs implements the L2 differential-cross-section library: per
// element/process radiative and ionisation differential cross sections, a
// (process, model) registry of named function pointers, and polar-angle
// rejection samplers for the same processes.
//
// The registry mirrors the teacher's sub-package self-registration
// convention (sim/latency/register.go, sim/kv/register.go: a sub-package's
// init() installs a factory into a parent-owned map) generalized from a
// single named factory per concern into the (process, model) grid spec
// §4.2 calls for.
package dcs

import "github.com/inference-sim/pumas-go/internal/errcat"

// Process identifies one of the four radiative/ionisation processes a
// charged lepton can undergo.
type Process int

const (
	Bremsstrahlung Process = iota
	PairProduction
	Photonuclear
	Ionisation
)

func (p Process) String() string {
	switch p {
	case Bremsstrahlung:
		return "bremsstrahlung"
	case PairProduction:
		return "pair_production"
	case Photonuclear:
		return "photonuclear"
	case Ionisation:
		return "ionisation"
	default:
		return "unknown"
	}
}

// Func computes the differential cross section dsigma/dq in m^2/GeV for a
// projectile of mass m (GeV) and kinetic energy K (GeV) scattering off an
// element of atomic number Z and atomic mass A (g/mol), transferring
// kinetic energy q (GeV) to the secondary.
type Func func(Z int, A, m, K, q float64) float64

// KinematicRange returns the physical [qMin, qMax] energy-transfer window
// for process at projectile mass m and kinetic energy K. Every built-in
// model's Func returns 0 outside this window; callers sampling q should
// restrict to it.
type KinematicRange func(m, K float64) (qMin, qMax float64)

var (
	registry = map[Process]map[string]Func{
		Bremsstrahlung: {},
		PairProduction: {},
		Photonuclear:   {},
		Ionisation:     {},
	}
	ranges = map[Process]KinematicRange{}

	// DefaultModel holds spec §4.2 / §6's default model selection
	// (SSR / SSR / DRSS; ionisation has a single built-in model).
	DefaultModel = map[Process]string{
		Bremsstrahlung: "SSR",
		PairProduction: "SSR",
		Photonuclear:   "DRSS",
		Ionisation:     "analytic",
	}
)

// Register installs fn as the named model for process. Built-in models
// self-register via init() in this package's per-process files; callers may
// register additional models at runtime (spec §4.2: "allows runtime
// registration").
func Register(process Process, model string, fn Func) {
	registry[process][model] = fn
}

// RegisterRange installs the kinematic-range function for a process. All
// models of a process share one kinematic window (true for all four
// processes here), so ranges are keyed by process alone and RangeFor takes
// the process only.
func RegisterRange(process Process, fn KinematicRange) {
	ranges[process] = fn
}

// Lookup returns the registered Func for (process, model).
func Lookup(process Process, model string) (Func, error) {
	m, ok := registry[process]
	if !ok {
		return nil, errcat.New(errcat.Configuration, "dcs.Lookup", "unknown process %v", process)
	}
	fn, ok := m[model]
	if !ok {
		return nil, errcat.New(errcat.Configuration, "dcs.Lookup", "unknown model %q for process %v", model, process)
	}
	return fn, nil
}

// RangeFor returns the registered KinematicRange for process.
func RangeFor(process Process) (KinematicRange, error) {
	fn, ok := ranges[process]
	if !ok {
		return nil, errcat.New(errcat.Configuration, "dcs.RangeFor", "no kinematic range registered for process %v", process)
	}
	return fn, nil
}

// Models lists the model names registered for process, for CLI/help output.
func Models(process Process) []string {
	var out []string
	for name := range registry[process] {
		out = append(out, name)
	}
	return out
}
