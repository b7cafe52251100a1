package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/inference-sim/pumas-go/physics/tables"
	"github.com/inference-sim/pumas-go/transport"
	"github.com/inference-sim/pumas-go/transport/recorder"
)

func samplePhysicsTables() *tables.PhysicsTables {
	return &tables.PhysicsTables{
		Grid: []float64{1e-3, 1e3},
		Materials: []tables.MaterialTable{
			{Name: "Water", Density: 1000},
			{Name: "Rock", Density: 2650},
		},
	}
}

func TestResolveMaterialDefaultsToFirst(t *testing.T) {
	idx, err := resolveMaterial(samplePhysicsTables(), "")
	if err != nil {
		t.Fatalf("resolveMaterial: %v", err)
	}
	if idx != 0 {
		t.Errorf("idx = %d, want 0", idx)
	}
}

func TestResolveMaterialByName(t *testing.T) {
	idx, err := resolveMaterial(samplePhysicsTables(), "Rock")
	if err != nil {
		t.Fatalf("resolveMaterial: %v", err)
	}
	if idx != 1 {
		t.Errorf("idx = %d, want 1", idx)
	}
}

func TestResolveMaterialUnknownNameErrors(t *testing.T) {
	if _, err := resolveMaterial(samplePhysicsTables(), "Lead"); err == nil {
		t.Fatal("expected an error for an unknown material name")
	}
}

func TestResolveMaterialEmptyDumpErrors(t *testing.T) {
	if _, err := resolveMaterial(&tables.PhysicsTables{}, ""); err == nil {
		t.Fatal("expected an error for a dump with no materials")
	}
}

func TestParseSchemeVariants(t *testing.T) {
	cases := []struct {
		in         string
		want       tables.Scheme
		straggling bool
	}{
		{"csda", tables.CSDA, false},
		{"mixed", tables.Hybrid, false},
		{"detailed", tables.Detailed, false},
		{"straggled", tables.Detailed, true},
	}
	for _, c := range cases {
		scheme, straggling, err := parseScheme(c.in)
		if err != nil {
			t.Fatalf("parseScheme(%q): %v", c.in, err)
		}
		if scheme != c.want || straggling != c.straggling {
			t.Errorf("parseScheme(%q) = (%v, %v), want (%v, %v)", c.in, scheme, straggling, c.want, c.straggling)
		}
	}
}

func TestParseSchemeUnknownErrors(t *testing.T) {
	if _, _, err := parseScheme("bogus"); err == nil {
		t.Fatal("expected an error for an unknown scheme")
	}
}

func TestParseDecayVariants(t *testing.T) {
	cases := map[string]transport.DecayMode{
		"":            transport.DecayDisabled,
		"disabled":    transport.DecayDisabled,
		"weighted":    transport.DecayWeighted,
		"randomised":  transport.DecayRandomised,
		"randomized":  transport.DecayRandomised,
	}
	for in, want := range cases {
		got, err := parseDecay(in)
		if err != nil {
			t.Fatalf("parseDecay(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("parseDecay(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseDecayUnknownErrors(t *testing.T) {
	if _, err := parseDecay("bogus"); err == nil {
		t.Fatal("expected an error for an unknown decay mode")
	}
}

func TestParseDirectionParsesCommaSeparated(t *testing.T) {
	dir, err := parseDirection("0, 0, 1")
	if err != nil {
		t.Fatalf("parseDirection: %v", err)
	}
	if dir != ([3]float64{0, 0, 1}) {
		t.Errorf("dir = %v, want [0 0 1]", dir)
	}
}

func TestParseDirectionWrongArityErrors(t *testing.T) {
	if _, err := parseDirection("0,1"); err == nil {
		t.Fatal("expected an error for a two-component direction")
	}
}

func TestParseDirectionNonNumericErrors(t *testing.T) {
	if _, err := parseDirection("x,y,z"); err == nil {
		t.Fatal("expected an error for a non-numeric direction")
	}
}

func TestWriteTraceWritesStepsAndEvents(t *testing.T) {
	rec := recorder.NewInMemory(recorder.LevelEvents)
	rec.RecordStep(recorder.State{Kinetic: 1.5, Distance: 0.1})
	rec.RecordEvent(recorder.EventRecord{Kind: recorder.EventDEL, State: recorder.State{Kinetic: 1.2, Distance: 0.2}})

	path := filepath.Join(t.TempDir(), "trace.txt")
	if err := writeTrace(rec, path); err != nil {
		t.Fatalf("writeTrace: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "step K=1.5") {
		t.Errorf("trace missing step line: %q", text)
	}
	if !strings.Contains(text, "event kind=del") {
		t.Errorf("trace missing event line: %q", text)
	}
}
