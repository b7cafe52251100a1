package materials

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/inference-sim/pumas-go/internal/errcat"
)

// StoppingPowerRow is one parsed data row of a per-material stopping-power
// text table, converted from MeV·cm²/g to the module's internal units
// (GeV·m²/kg, i.e. multiplied by 0.1) at parse time.
type StoppingPowerRow struct {
	KineticEnergy float64 // GeV
	Brems         float64 // GeV m^2/kg
	Pair          float64
	Photonuclear  float64
	Ionisation    float64
	Total         float64
	CSDARange     float64 // kg/m^2
}

// StoppingPowerReader is the interface spec §1 scopes out of the core
// module. ReferenceStoppingPowerReader below is a minimal fixed-width
// reader sufficient to exercise the tabulator end to end.
type StoppingPowerReader interface {
	Read(r io.Reader) ([]StoppingPowerRow, error)
}

// ReferenceStoppingPowerReader parses the format described in spec §6:
// a variable number of header lines (detected as any line whose first
// non-blank character is not a digit), whitespace-separated data columns
// `K[MeV] unused brems pair photonuclear ion total X_csda`, and two
// hard-coded skip substrings.
type ReferenceStoppingPowerReader struct{}

const mevCmSqPerGToGevMSqPerKg = 0.1 // MeV cm^2/g -> GeV m^2/kg
const gPerCmSqToKgPerMSq = 10.0      // g/cm^2 -> kg/m^2

func (ReferenceStoppingPowerReader) Read(r io.Reader) ([]StoppingPowerRow, error) {
	scanner := bufio.NewScanner(r)
	var rows []StoppingPowerRow
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.Contains(line, "Minimum ionization") || strings.Contains(line, "critical energy") {
			continue
		}
		if !startsWithDigitOrSign(trimmed) {
			continue // header line
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 7 {
			return nil, errcat.New(errcat.Format, "ReferenceStoppingPowerReader.Read", "line %d: expected >=7 columns, got %d", lineNo, len(fields))
		}
		vals := make([]float64, 7)
		for i := 0; i < 7; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, errcat.Wrap(errcat.Format, "ReferenceStoppingPowerReader.Read", err)
			}
			vals[i] = v
		}
		rows = append(rows, StoppingPowerRow{
			KineticEnergy: vals[0] * 1e-3, // MeV -> GeV
			Brems:         vals[2] * mevCmSqPerGToGevMSqPerKg,
			Pair:          vals[3] * mevCmSqPerGToGevMSqPerKg,
			Photonuclear:  vals[4] * mevCmSqPerGToGevMSqPerKg,
			Ionisation:    vals[5] * mevCmSqPerGToGevMSqPerKg,
			Total:         vals[6] * mevCmSqPerGToGevMSqPerKg,
			CSDARange:     0, // many reference tables omit X_csda; recomputed by the tabulator
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errcat.Wrap(errcat.IO, "ReferenceStoppingPowerReader.Read", err)
	}
	if len(rows) == 0 {
		return nil, errcat.New(errcat.Format, "ReferenceStoppingPowerReader.Read", "no data rows found")
	}
	return rows, nil
}

func startsWithDigitOrSign(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

// OpenStoppingPower is a convenience wrapper for callers with a path.
func OpenStoppingPower(path string) ([]StoppingPowerRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errcat.Wrap(errcat.IO, "OpenStoppingPower", err)
	}
	defer f.Close()
	return ReferenceStoppingPowerReader{}.Read(f)
}
