package tables

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inference-sim/pumas-go/physics/dcs"
	"github.com/inference-sim/pumas-go/physics/interp"
)

func TestJSONDumpRoundTripsTotalLossAndEnvelopes(t *testing.T) {
	pt := &PhysicsTables{
		Grid: []float64{1e-3, 1e-2, 1e-1, 1, 10},
		Materials: []MaterialTable{
			{
				Name:      "Water",
				Density:   1000,
				TotalLoss: interp.New([]float64{1e-3, 1e-2, 1e-1, 1, 10}, []float64{5, 4, 3, 2.5, 2.2}),
				CSDARange: interp.New([]float64{1e-3, 1e-2, 1e-1, 1, 10}, []float64{0.1, 0.5, 2, 8, 30}),
				Envelopes: map[dcs.Process]*interp.Table{
					dcs.Bremsstrahlung: interp.New([]float64{1e-3, 1, 10}, []float64{1, 2, 3}),
				},
				Alphas: map[dcs.Process]float64{dcs.Bremsstrahlung: -1.2},
			},
		},
	}

	data, err := JSONDump{}.WriteDump(pt)
	require.NoError(t, err)
	got, err := JSONDump{}.ReadDump(data)
	require.NoError(t, err)

	require.Len(t, got.Materials, 1)
	require.Equal(t, "Water", got.Materials[0].Name)
	require.Equal(t, 1000.0, got.Materials[0].Density)

	for _, K := range []float64{1e-3, 5e-2, 3, 9} {
		want := pt.Materials[0].TotalLoss.Eval(K, nil)
		have := got.Materials[0].TotalLoss.Eval(K, nil)
		require.InDelta(t, want, have, 1e-9, "TotalLoss at K=%v", K)
	}

	alpha, ok := got.Materials[0].Alphas[dcs.Bremsstrahlung]
	require.True(t, ok)
	require.Equal(t, -1.2, alpha)
	require.NotNil(t, got.Materials[0].Envelopes[dcs.Bremsstrahlung])
}

func TestJSONDumpReadDumpRejectsMalformedJSON(t *testing.T) {
	_, err := (JSONDump{}).ReadDump([]byte("{not json"))
	require.Error(t, err)
}
