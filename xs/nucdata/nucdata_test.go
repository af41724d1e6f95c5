package nucdata

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{in: "Li6", want: ID{Symbol: "Li", Z: 3, A: 6}},
		{in: "U235", want: ID{Symbol: "U", Z: 92, A: 235}},
		{in: "Am242_m1", want: ID{Symbol: "Am", Z: 95, A: 242, Metastable: 1}},
		{in: "H1", want: ID{Symbol: "H", Z: 1, A: 1}},
		{in: "li6", wantErr: true},
		{in: "Xx12", wantErr: true},
		{in: "Fe", wantErr: true},
		{in: "U2", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseID(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.in, got.String())
		})
	}
}

func TestNaturalAbundance_SumsToOne(t *testing.T) {
	for _, sym := range Elements() {
		iso, ok := NaturalAbundance(sym)
		require.True(t, ok, sym)
		sum := 0.0
		for _, i := range iso {
			assert.GreaterOrEqual(t, i.Abundance, 0.0, i.Nuclide)
			_, err := ParseID(i.Nuclide)
			assert.NoError(t, err, i.Nuclide)
			sum += i.Abundance
		}
		assert.InDelta(t, 1.0, sum, 1e-6, "element %s", sym)
	}
}

func TestNaturalAbundance_IronIsotopes(t *testing.T) {
	iso, ok := NaturalAbundance("Fe")
	require.True(t, ok)
	var names []string
	for _, i := range iso {
		names = append(names, i.Nuclide)
	}
	assert.Equal(t, []string{"Fe54", "Fe56", "Fe57", "Fe58"}, names)

	_, ok = NaturalAbundance("Xx")
	assert.False(t, ok)
}

func TestNaturalAbundance_ReturnsCopy(t *testing.T) {
	iso, _ := NaturalAbundance("Li")
	iso[0].Abundance = 42
	again, _ := NaturalAbundance("Li")
	assert.Equal(t, 0.07589, again[0].Abundance)
}

func TestAtomicMass(t *testing.T) {
	m, ok := AtomicMass("Li6")
	assert.True(t, ok)
	assert.InDelta(t, 6.015, m, 1e-3)

	// untabulated nuclides fall back to the liquid-drop estimate
	m, ok = AtomicMass("Sn120")
	assert.False(t, ok)
	assert.InDelta(t, 119.902, m, 0.02)
	m, ok = AtomicMass("Gd157_m1")
	assert.False(t, ok)
	assert.InDelta(t, 156.924, m, 0.02)

	m, ok = AtomicMass("garbage")
	assert.False(t, ok)
	assert.True(t, m == 0 && !math.IsNaN(m))
}

func TestEstimateMass_TracksMeasuredMasses(t *testing.T) {
	for _, nuc := range []string{"Fe56", "Zr90", "U238", "Pu239"} {
		measured, ok := AtomicMass(nuc)
		require.True(t, ok, nuc)
		id, err := ParseID(nuc)
		require.NoError(t, err)
		assert.InEpsilon(t, measured, estimateMass(id.Z, id.A), 2e-4, nuc)
	}
}

func TestNaturalAbundance_StrongAbsorbers(t *testing.T) {
	for _, sym := range []string{"Cd", "In", "Xe", "Sm", "Eu", "Gd", "Hf", "Sn", "Er", "W"} {
		iso, ok := NaturalAbundance(sym)
		require.True(t, ok, sym)
		sum := 0.0
		for _, i := range iso {
			id, err := ParseID(i.Nuclide)
			require.NoError(t, err)
			assert.Equal(t, sym, id.Symbol, i.Nuclide)
			m, _ := AtomicMass(i.Nuclide)
			assert.Greater(t, m, 0.0, i.Nuclide)
			sum += i.Abundance
		}
		assert.InDelta(t, 1.0, sum, 2e-3, sym)
	}
}
