package xs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m4mc/m4mc/xs/nucdata"
	"github.com/m4mc/m4mc/xs/xserr"
)

func TestNewElement_Natural(t *testing.T) {
	e, err := NewElement("Li")
	require.NoError(t, err)
	assert.Equal(t, "Li", e.Symbol())
	assert.Equal(t, []string{"Li6", "Li7"}, e.Nuclides())

	parts := e.Expand()
	require.Len(t, parts, 2)
	assert.InDelta(t, 0.07589, parts[0].Fraction, 1e-9)
	assert.InDelta(t, 0.92411, parts[1].Fraction, 1e-9)
}

func TestNewElement_Unknown(t *testing.T) {
	_, err := NewElement("Xx")
	assert.True(t, errors.Is(err, xserr.ErrInvalidMaterial))
}

func TestNewCustomElement_Validation(t *testing.T) {
	tests := []struct {
		name     string
		symbol   string
		isotopes []nucdata.Isotope
	}{
		{"sum too small", "Li", []nucdata.Isotope{{Nuclide: "Li6", Abundance: 0.2}, {Nuclide: "Li7", Abundance: 0.3}}},
		{"negative abundance", "Li", []nucdata.Isotope{{Nuclide: "Li6", Abundance: -0.1}, {Nuclide: "Li7", Abundance: 1.1}}},
		{"foreign isotope", "Li", []nucdata.Isotope{{Nuclide: "Li6", Abundance: 0.5}, {Nuclide: "B10", Abundance: 0.5}}},
		{"duplicate isotope", "Li", []nucdata.Isotope{{Nuclide: "Li6", Abundance: 0.5}, {Nuclide: "Li6", Abundance: 0.5}}},
		{"bad id", "Li", []nucdata.Isotope{{Nuclide: "Li-6", Abundance: 1}}},
		{"no isotopes", "Li", nil},
		{"unknown symbol", "Qq", []nucdata.Isotope{{Nuclide: "Li6", Abundance: 1}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCustomElement(tc.symbol, tc.isotopes)
			require.Error(t, err)
			assert.True(t, errors.Is(err, xserr.ErrInvalidMaterial))
		})
	}
}

func TestNewCustomElement_NormalisesWithinTolerance(t *testing.T) {
	e, err := NewCustomElement("Li", []nucdata.Isotope{{Nuclide: "Li6", Abundance: 0.9}, {Nuclide: "Li7", Abundance: 0.0995}})
	require.NoError(t, err)
	parts := e.Expand()
	assert.InDelta(t, 1.0, parts[0].Fraction+parts[1].Fraction, 1e-12)
	assert.InDelta(t, 0.9/0.9995, parts[0].Fraction, 1e-12)
}

func TestElement_MicroscopicCrossSection(t *testing.T) {
	s := fixtureSession(t)
	ctx := context.Background()
	e, err := NewElement("Li")
	require.NoError(t, err)

	xs, energy, err := e.MicroscopicCrossSection(ctx, s, Total, "294")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 5, 10, 50, 100, 1000}, energy)

	li6, _ := s.Nuclide("Li6")
	li7, _ := s.Nuclide("Li7")
	for i, en := range energy {
		a, err := li6.CrossSectionAt(ctx, en, Total, "294")
		require.NoError(t, err)
		b, err := li7.CrossSectionAt(ctx, en, Total, "294")
		require.NoError(t, err)
		assert.InDelta(t, 0.07589*a+0.92411*b, xs[i], 1e-9, "energy %g", en)
	}
}

func TestElement_MicroscopicMissingIsotopeData(t *testing.T) {
	s := fixtureSession(t)
	e, _ := NewElement("B")
	_, _, err := e.MicroscopicCrossSection(context.Background(), s, Total, "294")
	require.Error(t, err)
	assert.True(t, errors.Is(err, xserr.ErrConfig), "B11 has no source")
}
