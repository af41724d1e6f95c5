package xs

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/m4mc/m4mc/xs/library"
	"github.com/m4mc/m4mc/xs/nucdata"
	"github.com/m4mc/m4mc/xs/table"
	"github.com/m4mc/m4mc/xs/xserr"
)

const (
	// Avogadro is the Avogadro constant in 1/mol.
	Avogadro = 6.02214076e23

	// barn is one barn in cm².
	barn = 1e-24
)

// densityUnits maps accepted mass-density units to their factor to g/cm3.
var densityUnits = map[string]float64{
	"g/cm3":  1,
	"g/cc":   1,
	"kg/m3":  1e-3,
	"kg/cm3": 1e3,
	"mg/cm3": 1e-3,
}

// Material is a mixture of nuclides with atom fractions and a mass density.
//
// Constituents are kept at nuclide level in insertion order; adding an
// element adds its isotopes, and adding a nuclide already present accumulates
// into its fraction. Query methods do not modify the material.
type Material struct {
	name        string
	order       []string
	fractions   map[string]float64
	declared    float64
	density     float64 // g/cm3, 0 when unset
	temperature string
	volume      float64
	sess        *Session
}

// NewMaterial returns an empty material bound to the default session.
func NewMaterial() *Material {
	return newMaterial(nil)
}

// NewMaterial returns an empty material bound to s.
func (s *Session) NewMaterial() *Material {
	return newMaterial(s)
}

func newMaterial(s *Session) *Material {
	return &Material{
		fractions:   make(map[string]float64),
		temperature: DefaultTemperature,
		sess:        s,
	}
}

func (m *Material) session() *Session { return orDefault(m.sess) }

// SetName labels the material in errors and output.
func (m *Material) SetName(name string) { m.name = name }

// Name returns the label.
func (m *Material) Name() string { return m.name }

func (m *Material) label() string {
	if m.name != "" {
		return m.name
	}
	return "unnamed"
}

func (m *Material) invalid(op, format string, args ...any) *xserr.Error {
	return xserr.New(xserr.ErrInvalidMaterial, op, format, args...).WithMaterial(m.label())
}

// Add expands c into nuclide fractions scaled by fraction and accumulates
// them. fraction must be positive and finite.
func (m *Material) Add(c Contributor, fraction float64) error {
	const op = "xs.Material.Add"
	if !(fraction > 0) || math.IsInf(fraction, 0) {
		return m.invalid(op, "atom fraction must be positive and finite, got %g", fraction)
	}
	parts := c.Expand()
	for _, p := range parts {
		if _, err := nucdata.ParseID(p.Nuclide); err != nil {
			return xserr.Wrap(xserr.ErrInvalidMaterial, op, err).WithMaterial(m.label()).WithNuclide(p.Nuclide)
		}
	}
	for _, p := range parts {
		if p.Fraction == 0 {
			continue
		}
		if _, ok := m.fractions[p.Nuclide]; !ok {
			m.order = append(m.order, p.Nuclide)
		}
		m.fractions[p.Nuclide] += p.Fraction * fraction
	}
	m.declared += fraction
	return nil
}

// AddNuclide adds a nuclide by id, e.g. "Li6".
func (m *Material) AddNuclide(id string, fraction float64) error {
	n, err := newNuclide(m.sess, id)
	if err != nil {
		return annotate("xs.Material.AddNuclide", err).WithMaterial(m.label())
	}
	return m.Add(n, fraction)
}

// AddElement adds an element by symbol with natural abundances.
func (m *Material) AddElement(symbol string, fraction float64) error {
	e, err := NewElement(symbol)
	if err != nil {
		return annotate("xs.Material.AddElement", err).WithMaterial(m.label())
	}
	return m.Add(e, fraction)
}

// SetDensity sets the mass density. unit is one of g/cm3, g/cc, kg/m3,
// kg/cm3 or mg/cm3.
func (m *Material) SetDensity(unit string, value float64) error {
	const op = "xs.Material.SetDensity"
	factor, ok := densityUnits[unit]
	if !ok {
		return m.invalid(op, "unsupported density unit %q", unit)
	}
	if !(value > 0) || math.IsInf(value, 0) {
		return m.invalid(op, "density must be positive and finite, got %g", value)
	}
	m.density = value * factor
	return nil
}

// Density returns the density in g/cm3 and whether it is set.
func (m *Material) Density() (float64, bool) {
	return m.density, m.density > 0
}

// SetTemperature sets the temperature used when a query passes "".
func (m *Material) SetTemperature(t string) { m.temperature = t }

// Temperature returns the material temperature.
func (m *Material) Temperature() string { return m.temperature }

// SetVolume sets the volume in cm3.
func (m *Material) SetVolume(v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return m.invalid("xs.Material.SetVolume", "volume must be positive and finite, got %g", v)
	}
	m.volume = v
	return nil
}

// Volume returns the volume in cm3 and whether it is set.
func (m *Material) Volume() (float64, bool) {
	return m.volume, m.volume > 0
}

// Nuclides returns the constituent nuclide ids in insertion order.
func (m *Material) Nuclides() []string {
	return append([]string(nil), m.order...)
}

// Fractions returns the nuclide-level atom fractions in insertion order.
func (m *Material) Fractions() []Fraction {
	out := make([]Fraction, len(m.order))
	for i, n := range m.order {
		out[i] = Fraction{Nuclide: n, Fraction: m.fractions[n]}
	}
	return out
}

// DeclaredFraction returns the sum of the fractions passed to Add.
func (m *Material) DeclaredFraction() float64 { return m.declared }

// AtomDensities returns atoms/cm3 per nuclide:
// n_i = ρ N_A f_i / Σ_j f_j M_j.
func (m *Material) AtomDensities() (map[string]float64, error) {
	const op = "xs.Material.AtomDensities"
	if m.density == 0 {
		return nil, m.invalid(op, "density not set")
	}
	if len(m.order) == 0 {
		return nil, m.invalid(op, "material has no constituents")
	}
	f := make([]float64, len(m.order))
	mass := make([]float64, len(m.order))
	for i, n := range m.order {
		amu, ok := nucdata.AtomicMass(n)
		if amu <= 0 {
			return nil, m.invalid(op, "no atomic mass for %s", n)
		}
		if !ok {
			logrus.Debugf("%s: no measured mass for %s, using estimate %.4f u", m.label(), n, amu)
		}
		f[i] = m.fractions[n]
		mass[i] = amu
	}
	perAtom := floats.Dot(f, mass)
	out := make(map[string]float64, len(m.order))
	for i, n := range m.order {
		out[n] = m.density * Avogadro * f[i] / perAtom
	}
	return out, nil
}

func (m *Material) temp(t string) string {
	if t != "" {
		return t
	}
	if m.temperature != "" {
		return m.temperature
	}
	return DefaultTemperature
}

// tables loads reaction r for every constituent, in insertion order.
func (m *Material) tables(ctx context.Context, op string, r Reaction, temperature string) ([]*library.TableSet, []*table.Table, error) {
	if len(m.order) == 0 {
		return nil, nil, m.invalid(op, "material has no constituents")
	}
	sets, err := loadAll(ctx, m.session(), m.order, temperature)
	if err != nil {
		return nil, nil, annotate(op, err).WithMaterial(m.label())
	}
	tables := make([]*table.Table, len(sets))
	for i, set := range sets {
		if tables[i], err = reactionTable(set, r); err != nil {
			return nil, nil, annotate(op, err).WithMaterial(m.label())
		}
	}
	return sets, tables, nil
}

// UnifiedEnergyGrid returns the sorted, duplicate-free union of the
// constituents' grids for reaction r.
func (m *Material) UnifiedEnergyGrid(ctx context.Context, r Reaction, temperature string) ([]float64, error) {
	_, tables, err := m.tables(ctx, "xs.Material.UnifiedEnergyGrid", r, m.temp(temperature))
	if err != nil {
		return nil, err
	}
	grids := make([][]float64, len(tables))
	for i, t := range tables {
		grids[i] = t.Energy
	}
	return table.UnionGrid(grids...), nil
}

// MacroscopicCrossSection returns Σ_i n_i σ_i(E) in 1/cm at every energy of
// the unified grid, with the grid in eV.
func (m *Material) MacroscopicCrossSection(ctx context.Context, r Reaction, temperature string) (xs, energy []float64, err error) {
	const op = "xs.Material.MacroscopicCrossSection"
	temperature = m.temp(temperature)
	densities, err := m.AtomDensities()
	if err != nil {
		return nil, nil, err
	}
	_, tables, err := m.tables(ctx, op, r, temperature)
	if err != nil {
		return nil, nil, err
	}
	weights := make([]float64, len(m.order))
	for i, n := range m.order {
		weights[i] = densities[n] * barn
	}
	xs, energy, err = weightedSum(tables, weights, m.session().Boundary())
	if err != nil {
		return nil, nil, annotate(op, err).WithMaterial(m.label()).WithReaction(r.MT(), temperature)
	}
	return xs, energy, nil
}

// MacroscopicCrossSectionAt returns the macroscopic cross section of r at
// energy e in 1/cm.
func (m *Material) MacroscopicCrossSectionAt(ctx context.Context, e float64, r Reaction, temperature string) (float64, error) {
	partial, err := m.partials(ctx, "xs.Material.MacroscopicCrossSectionAt", e, r, m.temp(temperature))
	if err != nil {
		return 0, err
	}
	return floats.Sum(partial), nil
}

// partials returns n_i σ_i(e) per constituent in insertion order.
func (m *Material) partials(ctx context.Context, op string, e float64, r Reaction, temperature string) ([]float64, error) {
	densities, err := m.AtomDensities()
	if err != nil {
		return nil, err
	}
	_, tables, err := m.tables(ctx, op, r, temperature)
	if err != nil {
		return nil, err
	}
	policy := m.session().Boundary()
	out := make([]float64, len(tables))
	for i, t := range tables {
		v, err := t.Lookup(e, policy)
		if err != nil {
			return nil, annotate(op, err).WithMaterial(m.label()).WithNuclide(m.order[i]).WithReaction(r.MT(), temperature)
		}
		out[i] = densities[m.order[i]] * v * barn
	}
	return out, nil
}

// MeanFreePath returns 1/Σ(e) in cm, where Σ sums the macroscopic cross
// sections of reactions (default: the total). A zero Σ gives +Inf.
func (m *Material) MeanFreePath(ctx context.Context, e float64, reactions ...Reaction) (float64, error) {
	if len(reactions) == 0 {
		reactions = []Reaction{Total}
	}
	if _, err := m.AtomDensities(); err != nil {
		return 0, err
	}
	sigma := 0.0
	for _, r := range reactions {
		v, err := m.MacroscopicCrossSectionAt(ctx, e, r, "")
		if err != nil {
			return 0, err
		}
		sigma += v
	}
	if sigma == 0 {
		return math.Inf(1), nil
	}
	return 1 / sigma, nil
}

// SampleDistanceToCollision converts a uniform draw in [0,1) into a flight
// distance: -ln(1-draw) times the mean free path at e.
func (m *Material) SampleDistanceToCollision(ctx context.Context, e, draw float64) (float64, error) {
	if err := checkDraw("xs.Material.SampleDistanceToCollision", draw); err != nil {
		return 0, err
	}
	mfp, err := m.MeanFreePath(ctx, e)
	if err != nil {
		return 0, err
	}
	return -math.Log(1-draw) * mfp, nil
}

// Domain returns the energy range on which every constituent's total cross
// section is tabulated. lo > hi means the ranges do not overlap.
func (m *Material) Domain(ctx context.Context) (lo, hi float64, err error) {
	_, tables, err := m.tables(ctx, "xs.Material.Domain", Total, m.temp(""))
	if err != nil {
		return 0, 0, err
	}
	lo, hi = math.Inf(-1), math.Inf(1)
	for _, t := range tables {
		lo = math.Max(lo, t.Min())
		hi = math.Min(hi, t.Max())
	}
	return lo, hi, nil
}

// ReactionMTs returns the MT numbers available for every constituent,
// ascending, at the material temperature.
func (m *Material) ReactionMTs(ctx context.Context) ([]int, error) {
	if len(m.order) == 0 {
		return nil, m.invalid("xs.Material.ReactionMTs", "material has no constituents")
	}
	sets, err := loadAll(ctx, m.session(), m.order, m.temp(""))
	if err != nil {
		return nil, annotate("xs.Material.ReactionMTs", err).WithMaterial(m.label())
	}
	count := make(map[int]int)
	for _, set := range sets {
		for _, mt := range set.MTs() {
			count[mt]++
		}
	}
	var out []int
	for _, mt := range sets[0].MTs() {
		if count[mt] == len(sets) {
			out = append(out, mt)
		}
	}
	return out, nil
}

func (m *Material) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Material(%s", m.label())
	if m.density > 0 {
		fmt.Fprintf(&b, ", %g g/cm3", m.density)
	}
	fmt.Fprintf(&b, ", T=%s", m.temperature)
	for _, f := range m.Fractions() {
		fmt.Fprintf(&b, ", %s=%g", f.Nuclide, f.Fraction)
	}
	b.WriteString(")")
	return b.String()
}

// Spectrum is a cross section paired with its energy grid.
type Spectrum struct {
	Energy []float64
	XS     []float64
}

// MacroscopicCrossSections evaluates reaction r for many materials
// concurrently, each at its own temperature. Results follow the input order.
func MacroscopicCrossSections(ctx context.Context, materials []*Material, r Reaction) ([]Spectrum, error) {
	out := make([]Spectrum, len(materials))
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range materials {
		g.Go(func() error {
			xs, energy, err := m.MacroscopicCrossSection(gctx, r, "")
			if err != nil {
				return err
			}
			out[i] = Spectrum{Energy: energy, XS: xs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
