package xs

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/m4mc/m4mc/xs/library"
	"github.com/m4mc/m4mc/xs/nucdata"
	"github.com/m4mc/m4mc/xs/table"
	"github.com/m4mc/m4mc/xs/xserr"
)

// AbundanceTolerance is how far isotope abundances may sum from 1.
const AbundanceTolerance = 1e-3

// Element is a chemical element with its isotopic composition. Abundances
// are normalised to sum to exactly 1.
type Element struct {
	symbol   string
	isotopes []nucdata.Isotope
}

// NewElement returns an element with natural isotopic abundances.
func NewElement(symbol string) (*Element, error) {
	isotopes, ok := nucdata.NaturalAbundance(symbol)
	if !ok {
		return nil, xserr.New(xserr.ErrInvalidMaterial, "xs.NewElement",
			"no natural abundance data for element %q", symbol)
	}
	return NewCustomElement(symbol, isotopes)
}

// NewCustomElement returns an element with the given composition. Every
// isotope must belong to the element, abundances must be non-negative and
// their sum within AbundanceTolerance of 1.
func NewCustomElement(symbol string, isotopes []nucdata.Isotope) (*Element, error) {
	const op = "xs.NewCustomElement"
	if !nucdata.IsElementSymbol(symbol) {
		return nil, xserr.New(xserr.ErrInvalidMaterial, op, "unknown element %q", symbol)
	}
	if len(isotopes) == 0 {
		return nil, xserr.New(xserr.ErrInvalidMaterial, op, "element %s has no isotopes", symbol)
	}
	abundances := make([]float64, len(isotopes))
	seen := make(map[string]bool, len(isotopes))
	for i, iso := range isotopes {
		id, err := nucdata.ParseID(iso.Nuclide)
		if err != nil {
			return nil, xserr.Wrap(xserr.ErrInvalidMaterial, op, err).WithNuclide(iso.Nuclide)
		}
		if id.Symbol != symbol {
			return nil, xserr.New(xserr.ErrInvalidMaterial, op, "%s is not an isotope of %s", iso.Nuclide, symbol)
		}
		if seen[iso.Nuclide] {
			return nil, xserr.New(xserr.ErrInvalidMaterial, op, "%s listed twice", iso.Nuclide)
		}
		seen[iso.Nuclide] = true
		if iso.Abundance < 0 || math.IsNaN(iso.Abundance) || math.IsInf(iso.Abundance, 0) {
			return nil, xserr.New(xserr.ErrInvalidMaterial, op, "invalid abundance %g for %s", iso.Abundance, iso.Nuclide)
		}
		abundances[i] = iso.Abundance
	}
	sum := floats.Sum(abundances)
	if math.Abs(sum-1) > AbundanceTolerance {
		return nil, xserr.New(xserr.ErrInvalidMaterial, op, "abundances of %s sum to %g, want 1 ± %g",
			symbol, sum, AbundanceTolerance)
	}

	e := &Element{symbol: symbol, isotopes: make([]nucdata.Isotope, len(isotopes))}
	for i, iso := range isotopes {
		e.isotopes[i] = nucdata.Isotope{Nuclide: iso.Nuclide, Abundance: iso.Abundance / sum}
	}
	return e, nil
}

// Symbol returns the element symbol.
func (e *Element) Symbol() string { return e.symbol }

// Expand returns the isotopes and their abundances in stored order.
func (e *Element) Expand() []Fraction {
	out := make([]Fraction, len(e.isotopes))
	for i, iso := range e.isotopes {
		out[i] = Fraction{Nuclide: iso.Nuclide, Fraction: iso.Abundance}
	}
	return out
}

// Nuclides returns the isotope ids in stored order.
func (e *Element) Nuclides() []string {
	out := make([]string, len(e.isotopes))
	for i, iso := range e.isotopes {
		out[i] = iso.Nuclide
	}
	return out
}

// MicroscopicCrossSection returns the abundance-weighted cross section of
// reaction r on the union of the isotopes' grids. A nil session means the
// default one.
func (e *Element) MicroscopicCrossSection(ctx context.Context, sess *Session, r Reaction, temperature string) (xs, energy []float64, err error) {
	sess = orDefault(sess)
	sets, err := loadAll(ctx, sess, e.Nuclides(), temperature)
	if err != nil {
		return nil, nil, annotate("xs.Element.MicroscopicCrossSection", err).WithMaterial(e.symbol)
	}
	tables := make([]*table.Table, len(sets))
	for i, set := range sets {
		if tables[i], err = reactionTable(set, r); err != nil {
			return nil, nil, err
		}
	}
	weights := make([]float64, len(e.isotopes))
	for i, iso := range e.isotopes {
		weights[i] = iso.Abundance
	}
	xs, energy, err = weightedSum(tables, weights, sess.Boundary())
	if err != nil {
		return nil, nil, annotate("xs.Element.MicroscopicCrossSection", err).WithMaterial(e.symbol).WithReaction(r.MT(), temperature)
	}
	return xs, energy, nil
}

// loadAll loads nuclides concurrently, preserving order.
func loadAll(ctx context.Context, sess *Session, nuclides []string, temperature string) ([]*library.TableSet, error) {
	sets := make([]*library.TableSet, len(nuclides))
	g, gctx := errgroup.WithContext(ctx)
	for i, n := range nuclides {
		g.Go(func() error {
			set, err := sess.Load(gctx, n, temperature)
			if err != nil {
				return err
			}
			sets[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}

// weightedSum evaluates Σ w_i t_i(E) on the union of the tables' grids.
func weightedSum(tables []*table.Table, weights []float64, policy table.Boundary) (xs, energy []float64, err error) {
	grids := make([][]float64, len(tables))
	for i, t := range tables {
		grids[i] = t.Energy
	}
	energy = table.UnionGrid(grids...)
	xs = make([]float64, len(energy))
	for i, t := range tables {
		vals, err := t.Evaluate(energy, policy)
		if err != nil {
			return nil, nil, err
		}
		floats.AddScaled(xs, weights[i], vals)
	}
	return xs, energy, nil
}
