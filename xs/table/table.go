// Package table implements per-reaction cross-section tables and their
// interpolation.
//
// A Table pairs a strictly increasing energy grid (eV) with non-negative cross
// sections (barns). Interpolation between grid points follows the ENDF
// interpolation law recorded for each region of the table; the law is data,
// never a global assumption.
package table

import (
	"fmt"
	"math"
	"sort"

	"github.com/m4mc/m4mc/xs/xserr"
)

// Law is an ENDF interpolation scheme code.
type Law int

const (
	Histogram Law = 1 // y constant in x
	LinLin    Law = 2 // y linear in x
	LinLog    Law = 3 // y linear in ln(x)
	LogLin    Law = 4 // ln(y) linear in x
	LogLog    Law = 5 // ln(y) linear in ln(x)
)

func (l Law) String() string {
	switch l {
	case Histogram:
		return "histogram"
	case LinLin:
		return "lin-lin"
	case LinLog:
		return "lin-log"
	case LogLin:
		return "log-lin"
	case LogLog:
		return "log-log"
	default:
		return fmt.Sprintf("law(%d)", int(l))
	}
}

// Valid reports whether l is a supported law code.
func (l Law) Valid() bool {
	return l >= Histogram && l <= LogLog
}

// Region applies Law to the intervals ending at point index End (exclusive,
// zero-based), following the ENDF NBT convention.
type Region struct {
	End int
	Law Law
}

// Boundary selects the behaviour for energies outside a table's grid.
type Boundary int

const (
	// Clamp returns the value at the nearest grid boundary.
	Clamp Boundary = iota
	// Strict fails with xserr.ErrOutOfRange.
	Strict
)

func (b Boundary) String() string {
	if b == Strict {
		return "strict"
	}
	return "clamp"
}

// ParseBoundary parses "clamp" or "strict".
func ParseBoundary(s string) (Boundary, error) {
	switch s {
	case "clamp", "":
		return Clamp, nil
	case "strict":
		return Strict, nil
	}
	return Clamp, fmt.Errorf("unknown boundary policy %q (want clamp or strict)", s)
}

// Table is an immutable cross-section table for one reaction at one temperature.
type Table struct {
	MT      int
	Energy  []float64
	XS      []float64
	Regions []Region

	// Threshold marks a reaction whose grid starts above the nuclide's
	// lowest energy; between Floor and Energy[0] its cross section is zero.
	Threshold bool
	// Floor is the lowest energy of the owning nuclide's data. Below it a
	// threshold table is outside the data like any other.
	Floor float64
}

// New validates and builds a table. A nil or empty regions slice means a
// single lin-lin region.
func New(mt int, energy, xs []float64, regions []Region) (*Table, error) {
	if len(energy) == 0 {
		return nil, xserr.New(xserr.ErrData, "table.New", "empty energy grid").WithReaction(mt, "")
	}
	if len(energy) != len(xs) {
		return nil, xserr.New(xserr.ErrData, "table.New", "energy grid has %d points but cross section has %d",
			len(energy), len(xs)).WithReaction(mt, "")
	}
	for i, e := range energy {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return nil, xserr.New(xserr.ErrData, "table.New", "non-finite energy at index %d", i).WithReaction(mt, "")
		}
		if i > 0 && e <= energy[i-1] {
			return nil, xserr.New(xserr.ErrData, "table.New", "energies not strictly increasing at index %d (%g <= %g)",
				i, e, energy[i-1]).WithReaction(mt, "")
		}
	}
	for i, v := range xs {
		if math.IsNaN(v) || v < 0 {
			return nil, xserr.New(xserr.ErrData, "table.New", "invalid cross section %g at index %d", v, i).WithReaction(mt, "")
		}
	}
	if len(regions) == 0 {
		regions = []Region{{End: len(energy), Law: LinLin}}
	}
	prev := 0
	for i, r := range regions {
		if !r.Law.Valid() {
			return nil, xserr.New(xserr.ErrData, "table.New", "unsupported interpolation law %d", int(r.Law)).WithReaction(mt, "")
		}
		if r.End <= prev {
			return nil, xserr.New(xserr.ErrData, "table.New", "interpolation region %d ends at %d, not after %d", i, r.End, prev).WithReaction(mt, "")
		}
		prev = r.End
	}
	if prev != len(energy) {
		return nil, xserr.New(xserr.ErrData, "table.New", "interpolation regions cover %d of %d points", prev, len(energy)).WithReaction(mt, "")
	}

	t := &Table{
		MT:      mt,
		Energy:  append([]float64(nil), energy...),
		XS:      append([]float64(nil), xs...),
		Regions: append([]Region(nil), regions...),
	}
	return t, nil
}

// Len returns the number of grid points.
func (t *Table) Len() int { return len(t.Energy) }

// Min returns the lowest grid energy.
func (t *Table) Min() float64 { return t.Energy[0] }

// Max returns the highest grid energy.
func (t *Table) Max() float64 { return t.Energy[len(t.Energy)-1] }

// Contains reports whether e lies within [Min, Max].
func (t *Table) Contains(e float64) bool {
	return e >= t.Min() && e <= t.Max()
}

// Law returns the interpolation law governing the interval [i, i+1].
func (t *Table) Law(i int) Law {
	for _, r := range t.Regions {
		if i+1 < r.End {
			return r.Law
		}
	}
	return t.Regions[len(t.Regions)-1].Law
}

// Lookup returns the cross section at energy e. Grid points return the stored
// value exactly. Energies outside the grid follow the boundary policy, except
// that threshold reactions are zero below their first point.
func (t *Table) Lookup(e float64, policy Boundary) (float64, error) {
	if math.IsNaN(e) {
		return 0, xserr.New(xserr.ErrOutOfRange, "table.Lookup", "energy is NaN").WithReaction(t.MT, "")
	}
	n := len(t.Energy)
	if e < t.Energy[0] {
		if t.Threshold && e >= 0 {
			if e < t.Floor && policy == Strict {
				return 0, t.outOfRange(e)
			}
			return 0, nil
		}
		if policy == Strict {
			return 0, t.outOfRange(e)
		}
		return t.XS[0], nil
	}
	if e > t.Energy[n-1] {
		if policy == Strict {
			return 0, t.outOfRange(e)
		}
		return t.XS[n-1], nil
	}

	i := sort.SearchFloat64s(t.Energy, e)
	if t.Energy[i] == e {
		return t.XS[i], nil
	}
	lo := i - 1
	return interpolate(t.Law(lo), t.Energy[lo], t.Energy[i], t.XS[lo], t.XS[i], e), nil
}

// Evaluate looks up every energy in es, stopping at the first error.
func (t *Table) Evaluate(es []float64, policy Boundary) ([]float64, error) {
	out := make([]float64, len(es))
	for i, e := range es {
		v, err := t.Lookup(e, policy)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (t *Table) outOfRange(e float64) error {
	return xserr.New(xserr.ErrOutOfRange, "table.Lookup", "energy outside grid [%g, %g]", t.Min(), t.Max()).
		WithReaction(t.MT, "").WithEnergy(e)
}

// UnionGrid returns the sorted, duplicate-free union of the given grids.
func UnionGrid(grids ...[]float64) []float64 {
	total := 0
	for _, g := range grids {
		total += len(g)
	}
	all := make([]float64, 0, total)
	for _, g := range grids {
		all = append(all, g...)
	}
	sort.Float64s(all)
	out := all[:0]
	for i, e := range all {
		if i == 0 || e != out[len(out)-1] {
			out = append(out, e)
		}
	}
	return out
}
