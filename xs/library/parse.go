package library

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/m4mc/m4mc/xs/nucdata"
	"github.com/m4mc/m4mc/xs/table"
	"github.com/m4mc/m4mc/xs/xserr"
)

// TableSet holds every reaction table of one nuclide at one temperature.
// It is immutable once returned by the store.
type TableSet struct {
	Nuclide      string
	Symbol       string
	Z            int
	A            int
	Library      string
	Source       string
	Temperature  string
	Temperatures []string
	Fissionable  bool
	Tables       map[int]*table.Table
}

// Table returns the table for mt.
func (s *TableSet) Table(mt int) (*table.Table, bool) {
	t, ok := s.Tables[mt]
	return t, ok
}

// MTs returns the available MT numbers in ascending order.
func (s *TableSet) MTs() []int {
	out := make([]int, 0, len(s.Tables))
	for mt := range s.Tables {
		out = append(out, mt)
	}
	sort.Ints(out)
	return out
}

// Channels returns the non-redundant channels of the set.
func (s *TableSet) Channels() []int {
	return Channels(s.MTs())
}

type rawReaction struct {
	CrossSection  []float64 `json:"cross_section"`
	XS            []float64 `json:"xs"`
	ThresholdIdx  int       `json:"threshold_idx"`
	Interpolation []int     `json:"interpolation"`
	Energy        []float64 `json:"energy"`
}

func (r rawReaction) values() []float64 {
	if len(r.CrossSection) > 0 {
		return r.CrossSection
	}
	return r.XS
}

// temperature accepts both JSON strings and numbers.
type temperature string

func (t *temperature) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = temperature(s)
		return nil
	}
	var f json.Number
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("temperature %s is neither string nor number", b)
	}
	*t = temperature(f.String())
	return nil
}

type richFile struct {
	Name         string                            `json:"name"`
	AtomicSymbol string                            `json:"atomic_symbol"`
	AtomicNumber int                               `json:"atomic_number"`
	MassNumber   int                               `json:"mass_number"`
	Library      string                            `json:"library"`
	Temperatures []temperature                     `json:"temperatures"`
	Energy       map[string][]float64              `json:"energy"`
	Reactions    map[string]map[string]rawReaction `json:"reactions"`
}

// Parse decodes a reaction file and builds the table set for temperature.
// An empty temperature selects the only temperature in the file.
//
// Two layouts are accepted: the library layout with top-level metadata,
// "energy" and "reactions" keyed by temperature, and a bare object keyed by
// temperature, then MT, each holding its own energy grid.
func Parse(data []byte, nuclide, temp string) (*TableSet, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, dataErr(nuclide, temp, fmt.Errorf("decode JSON: %w", err))
	}
	if _, ok := top["reactions"]; ok {
		var f richFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, dataErr(nuclide, temp, fmt.Errorf("decode reaction file: %w", err))
		}
		return parseRich(&f, nuclide, temp)
	}
	var byTemp map[string]map[string]rawReaction
	if err := json.Unmarshal(data, &byTemp); err != nil {
		return nil, dataErr(nuclide, temp, fmt.Errorf("decode reaction file: %w", err))
	}
	return parseLogical(byTemp, nuclide, temp)
}

func parseRich(f *richFile, nuclide, temp string) (*TableSet, error) {
	seen := map[string]bool{}
	for _, t := range f.Temperatures {
		seen[string(t)] = true
	}
	for t := range f.Reactions {
		seen[t] = true
	}
	for t := range f.Energy {
		seen[t] = true
	}
	temps := sortedTemperatures(seen)

	rkey, ok := matchTemperature(keysOf(f.Reactions), temp)
	if !ok {
		return nil, missingTemperature(nuclide, temp, temps)
	}
	grid, hasGrid := f.Energy[rkey]
	if !hasGrid {
		if ekey, ok := matchTemperature(keysOf(f.Energy), temp); ok {
			grid, hasGrid = f.Energy[ekey], true
		}
	}

	set := newSet(nuclide, rkey, temps)
	if f.Name != "" && f.Name != nuclide {
		logrus.Debugf("reaction file names %s, loading as %s", f.Name, nuclide)
	}
	if f.AtomicSymbol != "" {
		set.Symbol = f.AtomicSymbol
	}
	if f.AtomicNumber > 0 {
		set.Z = f.AtomicNumber
	}
	if f.MassNumber > 0 {
		set.A = f.MassNumber
	}
	set.Library = f.Library

	low := math.Inf(1)
	for key, r := range f.Reactions[rkey] {
		mt, err := parseMT(key)
		if err != nil {
			return nil, dataErr(nuclide, rkey, err)
		}
		energy := r.Energy
		if len(energy) == 0 {
			if !hasGrid {
				return nil, xserr.New(xserr.ErrData, "library.Parse",
					"reaction has no energy grid and no top-level grid exists").WithNuclide(nuclide).WithReaction(mt, rkey)
			}
			if r.ThresholdIdx < 0 || r.ThresholdIdx >= len(grid) {
				return nil, xserr.New(xserr.ErrData, "library.Parse",
					"threshold_idx %d outside grid of %d points", r.ThresholdIdx, len(grid)).WithNuclide(nuclide).WithReaction(mt, rkey)
			}
			energy = grid[r.ThresholdIdx:]
		}
		t, err := build(mt, energy, r, nuclide, rkey)
		if err != nil {
			return nil, err
		}
		if t == nil {
			continue
		}
		t.Threshold = r.ThresholdIdx > 0 || (hasGrid && len(grid) > 0 && t.Min() > grid[0])
		set.Tables[mt] = t
		low = math.Min(low, t.Min())
	}
	if hasGrid && len(grid) > 0 {
		low = math.Min(low, grid[0])
	}
	setFloor(set.Tables, low)
	return finish(set)
}

func parseLogical(byTemp map[string]map[string]rawReaction, nuclide, temp string) (*TableSet, error) {
	seen := map[string]bool{}
	for t := range byTemp {
		seen[t] = true
	}
	temps := sortedTemperatures(seen)
	key, ok := matchTemperature(keysOf(byTemp), temp)
	if !ok {
		return nil, missingTemperature(nuclide, temp, temps)
	}
	set := newSet(nuclide, key, temps)

	low := math.Inf(1)
	for mk, r := range byTemp[key] {
		mt, err := parseMT(mk)
		if err != nil {
			return nil, dataErr(nuclide, key, err)
		}
		t, err := build(mt, r.Energy, r, nuclide, key)
		if err != nil {
			return nil, err
		}
		if t == nil {
			continue
		}
		set.Tables[mt] = t
		low = math.Min(low, t.Min())
	}
	for _, t := range set.Tables {
		t.Threshold = t.Min() > low
	}
	setFloor(set.Tables, low)
	return finish(set)
}

func setFloor(tables map[int]*table.Table, floor float64) {
	for _, t := range tables {
		t.Floor = floor
	}
}

func newSet(nuclide, temp string, temps []string) *TableSet {
	set := &TableSet{
		Nuclide:      nuclide,
		Temperature:  temp,
		Temperatures: temps,
		Tables:       make(map[int]*table.Table),
	}
	if id, err := nucdata.ParseID(nuclide); err == nil {
		set.Symbol, set.Z, set.A = id.Symbol, id.Z, id.A
	}
	return set
}

// build returns nil for reactions without cross-section values.
func build(mt int, energy []float64, r rawReaction, nuclide, temp string) (*table.Table, error) {
	values := r.values()
	if len(values) == 0 {
		logrus.Warnf("%s: MT %d at %s has no cross-section values, skipping", nuclide, mt, temp)
		return nil, nil
	}
	regions, err := Regions(r.Interpolation, len(energy))
	if err != nil {
		return nil, xserr.Wrap(xserr.ErrData, "library.Parse", err).WithNuclide(nuclide).WithReaction(mt, temp)
	}
	t, err := table.New(mt, energy, values, regions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", nuclide, err)
	}
	return t, nil
}

func finish(set *TableSet) (*TableSet, error) {
	if len(set.Tables) == 0 {
		return nil, xserr.New(xserr.ErrData, "library.Parse", "no reactions at temperature %s", set.Temperature).
			WithNuclide(set.Nuclide)
	}
	set.Fissionable = Fissionable(set.MTs())
	synthesize(set.Tables)
	return set, nil
}

// Regions converts an interpolation list into table regions for a grid of n
// points. A single code applies to the whole grid; an even-length list is
// read as ENDF (NBT, INT) pairs.
func Regions(codes []int, n int) ([]table.Region, error) {
	switch {
	case len(codes) == 0:
		return nil, nil
	case len(codes) == 1:
		return []table.Region{{End: n, Law: table.Law(codes[0])}}, nil
	case len(codes)%2 == 0:
		regions := make([]table.Region, 0, len(codes)/2)
		for i := 0; i < len(codes); i += 2 {
			regions = append(regions, table.Region{End: codes[i], Law: table.Law(codes[i+1])})
		}
		if regions[len(regions)-1].End != n {
			return nil, fmt.Errorf("interpolation pairs %v do not cover %d points", codes, n)
		}
		return regions, nil
	}
	return nil, fmt.Errorf("cannot read interpolation %v", codes)
}

// synthesize adds summed channels that the file omits but whose components
// are present: MT 4 and 101 from their partials, 3 from every nonelastic
// channel and 1 from all channels.
func synthesize(tables map[int]*table.Table) {
	mts := make([]int, 0, len(tables))
	for mt := range tables {
		mts = append(mts, mt)
	}
	channels := Channels(mts)

	rules := []struct {
		mt int
		in func(int) bool
	}{
		{4, func(m int) bool { return m >= 50 && m <= 91 }},
		{101, func(m int) bool { return (m >= 102 && m <= 117) || (m >= 600 && m <= 849) }},
		{3, func(m int) bool { return m != 2 }},
		{1, func(int) bool { return true }},
	}
	for _, rule := range rules {
		if _, ok := tables[rule.mt]; ok {
			continue
		}
		var parts []*table.Table
		for _, c := range channels {
			if rule.in(c) {
				parts = append(parts, tables[c])
			}
		}
		if len(parts) == 0 {
			continue
		}
		tables[rule.mt] = sumTables(rule.mt, parts)
	}
}

func sumTables(mt int, parts []*table.Table) *table.Table {
	grids := make([][]float64, len(parts))
	threshold := true
	floor := math.Inf(1)
	for i, p := range parts {
		grids[i] = p.Energy
		threshold = threshold && p.Threshold
		floor = math.Min(floor, p.Floor)
	}
	grid := table.UnionGrid(grids...)
	sum := make([]float64, len(grid))
	for _, p := range parts {
		// clamped lookups only fail on NaN energies, which grids never hold
		vals, _ := p.Evaluate(grid, table.Clamp)
		floats.Add(sum, vals)
	}
	t, _ := table.New(mt, grid, sum, nil)
	t.Threshold = threshold
	t.Floor = floor
	return t
}

func parseMT(key string) (int, error) {
	mt, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil || mt <= 0 {
		return 0, fmt.Errorf("invalid MT key %q", key)
	}
	return mt, nil
}

// NormalizeTemperature strips whitespace and a trailing "K".
func NormalizeTemperature(t string) string {
	return strings.TrimSuffix(strings.TrimSpace(t), "K")
}

func matchTemperature(keys []string, want string) (string, bool) {
	if want == "" {
		if len(keys) == 1 {
			return keys[0], true
		}
		return "", false
	}
	w := NormalizeTemperature(want)
	wf, werr := strconv.ParseFloat(w, 64)
	for _, k := range keys {
		n := NormalizeTemperature(k)
		if n == w {
			return k, true
		}
		if kf, err := strconv.ParseFloat(n, 64); err == nil && werr == nil && kf == wf {
			return k, true
		}
	}
	return "", false
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedTemperatures(seen map[string]bool) []string {
	out := keysOf(seen)
	sort.SliceStable(out, func(i, j int) bool {
		a, aerr := strconv.ParseFloat(NormalizeTemperature(out[i]), 64)
		b, berr := strconv.ParseFloat(NormalizeTemperature(out[j]), 64)
		if aerr != nil || berr != nil {
			return out[i] < out[j]
		}
		return a < b
	})
	return out
}

func missingTemperature(nuclide, temp string, available []string) error {
	return xserr.New(xserr.ErrData, "library.Parse", "temperature %q not in file (available: %s)",
		temp, strings.Join(available, ", ")).WithNuclide(nuclide).WithReaction(0, temp)
}

func dataErr(nuclide, temp string, err error) error {
	return xserr.Wrap(xserr.ErrData, "library.Parse", err).WithNuclide(nuclide).WithReaction(0, temp)
}
