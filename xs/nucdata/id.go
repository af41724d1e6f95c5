// Package nucdata holds static nuclear data: element symbols, natural isotopic
// abundances and atomic masses, plus parsing of nuclide identifiers.
package nucdata

import (
	"fmt"
	"regexp"
	"strconv"
)

// symbols lists element symbols indexed by atomic number (index 0 unused).
var symbols = []string{"",
	"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K", "Ca",
	"Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr", "Rb", "Sr", "Y", "Zr",
	"Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn",
	"Sb", "Te", "I", "Xe", "Cs", "Ba", "La", "Ce", "Pr", "Nd",
	"Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb",
	"Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn", "Fr", "Ra", "Ac", "Th",
	"Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm",
	"Md", "No", "Lr",
}

var atomicNumbers = func() map[string]int {
	m := make(map[string]int, len(symbols))
	for z, s := range symbols {
		if s != "" {
			m[s] = z
		}
	}
	return m
}()

var idPattern = regexp.MustCompile(`^([A-Z][a-z]{0,1})(\d{1,3})(?:_m(\d))?$`)

// ID is a parsed nuclide identifier such as "Li6" or "Am242_m1".
type ID struct {
	Symbol     string
	Z          int
	A          int
	Metastable int
}

// String returns the canonical identifier.
func (id ID) String() string {
	if id.Metastable > 0 {
		return fmt.Sprintf("%s%d_m%d", id.Symbol, id.A, id.Metastable)
	}
	return fmt.Sprintf("%s%d", id.Symbol, id.A)
}

// ParseID parses a nuclide identifier. The element symbol must be known and
// the mass number must not be below the atomic number.
func ParseID(s string) (ID, error) {
	m := idPattern.FindStringSubmatch(s)
	if m == nil {
		return ID{}, fmt.Errorf("malformed nuclide id %q", s)
	}
	z, ok := atomicNumbers[m[1]]
	if !ok {
		return ID{}, fmt.Errorf("unknown element symbol %q in nuclide id %q", m[1], s)
	}
	a, _ := strconv.Atoi(m[2])
	if a < z {
		return ID{}, fmt.Errorf("mass number %d below atomic number %d in nuclide id %q", a, z, s)
	}
	meta := 0
	if m[3] != "" {
		meta, _ = strconv.Atoi(m[3])
	}
	return ID{Symbol: m[1], Z: z, A: a, Metastable: meta}, nil
}

// AtomicNumber returns Z for an element symbol.
func AtomicNumber(symbol string) (int, bool) {
	z, ok := atomicNumbers[symbol]
	return z, ok
}

// IsElementSymbol reports whether s is a known element symbol.
func IsElementSymbol(s string) bool {
	_, ok := atomicNumbers[s]
	return ok
}
