package xs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/m4mc/m4mc/xs/xserr"
)

// Reaction identifies a reaction channel by its MT number.
type Reaction int

const (
	Total      Reaction = 1
	Elastic    Reaction = 2
	Nonelastic Reaction = 3
	Inelastic  Reaction = 4
	N2N        Reaction = 16
	N3N        Reaction = 17
	Fission    Reaction = 18
	Absorption Reaction = 101
	Capture    Reaction = 102
	NP         Reaction = 103
	ND         Reaction = 104
	NT         Reaction = 105
	NHe3       Reaction = 106
	NAlpha     Reaction = 107
)

var reactionNames = map[string]Reaction{
	"(n,total)":      Total,
	"(n,elastic)":    Elastic,
	"(n,nonelastic)": Nonelastic,
	"(n,level)":      Inelastic,
	"(n,2n)":         N2N,
	"(n,3n)":         N3N,
	"(n,fission)":    Fission,
	"fission":        Fission,
	"(n,absorption)": Absorption,
	"(n,disappear)":  Absorption,
	"(n,gamma)":      Capture,
	"(n,p)":          NP,
	"(n,d)":          ND,
	"(n,t)":          NT,
	"(n,3He)":        NHe3,
	"(n,a)":          NAlpha,
}

// canonical names, used by String
var mtNames = map[Reaction]string{
	Total:      "(n,total)",
	Elastic:    "(n,elastic)",
	Nonelastic: "(n,nonelastic)",
	Inelastic:  "(n,level)",
	N2N:        "(n,2n)",
	N3N:        "(n,3n)",
	Fission:    "(n,fission)",
	Absorption: "(n,absorption)",
	Capture:    "(n,gamma)",
	NP:         "(n,p)",
	ND:         "(n,d)",
	NT:         "(n,t)",
	NHe3:       "(n,3He)",
	NAlpha:     "(n,a)",
}

// ParseReaction accepts a reaction name such as "(n,total)" or a bare MT
// number such as "102".
func ParseReaction(s string) (Reaction, error) {
	s = strings.TrimSpace(s)
	if r, ok := reactionNames[s]; ok {
		return r, nil
	}
	if mt, err := strconv.Atoi(s); err == nil && mt > 0 {
		return Reaction(mt), nil
	}
	return 0, xserr.New(xserr.ErrData, "xs.ParseReaction", "unknown reaction %q (known: %s)",
		s, strings.Join(ReactionNames(), ", "))
}

// ReactionNames returns the accepted reaction names, sorted.
func ReactionNames() []string {
	out := make([]string, 0, len(reactionNames))
	for n := range reactionNames {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// MT returns the MT number.
func (r Reaction) MT() int { return int(r) }

func (r Reaction) String() string {
	if n, ok := mtNames[r]; ok {
		return n
	}
	return fmt.Sprintf("MT%d", int(r))
}
