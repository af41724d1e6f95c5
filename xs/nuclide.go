package xs

import (
	"context"

	"github.com/m4mc/m4mc/xs/library"
	"github.com/m4mc/m4mc/xs/nucdata"
	"github.com/m4mc/m4mc/xs/source"
	"github.com/m4mc/m4mc/xs/table"
	"github.com/m4mc/m4mc/xs/xserr"
)

// Fraction is a nuclide id paired with an atom fraction.
type Fraction struct {
	Nuclide  string
	Fraction float64
}

// Contributor is anything that expands into nuclide-level atom fractions
// when added to a material.
type Contributor interface {
	Expand() []Fraction
}

// Nuclide is a handle on one nuclide's reaction data within a session.
type Nuclide struct {
	id   nucdata.ID
	sess *Session
}

// NewNuclide returns a handle bound to the default session.
func NewNuclide(id string) (*Nuclide, error) {
	return newNuclide(nil, id)
}

// Nuclide returns a handle bound to s.
func (s *Session) Nuclide(id string) (*Nuclide, error) {
	return newNuclide(s, id)
}

func newNuclide(s *Session, id string) (*Nuclide, error) {
	parsed, err := nucdata.ParseID(id)
	if err != nil {
		return nil, xserr.Wrap(xserr.ErrInvalidMaterial, "xs.NewNuclide", err).WithNuclide(id)
	}
	return &Nuclide{id: parsed, sess: s}, nil
}

// Name returns the nuclide id, e.g. "Li6".
func (n *Nuclide) Name() string { return n.id.String() }

// ID returns the parsed identifier.
func (n *Nuclide) ID() nucdata.ID { return n.id }

func (n *Nuclide) session() *Session { return orDefault(n.sess) }

// Expand returns the nuclide itself with fraction 1.
func (n *Nuclide) Expand() []Fraction {
	return []Fraction{{Nuclide: n.Name(), Fraction: 1}}
}

// ReadFile pins the nuclide's source to a reaction file and loads it at
// temperature. The pin is a per-nuclide override in the session's resolver,
// so materials in the same session read the same file.
func (n *Nuclide) ReadFile(ctx context.Context, path, temperature string) error {
	sess := n.session()
	sess.Sources().SetOverride(n.Name(), source.Path(path))
	_, err := sess.Load(ctx, n.Name(), temperature)
	return err
}

// Load returns all tables of the nuclide at temperature.
func (n *Nuclide) Load(ctx context.Context, temperature string) (*library.TableSet, error) {
	return n.session().Load(ctx, n.Name(), temperature)
}

// Table returns one reaction table.
func (n *Nuclide) Table(ctx context.Context, r Reaction, temperature string) (*table.Table, error) {
	set, err := n.Load(ctx, temperature)
	if err != nil {
		return nil, err
	}
	return reactionTable(set, r)
}

// MicroscopicCrossSection returns the stored cross sections (barns) and their
// energy grid (eV) for reaction r.
func (n *Nuclide) MicroscopicCrossSection(ctx context.Context, r Reaction, temperature string) (xs, energy []float64, err error) {
	t, err := n.Table(ctx, r, temperature)
	if err != nil {
		return nil, nil, err
	}
	return append([]float64(nil), t.XS...), append([]float64(nil), t.Energy...), nil
}

// CrossSectionAt interpolates reaction r at energy e under the session's
// boundary policy.
func (n *Nuclide) CrossSectionAt(ctx context.Context, e float64, r Reaction, temperature string) (float64, error) {
	t, err := n.Table(ctx, r, temperature)
	if err != nil {
		return 0, err
	}
	v, err := t.Lookup(e, n.session().Boundary())
	if err != nil {
		return 0, annotate("xs.Nuclide.CrossSectionAt", err).WithNuclide(n.Name()).WithReaction(r.MT(), temperature)
	}
	return v, nil
}

// ReactionMTs returns the MT numbers available at temperature.
func (n *Nuclide) ReactionMTs(ctx context.Context, temperature string) ([]int, error) {
	set, err := n.Load(ctx, temperature)
	if err != nil {
		return nil, err
	}
	return set.MTs(), nil
}

// Temperatures returns every temperature listed in the nuclide's file. The
// file is loaded at temperature to find them.
func (n *Nuclide) Temperatures(ctx context.Context, temperature string) ([]string, error) {
	set, err := n.Load(ctx, temperature)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), set.Temperatures...), nil
}

// Fissionable reports whether the nuclide has a fission channel.
func (n *Nuclide) Fissionable(ctx context.Context, temperature string) (bool, error) {
	set, err := n.Load(ctx, temperature)
	if err != nil {
		return false, err
	}
	return set.Fissionable, nil
}

func reactionTable(set *library.TableSet, r Reaction) (*table.Table, error) {
	t, ok := set.Table(r.MT())
	if !ok {
		return nil, xserr.New(xserr.ErrData, "xs.Table", "reaction %s not in data", r).
			WithNuclide(set.Nuclide).WithReaction(r.MT(), set.Temperature)
	}
	return t, nil
}

// annotate wraps err in a new *xserr.Error of the same kind so context can be
// added without mutating errors shared between callers.
func annotate(op string, err error) *xserr.Error {
	kind := xserr.KindOf(err)
	if kind == nil {
		kind = xserr.ErrData
	}
	return xserr.Wrap(kind, op, err)
}
