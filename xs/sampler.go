package xs

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/m4mc/m4mc/xs/xserr"
)

// SampleNuclide picks the constituent a neutron of energy e collides with.
// Each constituent's partial macroscopic total cross section is accumulated
// in insertion order; the first whose cumulative fraction exceeds draw wins.
// e must lie in the material's Domain and draw in [0,1).
func SampleNuclide(ctx context.Context, m *Material, e, draw float64) (string, error) {
	const op = "xs.SampleNuclide"
	if err := checkDraw(op, draw); err != nil {
		return "", err
	}
	lo, hi, err := m.Domain(ctx)
	if err != nil {
		return "", err
	}
	if !(e >= lo && e <= hi) {
		return "", xserr.New(xserr.ErrOutOfRange, op, "energy outside material domain [%g, %g]", lo, hi).
			WithMaterial(m.label()).WithEnergy(e)
	}
	partial, err := m.partials(ctx, op, e, Total, m.temp(""))
	if err != nil {
		return "", err
	}
	i, err := pick(partial, draw)
	if err != nil {
		return "", annotate(op, err).WithMaterial(m.label()).WithEnergy(e)
	}
	return m.order[i], nil
}

// SampleReaction picks the reaction channel of nuclide at energy e. Only
// non-redundant channels take part, in ascending MT order, so summed
// reactions such as the total are never returned when their components are
// tabulated. The nuclide must be a constituent of m.
func SampleReaction(ctx context.Context, m *Material, nuclide string, e, draw float64) (Reaction, error) {
	const op = "xs.SampleReaction"
	if err := checkDraw(op, draw); err != nil {
		return 0, err
	}
	if _, ok := m.fractions[nuclide]; !ok {
		return 0, m.invalid(op, "%s is not a constituent", nuclide)
	}
	temperature := m.temp("")
	sess := m.session()
	set, err := sess.Load(ctx, nuclide, temperature)
	if err != nil {
		return 0, annotate(op, err).WithMaterial(m.label())
	}
	total, err := reactionTable(set, Total)
	if err != nil {
		return 0, err
	}
	if !total.Contains(e) {
		return 0, xserr.New(xserr.ErrOutOfRange, op, "energy outside [%g, %g]", total.Min(), total.Max()).
			WithNuclide(nuclide).WithEnergy(e)
	}

	channels := set.Channels()
	partial := make([]float64, len(channels))
	for i, mt := range channels {
		t, _ := set.Table(mt)
		v, err := t.Lookup(e, sess.Boundary())
		if err != nil {
			return 0, annotate(op, err).WithNuclide(nuclide).WithReaction(mt, temperature)
		}
		partial[i] = v
	}
	i, err := pick(partial, draw)
	if err != nil {
		return 0, annotate(op, err).WithNuclide(nuclide).WithEnergy(e)
	}
	return Reaction(channels[i]), nil
}

// pick returns the first index whose cumulative share of the weights
// exceeds draw.
func pick(weights []float64, draw float64) (int, error) {
	if len(weights) == 0 {
		return 0, xserr.New(xserr.ErrData, "xs.pick", "nothing to sample from")
	}
	cdf := floats.CumSum(make([]float64, len(weights)), weights)
	total := cdf[len(cdf)-1]
	if !(total > 0) {
		return 0, xserr.New(xserr.ErrData, "xs.pick", "cross sections sum to %g", total)
	}
	for i, c := range cdf {
		if c/total > draw {
			return i, nil
		}
	}
	return len(cdf) - 1, nil
}

func checkDraw(op string, draw float64) error {
	if !(draw >= 0 && draw < 1) || math.IsNaN(draw) {
		return xserr.New(xserr.ErrOutOfRange, op, "random draw %g outside [0, 1)", draw)
	}
	return nil
}

// Collision is one sampled interaction.
type Collision struct {
	Distance float64 // cm
	Nuclide  string
	Reaction Reaction
}

// SampleCollision draws a flight distance, a target nuclide and a reaction
// from separate rng streams.
func SampleCollision(ctx context.Context, m *Material, e float64, rng *PartitionedRNG) (Collision, error) {
	d, err := m.SampleDistanceToCollision(ctx, e, rng.ForSubsystem(SubsystemDistance).Float64())
	if err != nil {
		return Collision{}, err
	}
	n, err := SampleNuclide(ctx, m, e, rng.ForSubsystem(SubsystemNuclide).Float64())
	if err != nil {
		return Collision{}, err
	}
	r, err := SampleReaction(ctx, m, n, e, rng.ForSubsystem(SubsystemReaction).Float64())
	if err != nil {
		return Collision{}, err
	}
	return Collision{Distance: d, Nuclide: n, Reaction: r}, nil
}
