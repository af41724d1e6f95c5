package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/m4mc/m4mc/xs"
)

var (
	seed    int64 // Seed for the partitioned RNG
	samples int   // Number of collisions to draw
)

// tally aggregates sampled collisions.
type tally struct {
	distances []float64
	nuclides  map[string]int
	reactions map[xs.Reaction]int
}

func newTally() *tally {
	return &tally{nuclides: map[string]int{}, reactions: map[xs.Reaction]int{}}
}

func (t *tally) add(c xs.Collision) {
	t.distances = append(t.distances, c.Distance)
	t.nuclides[c.Nuclide]++
	t.reactions[c.Reaction]++
}

func (t *tally) write(w io.Writer) {
	n := len(t.distances)
	mean, std := stat.MeanStdDev(t.distances, nil)
	fmt.Fprintf(w, "collisions: %d\n", n)
	fmt.Fprintf(w, "distance_cm: mean=%.6e std=%.6e\n", mean, std)

	names := make([]string, 0, len(t.nuclides))
	for k := range t.nuclides {
		names = append(names, k)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "nuclides:")
	for _, k := range names {
		fmt.Fprintf(w, "  %-8s %8d  %.4f\n", k, t.nuclides[k], float64(t.nuclides[k])/float64(n))
	}

	rs := make([]xs.Reaction, 0, len(t.reactions))
	for r := range t.reactions {
		rs = append(rs, r)
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })
	fmt.Fprintln(w, "reactions:")
	for _, r := range rs {
		fmt.Fprintf(w, "  %-14s %8d  %.4f\n", r, t.reactions[r], float64(t.reactions[r])/float64(n))
	}
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Sample collision distances, target nuclides and reactions in a material",
	RunE: func(cmd *cobra.Command, args []string) error {
		if samples < 1 {
			return fmt.Errorf("--count must be at least 1, got %d", samples)
		}
		sess, opts, err := newSession()
		if err != nil {
			return err
		}
		m, err := buildMaterial(sess, opts.temperature)
		if err != nil {
			return err
		}
		rng := xs.NewPartitionedRNG(seed)
		logrus.Infof("sampling %d collisions in %s at %g eV (seed %d)", samples, m, energy, rng.Seed())

		t := newTally()
		for i := 0; i < samples; i++ {
			c, err := xs.SampleCollision(cmd.Context(), m, energy, rng)
			if err != nil {
				return err
			}
			logrus.Tracef("collision %d: %+v", i, c)
			t.add(c)
		}
		t.write(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	addMaterialFlags(sampleCmd)
	sampleCmd.Flags().Float64Var(&energy, "energy", 0, "Incident neutron energy in eV")
	sampleCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the partitioned RNG")
	sampleCmd.Flags().IntVar(&samples, "count", 1000, "Number of collisions to sample")
	_ = sampleCmd.MarkFlagRequired("energy")
}
