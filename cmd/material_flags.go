package cmd

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/m4mc/m4mc/xs"
	"github.com/m4mc/m4mc/xs/nucdata"
)

var (
	components   []string // nuclide=fraction or element=fraction
	density      float64
	densityUnit  string
	materialName string
)

// addMaterialFlags registers the flags that describe a material.
func addMaterialFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&components, "add", nil, "Constituent as id=atom_fraction; id is a nuclide (Li6) or element (Li) (repeatable)")
	cmd.Flags().Float64Var(&density, "density", 0, "Material density (required)")
	cmd.Flags().StringVar(&densityUnit, "density-unit", "g/cm3", "Density unit (g/cm3, g/cc, kg/m3, kg/cm3, mg/cm3)")
	cmd.Flags().StringVar(&materialName, "name", "", "Material name used in output")
}

// addReactionFlags registers the reaction selector and plot switch.
func addReactionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&reactionName, "reaction", "(n,total)", "Reaction name or MT number")
	cmd.Flags().BoolVar(&plot, "plot", false, "Render an ASCII plot of log10(xs) instead of a table")
}

// component is one parsed --add value.
type component struct {
	id       string
	fraction float64
}

func parseComponent(s string) (component, error) {
	id, frac, ok := strings.Cut(s, "=")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return component{}, fmt.Errorf("invalid constituent %q (want id=fraction)", s)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(frac), 64)
	if err != nil {
		return component{}, fmt.Errorf("invalid fraction in %q: %w", s, err)
	}
	return component{id: id, fraction: f}, nil
}

// buildMaterial assembles a material from the constituent and density flags.
func buildMaterial(sess *xs.Session, temp string) (*xs.Material, error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("material needs at least one --add constituent")
	}
	m := sess.NewMaterial()
	m.SetName(materialName)
	m.SetTemperature(temp)
	for _, raw := range components {
		c, err := parseComponent(raw)
		if err != nil {
			return nil, err
		}
		if nucdata.IsElementSymbol(c.id) {
			err = m.AddElement(c.id, c.fraction)
		} else {
			err = m.AddNuclide(c.id, c.fraction)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := m.SetDensity(densityUnit, density); err != nil {
		return nil, err
	}
	return m, nil
}

// writeSpectrum prints a two-column table or, with plot set, an ASCII graph.
func writeSpectrum(w io.Writer, title, unit string, energy, values []float64) {
	if plot {
		fmt.Fprintln(w, renderPlot(title, energy, values))
		return
	}
	fmt.Fprintf(w, "# %s\n", title)
	fmt.Fprintf(w, "%-14s %s\n", "energy_eV", unit)
	for i := range energy {
		fmt.Fprintf(w, "%-14.6e %.6e\n", energy[i], values[i])
	}
}

// renderPlot draws log10(values) against grid index. Non-positive values are
// drawn at the smallest positive decade present.
func renderPlot(title string, energy, values []float64) string {
	data := make([]float64, len(values))
	floor := math.Inf(1)
	for _, v := range values {
		if v > 0 {
			floor = math.Min(floor, math.Log10(v))
		}
	}
	if math.IsInf(floor, 1) {
		floor = 0
	}
	for i, v := range values {
		if v > 0 {
			data[i] = math.Log10(v)
		} else {
			data[i] = floor
		}
	}
	caption := title
	if len(energy) > 0 {
		caption = fmt.Sprintf("%s, log10 over %d points, E %.3g..%.3g eV",
			title, len(energy), energy[0], energy[len(energy)-1])
	}
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}
