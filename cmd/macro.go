package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/m4mc/m4mc/xs"
)

var energy float64 // Incident neutron energy in eV

var macroCmd = &cobra.Command{
	Use:   "macro",
	Short: "Print the macroscopic cross section of a material",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, opts, err := newSession()
		if err != nil {
			return err
		}
		r, err := xs.ParseReaction(reactionName)
		if err != nil {
			return err
		}
		m, err := buildMaterial(sess, opts.temperature)
		if err != nil {
			return err
		}
		sigma, grid, err := m.MacroscopicCrossSection(cmd.Context(), r, "")
		if err != nil {
			return err
		}
		writeSpectrum(cmd.OutOrStdout(), fmt.Sprintf("%s %s", m, r), "sigma_per_cm", grid, sigma)
		return nil
	},
}

var mfpCmd = &cobra.Command{
	Use:   "mfp",
	Short: "Print the mean free path in a material at one energy",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, opts, err := newSession()
		if err != nil {
			return err
		}
		r, err := xs.ParseReaction(reactionName)
		if err != nil {
			return err
		}
		m, err := buildMaterial(sess, opts.temperature)
		if err != nil {
			return err
		}
		mfp, err := m.MeanFreePath(cmd.Context(), energy, r)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if math.IsInf(mfp, 1) {
			fmt.Fprintf(out, "%s: mean free path at %g eV is infinite\n", m, energy)
			return nil
		}
		fmt.Fprintf(out, "%s: mean free path at %g eV = %.6e cm\n", m, energy, mfp)
		return nil
	},
}

func init() {
	addMaterialFlags(macroCmd)
	addReactionFlags(macroCmd)

	addMaterialFlags(mfpCmd)
	mfpCmd.Flags().Float64Var(&energy, "energy", 0, "Incident neutron energy in eV")
	mfpCmd.Flags().StringVar(&reactionName, "reaction", "(n,total)", "Reaction name or MT number")
	_ = mfpCmd.MarkFlagRequired("energy")
}
