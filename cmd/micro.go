package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/m4mc/m4mc/xs"
	"github.com/m4mc/m4mc/xs/nucdata"
)

var microCmd = &cobra.Command{
	Use:   "micro <nuclide|element>",
	Short: "Print the microscopic cross section of a nuclide or natural element",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, opts, err := newSession()
		if err != nil {
			return err
		}
		r, err := xs.ParseReaction(reactionName)
		if err != nil {
			return err
		}
		target := args[0]
		ctx := cmd.Context()

		var sigma, grid []float64
		if nucdata.IsElementSymbol(target) {
			el, err := xs.NewElement(target)
			if err != nil {
				return err
			}
			logrus.Infof("element %s expands to %v", target, el.Nuclides())
			sigma, grid, err = el.MicroscopicCrossSection(ctx, sess, r, opts.temperature)
			if err != nil {
				return err
			}
		} else {
			n, err := sess.Nuclide(target)
			if err != nil {
				return err
			}
			sigma, grid, err = n.MicroscopicCrossSection(ctx, r, opts.temperature)
			if err != nil {
				return err
			}
		}
		title := fmt.Sprintf("%s %s T=%sK", target, r, opts.temperature)
		writeSpectrum(cmd.OutOrStdout(), title, "xs_barn", grid, sigma)
		return nil
	},
}

func init() {
	addReactionFlags(microCmd)
}
