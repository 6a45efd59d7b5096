// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sohamch/Onsager/config"
	"github.com/sohamch/Onsager/shells"
	"github.com/sohamch/Onsager/states"
)

var starSetFlag string

// starsCmd represents the stars command.
var starsCmd = newStarsCmd()

func newStarsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stars FILE",
		Short: "List the solute-vacancy stars of a vacancy document",
		Long: `List the stars of the thermodynamic, kinetic or Green's function star
set generated for a vacancy document, with the size and separation of each.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if doc.Diffuser.Kind != config.KindVacancy {
				return errNotVacancy
			}
			net, err := doc.Network(globalLogger)
			if err != nil {
				return err
			}
			sh, err := shells.Build(net, doc.Diffuser.NThermo, shells.WithLogger(globalLogger))
			if err != nil {
				return err
			}
			set, err := pickStarSet(sh, starSetFlag)
			if err != nil {
				return err
			}

			footer := []string{
				"Total", strconv.Itoa(set.NumStates()),
				fmt.Sprintf("omega1 %d", sh.Omega1.Len()), fmt.Sprintf("omega2 %d", sh.Omega2.Len()),
			}

			return renderTable(cmd.OutOrStdout(), []string{"Star", "States", "Distance", "Representative"}, starRows(set), footer)
		},
	}

	cmd.Flags().StringVar(&starSetFlag, "set", "kinetic", "star set to list: thermo, kinetic or gf")

	return cmd
}

func init() {
	rootCmd.AddCommand(starsCmd)
}

func pickStarSet(sh *shells.Shells, name string) (*shells.PairSet, error) {
	switch name {
	case "thermo":
		return sh.Thermo.PairSet, nil
	case "kinetic":
		return sh.Kinetic.PairSet, nil
	case "gf":
		return sh.GF, nil
	}

	return nil, fmt.Errorf("%w: %q", errUnknownStarSet, name)
}

func starRows(set *shells.PairSet) [][]string {
	rows := make([][]string, 0, set.NumStars())
	for k := 0; k < set.NumStars(); k++ {
		star := set.Star(states.StarIndex(k))
		rows = append(rows, []string{
			strconv.Itoa(k),
			strconv.Itoa(len(star)),
			formatFloat(set.Dx(star[0]).Norm()),
			set.Rep(states.StarIndex(k)).String(),
		})
	}

	return rows
}
