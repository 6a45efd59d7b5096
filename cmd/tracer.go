// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/jumpnet"
	"github.com/sohamch/Onsager/transport"
)

var (
	tracerCutoffFlag  float64
	tracerNThermoFlag int
)

// tracerCmd represents the tracer command.
var tracerCmd = newTracerCmd()

func newTracerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracer LATTICE",
		Short: "Tracer correlation factor of a stock lattice",
		Long: `Compute the vacancy tracer correlation factor f = Lss/L0ss for a stock
lattice (sc, bcc, fcc, hcp, square, triangular, honeycomb) with every jump
within the cutoff at the same rate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			crys, ok := crystal.Stock(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", errUnknownLattice, args[0])
			}
			net, err := jumpnet.Sites(crys, 0, tracerCutoffFlag, jumpnet.WithLogger(globalLogger))
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			vm, err := transport.New(ctx, net, tracerNThermoFlag, transportOptions()...)
			if err != nil {
				return err
			}
			n0 := vm.Topology().NumOmega0
			pre := make([]float64, n0)
			for i := range pre {
				pre[i] = 1
			}
			pe, err := vm.MakeTracerPreEne(pre, make([]float64, n0))
			if err != nil {
				return err
			}
			bf, err := transport.PreEne2BetaFree(1, pe)
			if err != nil {
				return err
			}
			res, err := vm.Lij(ctx, bf)
			if err != nil {
				return err
			}

			rows := [][]string{{
				args[0],
				formatFloat(tracerCutoffFlag),
				fmt.Sprintf("%d", net.NumClasses()),
				formatFloat(res.Lss[0][0] / res.L0ss[0][0]),
			}}

			return renderTable(cmd.OutOrStdout(), []string{"Lattice", "Cutoff", "Classes", "f"}, rows, nil)
		},
	}

	cmd.Flags().Float64Var(&tracerCutoffFlag, "cutoff", 0, "jump cutoff in lattice units")
	cmd.Flags().IntVar(&tracerNThermoFlag, "nthermo", 0, "thermodynamic shells")
	cobra.CheckErr(cmd.MarkFlagRequired("cutoff"))

	return cmd
}

func init() {
	rootCmd.AddCommand(tracerCmd)
}
