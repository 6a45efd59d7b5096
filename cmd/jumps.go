// SPDX-License-Identifier: MIT

package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sohamch/Onsager/config"
	"github.com/sohamch/Onsager/jumpnet"
)

// jumpsCmd represents the jumps command.
var jumpsCmd = newJumpsCmd()

func newJumpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jumps FILE",
		Short: "List the symmetry classes of the defect jump network",
		Long: `List the jump classes of the diffuser in a document, in generation order.
The class indices are the ones "diffuser.select" refers to.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := config.Load(args[0])
			if err != nil {
				return err
			}
			net, err := doc.Network(globalLogger)
			if err != nil {
				return err
			}

			footer := []string{"Total", strconv.Itoa(net.NumJumps()), "", ""}

			return renderTable(cmd.OutOrStdout(), []string{"Class", "Jumps", "Length", "Representative"}, jumpRows(net), footer)
		},
	}
}

func init() {
	rootCmd.AddCommand(jumpsCmd)
}

func jumpRows(net *jumpnet.Network) [][]string {
	c := net.Container()
	rows := make([][]string, 0, net.NumClasses())
	for k := 0; k < net.NumClasses(); k++ {
		class := net.Class(k)
		rows = append(rows, []string{
			strconv.Itoa(k),
			strconv.Itoa(len(class)),
			formatFloat(jumpnet.SiteDx(c, class[0]).Norm()),
			class[0].String(),
		})
	}

	return rows
}
