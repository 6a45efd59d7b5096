// SPDX-License-Identifier: MIT

package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sohamch/Onsager/config"
	"github.com/sohamch/Onsager/store"
)

const buildLongDescription = `Build the vacancy-mediated calculator of a document and store it.

The calculator is keyed by the hash of the crystal and diffuser sections,
so documents that differ only in their rates share it. An existing entry
is replaced.`

// buildCmd represents the build command.
var buildCmd = newBuildCmd()

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build FILE",
		Short: "Build and store a vacancy calculator",
		Long:  buildLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := config.Load(args[0])
			if err != nil {
				return err
			}
			st, err := openStore()
			if err != nil {
				return err
			}
			if st == nil {
				return errNoStore
			}
			defer func() {
				if cerr := st.Close(); cerr != nil {
					globalLogger.Error("store close", "error", cerr)
				}
			}()

			vm, err := buildVacancy(cmd.Context(), doc)
			if err != nil {
				return err
			}
			hash, err := doc.Hash()
			if err != nil {
				return err
			}
			h, err := st.Put(hash, vm.Snapshot())
			if err != nil {
				return err
			}

			return renderTable(cmd.OutOrStdout(), headerColumns, [][]string{headerRow(h)}, nil)
		},
	}
}

// calcsCmd represents the calcs command.
var calcsCmd = newCalcsCmd()

var calcsDeleteFlag string

func newCalcsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calcs",
		Short: "List or delete stored calculators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			if st == nil {
				return errNoStore
			}
			defer func() {
				if cerr := st.Close(); cerr != nil {
					globalLogger.Error("store close", "error", cerr)
				}
			}()

			if calcsDeleteFlag != "" {
				return st.Delete(calcsDeleteFlag)
			}
			heads, err := st.List()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(heads))
			for _, h := range heads {
				rows = append(rows, headerRow(h))
			}

			return renderTable(cmd.OutOrStdout(), headerColumns, rows, nil)
		},
	}

	cmd.Flags().StringVar(&calcsDeleteFlag, "delete", "", "delete the calculator stored under this hash")

	return cmd
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(calcsCmd)
}

var headerColumns = []string{"Hash", "ID", "Created"}

func headerRow(h store.Header) []string {
	return []string{h.DocHash, h.ID.String(), h.CreatedAt.Format(time.RFC3339)}
}
