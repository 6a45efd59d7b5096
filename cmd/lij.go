// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sohamch/Onsager/config"
	"github.com/sohamch/Onsager/store"
	"github.com/sohamch/Onsager/transport"
)

const lijLongDescription = `Compute transport coefficients for the rates in a document.

For a vacancy diffuser this prints the Onsager tensors Lvv, Lss and Lsv,
the complex correction Lvv1 and the uncorrelated solute term L0ss, with
the regime the solver used. When a store is configured the calculator is reused from it
and the evaluated Green's function is written back.

For an interstitial diffuser this prints the diffusivity D and its
activation-energy weighted counterpart DE. When the document carries
elastic dipoles it also prints the strain derivative dD/dε, one row per
component of D and one column per strain component.`

var lijRegimeFlag string

// lijCmd represents the lij command.
var lijCmd = newLijCmd()

func newLijCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lij FILE",
		Short: "Compute transport coefficients",
		Long:  lijLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if doc.Diffuser.Kind == config.KindInterstitial {
				return runInterstitial(cmd.OutOrStdout(), doc)
			}
			regime, err := parseRegime(lijRegimeFlag)
			if err != nil {
				return err
			}

			return runVacancy(cmd.Context(), cmd.OutOrStdout(), doc, regime)
		},
	}

	cmd.Flags().StringVar(&lijRegimeFlag, "regime", transport.Auto.String(),
		"solver regime: auto, general, large_exchange or small_exchange")

	return cmd
}

func init() {
	rootCmd.AddCommand(lijCmd)
}

func runVacancy(ctx context.Context, w io.Writer, doc *config.Document, regime transport.Regime) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	if st != nil {
		defer func() {
			if cerr := st.Close(); cerr != nil {
				globalLogger.Error("store close", "error", cerr)
			}
		}()
	}

	vm, err := vacancyCalculator(ctx, doc, st)
	if err != nil {
		return err
	}
	bf, err := doc.Vacancy.BetaFree(vm)
	if err != nil {
		return err
	}
	res, err := vm.LijRegime(ctx, bf, regime)
	if err != nil {
		return err
	}
	if err = persist(st, doc, vm); err != nil {
		return err
	}

	rows := [][]string{
		tensorRow("Lvv", res.Lvv),
		tensorRow("Lss", res.Lss),
		tensorRow("Lsv", res.Lsv),
		tensorRow("Lvv1", res.Lvv1),
		tensorRow("L0ss", res.L0ss),
	}
	if err = renderTable(w, tensorHeader, rows, nil); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "regime %s, exchange ratio %s\n", res.Regime, formatFloat(res.Ratio))

	return err
}

// persist writes vm to st under the document hash; a nil store is a no-op.
func persist(st *store.Store, doc *config.Document, vm *transport.VacancyMediated) error {
	if st == nil {
		return nil
	}
	hash, err := doc.Hash()
	if err != nil {
		return err
	}
	_, err = st.Put(hash, vm.Snapshot())

	return err
}

func runInterstitial(w io.Writer, doc *config.Document) error {
	net, err := doc.Network(globalLogger)
	if err != nil {
		return err
	}
	d, err := transport.NewInterstitial(net, transportOptions()...)
	if err != nil {
		return err
	}
	pre, betaene, preT, betaeneT, err := doc.Sites.Scaled()
	if err != nil {
		return err
	}
	prob, err := d.SiteProb(pre, betaene)
	if err != nil {
		return err
	}
	dd, de, err := d.DiffusivityBarrier(pre, betaene, preT, betaeneT)
	if err != nil {
		return err
	}

	rows := [][]string{tensorRow("D", dd), tensorRow("DE", de)}
	if err = renderTable(w, tensorHeader, rows, nil); err != nil {
		return err
	}
	if doc.Sites.HasDipoles() {
		dipole, dipoleT, err := doc.Sites.ScaledDipoles()
		if err != nil {
			return err
		}
		_, dp, err := d.ElastoDiffusion(pre, betaene, dipole, preT, betaeneT, dipoleT)
		if err != nil {
			return err
		}
		if err = renderTable(w, elastoHeader, elastoRows(dp), nil); err != nil {
			return err
		}
	}
	for i, p := range prob {
		if _, err = fmt.Fprintf(w, "site %d probability %s\n", i, formatFloat(p)); err != nil {
			return err
		}
	}

	return nil
}
