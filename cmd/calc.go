// SPDX-License-Identifier: MIT

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"

	"github.com/sohamch/Onsager/config"
	"github.com/sohamch/Onsager/crystal"
	"github.com/sohamch/Onsager/store"
	"github.com/sohamch/Onsager/transport"
)

var (
	errNotVacancy     = errors.New("cmd: document does not describe a vacancy diffuser")
	errNoStore        = errors.New("cmd: store path not set")
	errUnknownRegime  = errors.New("cmd: unknown regime")
	errUnknownStarSet = errors.New("cmd: unknown star set")
	errUnknownLattice = errors.New("cmd: unknown stock lattice")
)

// openStore opens the configured store, or returns nil when no path is set.
func openStore() (*store.Store, error) {
	path := viper.GetString(storePathKey)
	if path == "" {
		return nil, nil
	}

	return store.Open(path, store.WithLogger(globalLogger))
}

// vacancyCalculator restores the calculator for doc from st when it holds
// one, and builds it otherwise. A stale blob is rebuilt.
func vacancyCalculator(ctx context.Context, doc *config.Document, st *store.Store) (*transport.VacancyMediated, error) {
	if doc.Diffuser.Kind != config.KindVacancy {
		return nil, errNotVacancy
	}
	if st != nil {
		hash, err := doc.Hash()
		if err != nil {
			return nil, err
		}
		vm, h, err := st.Load(hash, transportOptions()...)
		switch {
		case err == nil:
			globalLogger.Info("calculator reused", "hash", hash, "id", h.ID, "created", h.CreatedAt)
			return vm, nil
		case errors.Is(err, store.ErrVersion):
			globalLogger.Warn("stale calculator rebuilt", "hash", hash, "error", err)
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
	}

	return buildVacancy(ctx, doc)
}

func buildVacancy(ctx context.Context, doc *config.Document) (*transport.VacancyMediated, error) {
	if doc.Diffuser.Kind != config.KindVacancy {
		return nil, errNotVacancy
	}
	net, err := doc.Network(globalLogger)
	if err != nil {
		return nil, err
	}

	return transport.New(ctx, net, doc.Diffuser.NThermo, transportOptions()...)
}

func parseRegime(s string) (transport.Regime, error) {
	for r := transport.Auto; r <= transport.SmallExchange; r++ {
		if r.String() == s {
			return r, nil
		}
	}

	return transport.Auto, fmt.Errorf("%w: %q", errUnknownRegime, s)
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', 8, 64)
}

var tensorHeader = []string{"Tensor", "xx", "yy", "zz", "yz", "xz", "xy"}

// tensorRow lists the Voigt-ordered entries of a symmetric tensor.
func tensorRow(name string, m crystal.Mat3) []string {
	return []string{
		name,
		formatFloat(m[0][0]), formatFloat(m[1][1]), formatFloat(m[2][2]),
		formatFloat(m[1][2]), formatFloat(m[0][2]), formatFloat(m[0][1]),
	}
}

var (
	voigt        = [6][2]int{{0, 0}, {1, 1}, {2, 2}, {1, 2}, {0, 2}, {0, 1}}
	elastoHeader = []string{"dD/dε", "xx", "yy", "zz", "yz", "xz", "xy"}
)

// elastoRows lists dD_ij/dε_kl with ij down the rows and kl across, both
// in Voigt order.
func elastoRows(dp transport.Tensor4) [][]string {
	rows := make([][]string, 0, len(voigt))
	for k, ij := range voigt {
		row := []string{"dD" + tensorHeader[1+k]}
		for _, kl := range voigt {
			row = append(row, formatFloat(dp[ij[0]][ij[1]][kl[0]][kl[1]]))
		}
		rows = append(rows, row)
	}

	return rows
}

func renderTable(w io.Writer, header []string, rows [][]string, footer []string) error {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	align := make([]int, len(header))
	for i := range align {
		align[i] = tablewriter.ALIGN_RIGHT
	}
	align[0] = tablewriter.ALIGN_LEFT
	table.SetColumnAlignment(align)

	table.AppendBulk(rows)
	if len(footer) > 0 {
		table.SetFooter(footer)
	}

	table.Render()

	_, err := w.Write(tableBuffer.Bytes())

	return err
}
