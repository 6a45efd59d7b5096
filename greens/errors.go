// SPDX-License-Identifier: MIT

package greens

import (
	"errors"
	"fmt"
)

var (
	// ErrNilNetwork is returned for a nil jump network.
	ErrNilNetwork = errors.New("greens: nil jump network")

	// ErrNotVacancy is returned for networks over oriented defects.
	ErrNotVacancy = errors.New("greens: Green's function needs a vacancy network")

	// ErrLength is returned when a rate array does not match the number of
	// Wyckoff sets or jump classes.
	ErrLength = errors.New("greens: rate array length mismatch")

	// ErrNonFinite is returned for NaN or infinite rates.
	ErrNonFinite = errors.New("greens: non-finite rate")

	// ErrNoRates is returned when evaluating before SetRates.
	ErrNoRates = errors.New("greens: rates not set")

	// ErrDisconnected is returned when the jump network does not connect
	// every site or does not diffuse in every direction.
	ErrDisconnected = errors.New("greens: jump network does not percolate")

	// ErrSite is returned for a site index out of range.
	ErrSite = errors.New("greens: site index out of range")
)

const (
	opNew      = "New"
	opSetRates = "SetRates"
	opEval     = "Eval"
)

func greensErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
