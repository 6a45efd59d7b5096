// SPDX-License-Identifier: MIT

package vstar

import (
	"errors"
	"fmt"
)

var (
	// ErrNilStarSet is returned when no star set is given.
	ErrNilStarSet = errors.New("vstar: nil star set")

	// ErrJumpType is returned when a jump class refers to an omega0 class
	// outside [0, nOmega0).
	ErrJumpType = errors.New("vstar: jump type out of range")
)

const (
	opGenerate = "Generate"
	opGF       = "GFExpansion"
	opRates    = "RateExpansion"
	opBias     = "BiasExpansion"
	opBare     = "BareExpansion"
)

func vstarErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
