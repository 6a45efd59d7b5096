// SPDX-License-Identifier: MIT

package crystal

import (
	"errors"
	"fmt"
)

var (
	// ErrBadLattice indicates a singular, non-finite or wrongly sized lattice.
	ErrBadLattice = errors.New("crystal: bad lattice")

	// ErrBadBasis indicates an empty chemistry, duplicate sites, or a basis
	// position of the wrong dimension.
	ErrBadBasis = errors.New("crystal: bad basis")

	// ErrBadDimension is returned for dimensions other than 2 or 3.
	ErrBadDimension = errors.New("crystal: dimension must be 2 or 3")

	// ErrChemistry is returned for an out-of-range chemistry or site index.
	ErrChemistry = errors.New("crystal: chemistry or site index out of range")
)

const (
	opNew      = "New"
	opGroup    = "Group"
	opSiteList = "SiteList"
)

func crystalErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
