// SPDX-License-Identifier: MIT

package states

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompatible is returned when pair-state arithmetic is applied to
	// endpoints that do not match, or to oriented (non-vacancy) defects.
	ErrIncompatible = errors.New("states: incompatible pair states")

	// ErrOrientation is returned for an orientation family that does not
	// fit the crystal (unknown Wyckoff set, wrong dimension).
	ErrOrientation = errors.New("states: bad orientation family")

	// ErrNotClosed is returned by Restore when the stored states are not
	// closed under the group or the star table is inconsistent.
	ErrNotClosed = errors.New("states: star set not closed under symmetry")

	// ErrUnknownState is returned when a state is not in the set.
	ErrUnknownState = errors.New("states: unknown state")
)

const (
	opNewContainer = "NewContainer"
	opAdd          = "Add"
	opXor          = "Xor"
	opStarSet      = "NewStarSet"
	opExtend       = "Extend"
	opRestore      = "Restore"
)

func statesErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
