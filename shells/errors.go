// SPDX-License-Identifier: MIT

package shells

import (
	"errors"
	"fmt"
)

var (
	// ErrDisconnected is returned when the kinetic shell splits into pieces
	// that no jump connects, which would make the bias system singular.
	ErrDisconnected = errors.New("shells: kinetic shell is not connected by the jump network")

	// ErrNotVacancy is returned for networks over oriented defects; the
	// pair-state algebra needs vacancies.
	ErrNotVacancy = errors.New("shells: pair-state shells need a vacancy network")

	// ErrNilNetwork is returned for a nil jump network.
	ErrNilNetwork = errors.New("shells: nil jump network")

	// ErrBadShells is returned for a negative shell count.
	ErrBadShells = errors.New("shells: shell count must be non-negative")

	// ErrGFRange is returned when an endpoint difference is missing from the
	// GF star set.
	ErrGFRange = errors.New("shells: GF star set does not cover a state difference")
)

const (
	opGenerate  = "Generate"
	opAdd       = "Add"
	opDiff      = "Diff"
	opBuild     = "Build"
	opConnected = "CheckConnected"
)

func shellsErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
