// SPDX-License-Identifier: MIT

package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrLength is returned when an input array does not have one entry per
	// symmetry class of its kind.
	ErrLength = errors.New("transport: input length does not match class count")

	// ErrNonFinite is returned for NaN or infinite free energies.
	ErrNonFinite = errors.New("transport: non-finite input")

	// ErrIllConditioned is returned when the bias system is singular; it
	// wraps matrix.ErrSingular.
	ErrIllConditioned = errors.New("transport: bias system is ill-conditioned")

	// ErrRateRatioOutOfRange is returned when a rate underflows, overflows,
	// or is not a number, so neither the general nor the asymptotic form
	// applies.
	ErrRateRatioOutOfRange = errors.New("transport: rate ratio outside every valid range")

	// ErrUnsupportedDefect is returned for oriented (dumbbell) networks; the
	// vacancy-mediated solver needs vacancies.
	ErrUnsupportedDefect = errors.New("transport: vacancy-mediated solver needs a vacancy network")

	// ErrNilNetwork is returned for a nil jump network.
	ErrNilNetwork = errors.New("transport: nil jump network")

	// ErrNoThermo is returned by InteractList and OmegaList before any
	// thermodynamic shell exists.
	ErrNoThermo = errors.New("transport: thermodynamic range not set")

	// ErrFiveFreq is returned for a five-frequency index other than 1 or 2.
	ErrFiveFreq = errors.New("transport: five-frequency index must be 1 or 2")

	// ErrBadTemperature is returned for kT <= 0.
	ErrBadTemperature = errors.New("transport: kT must be positive")

	// ErrSnapshot is returned when a snapshot does not match its network.
	ErrSnapshot = errors.New("transport: inconsistent snapshot")
)

const (
	opNew         = "New"
	opRegenerate  = "Regenerate"
	opLij         = "Lij"
	opInteract    = "InteractList"
	opOmega       = "OmegaList"
	opPreEne      = "PreEne2BetaFree"
	opLIMB        = "MakeLIMBPreEne"
	opRestore     = "Restore"
	opInterstit   = "Interstitial"
	opDiffusivity = "Diffusivity"
	opElasto      = "ElastoDiffusion"
)

func transportErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
