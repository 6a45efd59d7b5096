// SPDX-License-Identifier: MIT

package jumpnet

import (
	"errors"
	"fmt"
)

var (
	// ErrCutoff is returned for a non-positive or non-finite cutoff.
	ErrCutoff = errors.New("jumpnet: cutoff must be positive and finite")

	// ErrSelection is returned by Regenerate for an out-of-range or repeated
	// class index.
	ErrSelection = errors.New("jumpnet: bad class selection")

	// ErrNilContainer is returned when no container is supplied.
	ErrNilContainer = errors.New("jumpnet: nil container")
)

const (
	opBuild      = "Build"
	opRegenerate = "Regenerate"
	opRestore    = "Restore"
)

func jumpnetErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
