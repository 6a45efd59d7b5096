// SPDX-License-Identifier: MIT

package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for a hash with no stored calculator.
	ErrNotFound = errors.New("store: calculator not found")

	// ErrVersion is returned for a blob written by an incompatible version.
	ErrVersion = errors.New("store: unsupported blob version")

	// ErrEmptyHash is returned for an empty document hash.
	ErrEmptyHash = errors.New("store: empty document hash")
)

const (
	opOpen   = "Open"
	opPut    = "Put"
	opGet    = "Get"
	opList   = "List"
	opDelete = "Delete"
	opLoad   = "Load"
)

func storeErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
