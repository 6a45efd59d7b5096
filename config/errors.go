// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalid is returned for a document that cannot be decoded or fails
	// validation.
	ErrInvalid = errors.New("config: invalid document")

	// ErrNoRates is returned when rates are requested from a document that
	// carries none for its diffuser.
	ErrNoRates = errors.New("config: document has no rates")
)

const (
	opDecode  = "Decode"
	opEncode  = "Encode"
	opLoad    = "Load"
	opNetwork = "Network"
	opRates   = "Rates"
	opHash    = "Hash"
)

func configErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
