// SPDX-License-Identifier: MIT

// Package config reads and writes the YAML input document of a calculation:
// the crystal, the diffuser built on it, and optionally the rates to solve
// for.
//
// A document is validated in full before anything expensive runs. Shape
// and range errors come from struct tags (go-playground/validator);
// cross-field rules (a vacancy diffuser takes vacancy rates, an
// interstitial one takes site rates) from a struct-level rule. Every
// failure wraps ErrInvalid.
//
// Example:
//
//	version: 1
//	crystal:
//	  stock: fcc
//	diffuser:
//	  kind: vacancy
//	  cutoff: 0.75
//	  nthermo: 1
//	vacancy:
//	  kT: 1
//	  mode: tracer
//	  preene:
//	    preT0: [1]
//	    eneT0: [0]
//
// Hash identifies the rate-independent part of a document (crystal and
// diffuser); it keys persisted calculators in the store package.
package config
