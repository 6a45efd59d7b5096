// SPDX-License-Identifier: MIT

// Package store persists vacancy-mediated calculators in an embedded
// badger database, keyed by the hash of the document that built them.
//
// Each record is a gob-encoded Blob: a Header (random id, blob version,
// creation time, document hash) and the calculator Snapshot. Headers are
// also written under their own key so that List never decodes a topology.
// Load rebuilds a working calculator with transport.Restore.
package store
