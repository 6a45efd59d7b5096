// SPDX-License-Identifier: MIT

package store

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/sohamch/Onsager/transport"
)

// BlobVersion is the layout version of blobs written by Put.
const BlobVersion = 1

const (
	blobPrefix   = "calc/"
	headerPrefix = "head/"
)

// Header identifies one stored calculator.
type Header struct {
	ID        uuid.UUID
	Version   int
	CreatedAt time.Time
	DocHash   string
}

// Blob is a stored calculator.
type Blob struct {
	Header   Header
	Snapshot transport.Snapshot
}

// Store is a calculator store. It is safe for concurrent use.
type Store struct {
	db  *badger.DB
	log *slog.Logger
	now func() time.Time
}

// Option configures Open.
type Option func(*Store)

// WithLogger routes store and badger logs to l; nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now for creation times.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// badgerLogger adapts slog to badger's logger; badger's Info chatter goes
// to Debug.
type badgerLogger struct {
	log *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

// Open opens the store in directory path, creating it if needed. An empty
// path opens an in-memory store.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{log: slog.Default(), now: time.Now}
	for _, fn := range opts {
		if fn != nil {
			fn(s)
		}
	}
	var bo badger.Options
	if path == "" {
		bo = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o750); err != nil {
			return nil, storeErrorf(opOpen, err)
		}
		bo = badger.DefaultOptions(path)
	}
	bo = bo.WithNumVersionsToKeep(1).WithLogger(badgerLogger{log: s.log})
	db, err := badger.Open(bo)
	if err != nil {
		return nil, storeErrorf(opOpen, err)
	}
	s.db = db

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Put stores snap under hash, replacing any earlier calculator, and
// returns the new header.
//
// Errors: ErrEmptyHash, gob and badger errors.
func (s *Store) Put(hash string, snap transport.Snapshot) (Header, error) {
	if hash == "" {
		return Header{}, storeErrorf(opPut, ErrEmptyHash)
	}
	start := time.Now()
	h := Header{ID: uuid.New(), Version: BlobVersion, CreatedAt: s.now().UTC(), DocHash: hash}
	blob, err := encode(Blob{Header: h, Snapshot: snap})
	if err != nil {
		return Header{}, storeErrorf(opPut, err)
	}
	head, err := encode(h)
	if err != nil {
		return Header{}, storeErrorf(opPut, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(blobPrefix+hash), blob); err != nil {
			return err
		}

		return txn.Set([]byte(headerPrefix+hash), head)
	})
	if err != nil {
		return Header{}, storeErrorf(opPut, err)
	}
	s.log.Info("calculator stored", "hash", hash, "id", h.ID, "bytes", len(blob), "elapsed", time.Since(start))

	return h, nil
}

// Get returns the blob stored under hash.
//
// Errors: ErrNotFound, ErrVersion, gob and badger errors.
func (s *Store) Get(hash string) (Blob, error) {
	var b Blob
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(blobPrefix + hash))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&b)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Blob{}, storeErrorf(opGet, fmt.Errorf("%w: %s", ErrNotFound, hash))
	}
	if err != nil {
		return Blob{}, storeErrorf(opGet, err)
	}
	if b.Header.Version != BlobVersion {
		return Blob{}, storeErrorf(opGet, fmt.Errorf("%w: %d", ErrVersion, b.Header.Version))
	}

	return b, nil
}

// Load rebuilds the calculator stored under hash. opts are passed to
// transport.Restore.
func (s *Store) Load(hash string, opts ...transport.Option) (*transport.VacancyMediated, Header, error) {
	b, err := s.Get(hash)
	if err != nil {
		return nil, Header{}, err
	}
	vm, err := transport.Restore(b.Snapshot, opts...)
	if err != nil {
		return nil, Header{}, storeErrorf(opLoad, err)
	}

	return vm, b.Header, nil
}

// List returns every stored header, newest first.
func (s *Store) List() ([]Header, error) {
	var out []Header
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(headerPrefix), PrefetchValues: true, PrefetchSize: 16})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var h Header
			err := it.Item().Value(func(val []byte) error {
				return gob.NewDecoder(bytes.NewReader(val)).Decode(&h)
			})
			if err != nil {
				return err
			}
			out = append(out, h)
		}

		return nil
	})
	if err != nil {
		return nil, storeErrorf(opList, err)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out, nil
}

// Delete removes the calculator stored under hash.
//
// Errors: ErrNotFound.
func (s *Store) Delete(hash string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(headerPrefix + hash)); err != nil {
			return err
		}
		if err := txn.Delete([]byte(blobPrefix + hash)); err != nil {
			return err
		}

		return txn.Delete([]byte(headerPrefix + hash))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return storeErrorf(opDelete, fmt.Errorf("%w: %s", ErrNotFound, hash))
	}
	if err != nil {
		return storeErrorf(opDelete, err)
	}
	s.log.Info("calculator deleted", "hash", hash)

	return nil
}
