// Package stable provides persistent containers layered over storage
// regions: an ordered map, an append-only fixed-record log, and a
// single-value cell. All state lives in the backing DB, so a container
// rebuilt over the same region sees the same contents.
package stable

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/meridian-chain/meridian-ledger/internal/storage"
)

// Key layout inside a region. Entries live under their own prefix, so range
// scans over "e/" never touch bookkeeping.
var (
	keyCount    = []byte("n")
	entryPrefix = []byte("e/")
)

// Map is an ordered byte-key map over a storage region. Iteration follows
// ascending byte order of the keys, so structured keys keep related
// entries contiguous.
type Map struct {
	db storage.DB
}

// NewMap opens a map over the given region.
func NewMap(db storage.DB) *Map {
	return &Map{db: db}
}

func entryKey(key []byte) []byte {
	out := make([]byte, len(entryPrefix)+len(key))
	copy(out, entryPrefix)
	copy(out[len(entryPrefix):], key)
	return out
}

// Get retrieves the value for key. Returns storage.ErrKeyNotFound if the
// key is absent.
func (m *Map) Get(key []byte) ([]byte, error) {
	return m.db.Get(entryKey(key))
}

// Has reports whether key is present.
func (m *Map) Has(key []byte) (bool, error) {
	return m.db.Has(entryKey(key))
}

// Insert stores key -> value, replacing any previous value, and keeps the
// entry count current.
func (m *Map) Insert(key, value []byte) error {
	ek := entryKey(key)
	exists, err := m.db.Has(ek)
	if err != nil {
		return err
	}
	if err := m.db.Put(ek, value); err != nil {
		return err
	}
	if !exists {
		return m.bumpCount(1)
	}
	return nil
}

// Remove deletes key if present. Removing an absent key is a no-op.
func (m *Map) Remove(key []byte) error {
	ek := entryKey(key)
	exists, err := m.db.Has(ek)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if err := m.db.Delete(ek); err != nil {
		return err
	}
	return m.bumpCount(-1)
}

// Len returns the number of entries.
func (m *Map) Len() (uint64, error) {
	raw, err := m.db.Get(keyCount)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("corrupt map count: %d bytes", len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (m *Map) bumpCount(delta int64) error {
	n, err := m.Len()
	if err != nil {
		return err
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(int64(n)+delta))
	return m.db.Put(keyCount, buf[:])
}

// ForEachPrefix visits every entry whose key starts with prefix, in
// ascending byte order. The callback's error stops iteration and is
// returned.
func (m *Map) ForEachPrefix(prefix []byte, fn func(key, value []byte) error) error {
	return m.db.ForEach(entryKey(prefix), func(key, value []byte) error {
		return fn(key[len(entryPrefix):], value)
	})
}

// Range visits entries with from <= key < to in ascending byte order.
// A nil to means no upper bound.
func (m *Map) Range(from, to []byte, fn func(key, value []byte) error) error {
	errStop := errors.New("range done")
	err := m.db.ForEach(entryPrefix, func(key, value []byte) error {
		k := key[len(entryPrefix):]
		if bytes.Compare(k, from) < 0 {
			return nil
		}
		if to != nil && bytes.Compare(k, to) >= 0 {
			return errStop
		}
		return fn(k, value)
	})
	if errors.Is(err, errStop) {
		return nil
	}
	return err
}
