package stable

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/meridian-chain/meridian-ledger/internal/storage"
)

// Log errors.
var (
	ErrRecordSize      = errors.New("record size mismatch")
	ErrIndexOutOfRange = errors.New("log index out of range")
)

var recordPrefix = []byte("r/")

// Log is an append-only log of fixed-size records. Records are addressed
// by a dense uint64 index with O(1) lookups.
type Log struct {
	db      storage.DB
	recSize int
}

// NewLog opens a log over the given region. Every record must be exactly
// recSize bytes.
func NewLog(db storage.DB, recSize int) *Log {
	return &Log{db: db, recSize: recSize}
}

// RecordSize returns the fixed record size in bytes.
func (l *Log) RecordSize() int {
	return l.recSize
}

func recordKey(index uint64) []byte {
	out := make([]byte, len(recordPrefix)+8)
	copy(out, recordPrefix)
	binary.BigEndian.PutUint64(out[len(recordPrefix):], index)
	return out
}

// Len returns the number of records appended so far.
func (l *Log) Len() (uint64, error) {
	raw, err := l.db.Get(keyCount)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("corrupt log length: %d bytes", len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}

// Append adds a record to the end of the log and returns its index.
func (l *Log) Append(record []byte) (uint64, error) {
	if len(record) != l.recSize {
		return 0, fmt.Errorf("%w: got %d bytes, want %d", ErrRecordSize, len(record), l.recSize)
	}
	index, err := l.Len()
	if err != nil {
		return 0, err
	}
	if err := l.db.Put(recordKey(index), record); err != nil {
		return 0, err
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], index+1)
	if err := l.db.Put(keyCount, buf[:]); err != nil {
		return 0, err
	}
	return index, nil
}

// Get returns the record at index.
func (l *Log) Get(index uint64) ([]byte, error) {
	record, err := l.db.Get(recordKey(index))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	if err != nil {
		return nil, err
	}
	if len(record) != l.recSize {
		return nil, fmt.Errorf("%w: record %d is %d bytes", ErrRecordSize, index, len(record))
	}
	return record, nil
}
