package storage

import (
	"errors"
	"fmt"
)

// Region IDs partition the underlying database into independent keyspaces.
// IDs are permanent: once assigned to a structure they are never repurposed,
// so state written by an older build reads back identically.
const (
	RegionTokens       uint8 = 0
	RegionBalances     uint8 = 1
	RegionControllers  uint8 = 2
	RegionTxLog        uint8 = 3
	RegionTxDedup      uint8 = 6
	RegionTxCounter    uint8 = 9
	RegionAllowances   uint8 = 10
	RegionApproveDedup uint8 = 12
)

var activeRegions = map[uint8]bool{
	RegionTokens:       true,
	RegionBalances:     true,
	RegionControllers:  true,
	RegionTxLog:        true,
	RegionTxCounter:    true,
	RegionTxDedup:      true,
	RegionAllowances:   true,
	RegionApproveDedup: true,
}

// Region manager errors.
var (
	ErrRegionReserved = errors.New("region id is reserved")
	ErrRegionOpen     = errors.New("region already open")
)

// RegionManager hands out up to 256 independent regions of a single DB,
// each addressed by a one-byte ID and namespaced under a one-byte prefix.
type RegionManager struct {
	db   DB
	open map[uint8]*PrefixDB
}

// NewRegionManager creates a region manager over the given database.
func NewRegionManager(db DB) *RegionManager {
	return &RegionManager{
		db:   db,
		open: make(map[uint8]*PrefixDB),
	}
}

// Open returns the region with the given ID. Reserved IDs are rejected, and
// each ID can be opened at most once per manager.
func (m *RegionManager) Open(id uint8) (*PrefixDB, error) {
	if !activeRegions[id] {
		return nil, fmt.Errorf("region %d: %w", id, ErrRegionReserved)
	}
	if _, ok := m.open[id]; ok {
		return nil, fmt.Errorf("region %d: %w", id, ErrRegionOpen)
	}
	r := NewPrefixDB(m.db, []byte{id})
	m.open[id] = r
	return r, nil
}

// NewBatch returns a batch over the underlying database, so writes to
// multiple regions commit as one unit.
func (m *RegionManager) NewBatch() Batch {
	if b, ok := m.db.(Batcher); ok {
		return b.NewBatch()
	}
	return NewPrefixDB(m.db, nil).NewBatch()
}

// Close closes the underlying database.
func (m *RegionManager) Close() error {
	return m.db.Close()
}
