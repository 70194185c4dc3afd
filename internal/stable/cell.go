package stable

import (
	"errors"

	"github.com/meridian-chain/meridian-ledger/internal/storage"
)

var keyValue = []byte("v")

// Cell holds a single persisted value within a region.
type Cell struct {
	db storage.DB
}

// NewCell opens a cell over the given region.
func NewCell(db storage.DB) *Cell {
	return &Cell{db: db}
}

// Get returns the stored value, or (nil, false) when the cell is empty.
func (c *Cell) Get() ([]byte, bool, error) {
	v, err := c.db.Get(keyValue)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set replaces the stored value.
func (c *Cell) Set(value []byte) error {
	return c.db.Put(keyValue, value)
}

// Clear empties the cell.
func (c *Cell) Clear() error {
	return c.db.Delete(keyValue)
}
