package types

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// U128Size is the length of a serialized unsigned 128-bit integer.
const U128Size = 16

// ErrU128Range reports a value that does not fit in 128 bits.
var ErrU128Range = errors.New("value exceeds 128 bits")

// MaxU128 returns the largest representable 128-bit value.
func MaxU128() *uint256.Int {
	max := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	return max.SubUint64(max, 1)
}

// FitsU128 reports whether v is within 128-bit range.
func FitsU128(v *uint256.Int) bool {
	return v.BitLen() <= 128
}

// PutU128 writes v big-endian into dst, which must be at least U128Size
// bytes. Values above 128 bits are rejected.
func PutU128(dst []byte, v *uint256.Int) error {
	if len(dst) < U128Size {
		return fmt.Errorf("u128 buffer too small: %d bytes", len(dst))
	}
	if !FitsU128(v) {
		return ErrU128Range
	}
	b := v.Bytes32()
	copy(dst[:U128Size], b[U128Size:])
	return nil
}

// U128 reads a big-endian 128-bit value from the first U128Size bytes
// of src.
func U128(src []byte) (*uint256.Int, error) {
	if len(src) < U128Size {
		return nil, fmt.Errorf("u128 buffer too small: %d bytes", len(src))
	}
	var b [32]byte
	copy(b[U128Size:], src[:U128Size])
	return new(uint256.Int).SetBytes32(b[:]), nil
}

// ParseU128 parses a decimal string into a 128-bit value.
func ParseU128(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal amount %q: %w", s, err)
	}
	if !FitsU128(v) {
		return nil, ErrU128Range
	}
	return v, nil
}
