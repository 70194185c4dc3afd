// Package tx defines the ledger's transaction record format and the
// duplicate-detection fingerprints derived from submitted operations.
package tx

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/meridian-chain/meridian-ledger/pkg/types"
)

// Op identifies the kind of a recorded operation.
type Op uint8

// Operation kinds. The numeric values are part of the persisted record
// format and never change.
const (
	OpTransfer Op = iota
	OpMint
	OpBurn
	OpApprove
	OpTransferFrom
)

// String returns a human-readable operation name.
func (op Op) String() string {
	switch op {
	case OpTransfer:
		return "transfer"
	case OpMint:
		return "mint"
	case OpBurn:
		return "burn"
	case OpApprove:
		return "approve"
	case OpTransferFrom:
		return "transfer_from"
	default:
		return fmt.Sprintf("op(%d)", uint8(op))
	}
}

// Valid reports whether op is a known operation kind.
func (op Op) Valid() bool {
	return op <= OpTransferFrom
}

// Record layout constants.
const (
	// MemoSize is the fixed memo field width; longer memos are truncated
	// before they reach the record.
	MemoSize = 32

	// RecordSize is the exact length of every encoded record.
	RecordSize = 320
)

// Field offsets within an encoded record.
const (
	offOp        = 0
	offFlags     = 1
	offTokenID   = 2
	offFrom      = offTokenID + types.HashSize
	offTo        = offFrom + types.AccountKeySize
	offSpender   = offTo + types.AccountKeySize
	offAmount    = offSpender + types.AccountKeySize
	offFee       = offAmount + types.U128Size
	offTimestamp = offFee + types.U128Size
	offMemo      = offTimestamp + 8
	offReserved  = offMemo + MemoSize
)

// Record codec errors.
var (
	ErrBadRecordLen = errors.New("record length mismatch")
	ErrBadOp        = errors.New("unknown operation kind")
	ErrBadRecord    = errors.New("malformed record")
)

// StoredTx is one immutable entry in the transaction log. Account fields
// hold canonical keys so history readers can recover full accounts without
// auxiliary lookups. Spender is all-zero except for approve and transfer_from records.
type StoredTx struct {
	Op        Op
	TokenID   types.TokenID
	From      [types.AccountKeySize]byte
	To        [types.AccountKeySize]byte
	Spender   [types.AccountKeySize]byte
	Amount    *uint256.Int
	Fee       *uint256.Int
	Timestamp uint64 // nanoseconds since the Unix epoch
	Memo      [MemoSize]byte
}

// Encode serializes the record into its fixed 320-byte form. All integers
// are big-endian; the flags byte and reserved tail are zero.
func (t *StoredTx) Encode() ([]byte, error) {
	if !t.Op.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrBadOp, uint8(t.Op))
	}
	buf := make([]byte, RecordSize)
	buf[offOp] = byte(t.Op)
	copy(buf[offTokenID:], t.TokenID[:])
	copy(buf[offFrom:], t.From[:])
	copy(buf[offTo:], t.To[:])
	copy(buf[offSpender:], t.Spender[:])
	if err := types.PutU128(buf[offAmount:], t.Amount); err != nil {
		return nil, fmt.Errorf("encode amount: %w", err)
	}
	if err := types.PutU128(buf[offFee:], t.Fee); err != nil {
		return nil, fmt.Errorf("encode fee: %w", err)
	}
	binary.BigEndian.PutUint64(buf[offTimestamp:], t.Timestamp)
	copy(buf[offMemo:], t.Memo[:])
	return buf, nil
}

// Decode parses a fixed 320-byte record. The flags byte and reserved tail
// must be zero so every record re-encodes bit-identically.
func Decode(record []byte) (*StoredTx, error) {
	if len(record) != RecordSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrBadRecordLen, len(record), RecordSize)
	}
	op := Op(record[offOp])
	if !op.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrBadOp, record[offOp])
	}
	if record[offFlags] != 0 {
		return nil, fmt.Errorf("%w: nonzero flags", ErrBadRecord)
	}
	for _, b := range record[offReserved:] {
		if b != 0 {
			return nil, fmt.Errorf("%w: nonzero reserved bytes", ErrBadRecord)
		}
	}

	t := &StoredTx{Op: op, Timestamp: binary.BigEndian.Uint64(record[offTimestamp:])}
	copy(t.TokenID[:], record[offTokenID:])
	copy(t.From[:], record[offFrom:])
	copy(t.To[:], record[offTo:])
	copy(t.Spender[:], record[offSpender:])
	var err error
	if t.Amount, err = types.U128(record[offAmount:]); err != nil {
		return nil, fmt.Errorf("decode amount: %w", err)
	}
	if t.Fee, err = types.U128(record[offFee:]); err != nil {
		return nil, fmt.Errorf("decode fee: %w", err)
	}
	copy(t.Memo[:], record[offMemo:])
	return t, nil
}

// SetMemo copies memo into the fixed field, left-justified and
// zero-padded. Memos longer than MemoSize must be truncated by the caller
// before they get here.
func (t *StoredTx) SetMemo(memo []byte) error {
	if len(memo) > MemoSize {
		return fmt.Errorf("%w: memo %d bytes", ErrBadRecord, len(memo))
	}
	t.Memo = [MemoSize]byte{}
	copy(t.Memo[:], memo)
	return nil
}
