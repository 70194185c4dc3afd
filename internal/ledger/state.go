package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/meridian-chain/meridian-ledger/internal/storage"
	"github.com/meridian-chain/meridian-ledger/pkg/types"
)

func bePutUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func beUint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// balanceKey packs token id and account key so one token's holders form a
// contiguous range.
func balanceKey(token types.TokenID, account [types.AccountKeySize]byte) []byte {
	out := make([]byte, types.HashSize+types.AccountKeySize)
	copy(out, token[:])
	copy(out[types.HashSize:], account[:])
	return out
}

// allowanceKey packs token id, owner key, and spender key.
func allowanceKey(token types.TokenID, owner, spender [types.AccountKeySize]byte) []byte {
	out := make([]byte, types.HashSize+2*types.AccountKeySize)
	copy(out, token[:])
	copy(out[types.HashSize:], owner[:])
	copy(out[types.HashSize+types.AccountKeySize:], spender[:])
	return out
}

// balance reads an account's balance for a token. Missing entries read as
// zero.
func (v *view) balance(token types.TokenID, account [types.AccountKeySize]byte) (*uint256.Int, error) {
	raw, err := v.balances.Get(balanceKey(token, account))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return uint256.NewInt(0), nil
	}
	if err != nil {
		return nil, err
	}
	return types.U128(raw)
}

// setBalance writes an account's balance, removing the entry at zero so
// holder counts stay exact.
func (v *view) setBalance(token types.TokenID, account [types.AccountKeySize]byte, amount *uint256.Int) error {
	key := balanceKey(token, account)
	if amount.IsZero() {
		return v.balances.Remove(key)
	}
	buf := make([]byte, types.U128Size)
	if err := types.PutU128(buf, amount); err != nil {
		return err
	}
	return v.balances.Insert(key, buf)
}

// allowance is one approval: the remaining amount and an optional expiry
// (0 = never expires).
type allowance struct {
	Amount    *uint256.Int
	ExpiresAt uint64
}

// expired reports whether the approval is past its expiry at the given
// ledger time.
func (a allowance) expired(now uint64) bool {
	return a.ExpiresAt != 0 && a.ExpiresAt < now
}

const allowanceValueSize = types.U128Size + 8

func encodeAllowance(a allowance) ([]byte, error) {
	buf := make([]byte, allowanceValueSize)
	if err := types.PutU128(buf, a.Amount); err != nil {
		return nil, err
	}
	binary.BigEndian.PutUint64(buf[types.U128Size:], a.ExpiresAt)
	return buf, nil
}

func decodeAllowance(raw []byte) (allowance, error) {
	if len(raw) != allowanceValueSize {
		return allowance{}, fmt.Errorf("corrupt allowance value: %d bytes", len(raw))
	}
	amount, err := types.U128(raw)
	if err != nil {
		return allowance{}, err
	}
	return allowance{Amount: amount, ExpiresAt: binary.BigEndian.Uint64(raw[types.U128Size:])}, nil
}

// getAllowance reads an approval. The second return is false when no
// entry exists.
func (v *view) getAllowance(token types.TokenID, owner, spender [types.AccountKeySize]byte) (allowance, bool, error) {
	raw, err := v.allowances.Get(allowanceKey(token, owner, spender))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return allowance{}, false, nil
	}
	if err != nil {
		return allowance{}, false, err
	}
	a, err := decodeAllowance(raw)
	if err != nil {
		return allowance{}, false, err
	}
	return a, true, nil
}

func (v *view) setAllowance(token types.TokenID, owner, spender [types.AccountKeySize]byte, a allowance) error {
	raw, err := encodeAllowance(a)
	if err != nil {
		return err
	}
	return v.allowances.Insert(allowanceKey(token, owner, spender), raw)
}

func (v *view) removeAllowance(token types.TokenID, owner, spender [types.AccountKeySize]byte) error {
	return v.allowances.Remove(allowanceKey(token, owner, spender))
}

// dedupEntry records which transaction a fingerprint resolved to and when.
type dedupEntry struct {
	TxID       uint64
	RecordedAt uint64
}

const dedupValueSize = 16

func encodeDedup(e dedupEntry) []byte {
	buf := make([]byte, dedupValueSize)
	binary.BigEndian.PutUint64(buf, e.TxID)
	binary.BigEndian.PutUint64(buf[8:], e.RecordedAt)
	return buf
}

func decodeDedup(raw []byte) (dedupEntry, error) {
	if len(raw) != dedupValueSize {
		return dedupEntry{}, fmt.Errorf("corrupt dedup value: %d bytes", len(raw))
	}
	return dedupEntry{
		TxID:       binary.BigEndian.Uint64(raw),
		RecordedAt: binary.BigEndian.Uint64(raw[8:]),
	}, nil
}
