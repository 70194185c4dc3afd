package tx

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/holiman/uint256"

	"github.com/meridian-chain/meridian-ledger/pkg/types"
)

// TruncateMemo clips a memo to the fixed field width. Truncation happens
// once at the boundary so fingerprinting and storage see the same bytes.
func TruncateMemo(memo []byte) []byte {
	if len(memo) <= MemoSize {
		return memo
	}
	return memo[:MemoSize]
}

func fingerprint(tokenID types.TokenID, fromKey, toKey [types.AccountKeySize]byte,
	amount *uint256.Int, memo []byte, createdAtTime uint64, spenderKey *[types.AccountKeySize]byte) types.Hash {

	h := sha256.New()
	h.Write(tokenID[:])
	h.Write(fromKey[:])
	h.Write(toKey[:])
	b := amount.Bytes32()
	h.Write(b[types.U128Size:])
	h.Write(memo)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], createdAtTime)
	h.Write(ts[:])
	if spenderKey != nil {
		h.Write(spenderKey[:])
	}
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// TransferFingerprint derives the duplicate-detection hash of a
// transfer-class submission. Equal fingerprints within the dedup window
// mean the same client request retried.
func TransferFingerprint(tokenID types.TokenID, fromKey, toKey [types.AccountKeySize]byte,
	amount *uint256.Int, memo []byte, createdAtTime uint64) types.Hash {
	return fingerprint(tokenID, fromKey, toKey, amount, memo, createdAtTime, nil)
}

// ApproveFingerprint derives the duplicate-detection hash of an
// approve-class submission. The spender key is folded in so an approval
// and a transfer with matching fields never collide.
func ApproveFingerprint(tokenID types.TokenID, fromKey, toKey, spenderKey [types.AccountKeySize]byte,
	amount *uint256.Int, memo []byte, createdAtTime uint64) types.Hash {
	return fingerprint(tokenID, fromKey, toKey, amount, memo, createdAtTime, &spenderKey)
}
