package ledger

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/meridian-chain/meridian-ledger/internal/stable"
	"github.com/meridian-chain/meridian-ledger/internal/storage"
	"github.com/meridian-chain/meridian-ledger/pkg/tx"
	"github.com/meridian-chain/meridian-ledger/pkg/types"
)

// maxAmount caps submitted amounts at half the u128 range, leaving
// headroom so amount+fee arithmetic cannot wrap.
var maxAmount = new(uint256.Int).Rsh(types.MaxU128(), 1)

// txArgs is the normalized input of a transfer- or approve-class
// operation as seen by validation.
type txArgs struct {
	tokenID       types.TokenID
	fromKey       [types.AccountKeySize]byte
	toKey         [types.AccountKeySize]byte
	spenderKey    *[types.AccountKeySize]byte // approve-class only
	amount        *uint256.Int
	fee           *uint256.Int // nil when the caller omitted it
	memo          []byte
	createdAtTime *uint64
}

// validated carries everything later steps need from a successful
// pre-flight.
type validated struct {
	meta *TokenMetadata
	fee  *uint256.Int // effective fee
	hash *types.Hash  // set when created_at_time was supplied
}

func (a txArgs) dedupMap(st *view) *stable.Map {
	if a.spenderKey != nil {
		return st.approveDedup
	}
	return st.transferDedup
}

func (a txArgs) fingerprint() types.Hash {
	if a.spenderKey != nil {
		return tx.ApproveFingerprint(a.tokenID, a.fromKey, a.toKey, *a.spenderKey,
			a.amount, a.memo, *a.createdAtTime)
	}
	return tx.TransferFingerprint(a.tokenID, a.fromKey, a.toKey,
		a.amount, a.memo, *a.createdAtTime)
}

// validate runs the shared pre-flight checks in order; the first failure
// aborts. Committed state is never touched: the only write, removal of a
// stale dedup entry, is staged on the operation's overlay and commits only
// with the operation itself.
func validate(st *view, now uint64, a txArgs) (*validated, error) {
	// Token exists.
	meta, ok, err := getToken(st, a.tokenID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errGeneric("Token not found")
	}

	// Memo size. The boundary truncates, so an over-long memo here means
	// a caller bypassed it.
	if len(a.memo) > tx.MemoSize {
		return nil, errGeneric("Memo exceeds %d bytes", tx.MemoSize)
	}

	// Fee match.
	fee := meta.Fee
	if a.fee != nil {
		if !a.fee.Eq(meta.Fee) {
			return nil, errBadFee(meta.Fee)
		}
		fee = a.fee
	}

	out := &validated{meta: meta, fee: fee.Clone()}
	if a.createdAtTime == nil {
		return out, a.checkBounds()
	}

	// Timestamp window.
	createdAt := *a.createdAtTime
	if createdAt > now+uint64(DriftWindow.Nanoseconds()) {
		return nil, errCreatedInFuture(now)
	}
	if createdAt < now && now-createdAt > uint64(DedupWindow.Nanoseconds()) {
		return nil, errTooOld()
	}

	// Fingerprint and dedup.
	h := a.fingerprint()
	out.hash = &h
	dedup := a.dedupMap(st)
	raw, err := dedup.Get(h[:])
	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
	case err != nil:
		return nil, err
	default:
		entry, err := decodeDedup(raw)
		if err != nil {
			return nil, err
		}
		if now-entry.RecordedAt <= uint64(DedupWindow.Nanoseconds()) {
			return nil, errDuplicate(entry.TxID)
		}
		// Stale entry: drop it opportunistically and continue.
		if err := dedup.Remove(h[:]); err != nil {
			return nil, err
		}
	}

	return out, a.checkBounds()
}

// checkBounds rejects inputs the arithmetic downstream cannot absorb and
// degenerate party pairs.
func (a txArgs) checkBounds() error {
	if a.amount.Gt(maxAmount) {
		return errGeneric("Amount too large")
	}
	if a.spenderKey == nil {
		if a.fromKey == a.toKey {
			return errGeneric("Transfer to the same account")
		}
	} else if a.fromKey == a.toKey {
		return errGeneric("Approval for the owner's own account")
	}
	return nil
}

// checkCaller rejects identities that may never move funds.
func checkCaller(caller types.Principal) error {
	if len(caller) == 0 {
		return errGeneric("Missing caller principal")
	}
	if caller.IsAnonymous() {
		return errGeneric("Anonymous principal not allowed")
	}
	return nil
}

// recordDedup stages the dedup entry of a successful operation when the
// submission carried a created_at_time.
func recordDedup(st *view, a txArgs, v *validated, txID, now uint64) error {
	if v.hash == nil {
		return nil
	}
	return a.dedupMap(st).Insert(v.hash[:], encodeDedup(dedupEntry{TxID: txID, RecordedAt: now}))
}
