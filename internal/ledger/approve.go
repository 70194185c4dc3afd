package ledger

import (
	"github.com/holiman/uint256"

	"github.com/meridian-chain/meridian-ledger/pkg/tx"
	"github.com/meridian-chain/meridian-ledger/pkg/types"
)

// ApproveArgs grant a spender the right to move tokens out of the
// caller's account.
type ApproveArgs struct {
	TokenID           types.TokenID
	FromSubaccount    *[types.SubaccountSize]byte
	Spender           types.Account
	Amount            *uint256.Int
	ExpectedAllowance *uint256.Int // nil skips the compare-and-set
	ExpiresAt         *uint64      // nil or 0 never expires
	Fee               *uint256.Int // nil accepts the token's fee
	Memo              []byte
	CreatedAtTime     *uint64
}

// Approve sets the spender's allowance on the caller's account. The new
// amount replaces the old one outright. Only the fee moves funds.
func (l *Ledger) Approve(caller types.Principal, args ApproveArgs) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := checkCaller(caller); err != nil {
		return 0, err
	}
	if err := checkCaller(args.Spender.Owner); err != nil {
		return 0, err
	}
	if args.Amount == nil {
		return 0, errGeneric("Missing amount")
	}

	owner := types.NewAccount(caller, args.FromSubaccount).Key()
	spender := args.Spender.Key()
	now := l.now()

	o, st, err := l.begin()
	if err != nil {
		return 0, err
	}

	a := txArgs{
		tokenID:       args.TokenID,
		fromKey:       owner,
		toKey:         spender,
		spenderKey:    &spender,
		amount:        args.Amount,
		fee:           args.Fee,
		memo:          args.Memo,
		createdAtTime: args.CreatedAtTime,
	}
	v, err := validate(st, now, a)
	if err != nil {
		return 0, err
	}

	// Compare-and-set against the live allowance. An expired entry
	// compares as zero.
	cur, ok, err := st.getAllowance(args.TokenID, owner, spender)
	if err != nil {
		return 0, err
	}
	current := uint256.NewInt(0)
	if ok && !cur.expired(now) {
		current = cur.Amount
	}
	if args.ExpectedAllowance != nil && !args.ExpectedAllowance.Eq(current) {
		return 0, errAllowanceChanged(current)
	}

	if args.ExpiresAt != nil && *args.ExpiresAt != 0 && *args.ExpiresAt < now {
		return 0, errExpired(now)
	}

	bal, err := st.balance(args.TokenID, owner)
	if err != nil {
		return 0, err
	}
	if bal.Lt(v.fee) {
		return 0, errInsufficientFunds(bal)
	}
	if err := st.setBalance(args.TokenID, owner, new(uint256.Int).Sub(bal, v.fee)); err != nil {
		return 0, err
	}
	if err := destroyFee(st, args.TokenID, v.meta, v.fee); err != nil {
		return 0, err
	}

	var expiresAt uint64
	if args.ExpiresAt != nil {
		expiresAt = *args.ExpiresAt
	}
	na := allowance{Amount: args.Amount.Clone(), ExpiresAt: expiresAt}
	if args.Amount.IsZero() {
		if err := st.removeAllowance(args.TokenID, owner, spender); err != nil {
			return 0, err
		}
	} else if err := st.setAllowance(args.TokenID, owner, spender, na); err != nil {
		return 0, err
	}

	rec := &tx.StoredTx{
		Op:        tx.OpApprove,
		TokenID:   args.TokenID,
		From:      owner,
		To:        spender,
		Spender:   spender,
		Amount:    args.Amount,
		Fee:       v.fee,
		Timestamp: now,
	}
	if err := rec.SetMemo(args.Memo); err != nil {
		return 0, err
	}
	id, err := appendRecord(st, rec)
	if err != nil {
		return 0, err
	}
	if err := recordDedup(st, a, v, id, now); err != nil {
		return 0, err
	}
	if err := l.commit(o); err != nil {
		return 0, err
	}

	l.log.Debug().
		Uint64("tx", id).
		Str("token", args.TokenID.String()).
		Str("amount", args.Amount.Dec()).
		Msg("approve")
	return id, nil
}

// TransferFromArgs move tokens out of another owner's account on the
// strength of a prior approval.
type TransferFromArgs struct {
	TokenID           types.TokenID
	SpenderSubaccount *[types.SubaccountSize]byte
	From              types.Account
	To                types.Account
	Amount            *uint256.Int
	Fee               *uint256.Int // nil accepts the token's fee
	Memo              []byte
	CreatedAtTime     *uint64
}

// TransferFrom spends an allowance: the owner's balance covers amount
// plus fee, and the allowance shrinks by the same total.
func (l *Ledger) TransferFrom(caller types.Principal, args TransferFromArgs) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := checkCaller(caller); err != nil {
		return 0, err
	}
	if err := checkCaller(args.From.Owner); err != nil {
		return 0, err
	}
	if err := checkCaller(args.To.Owner); err != nil {
		return 0, err
	}
	if args.Amount == nil {
		return 0, errGeneric("Missing amount")
	}

	from := args.From.Key()
	to := args.To.Key()
	spender := types.NewAccount(caller, args.SpenderSubaccount).Key()
	now := l.now()

	o, st, err := l.begin()
	if err != nil {
		return 0, err
	}

	a := txArgs{
		tokenID:       args.TokenID,
		fromKey:       from,
		toKey:         to,
		amount:        args.Amount,
		fee:           args.Fee,
		memo:          args.Memo,
		createdAtTime: args.CreatedAtTime,
	}
	v, err := validate(st, now, a)
	if err != nil {
		return 0, err
	}

	need, err := checkedNeed(args.Amount, v.fee)
	if err != nil {
		return 0, err
	}

	al, ok, err := st.getAllowance(args.TokenID, from, spender)
	if err != nil {
		return 0, err
	}
	if !ok || al.expired(now) {
		return 0, errInsufficientFunds(uint256.NewInt(0))
	}
	if al.Amount.Lt(need) {
		return 0, errGeneric("Insufficient allowance: %s of %s needed", al.Amount.Dec(), need.Dec())
	}

	fromBal, err := st.balance(args.TokenID, from)
	if err != nil {
		return 0, err
	}
	if fromBal.Lt(need) {
		return 0, errInsufficientFunds(fromBal)
	}

	if err := st.setBalance(args.TokenID, from, new(uint256.Int).Sub(fromBal, need)); err != nil {
		return 0, err
	}
	toBal, err := st.balance(args.TokenID, to)
	if err != nil {
		return 0, err
	}
	newToBal := new(uint256.Int).Add(toBal, args.Amount)
	if !types.FitsU128(newToBal) {
		return 0, errGeneric("Recipient balance overflows")
	}
	if err := st.setBalance(args.TokenID, to, newToBal); err != nil {
		return 0, err
	}
	if err := destroyFee(st, args.TokenID, v.meta, v.fee); err != nil {
		return 0, err
	}

	remaining := new(uint256.Int).Sub(al.Amount, need)
	if remaining.IsZero() {
		if err := st.removeAllowance(args.TokenID, from, spender); err != nil {
			return 0, err
		}
	} else {
		al.Amount = remaining
		if err := st.setAllowance(args.TokenID, from, spender, al); err != nil {
			return 0, err
		}
	}

	rec := &tx.StoredTx{
		Op:        tx.OpTransferFrom,
		TokenID:   args.TokenID,
		From:      from,
		To:        to,
		Spender:   spender,
		Amount:    args.Amount,
		Fee:       v.fee,
		Timestamp: now,
	}
	if err := rec.SetMemo(args.Memo); err != nil {
		return 0, err
	}
	id, err := appendRecord(st, rec)
	if err != nil {
		return 0, err
	}
	if err := recordDedup(st, a, v, id, now); err != nil {
		return 0, err
	}
	if err := l.commit(o); err != nil {
		return 0, err
	}

	l.log.Debug().
		Uint64("tx", id).
		Str("token", args.TokenID.String()).
		Str("amount", args.Amount.Dec()).
		Msg("transfer_from")
	return id, nil
}
