package ledger

import (
	"github.com/holiman/uint256"

	"github.com/meridian-chain/meridian-ledger/pkg/tx"
	"github.com/meridian-chain/meridian-ledger/pkg/types"
)

// TransferArgs move amount from the caller's account to another.
type TransferArgs struct {
	TokenID        types.TokenID
	FromSubaccount *[types.SubaccountSize]byte
	To             types.Account
	Amount         *uint256.Int
	Fee            *uint256.Int // nil accepts the token's fee
	Memo           []byte
	CreatedAtTime  *uint64
}

// checkedNeed computes amount+fee within the 128-bit range.
func checkedNeed(amount, fee *uint256.Int) (*uint256.Int, error) {
	need := new(uint256.Int).Add(amount, fee)
	if !types.FitsU128(need) {
		return nil, errGeneric("Amount plus fee overflows")
	}
	return need, nil
}

// destroyFee burns the paid fee out of the token's supply. The fee was
// already debited from a balance, so the supply always covers it.
func destroyFee(st *view, id types.TokenID, meta *TokenMetadata, fee *uint256.Int) error {
	if fee.IsZero() {
		return nil
	}
	if meta.TotalSupply.Lt(fee) {
		return errGeneric("Supply underflow while destroying fee")
	}
	meta.TotalSupply = new(uint256.Int).Sub(meta.TotalSupply, fee)
	return putToken(st, id, meta)
}

// Transfer moves tokens between accounts, destroying the fee. Returns the
// id of the appended record.
func (l *Ledger) Transfer(caller types.Principal, args TransferArgs) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := checkCaller(caller); err != nil {
		return 0, err
	}
	if err := checkCaller(args.To.Owner); err != nil {
		return 0, err
	}
	if args.Amount == nil {
		return 0, errGeneric("Missing amount")
	}

	from := types.NewAccount(caller, args.FromSubaccount).Key()
	to := args.To.Key()
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

	rec := &tx.StoredTx{
		Op:        tx.OpTransfer,
		TokenID:   args.TokenID,
		From:      from,
		To:        to,
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
		Msg("transfer")
	return id, nil
}

// Mint creates new tokens on a recipient account. Controller only; no fee
// and no deduplication.
func (l *Ledger) Mint(caller types.Principal, tokenID types.TokenID, to types.Account, amount *uint256.Int, memo []byte) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.authorize(l.st, caller); err != nil {
		return 0, err
	}
	if err := checkCaller(to.Owner); err != nil {
		return 0, err
	}
	if amount == nil || amount.IsZero() {
		return 0, errGeneric("Mint amount must be positive")
	}
	if len(memo) > tx.MemoSize {
		return 0, errGeneric("Memo exceeds %d bytes", tx.MemoSize)
	}

	now := l.now()
	o, st, err := l.begin()
	if err != nil {
		return 0, err
	}

	meta, ok, err := getToken(st, tokenID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errGeneric("Token not found")
	}

	newSupply := new(uint256.Int).Add(meta.TotalSupply, amount)
	if !types.FitsU128(newSupply) {
		return 0, errGeneric("Supply overflows")
	}

	toKey := to.Key()
	bal, err := st.balance(tokenID, toKey)
	if err != nil {
		return 0, err
	}
	if err := st.setBalance(tokenID, toKey, new(uint256.Int).Add(bal, amount)); err != nil {
		return 0, err
	}
	meta.TotalSupply = newSupply
	if err := putToken(st, tokenID, meta); err != nil {
		return 0, err
	}

	rec := &tx.StoredTx{
		Op:        tx.OpMint,
		TokenID:   tokenID,
		To:        toKey,
		Amount:    amount,
		Fee:       uint256.NewInt(0),
		Timestamp: now,
	}
	if err := rec.SetMemo(memo); err != nil {
		return 0, err
	}
	id, err := appendRecord(st, rec)
	if err != nil {
		return 0, err
	}
	if err := l.commit(o); err != nil {
		return 0, err
	}

	l.log.Debug().
		Uint64("tx", id).
		Str("token", tokenID.String()).
		Str("amount", amount.Dec()).
		Msg("mint")
	return id, nil
}

// Burn destroys tokens from the caller's default account. No fee, no
// deduplication.
func (l *Ledger) Burn(caller types.Principal, tokenID types.TokenID, amount *uint256.Int, memo []byte) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := checkCaller(caller); err != nil {
		return 0, err
	}
	return l.burnLocked(tokenID, types.NewAccount(caller, nil), amount, memo)
}

// BurnFrom destroys tokens from an arbitrary account. Controller only.
func (l *Ledger) BurnFrom(caller types.Principal, tokenID types.TokenID, from types.Account, amount *uint256.Int, memo []byte) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.authorize(l.st, caller); err != nil {
		return 0, err
	}
	return l.burnLocked(tokenID, from, amount, memo)
}

// burnLocked holds the shared burn path. The caller holds the mutex.
func (l *Ledger) burnLocked(tokenID types.TokenID, from types.Account, amount *uint256.Int, memo []byte) (uint64, error) {
	if amount == nil || amount.IsZero() {
		return 0, errGeneric("Burn amount must be positive")
	}
	if len(memo) > tx.MemoSize {
		return 0, errGeneric("Memo exceeds %d bytes", tx.MemoSize)
	}

	now := l.now()
	o, st, err := l.begin()
	if err != nil {
		return 0, err
	}

	meta, ok, err := getToken(st, tokenID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errGeneric("Token not found")
	}

	fromKey := from.Key()
	bal, err := st.balance(tokenID, fromKey)
	if err != nil {
		return 0, err
	}
	if bal.Lt(amount) {
		return 0, errInsufficientFunds(bal)
	}
	if meta.TotalSupply.Lt(amount) {
		return 0, errGeneric("Supply underflow")
	}

	if err := st.setBalance(tokenID, fromKey, new(uint256.Int).Sub(bal, amount)); err != nil {
		return 0, err
	}
	meta.TotalSupply = new(uint256.Int).Sub(meta.TotalSupply, amount)
	if err := putToken(st, tokenID, meta); err != nil {
		return 0, err
	}

	rec := &tx.StoredTx{
		Op:        tx.OpBurn,
		TokenID:   tokenID,
		From:      fromKey,
		Amount:    amount,
		Fee:       uint256.NewInt(0),
		Timestamp: now,
	}
	if err := rec.SetMemo(memo); err != nil {
		return 0, err
	}
	id, err := appendRecord(st, rec)
	if err != nil {
		return 0, err
	}
	if err := l.commit(o); err != nil {
		return 0, err
	}

	l.log.Debug().
		Uint64("tx", id).
		Str("token", tokenID.String()).
		Str("amount", amount.Dec()).
		Msg("burn")
	return id, nil
}
