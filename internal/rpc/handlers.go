package rpc

import (
	"encoding/hex"
	"errors"

	"github.com/holiman/uint256"

	"github.com/meridian-chain/meridian-ledger/internal/ledger"
	"github.com/meridian-chain/meridian-ledger/pkg/tx"
	"github.com/meridian-chain/meridian-ledger/pkg/types"
)

// ── Param decoding helpers ──────────────────────────────────────────────

func parsePrincipal(s string) (types.Principal, *Error) {
	p, err := types.HexToPrincipal(s)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "invalid principal: " + err.Error()}
	}
	return p, nil
}

func parseTokenID(s string) (types.TokenID, *Error) {
	id, err := types.HexToTokenID(s)
	if err != nil {
		return types.TokenID{}, &Error{Code: CodeInvalidParams, Message: "invalid token_id: must be 32-byte hex"}
	}
	return id, nil
}

func parseSubaccount(s string) (*[types.SubaccountSize]byte, *Error) {
	if s == "" {
		return nil, nil
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != types.SubaccountSize {
		return nil, &Error{Code: CodeInvalidParams, Message: "invalid subaccount: must be 32-byte hex"}
	}
	var sub [types.SubaccountSize]byte
	copy(sub[:], raw)
	return &sub, nil
}

func parseAccountRef(a AccountRef) (types.Account, *Error) {
	owner, rpcErr := parsePrincipal(a.Owner)
	if rpcErr != nil {
		return types.Account{}, rpcErr
	}
	sub, rpcErr := parseSubaccount(a.Subaccount)
	if rpcErr != nil {
		return types.Account{}, rpcErr
	}
	return types.NewAccount(owner, sub), nil
}

func parseAmount(s string) (*uint256.Int, *Error) {
	v, err := types.ParseU128(s)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "invalid amount: " + err.Error()}
	}
	return v, nil
}

// parseOptAmount treats an empty string as absent.
func parseOptAmount(s string) (*uint256.Int, *Error) {
	if s == "" {
		return nil, nil
	}
	return parseAmount(s)
}

// parseMemo decodes a hex memo and truncates it to the stored size.
func parseMemo(s string) ([]byte, *Error) {
	if s == "" {
		return nil, nil
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "invalid memo: must be hex"}
	}
	return tx.TruncateMemo(raw), nil
}

// ── Error mapping ───────────────────────────────────────────────────────

// ledgerError converts an engine failure into a JSON-RPC error. Operation
// failures keep their structured fields in the error data.
func ledgerError(err error) *Error {
	var oe *ledger.OpError
	if errors.As(err, &oe) {
		return &Error{Code: CodeLedgerError, Message: oe.Error(), Data: opErrorData(oe)}
	}
	switch {
	case errors.Is(err, ledger.ErrTokenNotFound):
		return &Error{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, ledger.ErrNotAuthorized),
		errors.Is(err, ledger.ErrLastController),
		errors.Is(err, ledger.ErrTokenExists):
		return &Error{Code: CodeLedgerError, Message: err.Error()}
	default:
		return &Error{Code: CodeInternalError, Message: err.Error()}
	}
}

func opErrorData(oe *ledger.OpError) LedgerErrorData {
	d := LedgerErrorData{Kind: oe.Kind.String()}
	switch oe.Kind {
	case ledger.KindBadFee:
		d.ExpectedFee = oe.ExpectedFee.Dec()
	case ledger.KindBadBurn:
		d.MinBurnAmount = oe.MinBurnAmount.Dec()
	case ledger.KindInsufficientFunds:
		d.Balance = oe.Balance.Dec()
	case ledger.KindCreatedInFuture, ledger.KindExpired:
		d.LedgerTime = oe.LedgerTime
	case ledger.KindDuplicate:
		d.DuplicateOf = oe.DuplicateOf
	case ledger.KindAllowanceChanged:
		d.CurrentAllowance = oe.CurrentAllowance.Dec()
	case ledger.KindGenericError:
		d.Code = oe.Code
		d.Message = oe.Message
	}
	return d
}

// ── Result encoding helpers ─────────────────────────────────────────────

func tokenInfoResult(id types.TokenID, meta *ledger.TokenMetadata) TokenInfoResult {
	return TokenInfoResult{
		TokenID:     id.String(),
		Name:        meta.Name,
		Symbol:      meta.Symbol,
		Decimals:    meta.Decimals,
		TotalSupply: meta.TotalSupply.Dec(),
		Fee:         meta.Fee.Dec(),
		Logo:        meta.Logo,
		Description: meta.Description,
		CreatedAt:   meta.CreatedAt,
	}
}

// accountRefOf decodes a stored party key for display. An all-zero key
// means the party is absent.
func accountRefOf(key [types.AccountKeySize]byte) *AccountRef {
	if key == ([types.AccountKeySize]byte{}) {
		return nil
	}
	a, err := types.AccountFromKey(key)
	if err != nil {
		return nil
	}
	ref := &AccountRef{Owner: a.Owner.String()}
	if a.Subaccount != nil {
		ref.Subaccount = hex.EncodeToString(a.Subaccount[:])
	}
	return ref
}

func txRecordResult(id uint64, rec *tx.StoredTx) (TxRecordResult, error) {
	raw, err := rec.Encode()
	if err != nil {
		return TxRecordResult{}, err
	}
	out := TxRecordResult{
		ID:        id,
		Raw:       hex.EncodeToString(raw),
		Op:        rec.Op.String(),
		TokenID:   rec.TokenID.String(),
		From:      accountRefOf(rec.From),
		To:        accountRefOf(rec.To),
		Spender:   accountRefOf(rec.Spender),
		Amount:    rec.Amount.Dec(),
		Fee:       rec.Fee.Dec(),
		Timestamp: rec.Timestamp,
	}
	if rec.Memo != ([tx.MemoSize]byte{}) {
		out.Memo = hex.EncodeToString(rec.Memo[:])
	}
	return out, nil
}

// ── Token management ────────────────────────────────────────────────────

func (s *Server) handleCreateToken(req *Request) (interface{}, *Error) {
	var p CreateTokenParam
	if rpcErr := parseParams(req, &p); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parsePrincipal(p.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	supply, rpcErr := parseOptAmount(p.TotalSupply)
	if rpcErr != nil {
		return nil, rpcErr
	}
	fee, rpcErr := parseOptAmount(p.Fee)
	if rpcErr != nil {
		return nil, rpcErr
	}

	id, err := s.ledger.CreateToken(caller, ledger.CreateTokenArgs{
		Name:        p.Name,
		Symbol:      p.Symbol,
		Decimals:    p.Decimals,
		TotalSupply: supply,
		Fee:         fee,
		Logo:        p.Logo,
		Description: p.Description,
	})
	if err != nil {
		return nil, ledgerError(err)
	}
	return CreateTokenResult{TokenID: id.String()}, nil
}

func (s *Server) handleMintTokens(req *Request) (interface{}, *Error) {
	var p MintParam
	if rpcErr := parseParams(req, &p); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parsePrincipal(p.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	id, rpcErr := parseTokenID(p.TokenID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	to, rpcErr := parseAccountRef(p.To)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := parseAmount(p.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	memo, rpcErr := parseMemo(p.Memo)
	if rpcErr != nil {
		return nil, rpcErr
	}

	txID, err := s.ledger.Mint(caller, id, to, amount, memo)
	if err != nil {
		return nil, ledgerError(err)
	}
	return TxIDResult{TxID: txID}, nil
}

func (s *Server) handleBurnTokens(req *Request) (interface{}, *Error) {
	var p BurnParam
	if rpcErr := parseParams(req, &p); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parsePrincipal(p.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	id, rpcErr := parseTokenID(p.TokenID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := parseAmount(p.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	memo, rpcErr := parseMemo(p.Memo)
	if rpcErr != nil {
		return nil, rpcErr
	}

	txID, err := s.ledger.Burn(caller, id, amount, memo)
	if err != nil {
		return nil, ledgerError(err)
	}
	return TxIDResult{TxID: txID}, nil
}

func (s *Server) handleBurnTokensFrom(req *Request) (interface{}, *Error) {
	var p BurnFromParam
	if rpcErr := parseParams(req, &p); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parsePrincipal(p.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	id, rpcErr := parseTokenID(p.TokenID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	from, rpcErr := parseAccountRef(p.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := parseAmount(p.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	memo, rpcErr := parseMemo(p.Memo)
	if rpcErr != nil {
		return nil, rpcErr
	}

	txID, err := s.ledger.BurnFrom(caller, id, from, amount, memo)
	if err != nil {
		return nil, ledgerError(err)
	}
	return TxIDResult{TxID: txID}, nil
}

func (s *Server) handleSetTokenFee(req *Request) (interface{}, *Error) {
	var p SetTokenFeeParam
	if rpcErr := parseParams(req, &p); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parsePrincipal(p.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	id, rpcErr := parseTokenID(p.TokenID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	fee, rpcErr := parseAmount(p.Fee)
	if rpcErr != nil {
		return nil, rpcErr
	}

	if err := s.ledger.SetTokenFee(caller, id, fee); err != nil {
		return nil, ledgerError(err)
	}
	return map[string]bool{"ok": true}, nil
}

// ── Controllers ─────────────────────────────────────────────────────────

func (s *Server) handleAddController(req *Request) (interface{}, *Error) {
	caller, target, rpcErr := controllerParams(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.ledger.AddController(caller, target); err != nil {
		return nil, ledgerError(err)
	}
	return map[string]bool{"ok": true}, nil
}

func (s *Server) handleRemoveController(req *Request) (interface{}, *Error) {
	caller, target, rpcErr := controllerParams(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.ledger.RemoveController(caller, target); err != nil {
		return nil, ledgerError(err)
	}
	return map[string]bool{"ok": true}, nil
}

func (s *Server) handleSetController(req *Request) (interface{}, *Error) {
	caller, target, rpcErr := controllerParams(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.ledger.SetController(caller, target); err != nil {
		return nil, ledgerError(err)
	}
	return map[string]bool{"ok": true}, nil
}

func controllerParams(req *Request) (caller, target types.Principal, rpcErr *Error) {
	var p ControllerParam
	if rpcErr = parseParams(req, &p); rpcErr != nil {
		return nil, nil, rpcErr
	}
	if caller, rpcErr = parsePrincipal(p.Caller); rpcErr != nil {
		return nil, nil, rpcErr
	}
	if target, rpcErr = parsePrincipal(p.Controller); rpcErr != nil {
		return nil, nil, rpcErr
	}
	return caller, target, nil
}

func (s *Server) handleListControllers(req *Request) (interface{}, *Error) {
	ps, err := s.ledger.ListControllers()
	if err != nil {
		return nil, ledgerError(err)
	}
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return ControllerListResult{Controllers: out}, nil
}

// ── Transfers and approvals ─────────────────────────────────────────────

func (s *Server) handleTransfer(req *Request) (interface{}, *Error) {
	var p TransferParam
	if rpcErr := parseParams(req, &p); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parsePrincipal(p.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	id, rpcErr := parseTokenID(p.TokenID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	fromSub, rpcErr := parseSubaccount(p.FromSubaccount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	to, rpcErr := parseAccountRef(p.To)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := parseAmount(p.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	fee, rpcErr := parseOptAmount(p.Fee)
	if rpcErr != nil {
		return nil, rpcErr
	}
	memo, rpcErr := parseMemo(p.Memo)
	if rpcErr != nil {
		return nil, rpcErr
	}

	txID, err := s.ledger.Transfer(caller, ledger.TransferArgs{
		TokenID:        id,
		FromSubaccount: fromSub,
		To:             to,
		Amount:         amount,
		Fee:            fee,
		Memo:           memo,
		CreatedAtTime:  p.CreatedAtTime,
	})
	if err != nil {
		return nil, ledgerError(err)
	}
	return TxIDResult{TxID: txID}, nil
}

func (s *Server) handleApprove(req *Request) (interface{}, *Error) {
	var p ApproveParam
	if rpcErr := parseParams(req, &p); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parsePrincipal(p.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	id, rpcErr := parseTokenID(p.TokenID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	fromSub, rpcErr := parseSubaccount(p.FromSubaccount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	spender, rpcErr := parseAccountRef(p.Spender)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := parseAmount(p.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	var expected *uint256.Int
	if p.ExpectedAllowance != nil {
		if expected, rpcErr = parseAmount(*p.ExpectedAllowance); rpcErr != nil {
			return nil, rpcErr
		}
	}
	fee, rpcErr := parseOptAmount(p.Fee)
	if rpcErr != nil {
		return nil, rpcErr
	}
	memo, rpcErr := parseMemo(p.Memo)
	if rpcErr != nil {
		return nil, rpcErr
	}

	txID, err := s.ledger.Approve(caller, ledger.ApproveArgs{
		TokenID:           id,
		FromSubaccount:    fromSub,
		Spender:           spender,
		Amount:            amount,
		ExpectedAllowance: expected,
		ExpiresAt:         p.ExpiresAt,
		Fee:               fee,
		Memo:              memo,
		CreatedAtTime:     p.CreatedAtTime,
	})
	if err != nil {
		return nil, ledgerError(err)
	}
	return TxIDResult{TxID: txID}, nil
}

func (s *Server) handleTransferFrom(req *Request) (interface{}, *Error) {
	var p TransferFromParam
	if rpcErr := parseParams(req, &p); rpcErr != nil {
		return nil, rpcErr
	}
	caller, rpcErr := parsePrincipal(p.Caller)
	if rpcErr != nil {
		return nil, rpcErr
	}
	id, rpcErr := parseTokenID(p.TokenID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	spenderSub, rpcErr := parseSubaccount(p.SpenderSubaccount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	from, rpcErr := parseAccountRef(p.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	to, rpcErr := parseAccountRef(p.To)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := parseAmount(p.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	fee, rpcErr := parseOptAmount(p.Fee)
	if rpcErr != nil {
		return nil, rpcErr
	}
	memo, rpcErr := parseMemo(p.Memo)
	if rpcErr != nil {
		return nil, rpcErr
	}

	txID, err := s.ledger.TransferFrom(caller, ledger.TransferFromArgs{
		TokenID:           id,
		SpenderSubaccount: spenderSub,
		From:              from,
		To:                to,
		Amount:            amount,
		Fee:               fee,
		Memo:              memo,
		CreatedAtTime:     p.CreatedAtTime,
	})
	if err != nil {
		return nil, ledgerError(err)
	}
	return TxIDResult{TxID: txID}, nil
}

// ── Queries ─────────────────────────────────────────────────────────────

func (s *Server) handleGetBalance(req *Request) (interface{}, *Error) {
	var p BalanceParam
	if rpcErr := parseParams(req, &p); rpcErr != nil {
		return nil, rpcErr
	}
	id, rpcErr := parseTokenID(p.TokenID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	account, rpcErr := parseAccountRef(p.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	bal, err := s.ledger.GetBalance(id, account)
	if err != nil {
		return nil, ledgerError(err)
	}
	return BalanceResult{Amount: bal.Dec()}, nil
}

func (s *Server) handleGetTotalSupply(req *Request) (interface{}, *Error) {
	id, rpcErr := tokenIDParam(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	supply, err := s.ledger.GetTotalSupply(id)
	if err != nil {
		return nil, ledgerError(err)
	}
	return BalanceResult{Amount: supply.Dec()}, nil
}

func (s *Server) handleGetHolderCount(req *Request) (interface{}, *Error) {
	id, rpcErr := tokenIDParam(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	n, err := s.ledger.GetHolderCount(id)
	if err != nil {
		return nil, ledgerError(err)
	}
	return HolderCountResult{Count: n}, nil
}

func (s *Server) handleGetTokenMetadata(req *Request) (interface{}, *Error) {
	id, rpcErr := tokenIDParam(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	meta, err := s.ledger.GetTokenMetadata(id)
	if err != nil {
		return nil, ledgerError(err)
	}
	return tokenInfoResult(id, meta), nil
}

func tokenIDParam(req *Request) (types.TokenID, *Error) {
	var p TokenIDParam
	if rpcErr := parseParams(req, &p); rpcErr != nil {
		return types.TokenID{}, rpcErr
	}
	return parseTokenID(p.TokenID)
}

func (s *Server) handleListTokens(req *Request) (interface{}, *Error) {
	ts, err := s.ledger.ListTokens()
	if err != nil {
		return nil, ledgerError(err)
	}
	out := make([]TokenInfoResult, len(ts))
	for i, t := range ts {
		out[i] = tokenInfoResult(t.ID, t.Metadata)
	}
	return TokenListResult{Count: len(out), Tokens: out}, nil
}

func (s *Server) handleGetBalancesFor(req *Request) (interface{}, *Error) {
	var p AccountParam
	if rpcErr := parseParams(req, &p); rpcErr != nil {
		return nil, rpcErr
	}
	account, rpcErr := parseAccountRef(p.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	bs, err := s.ledger.GetBalancesFor(account)
	if err != nil {
		return nil, ledgerError(err)
	}
	out := make([]AccountBalanceEntry, len(bs))
	for i, b := range bs {
		out[i] = AccountBalanceEntry{TokenID: b.TokenID.String(), Balance: b.Balance.Dec()}
	}
	return BalancesForResult{Account: p.Account, Balances: out}, nil
}

func (s *Server) handleGetAllowance(req *Request) (interface{}, *Error) {
	id, owner, spender, rpcErr := allowanceParams(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	a, err := s.ledger.GetAllowance(id, owner, spender)
	if err != nil {
		return nil, ledgerError(err)
	}
	return AllowanceResult{Allowance: a.Dec()}, nil
}

func (s *Server) handleGetAllowanceDetails(req *Request) (interface{}, *Error) {
	id, owner, spender, rpcErr := allowanceParams(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	d, err := s.ledger.GetAllowanceDetails(id, owner, spender)
	if err != nil {
		return nil, ledgerError(err)
	}
	return AllowanceResult{Allowance: d.Amount.Dec(), ExpiresAt: d.ExpiresAt}, nil
}

func allowanceParams(req *Request) (id types.TokenID, owner, spender types.Account, rpcErr *Error) {
	var p AllowanceParam
	if rpcErr = parseParams(req, &p); rpcErr != nil {
		return
	}
	if id, rpcErr = parseTokenID(p.TokenID); rpcErr != nil {
		return
	}
	if owner, rpcErr = parseAccountRef(p.Owner); rpcErr != nil {
		return
	}
	spender, rpcErr = parseAccountRef(p.Spender)
	return
}

func (s *Server) handleGetTransactions(req *Request) (interface{}, *Error) {
	var p TransactionsParam
	if req.Params != nil {
		if rpcErr := parseParams(req, &p); rpcErr != nil {
			return nil, rpcErr
		}
	}

	q := ledger.TxQuery{Start: p.Start, Limit: p.Limit}
	if p.TokenID != "" {
		id, rpcErr := parseTokenID(p.TokenID)
		if rpcErr != nil {
			return nil, rpcErr
		}
		q.TokenID = &id
	}

	es, err := s.ledger.GetTransactions(q)
	if err != nil {
		return nil, ledgerError(err)
	}
	out := make([]TxRecordResult, len(es))
	for i, e := range es {
		r, err := txRecordResult(e.ID, e.Tx)
		if err != nil {
			return nil, &Error{Code: CodeInternalError, Message: err.Error()}
		}
		out[i] = r
	}
	return TransactionsResult{Count: len(out), Transactions: out}, nil
}

func (s *Server) handleGetTransactionCount(req *Request) (interface{}, *Error) {
	n, err := s.ledger.GetTransactionCount()
	if err != nil {
		return nil, ledgerError(err)
	}
	return TxCountResult{Count: n}, nil
}

func (s *Server) handleGetStorageStats(req *Request) (interface{}, *Error) {
	stats, err := s.ledger.GetStorageStats()
	if err != nil {
		return nil, ledgerError(err)
	}
	return stats, nil
}

func (s *Server) handleHealthCheck(req *Request) (interface{}, *Error) {
	status, err := s.ledger.HealthCheck()
	if err != nil {
		return nil, ledgerError(err)
	}
	return HealthResult{Status: status}, nil
}

func (s *Server) handleGetInfo(req *Request) (interface{}, *Error) {
	info, err := s.ledger.GetInfo()
	if err != nil {
		return nil, ledgerError(err)
	}
	return info, nil
}
