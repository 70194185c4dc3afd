package ledger

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/meridian-chain/meridian-ledger/pkg/tx"
	"github.com/meridian-chain/meridian-ledger/pkg/types"
)

// History paging bounds.
const (
	DefaultTxLimit = 100
	MaxTxLimit     = 1000
)

// GetBalance returns an account's balance for a token. Unknown accounts
// and unknown tokens both read as zero.
func (l *Ledger) GetBalance(tokenID types.TokenID, account types.Account) (*uint256.Int, error) {
	return l.st.balance(tokenID, account.Key())
}

// GetTotalSupply returns a token's circulating supply.
func (l *Ledger) GetTotalSupply(tokenID types.TokenID) (*uint256.Int, error) {
	meta, ok, err := getToken(l.st, tokenID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTokenNotFound
	}
	return meta.TotalSupply.Clone(), nil
}

// GetHolderCount counts the accounts holding a nonzero balance of the
// token. Zero balances are removed from storage, so every entry counts.
func (l *Ledger) GetHolderCount(tokenID types.TokenID) (uint64, error) {
	var n uint64
	err := l.st.balances.ForEachPrefix(tokenID[:], func(key, value []byte) error {
		n++
		return nil
	})
	return n, err
}

// GetTokenMetadata returns a token's metadata.
func (l *Ledger) GetTokenMetadata(tokenID types.TokenID) (*TokenMetadata, error) {
	meta, ok, err := getToken(l.st, tokenID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTokenNotFound
	}
	return meta, nil
}

// TokenListing pairs a token id with its metadata.
type TokenListing struct {
	ID       types.TokenID
	Metadata *TokenMetadata
}

// ListTokens returns every registered token.
func (l *Ledger) ListTokens() ([]TokenListing, error) {
	var out []TokenListing
	err := l.st.tokens.ForEachPrefix(nil, func(key, value []byte) error {
		if len(key) != types.HashSize {
			return fmt.Errorf("corrupt token key: %d bytes", len(key))
		}
		var id types.TokenID
		copy(id[:], key)
		meta, ok, err := getToken(l.st, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("token %s vanished during scan", id)
		}
		out = append(out, TokenListing{ID: id, Metadata: meta})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AccountBalance is one nonzero holding of an account.
type AccountBalance struct {
	TokenID types.TokenID
	Balance *uint256.Int
}

// GetBalancesFor scans every token for the account's holdings. Only
// nonzero balances are stored, so everything found is emitted.
func (l *Ledger) GetBalancesFor(account types.Account) ([]AccountBalance, error) {
	key := account.Key()
	var out []AccountBalance
	err := l.st.balances.ForEachPrefix(nil, func(k, v []byte) error {
		if len(k) != types.HashSize+types.AccountKeySize {
			return fmt.Errorf("corrupt balance key: %d bytes", len(k))
		}
		var acct [types.AccountKeySize]byte
		copy(acct[:], k[types.HashSize:])
		if acct != key {
			return nil
		}
		var id types.TokenID
		copy(id[:], k[:types.HashSize])
		bal, err := types.U128(v)
		if err != nil {
			return err
		}
		out = append(out, AccountBalance{TokenID: id, Balance: bal})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetAllowance returns the live allowance of a spender on an owner's
// account. Missing and expired approvals both read as zero.
func (l *Ledger) GetAllowance(tokenID types.TokenID, owner, spender types.Account) (*uint256.Int, error) {
	a, err := l.GetAllowanceDetails(tokenID, owner, spender)
	if err != nil {
		return nil, err
	}
	return a.Amount, nil
}

// AllowanceDetails is the query view of one approval.
type AllowanceDetails struct {
	Amount    *uint256.Int
	ExpiresAt uint64 // 0 = never expires
}

// GetAllowanceDetails returns the allowance amount and expiry. An
// expired approval reads as zero with no expiry.
func (l *Ledger) GetAllowanceDetails(tokenID types.TokenID, owner, spender types.Account) (AllowanceDetails, error) {
	a, ok, err := l.st.getAllowance(tokenID, owner.Key(), spender.Key())
	if err != nil {
		return AllowanceDetails{}, err
	}
	if !ok || a.expired(l.now()) {
		return AllowanceDetails{Amount: uint256.NewInt(0)}, nil
	}
	return AllowanceDetails{Amount: a.Amount.Clone(), ExpiresAt: a.ExpiresAt}, nil
}

// TxEntry is one log record with its id.
type TxEntry struct {
	ID uint64
	Tx *tx.StoredTx
}

// TxQuery selects a slice of the transaction log.
type TxQuery struct {
	TokenID *types.TokenID // nil returns every token
	Start   *uint64        // nil starts at 0
	Limit   *uint64        // nil uses DefaultTxLimit; capped at MaxTxLimit
}

// GetTransactions pages through the log in id order. A start past the
// end returns an empty slice. When a token filter is given, records are
// read and filtered, so a page may come back shorter than the limit.
func (l *Ledger) GetTransactions(q TxQuery) ([]TxEntry, error) {
	total, err := l.st.txlog.Len()
	if err != nil {
		return nil, err
	}

	start := uint64(0)
	if q.Start != nil {
		start = *q.Start
	}
	limit := uint64(DefaultTxLimit)
	if q.Limit != nil {
		limit = *q.Limit
	}
	if limit > MaxTxLimit {
		limit = MaxTxLimit
	}

	out := []TxEntry{}
	for id := start; id < total && uint64(len(out)) < limit; id++ {
		raw, err := l.st.txlog.Get(id)
		if err != nil {
			return nil, err
		}
		rec, err := tx.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt tx record %d: %w", id, err)
		}
		if q.TokenID != nil && rec.TokenID != *q.TokenID {
			continue
		}
		out = append(out, TxEntry{ID: id, Tx: rec})
	}
	return out, nil
}

// GetTransaction returns one record by id.
func (l *Ledger) GetTransaction(id uint64) (*tx.StoredTx, error) {
	raw, err := l.st.txlog.Get(id)
	if err != nil {
		return nil, err
	}
	rec, err := tx.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("corrupt tx record %d: %w", id, err)
	}
	return rec, nil
}

// GetTransactionCount returns the length of the log.
func (l *Ledger) GetTransactionCount() (uint64, error) {
	return l.st.txlog.Len()
}

// StorageStats summarizes the entry counts of every persistent region.
type StorageStats struct {
	TxCount            uint64 `json:"tx_count"`
	TokenCount         uint64 `json:"token_count"`
	HolderEntryCount   uint64 `json:"holder_entry_count"`
	AllowanceCount     uint64 `json:"allowance_count"`
	TransferDedupCount uint64 `json:"transfer_dedup_count"`
	ApproveDedupCount  uint64 `json:"approve_dedup_count"`
	ControllerCount    uint64 `json:"controller_count"`
	EstimatedBytes     uint64 `json:"estimated_bytes"`
}

// GetStorageStats counts entries per region and estimates the resident
// bytes from the fixed record and value sizes.
func (l *Ledger) GetStorageStats() (StorageStats, error) {
	var s StorageStats
	var err error
	if s.TxCount, err = l.st.txlog.Len(); err != nil {
		return s, err
	}
	if s.TokenCount, err = l.st.tokens.Len(); err != nil {
		return s, err
	}
	if s.HolderEntryCount, err = l.st.balances.Len(); err != nil {
		return s, err
	}
	if s.AllowanceCount, err = l.st.allowances.Len(); err != nil {
		return s, err
	}
	if s.TransferDedupCount, err = l.st.transferDedup.Len(); err != nil {
		return s, err
	}
	if s.ApproveDedupCount, err = l.st.approveDedup.Len(); err != nil {
		return s, err
	}
	if s.ControllerCount, err = l.st.controllers.Len(); err != nil {
		return s, err
	}

	const (
		balanceEntrySize   = types.HashSize + types.AccountKeySize + types.U128Size
		allowanceEntrySize = types.HashSize + 2*types.AccountKeySize + allowanceValueSize
		dedupEntrySize     = types.HashSize + dedupValueSize
	)
	s.EstimatedBytes = s.TxCount*tx.RecordSize +
		s.HolderEntryCount*balanceEntrySize +
		s.AllowanceCount*allowanceEntrySize +
		(s.TransferDedupCount+s.ApproveDedupCount)*dedupEntrySize
	return s, nil
}

// HealthCheck returns a one-line status string.
func (l *Ledger) HealthCheck() (string, error) {
	primary := "none"
	if p, ok, err := l.PrimaryController(); err != nil {
		return "", err
	} else if ok {
		primary = p.String()
	}
	n, err := l.GetTransactionCount()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Meridian ledger v%s, controller %s, %d transactions", Version, primary, n), nil
}

// Info is the engine's self-description.
type Info struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Controller string `json:"controller"`
	TxCount    uint64 `json:"tx_count"`
}

// GetInfo returns the engine's name, version, primary controller, and
// transaction count.
func (l *Ledger) GetInfo() (Info, error) {
	info := Info{Name: "meridian-ledger", Version: Version, Controller: "none"}
	if p, ok, err := l.PrimaryController(); err != nil {
		return Info{}, err
	} else if ok {
		info.Controller = p.String()
	}
	n, err := l.GetTransactionCount()
	if err != nil {
		return Info{}, err
	}
	info.TxCount = n
	return info, nil
}
