package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Account key sizes.
const (
	// SubaccountSize is the length of a subaccount in bytes.
	SubaccountSize = 32

	// AccountKeySize is the length of a canonical account key: the owner
	// block followed by the subaccount.
	AccountKeySize = OwnerBlockSize + SubaccountSize
)

// Account identifies a balance holder: an owning principal plus an
// optional 32-byte subaccount. A nil subaccount and the all-zero
// subaccount name the same account.
type Account struct {
	Owner      Principal
	Subaccount *[SubaccountSize]byte
}

// NewAccount builds an account from an owner and optional subaccount.
// An all-zero subaccount is normalized to nil.
func NewAccount(owner Principal, sub *[SubaccountSize]byte) Account {
	if sub != nil && *sub == [SubaccountSize]byte{} {
		sub = nil
	}
	return Account{Owner: owner, Subaccount: sub}
}

// Key returns the canonical 64-byte account key: owner block followed by
// the subaccount, all-zero when absent. Every account has exactly one key.
func (a Account) Key() [AccountKeySize]byte {
	var key [AccountKeySize]byte
	block := a.Owner.OwnerBlock()
	copy(key[:OwnerBlockSize], block[:])
	if a.Subaccount != nil {
		copy(key[OwnerBlockSize:], a.Subaccount[:])
	}
	return key
}

// AccountFromKey decodes a canonical 64-byte key back into an account.
// The all-zero subaccount decodes to nil so round-trips stay canonical.
func AccountFromKey(key [AccountKeySize]byte) (Account, error) {
	var block [OwnerBlockSize]byte
	copy(block[:], key[:OwnerBlockSize])
	owner, err := PrincipalFromOwnerBlock(block)
	if err != nil {
		return Account{}, fmt.Errorf("account key: %w", err)
	}
	var sub [SubaccountSize]byte
	copy(sub[:], key[OwnerBlockSize:])
	if sub == [SubaccountSize]byte{} {
		return Account{Owner: owner}, nil
	}
	return Account{Owner: owner, Subaccount: &sub}, nil
}

// Equal reports whether two accounts name the same balance holder.
func (a Account) Equal(other Account) bool {
	return a.Key() == other.Key()
}

// String returns "owner" or "owner.subaccount" in hex.
func (a Account) String() string {
	if a.Subaccount == nil {
		return a.Owner.String()
	}
	return a.Owner.String() + "." + hex.EncodeToString(a.Subaccount[:])
}

// accountJSON is the wire form of an account.
type accountJSON struct {
	Owner      string `json:"owner"`
	Subaccount string `json:"subaccount,omitempty"`
}

// MarshalJSON encodes the account with hex owner and optional hex
// subaccount.
func (a Account) MarshalJSON() ([]byte, error) {
	out := accountJSON{Owner: a.Owner.String()}
	if a.Subaccount != nil {
		out.Subaccount = hex.EncodeToString(a.Subaccount[:])
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an account from its wire form.
func (a *Account) UnmarshalJSON(data []byte) error {
	var in accountJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	owner, err := HexToPrincipal(in.Owner)
	if err != nil {
		return err
	}
	var sub *[SubaccountSize]byte
	if in.Subaccount != "" {
		b, err := hex.DecodeString(in.Subaccount)
		if err != nil {
			return fmt.Errorf("invalid subaccount hex: %w", err)
		}
		if len(b) != SubaccountSize {
			return fmt.Errorf("subaccount must be %d bytes, got %d", SubaccountSize, len(b))
		}
		var s [SubaccountSize]byte
		copy(s[:], b)
		sub = &s
	}
	*a = NewAccount(owner, sub)
	return nil
}
