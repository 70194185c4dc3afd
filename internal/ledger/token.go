package ledger

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/meridian-chain/meridian-ledger/internal/storage"
	"github.com/meridian-chain/meridian-ledger/pkg/types"
)

// Token metadata bounds.
const (
	maxTokenNameLen   = 255
	maxTokenSymbolLen = 32
	maxTokenDecimals  = 18
)

// TokenMetadata describes one token. Everything except Fee is immutable
// after creation.
type TokenMetadata struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *uint256.Int
	Fee         *uint256.Int
	Logo        *string
	Description *string
	CreatedAt   uint64 // nanoseconds since the Unix epoch
}

// tokenMetadataJSON is the persisted form; supply and fee are decimal
// strings so the JSON stays exact beyond 2^53.
type tokenMetadataJSON struct {
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Decimals    uint8   `json:"decimals"`
	TotalSupply string  `json:"total_supply"`
	Fee         string  `json:"fee"`
	Logo        *string `json:"logo,omitempty"`
	Description *string `json:"description,omitempty"`
	CreatedAt   uint64  `json:"created_at"`
}

// MarshalJSON encodes the metadata with decimal-string amounts.
func (m TokenMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(tokenMetadataJSON{
		Name:        m.Name,
		Symbol:      m.Symbol,
		Decimals:    m.Decimals,
		TotalSupply: m.TotalSupply.Dec(),
		Fee:         m.Fee.Dec(),
		Logo:        m.Logo,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	})
}

// UnmarshalJSON decodes the persisted form.
func (m *TokenMetadata) UnmarshalJSON(data []byte) error {
	var in tokenMetadataJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	supply, err := types.ParseU128(in.TotalSupply)
	if err != nil {
		return fmt.Errorf("token total_supply: %w", err)
	}
	fee, err := types.ParseU128(in.Fee)
	if err != nil {
		return fmt.Errorf("token fee: %w", err)
	}
	*m = TokenMetadata{
		Name:        in.Name,
		Symbol:      in.Symbol,
		Decimals:    in.Decimals,
		TotalSupply: supply,
		Fee:         fee,
		Logo:        in.Logo,
		Description: in.Description,
		CreatedAt:   in.CreatedAt,
	}
	return nil
}

// ID returns the token's content address.
func (m TokenMetadata) ID() types.TokenID {
	return types.DeriveTokenID(m.Name, m.Symbol, m.Decimals)
}

// getToken reads a token's metadata. The second return is false when the
// token does not exist.
func getToken(st *view, id types.TokenID) (*TokenMetadata, bool, error) {
	raw, err := st.tokens.Get(id[:])
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var meta TokenMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, false, fmt.Errorf("corrupt token metadata %s: %w", id, err)
	}
	return &meta, true, nil
}

// putToken persists a token's metadata.
func putToken(st *view, id types.TokenID, meta *TokenMetadata) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return st.tokens.Insert(id[:], raw)
}

// CreateTokenArgs are the creation-time parameters of a token.
type CreateTokenArgs struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *uint256.Int // nil means 0
	Fee         *uint256.Int // nil means the default fee
	Logo        *string
	Description *string
}

func validateTokenArgs(args CreateTokenArgs) error {
	if len(args.Name) == 0 || len(args.Name) > maxTokenNameLen {
		return fmt.Errorf("token name must be 1..%d bytes", maxTokenNameLen)
	}
	if len(args.Symbol) == 0 || len(args.Symbol) > maxTokenSymbolLen {
		return fmt.Errorf("token symbol must be 1..%d bytes", maxTokenSymbolLen)
	}
	if args.Decimals > maxTokenDecimals {
		return fmt.Errorf("token decimals must be at most %d", maxTokenDecimals)
	}
	if args.TotalSupply != nil && !types.FitsU128(args.TotalSupply) {
		return fmt.Errorf("initial supply: %w", types.ErrU128Range)
	}
	if args.Fee != nil && !types.FitsU128(args.Fee) {
		return fmt.Errorf("fee: %w", types.ErrU128Range)
	}
	return nil
}

// CreateToken registers a new token. An initial supply is credited to the
// creator's default account without a mint record; the bootstrap predates
// the token's history.
func (l *Ledger) CreateToken(caller types.Principal, args CreateTokenArgs) (types.TokenID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.authorize(l.st, caller); err != nil {
		return types.TokenID{}, err
	}
	if err := validateTokenArgs(args); err != nil {
		return types.TokenID{}, err
	}

	id := types.DeriveTokenID(args.Name, args.Symbol, args.Decimals)
	now := l.now()

	o, st, err := l.begin()
	if err != nil {
		return types.TokenID{}, err
	}
	if exists, err := st.tokens.Has(id[:]); err != nil {
		return types.TokenID{}, err
	} else if exists {
		return types.TokenID{}, ErrTokenExists
	}

	supply := uint256.NewInt(0)
	if args.TotalSupply != nil {
		supply = args.TotalSupply.Clone()
	}
	fee := uint256.NewInt(defaultFee)
	if args.Fee != nil {
		fee = args.Fee.Clone()
	}

	meta := &TokenMetadata{
		Name:        args.Name,
		Symbol:      args.Symbol,
		Decimals:    args.Decimals,
		TotalSupply: supply,
		Fee:         fee,
		Logo:        args.Logo,
		Description: args.Description,
		CreatedAt:   now,
	}

	if !supply.IsZero() {
		creator := types.NewAccount(caller, nil).Key()
		if err := st.setBalance(id, creator, supply); err != nil {
			return types.TokenID{}, err
		}
	}
	if err := putToken(st, id, meta); err != nil {
		return types.TokenID{}, err
	}
	if err := l.commit(o); err != nil {
		return types.TokenID{}, err
	}

	l.log.Info().
		Str("token", id.String()).
		Str("symbol", args.Symbol).
		Str("supply", supply.Dec()).
		Msg("token created")
	return id, nil
}

// SetTokenFee updates a token's transfer fee.
func (l *Ledger) SetTokenFee(caller types.Principal, id types.TokenID, fee *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.authorize(l.st, caller); err != nil {
		return err
	}
	if !types.FitsU128(fee) {
		return fmt.Errorf("fee: %w", types.ErrU128Range)
	}

	o, st, err := l.begin()
	if err != nil {
		return err
	}
	meta, ok, err := getToken(st, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenNotFound
	}
	meta.Fee = fee.Clone()
	if err := putToken(st, id, meta); err != nil {
		return err
	}
	if err := l.commit(o); err != nil {
		return err
	}

	l.log.Info().Str("token", id.String()).Str("fee", fee.Dec()).Msg("token fee updated")
	return nil
}
