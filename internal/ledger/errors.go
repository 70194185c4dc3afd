// Package ledger implements the multi-token ledger engine: token
// registry, balances, allowances, the immutable transaction log, and the
// controller set, all persisted in storage regions.
package ledger

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// Controller and token management errors. The exact texts are part of the
// external interface.
var (
	ErrNotAuthorized  = errors.New("Not authorized")
	ErrLastController = errors.New("Cannot remove the last controller")
	ErrTokenNotFound  = errors.New("Token not found")
	ErrTokenExists    = errors.New("Token already exists")
)

// Query errors.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// ErrKind discriminates operation failures.
type ErrKind uint8

// Operation failure kinds.
const (
	KindBadFee ErrKind = iota
	KindBadBurn
	KindInsufficientFunds
	KindTooOld
	KindCreatedInFuture
	KindDuplicate
	KindTemporarilyUnavailable
	KindGenericError
	KindAllowanceChanged
	KindExpired
)

// String returns the wire name of the failure kind.
func (k ErrKind) String() string {
	switch k {
	case KindBadFee:
		return "BadFee"
	case KindBadBurn:
		return "BadBurn"
	case KindInsufficientFunds:
		return "InsufficientFunds"
	case KindTooOld:
		return "TooOld"
	case KindCreatedInFuture:
		return "CreatedInFuture"
	case KindDuplicate:
		return "Duplicate"
	case KindTemporarilyUnavailable:
		return "TemporarilyUnavailable"
	case KindGenericError:
		return "GenericError"
	case KindAllowanceChanged:
		return "AllowanceChanged"
	case KindExpired:
		return "Expired"
	default:
		return fmt.Sprintf("ErrKind(%d)", uint8(k))
	}
}

// OpError is a structured operation failure. Only the fields belonging to
// the kind are set.
type OpError struct {
	Kind ErrKind

	ExpectedFee      *uint256.Int // BadFee
	MinBurnAmount    *uint256.Int // BadBurn
	Balance          *uint256.Int // InsufficientFunds
	LedgerTime       uint64       // CreatedInFuture, Expired
	DuplicateOf      uint64       // Duplicate
	CurrentAllowance *uint256.Int // AllowanceChanged
	Code             uint64       // GenericError
	Message          string       // GenericError
}

// Error renders the failure for logs and plain-text consumers.
func (e *OpError) Error() string {
	switch e.Kind {
	case KindBadFee:
		return fmt.Sprintf("bad fee: expected %s", e.ExpectedFee.Dec())
	case KindBadBurn:
		return fmt.Sprintf("bad burn: minimum %s", e.MinBurnAmount.Dec())
	case KindInsufficientFunds:
		return fmt.Sprintf("insufficient funds: balance %s", e.Balance.Dec())
	case KindTooOld:
		return "transaction too old"
	case KindCreatedInFuture:
		return fmt.Sprintf("created in future: ledger time %d", e.LedgerTime)
	case KindDuplicate:
		return fmt.Sprintf("duplicate of transaction %d", e.DuplicateOf)
	case KindTemporarilyUnavailable:
		return "temporarily unavailable"
	case KindGenericError:
		return fmt.Sprintf("generic error %d: %s", e.Code, e.Message)
	case KindAllowanceChanged:
		return fmt.Sprintf("allowance changed: current %s", e.CurrentAllowance.Dec())
	case KindExpired:
		return fmt.Sprintf("approval expired: ledger time %d", e.LedgerTime)
	default:
		return e.Kind.String()
	}
}

func errBadFee(expected *uint256.Int) *OpError {
	return &OpError{Kind: KindBadFee, ExpectedFee: expected.Clone()}
}

func errInsufficientFunds(balance *uint256.Int) *OpError {
	return &OpError{Kind: KindInsufficientFunds, Balance: balance.Clone()}
}

func errTooOld() *OpError {
	return &OpError{Kind: KindTooOld}
}

func errCreatedInFuture(now uint64) *OpError {
	return &OpError{Kind: KindCreatedInFuture, LedgerTime: now}
}

func errDuplicate(txID uint64) *OpError {
	return &OpError{Kind: KindDuplicate, DuplicateOf: txID}
}

func errAllowanceChanged(current *uint256.Int) *OpError {
	return &OpError{Kind: KindAllowanceChanged, CurrentAllowance: current.Clone()}
}

func errExpired(now uint64) *OpError {
	return &OpError{Kind: KindExpired, LedgerTime: now}
}

func errGeneric(format string, args ...any) *OpError {
	return &OpError{Kind: KindGenericError, Message: fmt.Sprintf(format, args...)}
}
