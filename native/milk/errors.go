package milk

import (
	"errors"
	"fmt"
	"math/big"

	"milkchain/crypto"
)

var (
	ErrZeroAddress           = errors.New("milk: zero address")
	ErrInsufficientBalance   = errors.New("milk: insufficient balance")
	ErrInsufficientAllowance = errors.New("milk: insufficient allowance")
	ErrInvalidAmount         = errors.New("milk: amount must be non-negative")
	ErrSupplyOverflow        = errors.New("milk: total supply exceeds 2^256-1")
	ErrInvalidDeposit        = errors.New("milk: invalid deposit payload")
	errNilState              = errors.New("milk: state not configured")
)

// Side names the endpoint of an operation that was rejected.
type Side uint8

const (
	SideSender Side = iota
	SideRecipient
	SideSpender
)

func (s Side) String() string {
	switch s {
	case SideSender:
		return "sender"
	case SideRecipient:
		return "recipient"
	case SideSpender:
		return "spender"
	default:
		return "unknown"
	}
}

// ZeroAddressError reports an operation whose sender, recipient or spender was
// the null account.
type ZeroAddressError struct {
	Op   string
	Side Side
}

func (e *ZeroAddressError) Error() string {
	return fmt.Sprintf("milk: %s %s is the zero address", e.Op, e.Side)
}

func (e *ZeroAddressError) Unwrap() error { return ErrZeroAddress }

// InsufficientBalanceError reports a debit that exceeds the source balance.
type InsufficientBalanceError struct {
	Account   [20]byte
	Required  *big.Int
	Available *big.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("milk: account %s balance %s below required %s",
		crypto.FormatAccount(e.Account), e.Available, e.Required)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

type InsufficientAllowanceError struct {
	Owner     [20]byte
	Spender   [20]byte
	Required  *big.Int
	Available *big.Int
}

func (e *InsufficientAllowanceError) Error() string {
	return fmt.Sprintf("milk: spender %s allowance %s from %s below required %s",
		crypto.FormatAccount(e.Spender), e.Available, crypto.FormatAccount(e.Owner), e.Required)
}

func (e *InsufficientAllowanceError) Unwrap() error { return ErrInsufficientAllowance }
