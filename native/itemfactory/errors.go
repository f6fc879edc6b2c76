package itemfactory

import (
	"errors"
	"fmt"

	"milkchain/crypto"
)

var (
	ErrAlreadyClaimedToday = errors.New("itemfactory: claiming more than once in a day")
	ErrZeroAddress         = errors.New("itemfactory: zero address")
	ErrInvalidAmount       = errors.New("itemfactory: amount must be non-negative")
	ErrInsufficientItems   = errors.New("itemfactory: insufficient item balance")
	ErrNotOwnerNorApproved = errors.New("itemfactory: caller is not owner nor approved")
	ErrSelfApproval        = errors.New("itemfactory: setting approval status for self")
	ErrItemSupplyOverflow  = errors.New("itemfactory: item supply exceeds 2^256-1")
	errNilState            = errors.New("itemfactory: state not configured")
)

// AlreadyClaimedError reports a claim inside the cooldown window together with
// the earliest timestamp at which the account may claim again.
type AlreadyClaimedError struct {
	Account    [20]byte
	LastClaim  uint64
	RetryAfter uint64
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("itemfactory: account %s already claimed at %d, retry after %d",
		crypto.FormatAccount(e.Account), e.LastClaim, e.RetryAfter)
}

func (e *AlreadyClaimedError) Unwrap() error { return ErrAlreadyClaimedToday }
