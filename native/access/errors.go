package access

import (
	"errors"
	"fmt"

	"milkchain/crypto"
)

var (
	ErrUnauthorized       = errors.New("access: unauthorized")
	ErrAlreadyInitialized = errors.New("access: registry already initialized")
	ErrRenounceForOther   = errors.New("access: can only renounce roles for self")
	errNilState           = errors.New("access: state not configured")
)

// UnauthorizedError identifies the account and the role it was missing.
type UnauthorizedError struct {
	Namespace string
	Account   [20]byte
	Role      Role
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("access: %s account %s is missing role %s (%s)",
		e.Namespace, crypto.FormatAccount(e.Account), e.Role.Hex(), e.Role)
}

func (e *UnauthorizedError) Unwrap() error { return ErrUnauthorized }
