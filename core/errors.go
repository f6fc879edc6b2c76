package core

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyBootstrapped = errors.New("core: state already bootstrapped")
	ErrUnknownNamespace    = errors.New("core: unknown role namespace")
)

type UnknownNamespaceError struct {
	Namespace string
}

func (e *UnknownNamespaceError) Error() string {
	return fmt.Sprintf("core: unknown role namespace %q", e.Namespace)
}

func (e *UnknownNamespaceError) Unwrap() error { return ErrUnknownNamespace }
