package rewards

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfOrderThresholds    = errors.New("rewards: rarity thresholds out of order")
	ErrInvalidRewardParameters = errors.New("rewards: invalid reward parameters")
	ErrMalformedPayload        = errors.New("rewards: malformed reward payload")
	errNilState                = errors.New("rewards: state not configured")
)

// OutOfOrderError names the first adjacent threshold pair that violates the
// ascending order.
type OutOfOrderError struct {
	Pair string
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("rewards: rarity thresholds out of order at %s", e.Pair)
}

func (e *OutOfOrderError) Unwrap() error { return ErrOutOfOrderThresholds }

// InvalidParametersError names the reward key field that was out of range.
type InvalidParametersError struct {
	Field string
	Value uint8
}

func (e *InvalidParametersError) Error() string {
	return fmt.Sprintf("rewards: invalid %s %d", e.Field, e.Value)
}

func (e *InvalidParametersError) Unwrap() error { return ErrInvalidRewardParameters }
