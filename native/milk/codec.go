package milk

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var depositArgs = abi.Arguments{{Type: mustType("uint256")}}

func mustType(name string) abi.Type {
	t, err := abi.NewType(name, "", nil)
	if err != nil {
		panic(err)
	}
	return t
}

// DecodeDeposit extracts the amount from an ABI encoded uint256 bridge
// payload.
func DecodeDeposit(payload []byte) (*big.Int, error) {
	values, err := depositArgs.Unpack(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDeposit, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: expected 1 value, got %d", ErrInvalidDeposit, len(values))
	}
	amount, ok := values[0].(*big.Int)
	if !ok || amount == nil {
		return nil, fmt.Errorf("%w: unexpected value type %T", ErrInvalidDeposit, values[0])
	}
	return new(big.Int).Set(amount), nil
}

// EncodeDeposit produces the bridge payload accepted by Deposit.
func EncodeDeposit(amount *big.Int) ([]byte, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	return depositArgs.Pack(amount)
}
