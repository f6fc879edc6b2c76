package rewards

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var payloadArgs = abi.Arguments{
	{Name: "min", Type: mustType("uint256")},
	{Name: "max", Type: mustType("uint256")},
	{Name: "ids", Type: mustType("uint256[]")},
}

func mustType(name string) abi.Type {
	t, err := abi.NewType(name, "", nil)
	if err != nil {
		panic(err)
	}
	return t
}

// Reward is a decoded reward payload. The concrete type depends on the
// category the payload was stored under.
type Reward interface {
	Category() Category
}

// MilkReward grants a whole-token amount drawn from [Min, Max].
type MilkReward struct {
	Min *big.Int
	Max *big.Int
}

func (MilkReward) Category() Category { return CategoryMilk }

// ItemReward grants a quantity drawn from [Min, Max] of one of IDs.
type ItemReward struct {
	Min *big.Int
	Max *big.Int
	IDs []*big.Int
}

func (ItemReward) Category() Category { return CategoryItem }

// EncodePayload ABI encodes (uint256 min, uint256 max, uint256[] ids).
func EncodePayload(min, max *big.Int, ids []*big.Int) ([]byte, error) {
	if min == nil || max == nil || min.Sign() < 0 || max.Sign() < 0 {
		return nil, fmt.Errorf("%w: bounds must be non-negative", ErrMalformedPayload)
	}
	if ids == nil {
		ids = []*big.Int{}
	}
	return payloadArgs.Pack(min, max, ids)
}

// DecodePayload interprets a stored payload for the provided category.
func DecodePayload(category Category, payload []byte) (Reward, error) {
	if !category.Valid() {
		return nil, &InvalidParametersError{Field: "category", Value: uint8(category)}
	}
	values, err := payloadArgs.Unpack(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if len(values) != 3 {
		return nil, fmt.Errorf("%w: expected 3 values, got %d", ErrMalformedPayload, len(values))
	}
	min, okMin := values[0].(*big.Int)
	max, okMax := values[1].(*big.Int)
	ids, okIDs := values[2].([]*big.Int)
	if !okMin || !okMax || !okIDs {
		return nil, fmt.Errorf("%w: unexpected value types", ErrMalformedPayload)
	}
	if min.Cmp(max) > 0 {
		return nil, fmt.Errorf("%w: min %s exceeds max %s", ErrMalformedPayload, min, max)
	}
	if category == CategoryMilk {
		return MilkReward{Min: min, Max: max}, nil
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: item reward lists no ids", ErrMalformedPayload)
	}
	return ItemReward{Min: min, Max: max, IDs: ids}, nil
}
