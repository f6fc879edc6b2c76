package events

import (
	"math/big"

	"milkchain/core/types"
)

// TypeTokenSupply is emitted by every ledger operation that creates or
// destroys milk.
const TypeTokenSupply = "token.supply"

// SupplyReason names the ledger operation behind a supply change.
type SupplyReason string

const (
	SupplyDeposit      SupplyReason = "deposit"
	SupplyMint         SupplyReason = "mint"
	SupplyGameMint     SupplyReason = "game_mint"
	SupplyWithdraw     SupplyReason = "withdraw"
	SupplyGameWithdraw SupplyReason = "game_withdraw"
)

// Increases reports whether the operation adds to total supply.
func (r SupplyReason) Increases() bool {
	switch r {
	case SupplyDeposit, SupplyMint, SupplyGameMint:
		return true
	default:
		return false
	}
}

// TokenSupply records the supply after a mint or burn. Amount is always
// positive; Reason carries the direction.
type TokenSupply struct {
	Token   string
	Account [20]byte
	Amount  *big.Int
	Total   *big.Int
	Reason  SupplyReason
}

func (TokenSupply) EventType() string { return TypeTokenSupply }

// Delta returns the signed change applied to total supply.
func (e TokenSupply) Delta() *big.Int {
	delta := new(big.Int)
	if e.Amount != nil {
		delta.Set(e.Amount)
	}
	if !e.Reason.Increases() {
		delta.Neg(delta)
	}
	return delta
}

func (e TokenSupply) Event() *types.Event {
	token := normalizeAsset(e.Token)
	if token == "" {
		token = "UNKNOWN"
	}
	return &types.Event{Type: TypeTokenSupply, Attributes: map[string]string{
		"token":   token,
		"account": formatAccount(e.Account),
		"reason":  string(e.Reason),
		"delta":   e.Delta().String(),
		"total":   formatAmount(e.Total),
	}}
}
