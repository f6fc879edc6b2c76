package events

import (
	"math/big"

	"milkchain/core/types"
)

const (
	// TypeTransfer is emitted for every fungible balance movement. Mints are
	// reported from the zero account and burns to the zero account.
	TypeTransfer = "token.transfer"
	// TypeApproval is emitted when an owner changes a spender allowance.
	TypeApproval = "token.approval"
)

type Transfer struct {
	Asset  string
	From   [20]byte
	To     [20]byte
	Amount *big.Int
}

func (Transfer) EventType() string { return TypeTransfer }

func (e Transfer) Event() *types.Event {
	attrs := map[string]string{}
	if asset := normalizeAsset(e.Asset); asset != "" {
		attrs["asset"] = asset
	}
	attrs["from"] = formatAccount(e.From)
	attrs["to"] = formatAccount(e.To)
	attrs["amount"] = formatAmount(e.Amount)
	return &types.Event{Type: TypeTransfer, Attributes: attrs}
}

type Approval struct {
	Asset   string
	Owner   [20]byte
	Spender [20]byte
	Amount  *big.Int
}

func (Approval) EventType() string { return TypeApproval }

func (e Approval) Event() *types.Event {
	return &types.Event{Type: TypeApproval, Attributes: map[string]string{
		"asset":   normalizeAsset(e.Asset),
		"owner":   formatAccount(e.Owner),
		"spender": formatAccount(e.Spender),
		"amount":  formatAmount(e.Amount),
	}}
}
