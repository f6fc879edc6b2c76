package events

import (
	"math/big"
	"strconv"

	"milkchain/core/types"
)

const (
	// TypeRarityRollsUpdated is emitted when the rarity thresholds change.
	TypeRarityRollsUpdated = "factory.rarity.updated"
	// TypeRewardUpdated is emitted when a reward payload is stored.
	TypeRewardUpdated = "factory.reward.updated"
	// TypeDailyClaim is emitted for every successful daily claim.
	TypeDailyClaim = "factory.claim"
	// TypeItemTransfer is emitted for item mints and transfers.
	TypeItemTransfer = "factory.item.transfer"
	// TypeItemApproval is emitted when an owner toggles an item operator.
	TypeItemApproval = "factory.item.approval"
	// TypeURIUpdated is emitted when the item metadata URI changes.
	TypeURIUpdated = "factory.uri.updated"
)

type RarityRollsUpdated struct {
	Common    uint64
	Uncommon  uint64
	Rare      uint64
	Epic      uint64
	Legendary uint64
	MaxRoll   uint64
	Sender    [20]byte
}

func (RarityRollsUpdated) EventType() string { return TypeRarityRollsUpdated }

func (e RarityRollsUpdated) Event() *types.Event {
	return &types.Event{Type: TypeRarityRollsUpdated, Attributes: map[string]string{
		"common":    strconv.FormatUint(e.Common, 10),
		"uncommon":  strconv.FormatUint(e.Uncommon, 10),
		"rare":      strconv.FormatUint(e.Rare, 10),
		"epic":      strconv.FormatUint(e.Epic, 10),
		"legendary": strconv.FormatUint(e.Legendary, 10),
		"maxRoll":   strconv.FormatUint(e.MaxRoll, 10),
		"sender":    formatAccount(e.Sender),
	}}
}

// RewardUpdated reports the key of a stored reward payload. The payload
// itself is summarised by its length since it is opaque to the registry.
type RewardUpdated struct {
	Category    uint8
	Tier        uint8
	PayloadSize int
	Sender      [20]byte
}

func (RewardUpdated) EventType() string { return TypeRewardUpdated }

func (e RewardUpdated) Event() *types.Event {
	return &types.Event{Type: TypeRewardUpdated, Attributes: map[string]string{
		"category":    strconv.FormatUint(uint64(e.Category), 10),
		"tier":        strconv.FormatUint(uint64(e.Tier), 10),
		"payloadSize": strconv.Itoa(e.PayloadSize),
		"sender":      formatAccount(e.Sender),
	}}
}

type DailyClaim struct {
	Account      [20]byte
	Timestamp    uint64
	Nonce        uint64
	Roll         uint64
	Tier         string
	MilkAmount   *big.Int
	ItemID       *big.Int
	ItemQuantity *big.Int
}

func (DailyClaim) EventType() string { return TypeDailyClaim }

func (e DailyClaim) Event() *types.Event {
	attrs := map[string]string{
		"account":   formatAccount(e.Account),
		"timestamp": strconv.FormatUint(e.Timestamp, 10),
		"nonce":     strconv.FormatUint(e.Nonce, 10),
		"roll":      strconv.FormatUint(e.Roll, 10),
		"tier":      e.Tier,
		"milk":      formatAmount(e.MilkAmount),
	}
	if e.ItemID != nil {
		attrs["itemId"] = e.ItemID.String()
		attrs["itemQuantity"] = formatAmount(e.ItemQuantity)
	}
	return &types.Event{Type: TypeDailyClaim, Attributes: attrs}
}

type ItemTransfer struct {
	Operator [20]byte
	From     [20]byte
	To       [20]byte
	ID       *big.Int
	Amount   *big.Int
}

func (ItemTransfer) EventType() string { return TypeItemTransfer }

func (e ItemTransfer) Event() *types.Event {
	return &types.Event{Type: TypeItemTransfer, Attributes: map[string]string{
		"operator": formatAccount(e.Operator),
		"from":     formatAccount(e.From),
		"to":       formatAccount(e.To),
		"id":       formatAmount(e.ID),
		"amount":   formatAmount(e.Amount),
	}}
}

type ItemApproval struct {
	Owner    [20]byte
	Operator [20]byte
	Approved bool
}

func (ItemApproval) EventType() string { return TypeItemApproval }

func (e ItemApproval) Event() *types.Event {
	return &types.Event{Type: TypeItemApproval, Attributes: map[string]string{
		"owner":    formatAccount(e.Owner),
		"operator": formatAccount(e.Operator),
		"approved": strconv.FormatBool(e.Approved),
	}}
}

type URIUpdated struct {
	URI    string
	Sender [20]byte
}

func (URIUpdated) EventType() string { return TypeURIUpdated }

func (e URIUpdated) Event() *types.Event {
	return &types.Event{Type: TypeURIUpdated, Attributes: map[string]string{
		"uri":    e.URI,
		"sender": formatAccount(e.Sender),
	}}
}
