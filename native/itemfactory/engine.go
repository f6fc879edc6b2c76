package itemfactory

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"milkchain/core/events"
	"milkchain/crypto"
	"milkchain/native/access"
	nativecommon "milkchain/native/common"
	"milkchain/native/milk"
	"milkchain/native/rewards"
)

const (
	// ModuleName scopes the item factory's access registry, pauses and module
	// account.
	ModuleName = "itemfactory"

	// DefaultCooldown is the minimum number of seconds between two claims by
	// the same account.
	DefaultCooldown = uint64(86400)
)

var nonceKey = []byte("itemfactory/nonce")

type engineState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
	Snapshot() int
	RevertToSnapshot(id int) error
}

// Config carries the engine settings that are not persisted in state.
type Config struct {
	URI      string
	Cooldown uint64
}

// Engine runs the daily claim and owns the item inventory the claims mint
// into.
type Engine struct {
	st       engineState
	roles    *access.Registry
	rewards  *rewards.Registry
	ledger   *milk.Ledger
	address  [20]byte
	uri      string
	cooldown uint64
	emitter  events.Emitter
	pauses   nativecommon.PauseView
}

// ClaimResult describes what a successful claim rolled and granted.
type ClaimResult struct {
	Account      [20]byte
	Timestamp    uint64
	Nonce        uint64
	Roll         uint64
	Tier         rewards.Tier
	Milk         *big.Int
	ItemID       *big.Int
	ItemQuantity *big.Int
}

// NewEngine wires the claim engine to its collaborators. A zero cooldown
// selects DefaultCooldown.
func NewEngine(st engineState, roles *access.Registry, rewardsRegistry *rewards.Registry, ledger *milk.Ledger, cfg Config) *Engine {
	cooldown := cfg.Cooldown
	if cooldown == 0 {
		cooldown = DefaultCooldown
	}
	return &Engine{
		st:       st,
		roles:    roles,
		rewards:  rewardsRegistry,
		ledger:   ledger,
		address:  crypto.ModuleAddress(ModuleName),
		uri:      cfg.URI,
		cooldown: cooldown,
		emitter:  events.NoopEmitter{},
	}
}

// SetEmitter configures the event emitter used to broadcast claims and item
// movements. Passing nil resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// Address is the engine's own account, the one the ledger must grant
// CONTRACT_ROLE to.
func (e *Engine) Address() [20]byte { return e.address }

// Roles exposes the item factory's access registry.
func (e *Engine) Roles() *access.Registry { return e.roles }

// Cooldown returns the claim window length in seconds.
func (e *Engine) Cooldown() uint64 { return e.cooldown }

// Initialize grants the deployer DefaultAdminRole on the item factory and
// persists the configured URI.
func (e *Engine) Initialize(deployer [20]byte) error {
	if e == nil || e.st == nil {
		return errNilState
	}
	if err := e.roles.Initialize(deployer); err != nil {
		return err
	}
	return e.st.KVPut(uriKey, e.uri)
}

// LastClaim returns the timestamp of the account's most recent claim and
// whether one is on record. A stored timestamp of zero reads as no claim.
func (e *Engine) LastClaim(account [20]byte) (uint64, bool, error) {
	if e == nil || e.st == nil {
		return 0, false, errNilState
	}
	var ts uint64
	if _, err := e.st.KVGet(lastClaimKey(account), &ts); err != nil {
		return 0, false, err
	}
	return ts, ts != 0, nil
}

// NextClaimAt returns the earliest timestamp at which the account may claim.
// Accounts that never claimed may claim at any time and report zero.
func (e *Engine) NextClaimAt(account [20]byte) (uint64, error) {
	last, ok, err := e.LastClaim(account)
	if err != nil || !ok {
		return 0, err
	}
	return e.retryAfter(last), nil
}

// Nonce returns the value mixed into the next claim's roll.
func (e *Engine) Nonce() (uint64, error) {
	if e == nil || e.st == nil {
		return 0, errNilState
	}
	var n uint64
	if _, err := e.st.KVGet(nonceKey, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func (e *Engine) retryAfter(last uint64) uint64 {
	if last > math.MaxUint64-e.cooldown {
		return math.MaxUint64
	}
	return last + e.cooldown
}

// Claim rolls a rarity tier for account and grants the rewards configured for
// it in every category. Anyone may submit a claim on behalf of an account.
// Either the whole claim applies or state is left untouched. Ledger events
// emitted before a failing step are not retracted; callers that run Claim
// outside core.Node must buffer the ledger emitter and drop it on error.
func (e *Engine) Claim(account [20]byte, timestamp uint64) (*ClaimResult, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	if account == ([20]byte{}) {
		return nil, fmt.Errorf("%w: claimant", ErrZeroAddress)
	}
	if err := e.ledger.Roles().Require(access.ContractRole, e.address); err != nil {
		return nil, err
	}
	last, claimed, err := e.LastClaim(account)
	if err != nil {
		return nil, err
	}
	if claimed {
		if next := e.retryAfter(last); timestamp < next {
			return nil, &AlreadyClaimedError{Account: account, LastClaim: last, RetryAfter: next}
		}
	}

	thresholds, err := e.rewards.RarityRolls()
	if err != nil {
		return nil, err
	}
	nonce, err := e.Nonce()
	if err != nil {
		return nil, err
	}
	seed := claimSeed(account, timestamp, nonce)
	roll := rollFromSeed(seed, thresholds.MaxRoll)
	result := &ClaimResult{
		Account:   account,
		Timestamp: timestamp,
		Nonce:     nonce,
		Roll:      roll,
		Tier:      thresholds.Tier(roll),
		Milk:      big.NewInt(0),
	}

	snap := e.st.Snapshot()
	if err := e.applyClaim(result, seed); err != nil {
		if revertErr := e.st.RevertToSnapshot(snap); revertErr != nil {
			return nil, errors.Join(err, revertErr)
		}
		return nil, err
	}

	e.emitter.Emit(events.DailyClaim{
		Account:      account,
		Timestamp:    timestamp,
		Nonce:        nonce,
		Roll:         roll,
		Tier:         result.Tier.String(),
		MilkAmount:   new(big.Int).Set(result.Milk),
		ItemID:       result.ItemID,
		ItemQuantity: result.ItemQuantity,
	})
	return result, nil
}

func (e *Engine) applyClaim(result *ClaimResult, seed [32]byte) error {
	for _, category := range rewards.Categories {
		payload, ok, err := e.rewards.Reward(category, result.Tier)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		decoded, err := rewards.DecodePayload(category, payload)
		if err != nil {
			return fmt.Errorf("%s/%s: %w", category, result.Tier, err)
		}
		stream := categorySeed(seed, category, 0)
		switch reward := decoded.(type) {
		case rewards.MilkReward:
			amount := drawInRange(stream, reward.Min, reward.Max)
			scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(e.ledger.Metadata().Decimals)), nil)
			amount.Mul(amount, scale)
			if err := e.ledger.GameMint(e.address, result.Account, amount); err != nil {
				return err
			}
			result.Milk = amount
		case rewards.ItemReward:
			quantity := drawInRange(stream, reward.Min, reward.Max)
			id := reward.IDs[pickIndex(categorySeed(seed, category, 1), len(reward.IDs))]
			if err := e.mintItem(result.Account, id, quantity); err != nil {
				return err
			}
			result.ItemID = new(big.Int).Set(id)
			result.ItemQuantity = quantity
		}
	}
	if err := e.st.KVPut(lastClaimKey(result.Account), result.Timestamp); err != nil {
		return err
	}
	return e.st.KVPut(nonceKey, result.Nonce+1)
}

func (e *Engine) guard() error {
	if e == nil || e.st == nil {
		return errNilState
	}
	return nativecommon.Guard(e.pauses, ModuleName)
}

func (e *Engine) gate(role access.Role, caller [20]byte) error {
	if err := e.guard(); err != nil {
		return err
	}
	return e.roles.Require(role, caller)
}

func lastClaimKey(account [20]byte) []byte {
	return append([]byte("itemfactory/lastclaim/"), account[:]...)
}
