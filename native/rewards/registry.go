package rewards

import (
	"fmt"

	"milkchain/core/events"
	"milkchain/native/access"
	nativecommon "milkchain/native/common"
)

// ModuleName scopes the rewards tables. They share the item factory's access
// registry.
const ModuleName = "itemfactory"

var thresholdsKey = []byte("rewards/thresholds")

type registryState interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// Registry stores the rarity thresholds and the reward payload table.
type Registry struct {
	st       registryState
	roles    *access.Registry
	defaults Thresholds
	emitter  events.Emitter
	pauses   nativecommon.PauseView
}

// NewRegistry creates a rewards registry gated by ADMIN_ROLE on roles.
func NewRegistry(st registryState, roles *access.Registry) *Registry {
	return &Registry{
		st:       st,
		roles:    roles,
		defaults: DefaultThresholds(),
		emitter:  events.NoopEmitter{},
	}
}

// SetEmitter configures the event emitter used to broadcast updates. Passing
// nil resets the emitter to a no-op implementation.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

func (r *Registry) SetPauses(p nativecommon.PauseView) {
	if r == nil {
		return
	}
	r.pauses = p
}

// SetDefaults replaces the thresholds reported before any call to
// SetRarityRolls. Invalid values are rejected.
func (r *Registry) SetDefaults(t Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.defaults = t
	return nil
}

// RarityRolls returns the thresholds currently in effect.
func (r *Registry) RarityRolls() (Thresholds, error) {
	if r == nil || r.st == nil {
		return Thresholds{}, errNilState
	}
	var stored Thresholds
	ok, err := r.st.KVGet(thresholdsKey, &stored)
	if err != nil {
		return Thresholds{}, err
	}
	if !ok {
		return r.defaults, nil
	}
	return stored, nil
}

func (r *Registry) CommonRoll() (uint64, error) {
	t, err := r.RarityRolls()
	return t.Common, err
}

func (r *Registry) UncommonRoll() (uint64, error) {
	t, err := r.RarityRolls()
	return t.Uncommon, err
}

func (r *Registry) RareRoll() (uint64, error) {
	t, err := r.RarityRolls()
	return t.Rare, err
}

func (r *Registry) EpicRoll() (uint64, error) {
	t, err := r.RarityRolls()
	return t.Epic, err
}

func (r *Registry) LegendaryRoll() (uint64, error) {
	t, err := r.RarityRolls()
	return t.Legendary, err
}

func (r *Registry) MaxRarityRoll() (uint64, error) {
	t, err := r.RarityRolls()
	return t.MaxRoll, err
}

// SetRarityRolls replaces all six thresholds. The caller must hold
// ADMIN_ROLE.
func (r *Registry) SetRarityRolls(caller [20]byte, t Thresholds) error {
	if err := r.gate(caller); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if err := r.st.KVPut(thresholdsKey, &t); err != nil {
		return err
	}
	r.emitter.Emit(events.RarityRollsUpdated{
		Common:    t.Common,
		Uncommon:  t.Uncommon,
		Rare:      t.Rare,
		Epic:      t.Epic,
		Legendary: t.Legendary,
		MaxRoll:   t.MaxRoll,
		Sender:    caller,
	})
	return nil
}

// SetReward stores payload verbatim under (category, tier). Out of range keys
// are rejected before the role check. The caller must hold ADMIN_ROLE.
func (r *Registry) SetReward(caller [20]byte, category Category, tier Tier, payload []byte) error {
	if err := validateKey(category, tier); err != nil {
		return err
	}
	if err := r.gate(caller); err != nil {
		return err
	}
	stored := append([]byte{}, payload...)
	if err := r.st.KVPut(rewardKey(category, tier), stored); err != nil {
		return err
	}
	r.emitter.Emit(events.RewardUpdated{
		Category:    uint8(category),
		Tier:        uint8(tier),
		PayloadSize: len(stored),
		Sender:      caller,
	})
	return nil
}

// Reward returns the payload stored under (category, tier) and whether one
// has been configured.
func (r *Registry) Reward(category Category, tier Tier) ([]byte, bool, error) {
	if r == nil || r.st == nil {
		return nil, false, errNilState
	}
	if err := validateKey(category, tier); err != nil {
		return nil, false, err
	}
	var payload []byte
	ok, err := r.st.KVGet(rewardKey(category, tier), &payload)
	if err != nil || !ok {
		return nil, false, err
	}
	if payload == nil {
		payload = []byte{}
	}
	return payload, true, nil
}

func (r *Registry) gate(caller [20]byte) error {
	if r == nil || r.st == nil {
		return errNilState
	}
	if err := nativecommon.Guard(r.pauses, ModuleName); err != nil {
		return err
	}
	return r.roles.Require(access.AdminRole, caller)
}

func validateKey(category Category, tier Tier) error {
	if !category.Valid() {
		return &InvalidParametersError{Field: "category", Value: uint8(category)}
	}
	if !tier.Valid() {
		return &InvalidParametersError{Field: "tier", Value: uint8(tier)}
	}
	return nil
}

func rewardKey(category Category, tier Tier) []byte {
	return []byte(fmt.Sprintf("rewards/payload/%d/%d", category, tier))
}
