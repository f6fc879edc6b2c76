package rewards

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"milkchain/core/events"
	"milkchain/core/state"
	"milkchain/native/access"
	"milkchain/storage"
)

func testAddr(fill byte) [20]byte {
	var out [20]byte
	copy(out[:], bytes.Repeat([]byte{fill}, 20))
	return out
}

func newTestRegistry(t *testing.T) (*Registry, *events.Recorder, [20]byte, [20]byte) {
	t.Helper()
	mgr := state.NewManager(storage.NewMemDB())
	roles := access.NewRegistry(mgr, ModuleName)
	deployer := testAddr(0x01)
	admin := testAddr(0x02)
	if err := roles.Initialize(deployer); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := roles.GrantRole(deployer, access.AdminRole, admin); err != nil {
		t.Fatalf("grant admin: %v", err)
	}
	reg := NewRegistry(mgr, roles)
	rec := &events.Recorder{}
	reg.SetEmitter(rec)
	return reg, rec, deployer, admin
}

func TestRarityRollsDefaultUntilSet(t *testing.T) {
	reg, _, _, _ := newTestRegistry(t)
	got, err := reg.RarityRolls()
	if err != nil {
		t.Fatalf("rarity rolls: %v", err)
	}
	if got != DefaultThresholds() {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestSetRarityRollsRequiresAdmin(t *testing.T) {
	reg, _, deployer, _ := newTestRegistry(t)
	err := reg.SetRarityRolls(deployer, Thresholds{1, 2, 3, 4, 5, 5})
	var unauthorized *access.UnauthorizedError
	if !errors.As(err, &unauthorized) || unauthorized.Role != access.AdminRole {
		t.Fatalf("expected missing ADMIN_ROLE, got %v", err)
	}
}

func TestSetRarityRollsStoresAllFields(t *testing.T) {
	reg, rec, _, admin := newTestRegistry(t)
	if err := reg.SetRarityRolls(admin, Thresholds{1, 2, 3, 4, 5, 5}); err != nil {
		t.Fatalf("set rarity rolls: %v", err)
	}
	getters := []struct {
		name string
		get  func() (uint64, error)
		want uint64
	}{
		{"common", reg.CommonRoll, 1},
		{"uncommon", reg.UncommonRoll, 2},
		{"rare", reg.RareRoll, 3},
		{"epic", reg.EpicRoll, 4},
		{"legendary", reg.LegendaryRoll, 5},
		{"max", reg.MaxRarityRoll, 5},
	}
	for _, g := range getters {
		got, err := g.get()
		if err != nil || got != g.want {
			t.Fatalf("%s: expected %d, got %d (%v)", g.name, g.want, got, err)
		}
	}
	if len(rec.OfType(events.TypeRarityRollsUpdated)) != 1 {
		t.Fatalf("expected rarity update event")
	}
}

func TestSetRarityRollsRejectsOutOfOrderAtomically(t *testing.T) {
	reg, _, _, admin := newTestRegistry(t)
	if err := reg.SetRarityRolls(admin, Thresholds{60, 80, 90, 98, 101, 100}); !errors.Is(err, ErrOutOfOrderThresholds) {
		t.Fatalf("expected ErrOutOfOrderThresholds, got %v", err)
	}
	got, err := reg.RarityRolls()
	if err != nil || got != DefaultThresholds() {
		t.Fatalf("rejected update must not change thresholds, got %+v (%v)", got, err)
	}
}

func TestSetRewardRoundTripsEveryKey(t *testing.T) {
	reg, rec, _, admin := newTestRegistry(t)
	payload, err := EncodePayload(big.NewInt(1), big.NewInt(5), ids(1, 2, 3, 4, 5))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, category := range Categories {
		for _, tier := range Tiers {
			if err := reg.SetReward(admin, category, tier, payload); err != nil {
				t.Fatalf("set %s/%s: %v", category, tier, err)
			}
			got, ok, err := reg.Reward(category, tier)
			if err != nil || !ok {
				t.Fatalf("get %s/%s: ok=%v err=%v", category, tier, ok, err)
			}
			if !bytes.Equal(got, payload) {
				t.Fatalf("%s/%s: payload mismatch", category, tier)
			}
		}
	}
	if n := len(rec.OfType(events.TypeRewardUpdated)); n != 10 {
		t.Fatalf("expected 10 reward events, got %d", n)
	}
}

func TestSetRewardOverwritesAndKeepsOpaqueBytes(t *testing.T) {
	reg, _, _, admin := newTestRegistry(t)
	if err := reg.SetReward(admin, CategoryMilk, TierRare, []byte{0x01}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := reg.SetReward(admin, CategoryMilk, TierRare, []byte("not abi at all")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, err := reg.Reward(CategoryMilk, TierRare)
	if err != nil || string(got) != "not abi at all" {
		t.Fatalf("unexpected payload %q (%v)", got, err)
	}
	if _, ok, _ := reg.Reward(CategoryItem, TierRare); ok {
		t.Fatalf("unset key should be absent")
	}
}

func TestSetRewardRejectsInvalidKeys(t *testing.T) {
	reg, _, _, admin := newTestRegistry(t)
	outsider := testAddr(0x09)

	err := reg.SetReward(outsider, Category(2), TierCommon, nil)
	var invalid *InvalidParametersError
	if !errors.As(err, &invalid) || invalid.Field != "category" {
		t.Fatalf("expected invalid category, got %v", err)
	}
	err = reg.SetReward(admin, CategoryMilk, Tier(6), nil)
	if !errors.As(err, &invalid) || invalid.Field != "tier" {
		t.Fatalf("expected invalid tier, got %v", err)
	}
	if err := reg.SetReward(outsider, CategoryMilk, TierCommon, nil); !errors.Is(err, access.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
