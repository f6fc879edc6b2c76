package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"milkchain/native/access"
	"milkchain/native/rewards"
)

const sampleGenesis = `deployer: "0x1111111111111111111111111111111111111111"
milk:
  grants:
    - role: DEPOSITOR_ROLE
      account: "0x2222222222222222222222222222222222222222"
itemfactory:
  grants:
    - role: ADMIN_ROLE
      account: "0x1111111111111111111111111111111111111111"
rarity:
  common: 1
  uncommon: 2
  rare: 3
  epic: 4
  legendary: 5
  maxRoll: 5
rewards:
  - category: milk
    tier: common
    min: "1"
    max: "5"
  - category: "1"
    tier: legendary
    min: "1"
    max: "2"
    ids: ["7", "8"]
`

func writeGenesis(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadGenesisResolvesEntries(t *testing.T) {
	g, err := LoadGenesis(writeGenesis(t, sampleGenesis))
	require.NoError(t, err)

	deployer, err := g.DeployerAccount()
	require.NoError(t, err)
	require.Equal(t, byte(0x11), deployer[0])

	grants, err := g.Milk.Resolve()
	require.NoError(t, err)
	require.Len(t, grants, 1)
	require.Equal(t, access.DepositorRole, grants[0].Role)
	require.Equal(t, byte(0x22), grants[0].Account[19])

	thresholds, ok := g.RarityThresholds()
	require.True(t, ok)
	require.Equal(t, uint64(5), thresholds.MaxRoll)

	seeds, err := g.ResolveRewards()
	require.NoError(t, err)
	require.Len(t, seeds, 2)
	require.Equal(t, rewards.CategoryItem, seeds[1].Category)
	require.Equal(t, rewards.TierLegendary, seeds[1].Tier)
	decoded, err := rewards.DecodePayload(seeds[1].Category, seeds[1].Payload)
	require.NoError(t, err)
	require.Len(t, decoded.(rewards.ItemReward).IDs, 2)
}

func TestLoadGenesisRequiresDeployer(t *testing.T) {
	_, err := LoadGenesis(writeGenesis(t, "milk:\n  grants: []\n"))
	require.ErrorContains(t, err, "deployer")
}

func TestResolveRewardsRejectsBadSeeds(t *testing.T) {
	cases := map[string]RewardSeed{
		"category": {Category: "gold", Tier: "common", Min: "1", Max: "2"},
		"tier":     {Category: "milk", Tier: "mythic", Min: "1", Max: "2"},
		"bounds":   {Category: "milk", Tier: "common", Min: "5", Max: "2"},
		"no ids":   {Category: "item", Tier: "common", Min: "1", Max: "2"},
		"negative": {Category: "milk", Tier: "common", Min: "-1", Max: "2"},
	}
	for name, seed := range cases {
		t.Run(name, func(t *testing.T) {
			g := &Genesis{Rewards: []RewardSeed{seed}}
			_, err := g.ResolveRewards()
			require.Error(t, err)
		})
	}
}
