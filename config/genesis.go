package config

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"milkchain/crypto"
	"milkchain/native/access"
	"milkchain/native/rewards"
)

// Genesis describes the initial deployment applied on first start: the
// deploying admin, role grants per registry and an optional reward table.
type Genesis struct {
	Deployer    string         `yaml:"deployer"`
	Milk        RegistryGrants `yaml:"milk"`
	ItemFactory RegistryGrants `yaml:"itemfactory"`
	Rarity      *Rarity        `yaml:"rarity,omitempty"`
	Rewards     []RewardSeed   `yaml:"rewards,omitempty"`
}

type RegistryGrants struct {
	Grants []RoleGrant `yaml:"grants"`
}

type RoleGrant struct {
	Role    string `yaml:"role"`
	Account string `yaml:"account"`
}

// RewardSeed is one reward table entry. Amounts are decimal strings so values
// beyond 64 bits survive YAML decoding.
type RewardSeed struct {
	Category string   `yaml:"category"`
	Tier     string   `yaml:"tier"`
	Min      string   `yaml:"min"`
	Max      string   `yaml:"max"`
	IDs      []string `yaml:"ids,omitempty"`
}

// ResolvedGrant is a RoleGrant with parsed identifiers.
type ResolvedGrant struct {
	Role    access.Role
	Account [20]byte
}

// ResolvedReward is a RewardSeed encoded into its stored payload.
type ResolvedReward struct {
	Category rewards.Category
	Tier     rewards.Tier
	Payload  []byte
}

// LoadGenesis reads and validates a YAML genesis file.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var g Genesis
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("genesis %s: %w", path, err)
	}
	if _, err := g.DeployerAccount(); err != nil {
		return nil, fmt.Errorf("genesis %s: %w", path, err)
	}
	return &g, nil
}

// DeployerAccount parses the deployer address.
func (g *Genesis) DeployerAccount() ([20]byte, error) {
	if strings.TrimSpace(g.Deployer) == "" {
		return [20]byte{}, fmt.Errorf("deployer address required")
	}
	account, err := crypto.ParseAccount(g.Deployer)
	if err != nil {
		return [20]byte{}, fmt.Errorf("deployer: %w", err)
	}
	return account, nil
}

// Resolve parses every grant in the registry section.
func (r RegistryGrants) Resolve() ([]ResolvedGrant, error) {
	out := make([]ResolvedGrant, 0, len(r.Grants))
	for i, grant := range r.Grants {
		name := strings.TrimSpace(grant.Role)
		if name == "" {
			return nil, fmt.Errorf("grant %d: role required", i)
		}
		account, err := crypto.ParseAccount(grant.Account)
		if err != nil {
			return nil, fmt.Errorf("grant %d: %w", i, err)
		}
		out = append(out, ResolvedGrant{Role: access.ParseRole(name), Account: account})
	}
	return out, nil
}

// ResolveRewards encodes every reward seed into its ABI payload.
func (g *Genesis) ResolveRewards() ([]ResolvedReward, error) {
	out := make([]ResolvedReward, 0, len(g.Rewards))
	for i, seed := range g.Rewards {
		category, ok := rewards.ParseCategory(strings.ToLower(strings.TrimSpace(seed.Category)))
		if !ok {
			return nil, fmt.Errorf("reward %d: unknown category %q", i, seed.Category)
		}
		tier, ok := rewards.ParseTier(strings.ToLower(strings.TrimSpace(seed.Tier)))
		if !ok {
			return nil, fmt.Errorf("reward %d: unknown tier %q", i, seed.Tier)
		}
		min, err := parseUintAmount(seed.Min)
		if err != nil {
			return nil, fmt.Errorf("reward %d: min: %w", i, err)
		}
		max, err := parseUintAmount(seed.Max)
		if err != nil {
			return nil, fmt.Errorf("reward %d: max: %w", i, err)
		}
		ids := make([]*big.Int, 0, len(seed.IDs))
		for _, raw := range seed.IDs {
			id, err := parseUintAmount(raw)
			if err != nil {
				return nil, fmt.Errorf("reward %d: id: %w", i, err)
			}
			ids = append(ids, id)
		}
		payload, err := rewards.EncodePayload(min, max, ids)
		if err != nil {
			return nil, fmt.Errorf("reward %d: %w", i, err)
		}
		if _, err := rewards.DecodePayload(category, payload); err != nil {
			return nil, fmt.Errorf("reward %d: %w", i, err)
		}
		out = append(out, ResolvedReward{Category: category, Tier: tier, Payload: payload})
	}
	return out, nil
}

// RarityThresholds returns the genesis rarity override, if any.
func (g *Genesis) RarityThresholds() (rewards.Thresholds, bool) {
	if g.Rarity == nil {
		return rewards.Thresholds{}, false
	}
	r := g.Rarity
	return rewards.Thresholds{
		Common:    r.Common,
		Uncommon:  r.Uncommon,
		Rare:      r.Rare,
		Epic:      r.Epic,
		Legendary: r.Legendary,
		MaxRoll:   r.MaxRoll,
	}, true
}

func parseUintAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("value required")
	}
	v, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid unsigned integer %q", raw)
	}
	return v, nil
}
