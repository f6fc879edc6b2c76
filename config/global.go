package config

import (
	nativecommon "milkchain/native/common"
	"milkchain/native/itemfactory"
	"milkchain/native/milk"
	"milkchain/native/rewards"
)

// RarityThresholds converts the [rarity] section into runtime thresholds.
func (c *Config) RarityThresholds() rewards.Thresholds {
	return rewards.Thresholds{
		Common:    c.Rarity.Common,
		Uncommon:  c.Rarity.Uncommon,
		Rare:      c.Rarity.Rare,
		Epic:      c.Rarity.Epic,
		Legendary: c.Rarity.Legendary,
		MaxRoll:   c.Rarity.MaxRoll,
	}
}

// TokenMetadata converts the [token] section into ledger metadata.
func (c *Config) TokenMetadata() milk.Metadata {
	return milk.Metadata{Name: c.Token.Name, Symbol: c.Token.Symbol, Decimals: c.Token.Decimals}
}

// FactoryConfig converts the [factory] section into engine settings.
func (c *Config) FactoryConfig() itemfactory.Config {
	return itemfactory.Config{URI: c.Factory.URI, Cooldown: c.Factory.CooldownSec}
}

// PauseView exposes the [pauses] section to the native modules.
func (c *Config) PauseView() nativecommon.PauseView {
	return nativecommon.StaticPauses{
		milk.ModuleName:        c.Pauses.Milk,
		itemfactory.ModuleName: c.Pauses.ItemFactory,
	}
}
