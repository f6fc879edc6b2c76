package core

import (
	"context"
	"fmt"
	"log/slog"

	"milkchain/config"
	"milkchain/crypto"
	"milkchain/native/access"
)

// Bootstrapped reports whether the ledger registry has been initialised.
func (n *Node) Bootstrapped() bool {
	var done bool
	_ = n.View(func(c *Components) error {
		done = c.MilkRoles.Initialized()
		return nil
	})
	return done
}

// Bootstrap applies the genesis deployment as a single operation: both
// registries make the deployer their default admin, the configured grants
// are applied by the deployer, the item factory receives CONTRACT_ROLE on the
// ledger, and the optional rarity and reward seeds are stored. Seeding
// requires the genesis to grant the deployer ADMIN_ROLE on the item factory.
func (n *Node) Bootstrap(ctx context.Context, g *config.Genesis) error {
	if g == nil {
		return fmt.Errorf("core: genesis required")
	}
	deployer, err := g.DeployerAccount()
	if err != nil {
		return err
	}
	milkGrants, err := g.Milk.Resolve()
	if err != nil {
		return fmt.Errorf("genesis milk: %w", err)
	}
	factoryGrants, err := g.ItemFactory.Resolve()
	if err != nil {
		return fmt.Errorf("genesis itemfactory: %w", err)
	}
	seeds, err := g.ResolveRewards()
	if err != nil {
		return fmt.Errorf("genesis rewards: %w", err)
	}

	_, err = n.Apply(ctx, "genesis", func(c *Components) error {
		if c.MilkRoles.Initialized() {
			return ErrAlreadyBootstrapped
		}
		if err := c.Ledger.Initialize(deployer); err != nil {
			return err
		}
		if err := c.Factory.Initialize(deployer); err != nil {
			return err
		}
		for _, grant := range milkGrants {
			if err := c.MilkRoles.GrantRole(deployer, grant.Role, grant.Account); err != nil {
				return fmt.Errorf("milk grant %s: %w", grant.Role, err)
			}
		}
		for _, grant := range factoryGrants {
			if err := c.FactoryRoles.GrantRole(deployer, grant.Role, grant.Account); err != nil {
				return fmt.Errorf("itemfactory grant %s: %w", grant.Role, err)
			}
		}
		if err := c.MilkRoles.GrantRole(deployer, access.ContractRole, c.Factory.Address()); err != nil {
			return err
		}
		if thresholds, ok := g.RarityThresholds(); ok {
			if err := c.Rewards.SetRarityRolls(deployer, thresholds); err != nil {
				return err
			}
		}
		for _, seed := range seeds {
			if err := c.Rewards.SetReward(deployer, seed.Category, seed.Tier, seed.Payload); err != nil {
				return fmt.Errorf("reward %s/%s: %w", seed.Category, seed.Tier, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	n.logger.Info("genesis applied",
		slog.String("deployer", crypto.FormatAccount(deployer)),
		slog.String("itemfactory", crypto.FormatAccount(n.components.Factory.Address())),
		slog.Int("rewards", len(seeds)))
	return nil
}
