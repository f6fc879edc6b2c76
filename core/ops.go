package core

import (
	"context"
	"math/big"

	"milkchain/native/access"
	"milkchain/native/itemfactory"
	"milkchain/native/rewards"
)

// Namespace selects which access registry a role operation targets.
type Namespace string

const (
	NamespaceMilk        Namespace = "milk"
	NamespaceItemFactory Namespace = "itemfactory"
)

func (c *Components) registry(ns Namespace) (*access.Registry, error) {
	switch ns {
	case NamespaceMilk:
		return c.MilkRoles, nil
	case NamespaceItemFactory:
		return c.FactoryRoles, nil
	default:
		return nil, &UnknownNamespaceError{Namespace: string(ns)}
	}
}

func (n *Node) GrantRole(ctx context.Context, ns Namespace, caller [20]byte, role access.Role, account [20]byte) error {
	_, err := n.Apply(ctx, "access.grant", func(c *Components) error {
		reg, err := c.registry(ns)
		if err != nil {
			return err
		}
		return reg.GrantRole(caller, role, account)
	})
	return err
}

func (n *Node) RevokeRole(ctx context.Context, ns Namespace, caller [20]byte, role access.Role, account [20]byte) error {
	_, err := n.Apply(ctx, "access.revoke", func(c *Components) error {
		reg, err := c.registry(ns)
		if err != nil {
			return err
		}
		return reg.RevokeRole(caller, role, account)
	})
	return err
}

func (n *Node) HasRole(ns Namespace, role access.Role, account [20]byte) (bool, error) {
	var held bool
	err := n.View(func(c *Components) error {
		reg, err := c.registry(ns)
		if err != nil {
			return err
		}
		held = reg.HasRole(role, account)
		return nil
	})
	return held, err
}

func (n *Node) Deposit(ctx context.Context, caller, to [20]byte, payload []byte) error {
	_, err := n.Apply(ctx, "milk.deposit", func(c *Components) error {
		return c.Ledger.Deposit(caller, to, payload)
	})
	return err
}

func (n *Node) Mint(ctx context.Context, caller, to [20]byte, amount *big.Int) error {
	_, err := n.Apply(ctx, "milk.mint", func(c *Components) error {
		return c.Ledger.Mint(caller, to, amount)
	})
	return err
}

func (n *Node) Transfer(ctx context.Context, caller, to [20]byte, amount *big.Int) error {
	_, err := n.Apply(ctx, "milk.transfer", func(c *Components) error {
		return c.Ledger.Transfer(caller, to, amount)
	})
	return err
}

func (n *Node) Withdraw(ctx context.Context, caller [20]byte, amount *big.Int) error {
	_, err := n.Apply(ctx, "milk.withdraw", func(c *Components) error {
		return c.Ledger.Withdraw(caller, amount)
	})
	return err
}

func (n *Node) SetRarityRolls(ctx context.Context, caller [20]byte, t rewards.Thresholds) error {
	_, err := n.Apply(ctx, "rewards.set_rarity", func(c *Components) error {
		return c.Rewards.SetRarityRolls(caller, t)
	})
	return err
}

func (n *Node) SetReward(ctx context.Context, caller [20]byte, category rewards.Category, tier rewards.Tier, payload []byte) error {
	_, err := n.Apply(ctx, "rewards.set_reward", func(c *Components) error {
		return c.Rewards.SetReward(caller, category, tier, payload)
	})
	return err
}

// Claim runs a daily claim for account at the caller supplied timestamp.
func (n *Node) Claim(ctx context.Context, account [20]byte, timestamp uint64) (*itemfactory.ClaimResult, error) {
	var result *itemfactory.ClaimResult
	_, err := n.Apply(ctx, "itemfactory.claim", func(c *Components) error {
		var err error
		result, err = c.Factory.Claim(account, timestamp)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (n *Node) BalanceOf(account [20]byte) (*big.Int, error) {
	var out *big.Int
	err := n.View(func(c *Components) error {
		var err error
		out, err = c.Ledger.BalanceOf(account)
		return err
	})
	return out, err
}

func (n *Node) TotalSupply() (*big.Int, error) {
	var out *big.Int
	err := n.View(func(c *Components) error {
		var err error
		out, err = c.Ledger.TotalSupply()
		return err
	})
	return out, err
}
