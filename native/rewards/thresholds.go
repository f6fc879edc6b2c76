package rewards

// Thresholds are the ascending roll boundaries separating the rarity tiers.
type Thresholds struct {
	Common    uint64
	Uncommon  uint64
	Rare      uint64
	Epic      uint64
	Legendary uint64
	MaxRoll   uint64
}

// DefaultThresholds are in effect until an administrator replaces them.
func DefaultThresholds() Thresholds {
	return Thresholds{Common: 60, Uncommon: 80, Rare: 90, Epic: 98, Legendary: 100, MaxRoll: 100}
}

// Validate requires strictly ascending tier thresholds and a legendary
// threshold no greater than the maximum roll. The first violated pair is
// reported.
func (t Thresholds) Validate() error {
	switch {
	case t.Common >= t.Uncommon:
		return &OutOfOrderError{Pair: "common/uncommon"}
	case t.Uncommon >= t.Rare:
		return &OutOfOrderError{Pair: "uncommon/rare"}
	case t.Rare >= t.Epic:
		return &OutOfOrderError{Pair: "rare/epic"}
	case t.Epic >= t.Legendary:
		return &OutOfOrderError{Pair: "epic/legendary"}
	case t.Legendary > t.MaxRoll:
		return &OutOfOrderError{Pair: "legendary/maxRoll"}
	}
	return nil
}

// Tier maps a roll in [0, MaxRoll) onto its half-open rarity bin.
func (t Thresholds) Tier(roll uint64) Tier {
	switch {
	case roll < t.Common:
		return TierCommon
	case roll < t.Uncommon:
		return TierUncommon
	case roll < t.Rare:
		return TierRare
	case roll < t.Epic:
		return TierEpic
	default:
		return TierLegendary
	}
}
