package rewards

import "strconv"

// Category selects one of the two reward namespaces resolved on every claim.
type Category uint8

const (
	CategoryMilk Category = iota
	CategoryItem
)

// Categories lists every reward category in resolution order.
var Categories = []Category{CategoryMilk, CategoryItem}

func (c Category) Valid() bool { return c <= CategoryItem }

func (c Category) String() string {
	switch c {
	case CategoryMilk:
		return "milk"
	case CategoryItem:
		return "item"
	default:
		return "category(" + strconv.Itoa(int(c)) + ")"
	}
}

// Tier is the rarity band a roll resolves to.
type Tier uint8

const (
	TierCommon Tier = iota
	TierUncommon
	TierRare
	TierEpic
	TierLegendary
)

// Tiers lists every rarity tier from most to least frequent.
var Tiers = []Tier{TierCommon, TierUncommon, TierRare, TierEpic, TierLegendary}

func (t Tier) Valid() bool { return t <= TierLegendary }

func (t Tier) String() string {
	switch t {
	case TierCommon:
		return "common"
	case TierUncommon:
		return "uncommon"
	case TierRare:
		return "rare"
	case TierEpic:
		return "epic"
	case TierLegendary:
		return "legendary"
	default:
		return "tier(" + strconv.Itoa(int(t)) + ")"
	}
}

// ParseCategory accepts either the numeric identifier or the lowercase name.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if s == c.String() || s == strconv.Itoa(int(c)) {
			return c, true
		}
	}
	return 0, false
}

// ParseTier accepts either the numeric identifier or the lowercase name.
func ParseTier(s string) (Tier, bool) {
	for _, t := range Tiers {
		if s == t.String() || s == strconv.Itoa(int(t)) {
			return t, true
		}
	}
	return 0, false
}
