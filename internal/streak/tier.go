package streak

import (
	"math"
	"sort"
)

// Tier is a reward bracket unlocked at MinStreak consecutive wins.
type Tier struct {
	MinStreak    int     `json:"minStreak" yaml:"min_streak"`
	XPMultiplier float64 `json:"xpMultiplier" yaml:"xp_multiplier"`
	FundsBonus   int     `json:"fundsBonus" yaml:"funds_bonus"`
	Label        string  `json:"label" yaml:"label"`
}

// Table is a tier table sorted ascending by MinStreak.
type Table []Tier

// DefaultTiers is the reference tier table.
var DefaultTiers = Table{
	{MinStreak: 3, XPMultiplier: 1.1, FundsBonus: 100, Label: "Warmed Up"},
	{MinStreak: 5, XPMultiplier: 1.25, FundsBonus: 250, Label: "On Fire"},
	{MinStreak: 10, XPMultiplier: 1.5, FundsBonus: 500, Label: "Unstoppable"},
	{MinStreak: 25, XPMultiplier: 2.0, FundsBonus: 1500, Label: "Legend"},
}

// Sorted returns a copy of t ordered by MinStreak.
func (t Table) Sorted() Table {
	out := make(Table, len(t))
	copy(out, t)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinStreak < out[j].MinStreak })
	return out
}

// Lookup returns the tier with the greatest MinStreak not above streak.
func (t Table) Lookup(streak int) (Tier, bool) {
	// first tier strictly above streak
	i := sort.Search(len(t), func(i int) bool { return t[i].MinStreak > streak })
	if i == 0 {
		return Tier{}, false
	}
	return t[i-1], true
}

// CurrentTier looks streak up in DefaultTiers.
func CurrentTier(streak int) (Tier, bool) {
	return DefaultTiers.Lookup(streak)
}

// Reward applies the tier for streak to a base reward.
func (t Table) Reward(baseXP, baseFunds, streak int) (xp, funds int) {
	tier, ok := t.Lookup(streak)
	if !ok {
		return baseXP, baseFunds
	}
	return int(math.Round(float64(baseXP) * tier.XPMultiplier)), baseFunds + tier.FundsBonus
}
