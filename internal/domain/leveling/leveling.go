// Package leveling evaluates achievement thresholds against lifetime
// yes/no counts.
package leveling

import (
	"math"

	"github.com/okian/vouch/internal/domain/model"
)

// Levels is the number of achievement tiers per badge.
const Levels = 5

// DefaultRules returns the standard 5-level thresholds applied to both roles
// unless overridden: {minSamples, minPercent} per tier.
func DefaultRules() []model.LevelRule {
	return []model.LevelRule{
		{MinSamples: 4, MinPercent: 80},
		{MinSamples: 12, MinPercent: 85},
		{MinSamples: 24, MinPercent: 90},
		{MinSamples: 52, MinPercent: 92},
		{MinSamples: 78, MinPercent: 95},
	}
}

// LevelFromCounts returns the highest tier i in 1..5 whose rule is satisfied
// by the counts, or 0 when none is. A tier is satisfied when
// total >= MinSamples and 100*yes/total >= MinPercent. Tiers are evaluated
// independently: counts can satisfy tier 3 without satisfying tier 2, and
// the result is still 3. Authored rule sets are expected, but not required,
// to increase monotonically per tier.
func LevelFromCounts(rules []model.LevelRule, yes, no int) int {
	total := yes + no
	if total <= 0 || len(rules) == 0 {
		return 0
	}
	percent := 100 * float64(yes) / float64(total)

	level := 0
	for i, rule := range rules {
		if i >= Levels {
			break
		}
		if total >= rule.MinSamples && percent >= rule.MinPercent {
			level = i + 1
		}
	}
	return level
}

// Normalize validates an authored rule list. It returns a defensive copy
// with each entry coerced into range (percent clamped to [0,100], negative
// sample counts raised to 0), or ok=false when the list does not have
// exactly five entries or contains a non-finite percent. Callers keep their
// previous valid rules on ok=false.
func Normalize(rules []model.LevelRule) ([]model.LevelRule, bool) {
	if len(rules) != Levels {
		return nil, false
	}
	out := make([]model.LevelRule, Levels)
	for i, rule := range rules {
		if math.IsNaN(rule.MinPercent) || math.IsInf(rule.MinPercent, 0) {
			return nil, false
		}
		if rule.MinSamples < 0 {
			rule.MinSamples = 0
		}
		rule.MinPercent = math.Min(100, math.Max(0, rule.MinPercent))
		out[i] = rule
	}
	return out, true
}
