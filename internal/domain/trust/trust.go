// Package trust implements the blended reputation arithmetic: trust
// windows, per-counterpart averaging, weighted group scores, and the
// two-group blend.
package trust

import (
	"math"
	"time"

	"github.com/okian/vouch/internal/domain/model"
)

// Weights carries the configuration needed to weight one badge's
// contribution inside a group.
type Weights struct {
	Badge      float64 // resolved per-badge weight
	Kind       float64 // per-kind weight
	Multiplier float64 // level multiplier for max(1, current level)
}

// Contribution returns the combined weight for a badge.
func (w Weights) Contribution() float64 {
	return w.Badge * w.Kind * w.Multiplier
}

// BadgeScore is one badge's entry into a group computation.
type BadgeScore struct {
	Percent float64
	Weight  float64
	Yes     int
	No      int
}

// WindowPercent computes a badge's trust percentage from ledger entries in
// a trailing window. Entries are bucketed by counterpart id (the opposite
// party on the relationship pair), each bucket's own yes-ratio is computed,
// and the bucket percentages are averaged. Averaging per counterpart, not
// over the pooled counts, keeps one prolific counterpart from dominating
// the signal. Disputed entries must already be excluded by the caller;
// override values are honored here.
//
// ok is false when no entry falls inside the window, in which case the
// badge is excluded from its group entirely.
func WindowPercent(entries []model.BadgeCheckin, targetRole model.Role, cutoff time.Time) (percent float64, yes, no int, ok bool) {
	type bucket struct {
		yes int
		no  int
	}
	buckets := make(map[string]*bucket)
	for _, e := range entries {
		if e.CreatedAt.Before(cutoff) {
			continue
		}
		key := e.RetainerID
		if targetRole == model.RoleRetainer {
			key = e.SeekerID
		}
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		if e.EffectiveValue() == model.ValueYes {
			b.yes++
			yes++
		} else {
			b.no++
			no++
		}
	}
	if len(buckets) == 0 {
		return 0, 0, 0, false
	}
	var sum float64
	for _, b := range buckets {
		total := b.yes + b.no
		sum += 100 * float64(b.yes) / float64(total)
	}
	return sum / float64(len(buckets)), yes, no, true
}

// LifetimePercent computes a SNAP badge's percentage straight from its own
// progress counts. SNAP badges are one-shot and global, so there is no
// cross-counterpart averaging. ok is false when the badge has no samples.
func LifetimePercent(p model.BadgeProgress) (percent float64, ok bool) {
	total := p.YesCount + p.NoCount
	if total <= 0 {
		return 0, false
	}
	return 100 * float64(p.YesCount) / float64(total), true
}

// GroupScore returns the weight-normalized average of the included badge
// percentages, or nil when the group has no badges with data.
func GroupScore(scores []BadgeScore) *float64 {
	var weighted, total float64
	for _, s := range scores {
		if s.Weight <= 0 {
			continue
		}
		weighted += s.Percent * s.Weight
		total += s.Weight
	}
	if total <= 0 {
		return nil
	}
	v := weighted / total
	return &v
}

// Blend combines the expectations and growth group scores using the
// configured split, renormalized over only the groups that produced data.
// A single populated group therefore passes through unchanged; two empty
// groups yield nil.
func Blend(expectations, growth *float64, expectationsWeight, growthWeight float64) *float64 {
	var weighted, total float64
	if expectations != nil {
		weighted += *expectations * expectationsWeight
		total += expectationsWeight
	}
	if growth != nil {
		weighted += *growth * growthWeight
		total += growthWeight
	}
	if total <= 0 {
		if expectations != nil || growth != nil {
			// Degenerate zero-weight config; fall back to a plain average.
			var sum float64
			n := 0
			if expectations != nil {
				sum += *expectations
				n++
			}
			if growth != nil {
				sum += *growth
				n++
			}
			v := sum / float64(n)
			return &v
		}
		return nil
	}
	v := weighted / total
	return &v
}

// ApplyPenalty subtracts an external penalty from a percentage, flooring at
// 0 and capping at 100.
func ApplyPenalty(percent, penalty float64) float64 {
	return math.Min(100, math.Max(0, percent-penalty))
}
