// Package period derives cadence-scoped time bucket keys for checkins.
package period

import (
	"fmt"
	"regexp"
	"time"

	"github.com/okian/vouch/internal/domain/model"
)

var (
	weekKeyPattern  = regexp.MustCompile(`^\d{4}-W\d{2}$`)
	monthKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// Key returns the bucket identifier for the given cadence at time t:
// ISO week "2025-W10" for WEEKLY, "2025-03" for MONTHLY. ONCE badges share a
// single fixed bucket since they are granted at most one time.
func Key(cadence model.Cadence, t time.Time) string {
	switch cadence {
	case model.CadenceMonthly:
		return t.UTC().Format("2006-01")
	case model.CadenceOnce:
		return "once"
	default:
		year, week := t.UTC().ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	}
}

// ValidKey reports whether key has the expected shape for the cadence.
// ONCE accepts any non-empty key since its bucket is synthetic.
func ValidKey(cadence model.Cadence, key string) bool {
	switch cadence {
	case model.CadenceMonthly:
		return monthKeyPattern.MatchString(key)
	case model.CadenceOnce:
		return key != ""
	default:
		return weekKeyPattern.MatchString(key)
	}
}

// DefaultCadence maps a badge kind to the cadence used when neither the
// submission nor the catalog entry specifies one.
func DefaultCadence(kind model.BadgeKind) model.Cadence {
	switch kind {
	case model.KindSnap:
		return model.CadenceOnce
	case model.KindChecker:
		return model.CadenceMonthly
	default:
		return model.CadenceWeekly
	}
}
