// Package model contains domain models passed between layers.
package model

import "time"

// Role identifies one of the two marketplace counterparties.
type Role string

// Counterparty roles.
const (
	RoleSeeker   Role = "SEEKER"
	RoleRetainer Role = "RETAINER"
)

// Opposite returns the other counterparty role.
func (r Role) Opposite() Role {
	if r == RoleSeeker {
		return RoleRetainer
	}
	return RoleSeeker
}

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleSeeker || r == RoleRetainer
}

// BadgeKind classifies how a badge is earned and weighted.
type BadgeKind string

// Badge kinds.
const (
	KindBackground BadgeKind = "BACKGROUND" // semi-permanent expectation trait, lock-governed
	KindSelectable BadgeKind = "SELECTABLE" // short-term growth trait, freely changeable
	KindSnap       BadgeKind = "SNAP"       // one-shot global grant
	KindChecker    BadgeKind = "CHECKER"    // periodic low-frequency trait, e.g. payment reliability
)

// Cadence is the time bucketing applied to checkins for a badge.
type Cadence string

// Cadences.
const (
	CadenceWeekly  Cadence = "WEEKLY"
	CadenceMonthly Cadence = "MONTHLY"
	CadenceOnce    Cadence = "ONCE"
)

// CheckinValue is a verifier's confirmation for one period.
type CheckinValue string

// Checkin values.
const (
	ValueYes CheckinValue = "YES"
	ValueNo  CheckinValue = "NO"
)

// CheckinStatus tracks audit state of a ledger entry.
type CheckinStatus string

// Checkin statuses. ACTIVE entries count toward progress; DISPUTED entries
// are excluded; OVERRIDDEN entries count with their override value.
const (
	StatusActive     CheckinStatus = "ACTIVE"
	StatusDisputed   CheckinStatus = "DISPUTED"
	StatusOverridden CheckinStatus = "OVERRIDDEN"
)

// LinkStatus is the state of the externally-managed relationship record.
type LinkStatus string

// Link statuses.
const (
	LinkActive   LinkStatus = "ACTIVE"
	LinkPending  LinkStatus = "PENDING"
	LinkEnded    LinkStatus = "ENDED"
	LinkDeclined LinkStatus = "DECLINED"
)

// BadgeDefinition is an immutable catalog entry.
type BadgeDefinition struct {
	ID       string
	Role     Role // owning role: whose trait the badge describes
	Kind     BadgeKind
	Cadence  Cadence // defaulted per kind when the catalog entry omits it
	Verifier Role    // who attests; always the opposite party
	Weight   float64 // optional declared weight; 0 means "use kind fallback"
}

// LevelRule is one achievement threshold: a level is satisfied when the
// lifetime sample count and yes-percentage both meet the rule.
type LevelRule struct {
	MinSamples int     `json:"min_samples"`
	MinPercent float64 `json:"min_percent"`
}

// BadgeCheckin is one ledger entry: a verifier-submitted YES/NO confirmation
// for one badge, one target, one period.
type BadgeCheckin struct {
	ID            string        `json:"id"`
	PeriodKey     string        `json:"period_key"` // ISO week "2025-W10" or month "2025-03"
	Cadence       Cadence       `json:"cadence"`
	SeekerID      string        `json:"seeker_id"`
	RetainerID    string        `json:"retainer_id"`
	BadgeID       string        `json:"badge_id"`
	TargetRole    Role          `json:"target_role"`
	TargetID      string        `json:"target_id"`
	VerifierRole  Role          `json:"verifier_role"`
	VerifierID    string        `json:"verifier_id"`
	Value         CheckinValue  `json:"value"`
	Status        CheckinStatus `json:"status"`
	OverrideValue CheckinValue  `json:"override_value,omitempty"`
	OverrideNote  string        `json:"override_note,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// EffectiveValue is the value progress aggregation counts: the override when
// one is present, else the submitted value.
func (c BadgeCheckin) EffectiveValue() CheckinValue {
	if c.OverrideValue != "" {
		return c.OverrideValue
	}
	return c.Value
}

// SameKey reports whether two entries occupy the same idempotency slot in
// the ledger.
func (c BadgeCheckin) SameKey(o BadgeCheckin) bool {
	return c.PeriodKey == o.PeriodKey &&
		c.Cadence == o.Cadence &&
		c.BadgeID == o.BadgeID &&
		c.TargetRole == o.TargetRole &&
		c.TargetID == o.TargetID &&
		c.VerifierRole == o.VerifierRole &&
		c.VerifierID == o.VerifierID &&
		c.SeekerID == o.SeekerID &&
		c.RetainerID == o.RetainerID
}

// BadgeProgress is the derived cumulative state per (owner, badge).
// MaxLevel is monotonically non-decreasing across recomputation.
type BadgeProgress struct {
	Role      Role      `json:"role"`
	OwnerID   string    `json:"owner_id"`
	BadgeID   string    `json:"badge_id"`
	YesCount  int       `json:"yes_count"`
	NoCount   int       `json:"no_count"`
	MaxLevel  int       `json:"max_level"` // 0..5
	UpdatedAt time.Time `json:"updated_at"`
}

// BadgeSelection is one profile's choice of growth and background badges.
type BadgeSelection struct {
	Role             Role       `json:"role"`
	OwnerID          string     `json:"owner_id"`
	ActiveBadges     []string   `json:"active_badges"`     // up to 4 SELECTABLE ids
	BackgroundBadges []string   `json:"background_badges"` // up to 4 BACKGROUND ids
	LockUntil        *time.Time `json:"lock_until,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Link mirrors the externally-managed relationship record between a seeker
// and a retainer.
type Link struct {
	SeekerID                  string
	RetainerID                string
	Status                    LinkStatus
	WorkingTogetherBySeeker   bool
	WorkingTogetherByRetainer bool
}

// WorkingTogether reports whether both parties have mutually enabled the
// working-together flag on an active link.
func (l Link) WorkingTogether() bool {
	return l.Status == LinkActive && l.WorkingTogetherBySeeker && l.WorkingTogetherByRetainer
}

// CheckinSubmission is the input to ledger submission. Cadence and PeriodKey
// are optional; they default from the badge definition and the clock.
type CheckinSubmission struct {
	SubmissionID string       // intake idempotency id; optional for direct calls
	SeekerID     string
	RetainerID   string
	BadgeID      string
	TargetRole   Role
	TargetID     string
	VerifierRole Role
	VerifierID   string
	Value        CheckinValue
	Cadence      Cadence
	PeriodKey    string
}

// BatchResult tallies a best-effort batch submission.
type BatchResult struct {
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
}

// TrustRating is the blended reputation output for one profile.
// Percent is nil when no badge in either group had qualifying data.
type TrustRating struct {
	Role     Role     `json:"role"`
	OwnerID  string   `json:"owner_id"`
	Percent  *float64 `json:"percent"`
	YesCount int      `json:"yes_count"`
	NoCount  int      `json:"no_count"`
}

// Entry represents a trust leaderboard row.
type Entry struct {
	Rank    int     `json:"rank"`
	Role    Role    `json:"role"`
	OwnerID string  `json:"owner_id"`
	Percent float64 `json:"percent"`
}
