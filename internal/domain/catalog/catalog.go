// Package catalog holds the static, read-only badge registry.
//
// Definitions are fixed at construction time; every other subsystem treats
// the catalog as a pure lookup table.
package catalog

import (
	"github.com/okian/vouch/internal/domain/model"
	"github.com/okian/vouch/internal/domain/period"
)

// Catalog indexes badge definitions by id and by owning role.
type Catalog struct {
	byID   map[string]model.BadgeDefinition
	byRole map[model.Role][]model.BadgeDefinition
	order  []string // insertion order, for deterministic role/kind listings
}

// New builds a catalog from the default marketplace badge set, or from the
// definitions supplied via options. Entries are normalized: the verifier is
// forced to the opposite role and a missing cadence defaults per kind.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		byID:   make(map[string]model.BadgeDefinition),
		byRole: make(map[model.Role][]model.BadgeDefinition),
	}

	s := settings{badges: defaultBadges()}
	for _, opt := range opts {
		opt(&s)
	}

	for _, def := range s.badges {
		if def.ID == "" || !def.Role.Valid() {
			continue
		}
		if _, dup := c.byID[def.ID]; dup {
			continue
		}
		def.Verifier = def.Role.Opposite()
		if def.Cadence == "" {
			def.Cadence = period.DefaultCadence(def.Kind)
		}
		c.byID[def.ID] = def
		c.byRole[def.Role] = append(c.byRole[def.Role], def)
		c.order = append(c.order, def.ID)
	}
	return c
}

// Badge returns the definition for id.
func (c *Catalog) Badge(id string) (model.BadgeDefinition, bool) {
	def, ok := c.byID[id]
	return def, ok
}

// ForRole returns all badges owned by role, in catalog order.
func (c *Catalog) ForRole(role model.Role) []model.BadgeDefinition {
	defs := c.byRole[role]
	out := make([]model.BadgeDefinition, len(defs))
	copy(out, defs)
	return out
}

// ForRoleKind returns role-owned badges of the given kind, in catalog order.
func (c *Catalog) ForRoleKind(role model.Role, kind model.BadgeKind) []model.BadgeDefinition {
	var out []model.BadgeDefinition
	for _, def := range c.byRole[role] {
		if def.Kind == kind {
			out = append(out, def)
		}
	}
	return out
}

// Len returns the number of registered badges.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// defaultBadges returns the built-in marketplace badge set. Seeker badges
// describe the seeker and are verified by the retainer, and vice versa.
func defaultBadges() []model.BadgeDefinition {
	return []model.BadgeDefinition{
		// Seeker expectations (background).
		{ID: "seeker_reliable", Role: model.RoleSeeker, Kind: model.KindBackground},
		{ID: "seeker_punctual", Role: model.RoleSeeker, Kind: model.KindBackground},
		{ID: "seeker_communicative", Role: model.RoleSeeker, Kind: model.KindBackground},
		{ID: "seeker_respectful", Role: model.RoleSeeker, Kind: model.KindBackground},
		{ID: "seeker_prepared", Role: model.RoleSeeker, Kind: model.KindBackground},
		// Seeker growth (selectable).
		{ID: "seeker_proactive", Role: model.RoleSeeker, Kind: model.KindSelectable},
		{ID: "seeker_organized", Role: model.RoleSeeker, Kind: model.KindSelectable},
		{ID: "seeker_flexible", Role: model.RoleSeeker, Kind: model.KindSelectable},
		{ID: "seeker_detail_oriented", Role: model.RoleSeeker, Kind: model.KindSelectable},
		{ID: "seeker_team_player", Role: model.RoleSeeker, Kind: model.KindSelectable},
		// Seeker one-shot grants and periodic checks.
		{ID: "seeker_identity_verified", Role: model.RoleSeeker, Kind: model.KindSnap, Weight: 2},
		{ID: "seeker_on_time_payment", Role: model.RoleSeeker, Kind: model.KindChecker},

		// Retainer expectations.
		{ID: "retainer_reliable", Role: model.RoleRetainer, Kind: model.KindBackground},
		{ID: "retainer_punctual", Role: model.RoleRetainer, Kind: model.KindBackground},
		{ID: "retainer_communicative", Role: model.RoleRetainer, Kind: model.KindBackground},
		{ID: "retainer_respectful", Role: model.RoleRetainer, Kind: model.KindBackground},
		{ID: "retainer_safe", Role: model.RoleRetainer, Kind: model.KindBackground},
		// Retainer growth.
		{ID: "retainer_proactive", Role: model.RoleRetainer, Kind: model.KindSelectable},
		{ID: "retainer_organized", Role: model.RoleRetainer, Kind: model.KindSelectable},
		{ID: "retainer_flexible", Role: model.RoleRetainer, Kind: model.KindSelectable},
		{ID: "retainer_mentoring", Role: model.RoleRetainer, Kind: model.KindSelectable},
		{ID: "retainer_responsive", Role: model.RoleRetainer, Kind: model.KindSelectable},
		// Retainer one-shot grants and periodic checks.
		{ID: "retainer_identity_verified", Role: model.RoleRetainer, Kind: model.KindSnap, Weight: 2},
		{ID: "retainer_fair_billing", Role: model.RoleRetainer, Kind: model.KindChecker},
	}
}
