package service

import (
	"context"

	"github.com/okian/vouch/internal/domain/leveling"
	"github.com/okian/vouch/internal/domain/model"
)

// DefaultLevelRules returns the 5-level achievement thresholds for a role.
func (s *Service) DefaultLevelRules(ctx context.Context, role model.Role) ([]model.LevelRule, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadRules(ctx)
	return doc.Defaults[role], nil
}

// SetDefaultLevelRules replaces a role's default thresholds. Malformed
// input (wrong length, non-finite percent) keeps the previous valid rules
// rather than failing; in-range coercion (percent clamped, negative samples
// zeroed) is applied silently.
func (s *Service) SetDefaultLevelRules(ctx context.Context, role model.Role, rules []model.LevelRule) ([]model.LevelRule, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadRules(ctx)
	if normalized, ok := leveling.Normalize(rules); ok {
		doc.Defaults[role] = normalized
	}
	if err := s.storeRules(ctx, doc); err != nil {
		return nil, err
	}
	return doc.Defaults[role], nil
}

// BadgeRuleOverride returns the per-badge threshold override, if set.
func (s *Service) BadgeRuleOverride(ctx context.Context, badgeID string) ([]model.LevelRule, bool, error) {
	if _, ok := s.catalog.Badge(badgeID); !ok {
		return nil, false, ErrUnknownBadge
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadRules(ctx)
	rules, ok := doc.Overrides[badgeID]
	return rules, ok, nil
}

// SetBadgeRuleOverride installs a per-badge threshold override, with the
// same malformed-input handling as SetDefaultLevelRules.
func (s *Service) SetBadgeRuleOverride(ctx context.Context, badgeID string, rules []model.LevelRule) ([]model.LevelRule, error) {
	def, ok := s.catalog.Badge(badgeID)
	if !ok {
		return nil, ErrUnknownBadge
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadRules(ctx)
	if normalized, valid := leveling.Normalize(rules); valid {
		doc.Overrides[badgeID] = normalized
	}
	if err := s.storeRules(ctx, doc); err != nil {
		return nil, err
	}
	if override, exists := doc.Overrides[badgeID]; exists {
		return override, nil
	}
	return doc.Defaults[def.Role], nil
}

// ClearBadgeRuleOverride removes a per-badge threshold override.
func (s *Service) ClearBadgeRuleOverride(ctx context.Context, badgeID string) error {
	if _, ok := s.catalog.Badge(badgeID); !ok {
		return ErrUnknownBadge
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadRules(ctx)
	if _, exists := doc.Overrides[badgeID]; !exists {
		return nil
	}
	delete(doc.Overrides, badgeID)
	return s.storeRules(ctx, doc)
}

// LevelRulesForBadge resolves the thresholds that govern a badge: its
// override when present, else its owning role's defaults.
func (s *Service) LevelRulesForBadge(ctx context.Context, badgeID string) ([]model.LevelRule, error) {
	def, ok := s.catalog.Badge(badgeID)
	if !ok {
		return nil, ErrUnknownBadge
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadRules(ctx)
	return rulesForBadge(doc, def), nil
}

// rulesForBadge is the lock-free resolution used inside larger operations.
func rulesForBadge(doc rulesDoc, def model.BadgeDefinition) []model.LevelRule {
	if override, ok := doc.Overrides[def.ID]; ok {
		return override
	}
	return doc.Defaults[def.Role]
}
