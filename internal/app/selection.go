package service

import (
	"context"
	"time"

	"github.com/okian/vouch/internal/domain/model"
)

// LockStatus describes the background-selection lock for a profile.
type LockStatus struct {
	Locked bool       `json:"locked"`
	Until  *time.Time `json:"until,omitempty"`
}

// Selection returns a profile's badge selection. When none has been stored
// yet, a deterministic default is synthesized (empty growth list, first
// four catalog background badges) without being persisted.
func (s *Service) Selection(ctx context.Context, role model.Role, ownerID string) (model.BadgeSelection, error) {
	if !role.Valid() {
		return model.BadgeSelection{}, ErrInvalidRole
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadSelections(ctx)
	if err != nil {
		return model.BadgeSelection{}, err
	}
	return s.selectionView(list, role, ownerID), nil
}

// ActiveBadges returns the profile's growth badge ids.
func (s *Service) ActiveBadges(ctx context.Context, role model.Role, ownerID string) ([]string, error) {
	sel, err := s.Selection(ctx, role, ownerID)
	if err != nil {
		return nil, err
	}
	return sel.ActiveBadges, nil
}

// SelectedBackgroundBadges returns the profile's expectation badge ids,
// synthesizing the catalog default when no selection exists yet.
func (s *Service) SelectedBackgroundBadges(ctx context.Context, role model.Role, ownerID string) ([]string, error) {
	sel, err := s.Selection(ctx, role, ownerID)
	if err != nil {
		return nil, err
	}
	return sel.BackgroundBadges, nil
}

// BackgroundLockStatus reports whether the profile's background selection
// is currently locked and until when.
func (s *Service) BackgroundLockStatus(ctx context.Context, role model.Role, ownerID string) (LockStatus, error) {
	sel, err := s.Selection(ctx, role, ownerID)
	if err != nil {
		return LockStatus{}, err
	}
	if sel.LockUntil == nil || !sel.LockUntil.After(s.now()) {
		return LockStatus{}, nil
	}
	return LockStatus{Locked: true, Until: sel.LockUntil}, nil
}

// SetActiveBadges replaces the profile's growth badge selection. Ids are
// filtered to valid SELECTABLE badges of the role, deduplicated, and capped
// at four. The background selection is untouched.
func (s *Service) SetActiveBadges(ctx context.Context, role model.Role, ownerID string, ids []string) (model.BadgeSelection, error) {
	if !role.Valid() {
		return model.BadgeSelection{}, ErrInvalidRole
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadSelections(ctx)
	if err != nil {
		return model.BadgeSelection{}, err
	}
	idx := findSelection(list, role, ownerID)
	if idx < 0 {
		list = append(list, model.BadgeSelection{Role: role, OwnerID: ownerID})
		idx = len(list) - 1
	}
	list[idx].ActiveBadges = s.filterBadgeIDs(role, model.KindSelectable, ids)
	list[idx].UpdatedAt = s.now()
	if err := s.storeSelections(ctx, list); err != nil {
		return model.BadgeSelection{}, err
	}
	return s.selectionView(list, role, ownerID), nil
}

// SetBackgroundBadges replaces the profile's expectation badge selection.
//
// Expectations are semi-permanent: a successful change locks further
// background changes for the configured period (12 months by default) so a
// profile cannot game its baseline trust metrics by swapping which badges
// it is judged on. While the lock is in force and allowOverride is unset,
// the call is a no-op returning the unchanged selection.
//
// Ids are filtered to valid BACKGROUND badges of the role and deduplicated;
// remaining slots are filled from the previous selection (or from the
// catalog's first four background badges when none existed) so the
// selection is never short by user omission.
func (s *Service) SetBackgroundBadges(ctx context.Context, role model.Role, ownerID string, ids []string, allowOverride bool) (model.BadgeSelection, error) {
	if !role.Valid() {
		return model.BadgeSelection{}, ErrInvalidRole
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadSelections(ctx)
	if err != nil {
		return model.BadgeSelection{}, err
	}
	idx := findSelection(list, role, ownerID)

	now := s.now()
	if idx >= 0 && !allowOverride {
		if lock := list[idx].LockUntil; lock != nil && lock.After(now) {
			return s.selectionView(list, role, ownerID), nil
		}
	}

	previous := s.defaultBackground(role)
	if idx >= 0 {
		previous = list[idx].BackgroundBadges
	}

	next := s.filterBadgeIDs(role, model.KindBackground, ids)
	next = fillFrom(next, previous, maxSelected)

	if idx >= 0 && equalIDs(next, list[idx].BackgroundBadges) {
		return s.selectionView(list, role, ownerID), nil
	}

	if idx < 0 {
		list = append(list, model.BadgeSelection{Role: role, OwnerID: ownerID})
		idx = len(list) - 1
	}
	lockUntil := now.AddDate(0, s.lockMonths, 0)
	list[idx].BackgroundBadges = next
	list[idx].LockUntil = &lockUntil
	list[idx].UpdatedAt = now
	if err := s.storeSelections(ctx, list); err != nil {
		return model.BadgeSelection{}, err
	}
	return s.selectionView(list, role, ownerID), nil
}

// selectionView returns the stored selection with the synthesized default
// background applied when the stored one is absent or empty.
func (s *Service) selectionView(list []model.BadgeSelection, role model.Role, ownerID string) model.BadgeSelection {
	idx := findSelection(list, role, ownerID)
	if idx < 0 {
		return model.BadgeSelection{
			Role:             role,
			OwnerID:          ownerID,
			ActiveBadges:     []string{},
			BackgroundBadges: s.defaultBackground(role),
		}
	}
	sel := list[idx]
	if sel.ActiveBadges == nil {
		sel.ActiveBadges = []string{}
	}
	if len(sel.BackgroundBadges) == 0 {
		sel.BackgroundBadges = s.defaultBackground(role)
	}
	return sel
}

// defaultBackground returns the catalog's first four background badges for
// a role.
func (s *Service) defaultBackground(role model.Role) []string {
	defs := s.catalog.ForRoleKind(role, model.KindBackground)
	out := make([]string, 0, maxSelected)
	for _, def := range defs {
		if len(out) >= maxSelected {
			break
		}
		out = append(out, def.ID)
	}
	return out
}

// fillFrom appends ids from fallback (skipping duplicates) until ids holds
// up to limit entries.
func fillFrom(ids, fallback []string, limit int) []string {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	for _, id := range fallback {
		if len(ids) >= limit {
			break
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
