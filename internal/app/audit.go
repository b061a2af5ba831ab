package service

import (
	"context"

	"github.com/okian/vouch/internal/domain/model"
	"github.com/okian/vouch/pkg/metrics"
)

// UpdateCheckinStatus transitions a ledger entry between its audit states.
//
// DISPUTED removes the entry from all aggregation until resolved.
// OVERRIDDEN replaces its counted value with overrideValue and keeps the
// original submission intact for the audit trail. ACTIVE restores normal
// counting and clears any override. Every transition triggers a full
// progress rebuild for the affected profile, which is the one path that
// can lower yes/no counts (achieved levels still never drop).
func (s *Service) UpdateCheckinStatus(ctx context.Context, checkinID string, status model.CheckinStatus, overrideValue model.CheckinValue, note string) (model.BadgeCheckin, error) {
	if !validStatus(status) {
		return model.BadgeCheckin{}, ErrInvalidStatus
	}
	if status == model.StatusOverridden {
		if overrideValue != model.ValueYes && overrideValue != model.ValueNo {
			return model.BadgeCheckin{}, ErrInvalidValue
		}
	} else {
		overrideValue = ""
		note = ""
	}

	entry, err := s.applyStatus(ctx, checkinID, status, overrideValue, note)
	if err != nil {
		return model.BadgeCheckin{}, err
	}
	metrics.RecordAuditAction(string(status))
	s.refreshRating(ctx, entry.TargetRole, entry.TargetID)
	return entry, nil
}

func (s *Service) applyStatus(ctx context.Context, checkinID string, status model.CheckinStatus, overrideValue model.CheckinValue, note string) (model.BadgeCheckin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.loadCheckins(ctx)
	if err != nil {
		return model.BadgeCheckin{}, err
	}
	idx := -1
	for i := range ledger {
		if ledger[i].ID == checkinID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.BadgeCheckin{}, ErrCheckinNotFound
	}

	entry := &ledger[idx]
	entry.Status = status
	entry.OverrideValue = overrideValue
	entry.OverrideNote = note
	entry.UpdatedAt = s.now()
	if err := s.storeCheckins(ctx, ledger); err != nil {
		return model.BadgeCheckin{}, err
	}

	progress, err := s.loadProgress(ctx)
	if err != nil {
		return model.BadgeCheckin{}, err
	}
	rules := s.loadRules(ctx)
	progress = s.rebuildProfileProgress(ledger, progress, rules, entry.TargetRole, entry.TargetID)
	if err := s.storeProgress(ctx, progress); err != nil {
		return model.BadgeCheckin{}, err
	}
	return *entry, nil
}
