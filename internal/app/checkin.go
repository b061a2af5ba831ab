package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okian/vouch/internal/domain/leveling"
	"github.com/okian/vouch/internal/domain/model"
	"github.com/okian/vouch/internal/domain/period"
	"github.com/okian/vouch/pkg/logger"
	"github.com/okian/vouch/pkg/metrics"
)

// CheckinFilter narrows ledger queries. Zero-valued fields match anything.
type CheckinFilter struct {
	Role      model.Role
	OwnerID   string
	BadgeID   string
	PeriodKey string
	Status    model.CheckinStatus
}

// SubmitCheckin records one verifier confirmation into the period-keyed
// ledger and incrementally updates the target's badge progress. The
// operation is idempotent on the ledger key (period, badge, pair, roles):
// resubmitting the same value is a no-op, resubmitting a different value
// updates the existing slot in place. Slots frozen by audit (DISPUTED or
// OVERRIDDEN) are never touched by resubmission.
//
// changed reports whether the ledger was mutated.
func (s *Service) SubmitCheckin(ctx context.Context, sub model.CheckinSubmission) (model.BadgeCheckin, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.loadCheckins(ctx)
	if err != nil {
		return model.BadgeCheckin{}, false, err
	}
	progress, err := s.loadProgress(ctx)
	if err != nil {
		return model.BadgeCheckin{}, false, err
	}
	rules := s.loadRules(ctx)

	entry, changed, err := s.applyCheckin(ctx, &ledger, &progress, rules, sub)
	if err != nil {
		metrics.RecordCheckinSkipped()
		return model.BadgeCheckin{}, false, err
	}
	if !changed {
		metrics.RecordCheckinSkipped()
		return entry, false, nil
	}
	if err := s.storeCheckins(ctx, ledger); err != nil {
		return model.BadgeCheckin{}, false, err
	}
	if err := s.storeProgress(ctx, progress); err != nil {
		return model.BadgeCheckin{}, false, err
	}
	metrics.RecordCheckinApplied()
	metrics.UpdateLedgerEntries(len(ledger))
	return entry, true, nil
}

// Submit records a checkin synchronously and, when the ledger changed,
// refreshes the target's leaderboard entry in the same call.
func (s *Service) Submit(ctx context.Context, sub model.CheckinSubmission) (model.BadgeCheckin, bool, error) {
	entry, changed, err := s.SubmitCheckin(ctx, sub)
	if err != nil {
		return model.BadgeCheckin{}, false, err
	}
	if changed {
		s.refreshRating(ctx, entry.TargetRole, entry.TargetID)
	}
	return entry, changed, nil
}

// SubmitBatch applies a best-effort batch: one collection load, one apply
// per submission, one store. Rejected submissions are tallied and logged,
// never failing the batch; only infrastructure errors do. Ratings of the
// touched profiles refresh once at the end, not per item.
func (s *Service) SubmitBatch(ctx context.Context, subs []model.CheckinSubmission) (model.BatchResult, error) {
	result, touched, err := s.submitBatch(ctx, subs)
	if err != nil {
		return model.BatchResult{}, err
	}
	for _, p := range touched {
		s.refreshRating(ctx, p.role, p.id)
	}
	return result, nil
}

type profileKey struct {
	role model.Role
	id   string
}

func (s *Service) submitBatch(ctx context.Context, subs []model.CheckinSubmission) (model.BatchResult, []profileKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	metrics.RecordBatchSize(len(subs))

	ledger, err := s.loadCheckins(ctx)
	if err != nil {
		return model.BatchResult{}, nil, err
	}
	progress, err := s.loadProgress(ctx)
	if err != nil {
		return model.BatchResult{}, nil, err
	}
	rules := s.loadRules(ctx)

	var result model.BatchResult
	seen := make(map[profileKey]struct{})
	touched := make([]profileKey, 0)
	for _, sub := range subs {
		entry, changed, err := s.applyCheckin(ctx, &ledger, &progress, rules, sub)
		if err != nil {
			result.Skipped++
			metrics.RecordCheckinSkipped()
			s.logger.Warn(ctx, "batch checkin rejected",
				logger.String("badgeID", sub.BadgeID),
				logger.String("targetID", sub.TargetID),
				logger.Error(err),
			)
			continue
		}
		result.Applied++
		if changed {
			metrics.RecordCheckinApplied()
			key := profileKey{role: entry.TargetRole, id: entry.TargetID}
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				touched = append(touched, key)
			}
		}
	}
	if len(touched) > 0 {
		if err := s.storeCheckins(ctx, ledger); err != nil {
			return model.BatchResult{}, nil, err
		}
		if err := s.storeProgress(ctx, progress); err != nil {
			return model.BatchResult{}, nil, err
		}
		metrics.UpdateLedgerEntries(len(ledger))
	}
	return result, touched, nil
}

// applyCheckin validates one submission against the catalog and the link
// record, then upserts its ledger slot and adjusts progress in memory.
// Callers hold the engine mutex and persist the collections afterwards.
func (s *Service) applyCheckin(ctx context.Context, ledger *[]model.BadgeCheckin, progress *[]model.BadgeProgress, rules rulesDoc, sub model.CheckinSubmission) (model.BadgeCheckin, bool, error) {
	def, ok := s.catalog.Badge(sub.BadgeID)
	if !ok {
		return model.BadgeCheckin{}, false, ErrUnknownBadge
	}
	if sub.Value != model.ValueYes && sub.Value != model.ValueNo {
		return model.BadgeCheckin{}, false, ErrInvalidValue
	}
	if !sub.TargetRole.Valid() || def.Role != sub.TargetRole {
		return model.BadgeCheckin{}, false, ErrBadgeRoleMismatch
	}
	if sub.VerifierRole != def.Verifier {
		return model.BadgeCheckin{}, false, ErrWrongVerifier
	}

	// The target and verifier ids are positional in the pair; derive them
	// so a sloppy caller cannot desynchronize the ledger entry.
	targetID, verifierID := sub.SeekerID, sub.RetainerID
	if sub.TargetRole == model.RoleRetainer {
		targetID, verifierID = sub.RetainerID, sub.SeekerID
	}

	link, ok := s.links.Link(ctx, sub.SeekerID, sub.RetainerID)
	if !ok || link.Status != model.LinkActive {
		return model.BadgeCheckin{}, false, ErrNoActiveLink
	}
	if !link.WorkingTogether() {
		return model.BadgeCheckin{}, false, ErrNotWorkingTogether
	}

	cadence := sub.Cadence
	if cadence == "" {
		cadence = def.Cadence
	}
	if cadence == "" {
		cadence = period.DefaultCadence(def.Kind)
	}
	key := sub.PeriodKey
	if key == "" {
		key = period.Key(cadence, s.now())
	} else if !period.ValidKey(cadence, key) {
		return model.BadgeCheckin{}, false, ErrInvalidPeriodKey
	}

	now := s.now()
	candidate := model.BadgeCheckin{
		PeriodKey:    key,
		Cadence:      cadence,
		SeekerID:     sub.SeekerID,
		RetainerID:   sub.RetainerID,
		BadgeID:      sub.BadgeID,
		TargetRole:   sub.TargetRole,
		TargetID:     targetID,
		VerifierRole: sub.VerifierRole,
		VerifierID:   verifierID,
		Value:        sub.Value,
	}

	for i := range *ledger {
		existing := &(*ledger)[i]
		if !existing.SameKey(candidate) {
			continue
		}
		if existing.Status != model.StatusActive {
			// Audit owns this slot now; the resubmission is absorbed.
			return *existing, false, nil
		}
		if existing.Value == sub.Value {
			return *existing, false, nil
		}
		old := existing.EffectiveValue()
		existing.Value = sub.Value
		existing.UpdatedAt = now
		adjustProgress(progress, def, rules, targetID, old, -1, now)
		adjustProgress(progress, def, rules, targetID, existing.EffectiveValue(), +1, now)
		return *existing, true, nil
	}

	candidate.ID = uuid.NewString()
	candidate.Status = model.StatusActive
	candidate.CreatedAt = now
	candidate.UpdatedAt = now
	*ledger = append(*ledger, candidate)
	adjustProgress(progress, def, rules, targetID, candidate.Value, +1, now)
	return candidate, true, nil
}

// adjustProgress applies a +1/-1 count delta for one effective value and
// re-evaluates the achievement level. MaxLevel only ever ratchets up.
func adjustProgress(progress *[]model.BadgeProgress, def model.BadgeDefinition, rules rulesDoc, ownerID string, value model.CheckinValue, delta int, now time.Time) {
	idx := findProgress(*progress, def.Role, ownerID, def.ID)
	if idx < 0 {
		*progress = append(*progress, model.BadgeProgress{
			Role:    def.Role,
			OwnerID: ownerID,
			BadgeID: def.ID,
		})
		idx = len(*progress) - 1
	}
	p := &(*progress)[idx]
	if value == model.ValueYes {
		p.YesCount += delta
	} else {
		p.NoCount += delta
	}
	if p.YesCount < 0 {
		p.YesCount = 0
	}
	if p.NoCount < 0 {
		p.NoCount = 0
	}
	if level := leveling.LevelFromCounts(rulesForBadge(rules, def), p.YesCount, p.NoCount); level > p.MaxLevel {
		p.MaxLevel = level
	}
	p.UpdatedAt = now
}

// GrantSnapBadge awards a one-shot badge at level 1. Granting is
// idempotent: a profile already at level >= 1 is returned unchanged.
func (s *Service) GrantSnapBadge(ctx context.Context, role model.Role, ownerID, badgeID string) (model.BadgeProgress, error) {
	def, ok := s.catalog.Badge(badgeID)
	if !ok {
		return model.BadgeProgress{}, ErrUnknownBadge
	}
	if def.Kind != model.KindSnap {
		return model.BadgeProgress{}, ErrNotSnapBadge
	}
	if !role.Valid() {
		return model.BadgeProgress{}, ErrInvalidRole
	}
	if def.Role != role {
		return model.BadgeProgress{}, ErrBadgeRoleMismatch
	}

	granted, p, err := s.grantSnap(ctx, role, ownerID, def)
	if err != nil {
		return model.BadgeProgress{}, err
	}
	if granted {
		metrics.RecordSnapGrant()
		s.refreshRating(ctx, role, ownerID)
	}
	return p, nil
}

func (s *Service) grantSnap(ctx context.Context, role model.Role, ownerID string, def model.BadgeDefinition) (bool, model.BadgeProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	progress, err := s.loadProgress(ctx)
	if err != nil {
		return false, model.BadgeProgress{}, err
	}
	idx := findProgress(progress, role, ownerID, def.ID)
	if idx < 0 {
		progress = append(progress, model.BadgeProgress{
			Role:    role,
			OwnerID: ownerID,
			BadgeID: def.ID,
		})
		idx = len(progress) - 1
	}
	p := &progress[idx]
	if p.MaxLevel >= 1 {
		return false, *p, nil
	}
	if p.YesCount < 1 {
		p.YesCount = 1
	}
	p.MaxLevel = 1
	p.UpdatedAt = s.now()
	if err := s.storeProgress(ctx, progress); err != nil {
		return false, model.BadgeProgress{}, err
	}
	return true, *p, nil
}

// Checkins returns ledger entries matching the filter, newest first.
func (s *Service) Checkins(ctx context.Context, filter CheckinFilter) ([]model.BadgeCheckin, error) {
	if filter.Status != "" && !validStatus(filter.Status) {
		return nil, ErrInvalidStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.loadCheckins(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.BadgeCheckin, 0, len(ledger))
	for i := len(ledger) - 1; i >= 0; i-- {
		e := ledger[i]
		if filter.Role != "" && e.TargetRole != filter.Role {
			continue
		}
		if filter.OwnerID != "" && e.TargetID != filter.OwnerID {
			continue
		}
		if filter.BadgeID != "" && e.BadgeID != filter.BadgeID {
			continue
		}
		if filter.PeriodKey != "" && e.PeriodKey != filter.PeriodKey {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func validStatus(status model.CheckinStatus) bool {
	switch status {
	case model.StatusActive, model.StatusDisputed, model.StatusOverridden:
		return true
	}
	return false
}
