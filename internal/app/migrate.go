package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/vouch/internal/adapters/repository"
	"github.com/okian/vouch/internal/domain/leveling"
	"github.com/okian/vouch/internal/domain/model"
	"github.com/okian/vouch/internal/domain/period"
	"github.com/okian/vouch/pkg/logger"
)

// legacyDoc is the v1 storage shape: one document holding both the ledger
// and the derived progress.
type legacyDoc struct {
	Checkins []model.BadgeCheckin  `json:"checkins"`
	Progress []model.BadgeProgress `json:"progress"`
}

// migrateLegacy splits a v1 "badges" document into the v2 per-collection
// keys. It runs once at startup, only when no v2 ledger exists yet, and
// leaves the legacy document in place for rollback.
//
// v1 entries predate the audit fields and may predate period keys; missing
// fields are defaulted (status ACTIVE, period key derived from the entry's
// creation time). Progress is rebuilt from the migrated ledger, then
// reconciled against the stored v1 rows: legacy counts only fill rows the
// ledger could not reproduce, and achieved levels are kept at the maximum
// of the two sources.
func (s *Service) migrateLegacy(ctx context.Context) error {
	if _, ok, err := s.store.Read(ctx, repository.KeyCheckins); err != nil {
		return fmt.Errorf("probe ledger: %w", err)
	} else if ok {
		return nil
	}

	doc, ok, err := s.store.Read(ctx, repository.KeyLegacyBadges)
	if err != nil {
		return fmt.Errorf("read legacy document: %w", err)
	}
	if !ok {
		return nil
	}

	var legacy legacyDoc
	if err := json.Unmarshal(doc.Data, &legacy); err != nil {
		return fmt.Errorf("decode legacy document: %w", err)
	}

	ledger := make([]model.BadgeCheckin, 0, len(legacy.Checkins))
	for _, e := range legacy.Checkins {
		def, known := s.catalog.Badge(e.BadgeID)
		if !known {
			s.logger.Warn(ctx, "dropping legacy checkin for unknown badge",
				logger.String("badgeID", e.BadgeID),
			)
			continue
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.Status == "" {
			e.Status = model.StatusActive
		}
		if e.Cadence == "" {
			e.Cadence = def.Cadence
		}
		if e.PeriodKey == "" {
			e.PeriodKey = period.Key(e.Cadence, e.CreatedAt)
		}
		if e.TargetID == "" {
			e.TargetID = e.SeekerID
			if e.TargetRole == model.RoleRetainer {
				e.TargetID = e.RetainerID
			}
		}
		if e.VerifierRole == "" {
			e.VerifierRole = e.TargetRole.Opposite()
		}
		ledger = append(ledger, e)
	}

	rules := s.loadRules(ctx)
	progress := s.rebuildAllProgress(ledger, rules)
	progress = mergeLegacyProgress(progress, legacy.Progress, rules, s.catalog.Badge)

	if err := s.storeCheckins(ctx, ledger); err != nil {
		return err
	}
	if err := s.storeProgress(ctx, progress); err != nil {
		return err
	}
	s.logger.Info(ctx, "migrated legacy badge document",
		logger.Int("checkins", len(ledger)),
		logger.Int("progressRows", len(progress)),
	)
	return nil
}

// rebuildAllProgress recounts every profile appearing in the ledger.
func (s *Service) rebuildAllProgress(ledger []model.BadgeCheckin, rules rulesDoc) []model.BadgeProgress {
	type profile struct {
		role model.Role
		id   string
	}
	seen := make(map[profile]struct{})
	order := make([]profile, 0)
	for _, e := range ledger {
		p := profile{role: e.TargetRole, id: e.TargetID}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		order = append(order, p)
	}
	progress := make([]model.BadgeProgress, 0, len(order))
	for _, p := range order {
		progress = s.rebuildProfileProgress(ledger, progress, rules, p.role, p.id)
	}
	return progress
}

// mergeLegacyProgress reconciles stored v1 progress rows into the
// ledger-derived collection.
func mergeLegacyProgress(derived, stored []model.BadgeProgress, rules rulesDoc, lookup func(string) (model.BadgeDefinition, bool)) []model.BadgeProgress {
	for _, old := range stored {
		if old.YesCount < 0 {
			old.YesCount = 0
		}
		if old.NoCount < 0 {
			old.NoCount = 0
		}
		if old.MaxLevel < 0 {
			old.MaxLevel = 0
		}
		if old.MaxLevel > leveling.Levels {
			old.MaxLevel = leveling.Levels
		}
		idx := findProgress(derived, old.Role, old.OwnerID, old.BadgeID)
		if idx < 0 {
			derived = append(derived, old)
			idx = len(derived) - 1
		}
		row := &derived[idx]
		// The ledger is authoritative; legacy counts only fill rows it
		// produced nothing for (e.g. pre-ledger grants).
		if row.YesCount+row.NoCount == 0 {
			row.YesCount = old.YesCount
			row.NoCount = old.NoCount
		}
		if old.MaxLevel > row.MaxLevel {
			row.MaxLevel = old.MaxLevel
		}
		if def, ok := lookup(row.BadgeID); ok {
			if level := leveling.LevelFromCounts(rulesForBadge(rules, def), row.YesCount, row.NoCount); level > row.MaxLevel {
				row.MaxLevel = level
			}
		}
	}
	return derived
}

// seedLeaderboard rebuilds the in-memory rank boards from stored progress
// after a restart.
func (s *Service) seedLeaderboard(ctx context.Context) {
	s.mu.Lock()
	progress, err := s.loadProgress(ctx)
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn(ctx, "leaderboard seed skipped", logger.Error(err))
		return
	}
	type profile struct {
		role model.Role
		id   string
	}
	seen := make(map[profile]struct{}, len(progress))
	for _, p := range progress {
		key := profile{role: p.Role, id: p.OwnerID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		s.refreshRating(ctx, p.Role, p.OwnerID)
	}
}
