package service

import (
	"context"
	"time"

	"github.com/okian/vouch/internal/domain/leveling"
	"github.com/okian/vouch/internal/domain/model"
	"github.com/okian/vouch/pkg/metrics"
)

// BadgeSummary is the read-side row for one badge on a profile.
type BadgeSummary struct {
	BadgeID  string          `json:"badge_id"`
	Kind     model.BadgeKind `json:"kind"`
	Cadence  model.Cadence   `json:"cadence"`
	YesCount int             `json:"yes_count"`
	NoCount  int             `json:"no_count"`
	MaxLevel int             `json:"max_level"`
	Selected bool            `json:"selected"`
}

// LevelProgress describes how far a badge is from its next achievement
// tier. NextLevel is 0 when the badge is already at the top tier.
type LevelProgress struct {
	BadgeID       string  `json:"badge_id"`
	Level         int     `json:"level"`
	NextLevel     int     `json:"next_level,omitempty"`
	YesCount      int     `json:"yes_count"`
	NoCount       int     `json:"no_count"`
	Percent       float64 `json:"percent"`
	SamplesNeeded int     `json:"samples_needed,omitempty"`
	PercentNeeded float64 `json:"percent_needed,omitempty"`
}

// BadgeProgressForProfile returns the stored progress rows for a profile.
func (s *Service) BadgeProgressForProfile(ctx context.Context, role model.Role, ownerID string) ([]model.BadgeProgress, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	progress, err := s.loadProgress(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.BadgeProgress, 0, len(progress))
	for _, p := range progress {
		if p.Role == role && p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

// BadgeSummaryForProfile returns one row per catalog badge of the role,
// merging stored progress with the profile's selection state. Badges with
// no checkins yet appear zero-valued so the caller sees the full board.
func (s *Service) BadgeSummaryForProfile(ctx context.Context, role model.Role, ownerID string) ([]BadgeSummary, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	progress, err := s.loadProgress(ctx)
	if err != nil {
		return nil, err
	}
	selections, err := s.loadSelections(ctx)
	if err != nil {
		return nil, err
	}
	sel := s.selectionView(selections, role, ownerID)
	selected := make(map[string]struct{}, len(sel.ActiveBadges)+len(sel.BackgroundBadges))
	for _, id := range sel.ActiveBadges {
		selected[id] = struct{}{}
	}
	for _, id := range sel.BackgroundBadges {
		selected[id] = struct{}{}
	}

	defs := s.catalog.ForRole(role)
	out := make([]BadgeSummary, 0, len(defs))
	for _, def := range defs {
		row := BadgeSummary{BadgeID: def.ID, Kind: def.Kind, Cadence: def.Cadence}
		if idx := findProgress(progress, role, ownerID, def.ID); idx >= 0 {
			row.YesCount = progress[idx].YesCount
			row.NoCount = progress[idx].NoCount
			row.MaxLevel = progress[idx].MaxLevel
		}
		_, row.Selected = selected[def.ID]
		out = append(out, row)
	}
	return out, nil
}

// ProgressToNextLevel reports, per badge with recorded progress, the gap to
// the next achievement tier under the badge's governing rules.
func (s *Service) ProgressToNextLevel(ctx context.Context, role model.Role, ownerID string) ([]LevelProgress, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	progress, err := s.loadProgress(ctx)
	if err != nil {
		return nil, err
	}
	rules := s.loadRules(ctx)

	out := make([]LevelProgress, 0, len(progress))
	for _, p := range progress {
		if p.Role != role || p.OwnerID != ownerID {
			continue
		}
		def, ok := s.catalog.Badge(p.BadgeID)
		if !ok {
			continue
		}
		row := LevelProgress{
			BadgeID:  p.BadgeID,
			Level:    p.MaxLevel,
			YesCount: p.YesCount,
			NoCount:  p.NoCount,
		}
		if total := p.YesCount + p.NoCount; total > 0 {
			row.Percent = 100 * float64(p.YesCount) / float64(total)
		}
		if p.MaxLevel < leveling.Levels {
			badgeRules := rulesForBadge(rules, def)
			if p.MaxLevel < len(badgeRules) {
				next := badgeRules[p.MaxLevel]
				row.NextLevel = p.MaxLevel + 1
				if missing := next.MinSamples - (p.YesCount + p.NoCount); missing > 0 {
					row.SamplesNeeded = missing
				}
				if next.MinPercent > row.Percent {
					row.PercentNeeded = next.MinPercent - row.Percent
				}
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// RecomputeProgress rebuilds a profile's counts from the ledger, honoring
// audit state: DISPUTED entries are excluded and override values replace
// submitted ones. Achieved levels are never taken away, so MaxLevel keeps
// its ratchet even when the rebuilt counts no longer satisfy the tier.
func (s *Service) RecomputeProgress(ctx context.Context, role model.Role, ownerID string) ([]model.BadgeProgress, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	start := time.Now()
	defer func() { metrics.RecordRecomputeDuration(float64(time.Since(start).Milliseconds())) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.loadCheckins(ctx)
	if err != nil {
		return nil, err
	}
	progress, err := s.loadProgress(ctx)
	if err != nil {
		return nil, err
	}
	rules := s.loadRules(ctx)

	progress = s.rebuildProfileProgress(ledger, progress, rules, role, ownerID)
	if err := s.storeProgress(ctx, progress); err != nil {
		return nil, err
	}

	out := make([]model.BadgeProgress, 0)
	for _, p := range progress {
		if p.Role == role && p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

// rebuildProfileProgress recounts one profile's rows from the ledger and
// returns the updated collection. The ledger is authoritative only for
// badges it has entries for: rows whose counts did not come from the ledger
// (legacy-migrated fills, SNAP grants) are left untouched, and rows whose
// entries no longer count are zeroed, not removed, so the MaxLevel ratchet
// survives.
func (s *Service) rebuildProfileProgress(ledger []model.BadgeCheckin, progress []model.BadgeProgress, rules rulesDoc, role model.Role, ownerID string) []model.BadgeProgress {
	type counts struct {
		yes int
		no  int
	}
	tallies := make(map[string]counts)
	recorded := make(map[string]struct{})
	for _, e := range ledger {
		if e.TargetRole != role || e.TargetID != ownerID {
			continue
		}
		recorded[e.BadgeID] = struct{}{}
		if e.Status == model.StatusDisputed {
			continue
		}
		c := tallies[e.BadgeID]
		if e.EffectiveValue() == model.ValueYes {
			c.yes++
		} else {
			c.no++
		}
		tallies[e.BadgeID] = c
	}

	now := s.now()
	seen := make(map[string]struct{}, len(tallies))
	for i := range progress {
		p := &progress[i]
		if p.Role != role || p.OwnerID != ownerID {
			continue
		}
		seen[p.BadgeID] = struct{}{}
		if _, ok := recorded[p.BadgeID]; !ok {
			// No ledger entries for this badge: the stored counts came
			// from somewhere the ledger cannot reproduce.
			continue
		}
		c := tallies[p.BadgeID]
		def, ok := s.catalog.Badge(p.BadgeID)
		if ok && def.Kind == model.KindSnap && p.MaxLevel >= 1 && c.yes == 0 {
			// A granted SNAP badge keeps its synthetic sample.
			c.yes = 1
		}
		p.YesCount = c.yes
		p.NoCount = c.no
		if ok {
			if level := leveling.LevelFromCounts(rulesForBadge(rules, def), c.yes, c.no); level > p.MaxLevel {
				p.MaxLevel = level
			}
		}
		p.UpdatedAt = now
	}
	for badgeID, c := range tallies {
		if _, done := seen[badgeID]; done {
			continue
		}
		row := model.BadgeProgress{
			Role:      role,
			OwnerID:   ownerID,
			BadgeID:   badgeID,
			YesCount:  c.yes,
			NoCount:   c.no,
			UpdatedAt: now,
		}
		if def, ok := s.catalog.Badge(badgeID); ok {
			row.MaxLevel = leveling.LevelFromCounts(rulesForBadge(rules, def), c.yes, c.no)
		}
		progress = append(progress, row)
	}
	return progress
}
