package service

import (
	"context"
	"errors"
	"time"

	"github.com/okian/vouch/internal/adapters/ranking"
	"github.com/okian/vouch/internal/domain/model"
	"github.com/okian/vouch/internal/domain/trust"
	"github.com/okian/vouch/pkg/logger"
	"github.com/okian/vouch/pkg/metrics"
)

// TrustRatingForProfile computes the current blended rating for a profile.
func (s *Service) TrustRatingForProfile(ctx context.Context, role model.Role, ownerID string) (model.TrustRating, error) {
	return s.TrustRatingAt(ctx, role, ownerID, s.now())
}

// TrustRatingAt computes the blended rating as of a reference time.
//
// Two badge groups contribute: expectations (the profile's selected
// background badges plus every SNAP and CHECKER badge of its role) and
// growth (its active selectable badges). Each non-SNAP badge scores the
// per-counterpart average of its ledger entries inside the trailing trust
// window; SNAP badges score their lifetime ratio. Badges without
// qualifying data drop out rather than dragging the score, and the final
// blend renormalizes over whichever groups produced data. Percent is nil
// when neither did.
//
// Seeker ratings additionally carry the externally-managed bad-exit
// penalty, floored at 0.
func (s *Service) TrustRatingAt(ctx context.Context, role model.Role, ownerID string, at time.Time) (model.TrustRating, error) {
	if !role.Valid() {
		return model.TrustRating{}, ErrInvalidRole
	}
	start := time.Now()
	defer func() { metrics.RecordTrustCalcDuration(float64(time.Since(start).Milliseconds())) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.loadCheckins(ctx)
	if err != nil {
		return model.TrustRating{}, err
	}
	progress, err := s.loadProgress(ctx)
	if err != nil {
		return model.TrustRating{}, err
	}
	selections, err := s.loadSelections(ctx)
	if err != nil {
		return model.TrustRating{}, err
	}
	score := s.loadScore(ctx)
	sel := s.selectionView(selections, role, ownerID)

	cutoff := at.AddDate(0, -s.trustWindowMonths, 0)

	rating := model.TrustRating{Role: role, OwnerID: ownerID}
	var expScores, growthScores []trust.BadgeScore

	for _, id := range s.expectationBadges(role, sel) {
		if bs, ok := s.scoreBadge(ledger, progress, score, role, ownerID, id, cutoff); ok {
			expScores = append(expScores, bs)
			rating.YesCount += bs.Yes
			rating.NoCount += bs.No
		}
	}
	for _, id := range sel.ActiveBadges {
		if bs, ok := s.scoreBadge(ledger, progress, score, role, ownerID, id, cutoff); ok {
			growthScores = append(growthScores, bs)
			rating.YesCount += bs.Yes
			rating.NoCount += bs.No
		}
	}

	blended := trust.Blend(
		trust.GroupScore(expScores),
		trust.GroupScore(growthScores),
		score.ExpectationsWeight,
		score.GrowthWeight,
	)
	if blended != nil && role == model.RoleSeeker {
		if penalty := s.penalties.ActiveBadExitPenaltyPercent(ctx, ownerID); penalty > 0 {
			v := trust.ApplyPenalty(*blended, penalty)
			blended = &v
		}
	}
	rating.Percent = blended
	return rating, nil
}

// expectationBadges lists the badges the profile is judged on regardless of
// its growth choices: selected background badges plus every one-shot and
// checker badge of the role.
func (s *Service) expectationBadges(role model.Role, sel model.BadgeSelection) []string {
	out := make([]string, 0, len(sel.BackgroundBadges)+4)
	seen := make(map[string]struct{})
	for _, id := range sel.BackgroundBadges {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, def := range s.catalog.ForRoleKind(role, model.KindSnap) {
		if _, dup := seen[def.ID]; !dup {
			seen[def.ID] = struct{}{}
			out = append(out, def.ID)
		}
	}
	for _, def := range s.catalog.ForRoleKind(role, model.KindChecker) {
		if _, dup := seen[def.ID]; !dup {
			seen[def.ID] = struct{}{}
			out = append(out, def.ID)
		}
	}
	return out
}

// scoreBadge computes one badge's group entry. ok is false when the badge
// has no qualifying data and must be excluded.
func (s *Service) scoreBadge(ledger []model.BadgeCheckin, progress []model.BadgeProgress, score scoreDoc, role model.Role, ownerID, badgeID string, cutoff time.Time) (trust.BadgeScore, bool) {
	def, ok := s.catalog.Badge(badgeID)
	if !ok {
		return trust.BadgeScore{}, false
	}

	var percent float64
	var yes, no int
	if def.Kind == model.KindSnap {
		idx := findProgress(progress, role, ownerID, badgeID)
		if idx < 0 {
			return trust.BadgeScore{}, false
		}
		percent, ok = trust.LifetimePercent(progress[idx])
		if !ok {
			return trust.BadgeScore{}, false
		}
		yes, no = progress[idx].YesCount, progress[idx].NoCount
	} else {
		entries := make([]model.BadgeCheckin, 0, 16)
		for _, e := range ledger {
			if e.TargetRole != role || e.TargetID != ownerID || e.BadgeID != badgeID {
				continue
			}
			if e.Status == model.StatusDisputed {
				continue
			}
			entries = append(entries, e)
		}
		percent, yes, no, ok = trust.WindowPercent(entries, role, cutoff)
		if !ok {
			return trust.BadgeScore{}, false
		}
	}

	maxLevel := 0
	if idx := findProgress(progress, role, ownerID, badgeID); idx >= 0 {
		maxLevel = progress[idx].MaxLevel
	}
	multIdx := maxLevel - 1
	if multIdx < 0 {
		multIdx = 0
	}
	if multIdx >= len(score.LevelMultipliers) {
		multIdx = len(score.LevelMultipliers) - 1
	}
	w := trust.Weights{
		Badge:      badgeWeight(score, def),
		Kind:       score.KindWeights[def.Kind],
		Multiplier: score.LevelMultipliers[multIdx],
	}
	return trust.BadgeScore{
		Percent: percent,
		Weight:  w.Contribution(),
		Yes:     yes,
		No:      no,
	}, true
}

// Leaderboard returns the top-n rated profiles for a role.
func (s *Service) Leaderboard(ctx context.Context, role model.Role, n int) ([]model.Entry, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	return s.ranks.TopN(ctx, role, n)
}

// RankOf returns a profile's current leaderboard position.
func (s *Service) RankOf(ctx context.Context, role model.Role, ownerID string) (model.Entry, error) {
	if !role.Valid() {
		return model.Entry{}, ErrInvalidRole
	}
	return s.ranks.Rank(ctx, role, ownerID)
}

// refreshRating recomputes a profile's rating and pushes the result into
// its role leaderboard, removing the profile when the rating degrades to
// "no data". Refresh failures are logged, never propagated: the ledger
// write already succeeded and the board self-heals on the next refresh.
func (s *Service) refreshRating(ctx context.Context, role model.Role, ownerID string) {
	rating, err := s.TrustRatingForProfile(ctx, role, ownerID)
	if err != nil {
		s.logger.Warn(ctx, "trust refresh failed",
			logger.String("role", string(role)),
			logger.String("ownerID", ownerID),
			logger.Error(err),
		)
		return
	}
	if rating.Percent == nil {
		s.ranks.Remove(ctx, role, ownerID)
		metrics.RecordLeaderboardUpdate()
		return
	}
	if err := s.ranks.Update(ctx, role, ownerID, *rating.Percent); err != nil && !errors.Is(err, ranking.ErrInvalidProfile) {
		s.logger.Warn(ctx, "leaderboard update failed",
			logger.String("ownerID", ownerID),
			logger.Error(err),
		)
		return
	}
	metrics.RecordLeaderboardUpdate()
}
