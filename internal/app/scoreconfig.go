package service

import (
	"context"
	"math"

	"github.com/okian/vouch/internal/domain/model"
)

// BlendWeights returns the expectations/growth split. The pair always sums
// to 1.
func (s *Service) BlendWeights(ctx context.Context) (expectations, growth float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadScore(ctx)
	return doc.ExpectationsWeight, doc.GrowthWeight
}

// SetBlendWeights sets the expectations/growth split. Non-negative inputs
// that are not both zero are normalized to sum to 1; anything else resets
// the split to its defaults.
func (s *Service) SetBlendWeights(ctx context.Context, expectations, growth float64) (float64, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadScore(ctx)
	if expectations >= 0 && growth >= 0 && expectations+growth > 0 &&
		!math.IsNaN(expectations) && !math.IsNaN(growth) &&
		!math.IsInf(expectations, 0) && !math.IsInf(growth, 0) {
		sum := expectations + growth
		doc.ExpectationsWeight = expectations / sum
		doc.GrowthWeight = growth / sum
	} else {
		defaults := defaultScoreDoc()
		doc.ExpectationsWeight = defaults.ExpectationsWeight
		doc.GrowthWeight = defaults.GrowthWeight
	}
	if err := s.storeScore(ctx, doc); err != nil {
		return 0, 0, err
	}
	return doc.ExpectationsWeight, doc.GrowthWeight, nil
}

// KindWeight returns the weight applied to badges of a kind.
func (s *Service) KindWeight(ctx context.Context, kind model.BadgeKind) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadScore(ctx).KindWeights[kind]
}

// SetKindWeight sets the weight for a badge kind. Non-positive values are
// rejected silently, leaving the prior value in place.
func (s *Service) SetKindWeight(ctx context.Context, kind model.BadgeKind, weight float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadScore(ctx)
	if weight > 0 && !math.IsNaN(weight) && !math.IsInf(weight, 0) {
		doc.KindWeights[kind] = weight
		if err := s.storeScore(ctx, doc); err != nil {
			return 0, err
		}
	}
	return doc.KindWeights[kind], nil
}

// LevelMultipliers returns the 5-entry level multiplier table.
func (s *Service) LevelMultipliers(ctx context.Context) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadScore(ctx).LevelMultipliers
}

// SetLevelMultipliers replaces the multiplier table. Input that is not
// exactly five finite positive entries falls back to the defaults; valid
// entries are clamped to >= 0.1.
func (s *Service) SetLevelMultipliers(ctx context.Context, multipliers []float64) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadScore(ctx)
	if ms, ok := normalizeMultipliers(multipliers); ok {
		doc.LevelMultipliers = ms
	} else {
		doc.LevelMultipliers = defaultScoreDoc().LevelMultipliers
	}
	if err := s.storeScore(ctx, doc); err != nil {
		return nil, err
	}
	return doc.LevelMultipliers, nil
}

// SetBadgeWeightOverride installs a per-badge weight override. Non-positive
// values are rejected silently.
func (s *Service) SetBadgeWeightOverride(ctx context.Context, badgeID string, weight float64) error {
	if _, ok := s.catalog.Badge(badgeID); !ok {
		return ErrUnknownBadge
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadScore(ctx)
	if weight > 0 && !math.IsNaN(weight) && !math.IsInf(weight, 0) {
		doc.BadgeWeights[badgeID] = weight
		return s.storeScore(ctx, doc)
	}
	return nil
}

// ClearBadgeWeightOverride removes a per-badge weight override.
func (s *Service) ClearBadgeWeightOverride(ctx context.Context, badgeID string) error {
	if _, ok := s.catalog.Badge(badgeID); !ok {
		return ErrUnknownBadge
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.loadScore(ctx)
	if _, exists := doc.BadgeWeights[badgeID]; !exists {
		return nil
	}
	delete(doc.BadgeWeights, badgeID)
	return s.storeScore(ctx, doc)
}

// BadgeWeight resolves the effective weight for a badge: per-badge
// override, else the catalog's declared weight (clamped >= 0.1), else a
// kind-based fallback of 1 for SELECTABLE and 2 otherwise.
func (s *Service) BadgeWeight(ctx context.Context, badgeID string) (float64, error) {
	def, ok := s.catalog.Badge(badgeID)
	if !ok {
		return 0, ErrUnknownBadge
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return badgeWeight(s.loadScore(ctx), def), nil
}

// badgeWeight is the lock-free resolution used inside larger operations.
func badgeWeight(doc scoreDoc, def model.BadgeDefinition) float64 {
	if w, ok := doc.BadgeWeights[def.ID]; ok {
		return w
	}
	if def.Weight > 0 {
		return math.Max(0.1, def.Weight)
	}
	if def.Kind == model.KindSelectable {
		return 1
	}
	return 2
}
