package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/okian/vouch/internal/adapters/repository"
	"github.com/okian/vouch/internal/domain/leveling"
	"github.com/okian/vouch/internal/domain/model"
)

// Persisted document shapes. Each entity decodes through an explicit
// parse-and-coerce step: collections drop malformed elements, configuration
// documents fall back to defaults field by field. The ledger is the one
// document whose decode failure is an error rather than a silent reset,
// since it is the source of truth everything else derives from.

type rulesDoc struct {
	Defaults  map[model.Role][]model.LevelRule `json:"defaults"`
	Overrides map[string][]model.LevelRule     `json:"overrides"`
}

type scoreDoc struct {
	ExpectationsWeight float64                     `json:"expectations_weight"`
	GrowthWeight       float64                     `json:"growth_weight"`
	KindWeights        map[model.BadgeKind]float64 `json:"kind_weights"`
	BadgeWeights       map[string]float64          `json:"badge_weights"`
	LevelMultipliers   []float64                   `json:"level_multipliers"`
}

// defaultScoreDoc returns the standard score configuration.
func defaultScoreDoc() scoreDoc {
	return scoreDoc{
		ExpectationsWeight: 0.65,
		GrowthWeight:       0.35,
		KindWeights: map[model.BadgeKind]float64{
			model.KindBackground: 3,
			model.KindSelectable: 1,
			model.KindSnap:       3,
			model.KindChecker:    3,
		},
		BadgeWeights:     map[string]float64{},
		LevelMultipliers: []float64{1, 1.7, 2.5, 3.2, 4},
	}
}

func defaultRulesDoc() rulesDoc {
	return rulesDoc{
		Defaults: map[model.Role][]model.LevelRule{
			model.RoleSeeker:   leveling.DefaultRules(),
			model.RoleRetainer: leveling.DefaultRules(),
		},
		Overrides: map[string][]model.LevelRule{},
	}
}

// normalizeRulesDoc coerces a decoded rules document: malformed default
// lists reset to the built-in thresholds, malformed overrides are dropped.
func normalizeRulesDoc(doc rulesDoc) rulesDoc {
	out := defaultRulesDoc()
	for role, rules := range doc.Defaults {
		if !role.Valid() {
			continue
		}
		if normalized, ok := leveling.Normalize(rules); ok {
			out.Defaults[role] = normalized
		}
	}
	for badgeID, rules := range doc.Overrides {
		if normalized, ok := leveling.Normalize(rules); ok {
			out.Overrides[badgeID] = normalized
		}
	}
	return out
}

// normalizeScoreDoc coerces a decoded score document field by field.
func normalizeScoreDoc(doc scoreDoc) scoreDoc {
	out := defaultScoreDoc()

	if doc.ExpectationsWeight >= 0 && doc.GrowthWeight >= 0 && doc.ExpectationsWeight+doc.GrowthWeight > 0 {
		sum := doc.ExpectationsWeight + doc.GrowthWeight
		out.ExpectationsWeight = doc.ExpectationsWeight / sum
		out.GrowthWeight = doc.GrowthWeight / sum
	}
	for kind, w := range doc.KindWeights {
		if w > 0 {
			out.KindWeights[kind] = w
		}
	}
	for id, w := range doc.BadgeWeights {
		if w > 0 {
			out.BadgeWeights[id] = w
		}
	}
	if ms, ok := normalizeMultipliers(doc.LevelMultipliers); ok {
		out.LevelMultipliers = ms
	}
	return out
}

// normalizeMultipliers validates a 5-entry level multiplier list. Entries
// must be finite and positive; valid entries are clamped to >= 0.1.
func normalizeMultipliers(in []float64) ([]float64, bool) {
	if len(in) != leveling.Levels {
		return nil, false
	}
	out := make([]float64, leveling.Levels)
	for i, v := range in {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return nil, false
		}
		out[i] = math.Max(0.1, v)
	}
	return out, true
}

// normalizeSelection drops ids that no longer validate against the catalog
// and enforces the per-list cap.
func (s *Service) normalizeSelection(sel model.BadgeSelection) model.BadgeSelection {
	sel.ActiveBadges = s.filterBadgeIDs(sel.Role, model.KindSelectable, sel.ActiveBadges)
	sel.BackgroundBadges = s.filterBadgeIDs(sel.Role, model.KindBackground, sel.BackgroundBadges)
	return sel
}

// filterBadgeIDs keeps ids that exist in the catalog with the wanted role
// and kind, deduplicated and capped at maxSelected.
func (s *Service) filterBadgeIDs(role model.Role, kind model.BadgeKind, ids []string) []string {
	out := make([]string, 0, maxSelected)
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if len(out) >= maxSelected {
			break
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		def, ok := s.catalog.Badge(id)
		if !ok || def.Role != role || def.Kind != kind {
			continue
		}
		out = append(out, id)
	}
	return out
}

func (s *Service) loadCheckins(ctx context.Context) ([]model.BadgeCheckin, error) {
	doc, ok, err := s.store.Read(ctx, repository.KeyCheckins)
	if err != nil {
		return nil, fmt.Errorf("read checkins: %w", err)
	}
	if !ok {
		return []model.BadgeCheckin{}, nil
	}
	var list []model.BadgeCheckin
	if err := json.Unmarshal(doc.Data, &list); err != nil {
		return nil, fmt.Errorf("decode checkins: %w", err)
	}
	return list, nil
}

func (s *Service) storeCheckins(ctx context.Context, list []model.BadgeCheckin) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode checkins: %w", err)
	}
	if err := s.store.Write(ctx, repository.KeyCheckins, repository.SchemaCurrent, data); err != nil {
		return fmt.Errorf("write checkins: %w", err)
	}
	s.notify(repository.KeyCheckins)
	return nil
}

func (s *Service) loadProgress(ctx context.Context) ([]model.BadgeProgress, error) {
	doc, ok, err := s.store.Read(ctx, repository.KeyProgress)
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}
	if !ok {
		return []model.BadgeProgress{}, nil
	}
	var list []model.BadgeProgress
	if err := json.Unmarshal(doc.Data, &list); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	// Derived data tolerates shape drift: clamp whatever arrived.
	for i := range list {
		if list[i].YesCount < 0 {
			list[i].YesCount = 0
		}
		if list[i].NoCount < 0 {
			list[i].NoCount = 0
		}
		if list[i].MaxLevel < 0 {
			list[i].MaxLevel = 0
		}
		if list[i].MaxLevel > leveling.Levels {
			list[i].MaxLevel = leveling.Levels
		}
	}
	return list, nil
}

func (s *Service) storeProgress(ctx context.Context, list []model.BadgeProgress) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	if err := s.store.Write(ctx, repository.KeyProgress, repository.SchemaCurrent, data); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	s.notify(repository.KeyProgress)
	return nil
}

func (s *Service) loadSelections(ctx context.Context) ([]model.BadgeSelection, error) {
	doc, ok, err := s.store.Read(ctx, repository.KeySelections)
	if err != nil {
		return nil, fmt.Errorf("read selections: %w", err)
	}
	if !ok {
		return []model.BadgeSelection{}, nil
	}
	var list []model.BadgeSelection
	if err := json.Unmarshal(doc.Data, &list); err != nil {
		return nil, fmt.Errorf("decode selections: %w", err)
	}
	for i := range list {
		list[i] = s.normalizeSelection(list[i])
	}
	return list, nil
}

func (s *Service) storeSelections(ctx context.Context, list []model.BadgeSelection) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode selections: %w", err)
	}
	if err := s.store.Write(ctx, repository.KeySelections, repository.SchemaCurrent, data); err != nil {
		return fmt.Errorf("write selections: %w", err)
	}
	s.notify(repository.KeySelections)
	return nil
}

func (s *Service) loadRules(ctx context.Context) rulesDoc {
	doc, ok, err := s.store.Read(ctx, repository.KeyLevelRules)
	if err != nil || !ok {
		return defaultRulesDoc()
	}
	var decoded rulesDoc
	if err := json.Unmarshal(doc.Data, &decoded); err != nil {
		return defaultRulesDoc()
	}
	return normalizeRulesDoc(decoded)
}

func (s *Service) storeRules(ctx context.Context, doc rulesDoc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode level rules: %w", err)
	}
	if err := s.store.Write(ctx, repository.KeyLevelRules, repository.SchemaCurrent, data); err != nil {
		return fmt.Errorf("write level rules: %w", err)
	}
	s.notify(repository.KeyLevelRules)
	return nil
}

func (s *Service) loadScore(ctx context.Context) scoreDoc {
	doc, ok, err := s.store.Read(ctx, repository.KeyScoreConfig)
	if err != nil || !ok {
		return s.defaultScore()
	}
	var decoded scoreDoc
	if err := json.Unmarshal(doc.Data, &decoded); err != nil {
		return s.defaultScore()
	}
	return normalizeScoreDoc(decoded)
}

// defaultScore starts from the built-in score configuration with the
// engine's configured blend split applied.
func (s *Service) defaultScore() scoreDoc {
	doc := defaultScoreDoc()
	if s.expectationsWeight >= 0 && s.growthWeight >= 0 && s.expectationsWeight+s.growthWeight > 0 {
		sum := s.expectationsWeight + s.growthWeight
		doc.ExpectationsWeight = s.expectationsWeight / sum
		doc.GrowthWeight = s.growthWeight / sum
	}
	return doc
}

func (s *Service) storeScore(ctx context.Context, doc scoreDoc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode score config: %w", err)
	}
	if err := s.store.Write(ctx, repository.KeyScoreConfig, repository.SchemaCurrent, data); err != nil {
		return fmt.Errorf("write score config: %w", err)
	}
	s.notify(repository.KeyScoreConfig)
	return nil
}

func findProgress(list []model.BadgeProgress, role model.Role, ownerID, badgeID string) int {
	for i, p := range list {
		if p.Role == role && p.OwnerID == ownerID && p.BadgeID == badgeID {
			return i
		}
	}
	return -1
}

func findSelection(list []model.BadgeSelection, role model.Role, ownerID string) int {
	for i, sel := range list {
		if sel.Role == role && sel.OwnerID == ownerID {
			return i
		}
	}
	return -1
}
