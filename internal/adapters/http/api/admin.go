// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/vouch/internal/domain/model"
)

// AdminDependencies defines the interface for scoring configuration
// operations.
type AdminDependencies interface {
	DefaultLevelRules(ctx context.Context, role model.Role) ([]model.LevelRule, error)
	SetDefaultLevelRules(ctx context.Context, role model.Role, rules []model.LevelRule) ([]model.LevelRule, error)
	BadgeRuleOverride(ctx context.Context, badgeID string) ([]model.LevelRule, bool, error)
	SetBadgeRuleOverride(ctx context.Context, badgeID string, rules []model.LevelRule) ([]model.LevelRule, error)
	ClearBadgeRuleOverride(ctx context.Context, badgeID string) error
	LevelRulesForBadge(ctx context.Context, badgeID string) ([]model.LevelRule, error)

	BlendWeights(ctx context.Context) (expectations, growth float64)
	SetBlendWeights(ctx context.Context, expectations, growth float64) (float64, float64, error)
	KindWeight(ctx context.Context, kind model.BadgeKind) float64
	SetKindWeight(ctx context.Context, kind model.BadgeKind, weight float64) (float64, error)
	LevelMultipliers(ctx context.Context) []float64
	SetLevelMultipliers(ctx context.Context, multipliers []float64) ([]float64, error)
	BadgeWeight(ctx context.Context, badgeID string) (float64, error)
	SetBadgeWeightOverride(ctx context.Context, badgeID string, weight float64) error
	ClearBadgeWeightOverride(ctx context.Context, badgeID string) error
}

// AdminHandler handles scoring configuration requests.
type AdminHandler struct {
	deps AdminDependencies
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(deps AdminDependencies) *AdminHandler {
	return &AdminHandler{deps: deps}
}

type rulesRequest struct {
	Role  string            `json:"role"`
	Rules []model.LevelRule `json:"rules"`
}

type rulesResponse struct {
	Role  string            `json:"role,omitempty"`
	Rules []model.LevelRule `json:"rules"`
}

// HandleRules handles GET and PUT /config/rules requests for role-default
// achievement thresholds.
func (h *AdminHandler) HandleRules(w http.ResponseWriter, r *http.Request) {
	const op = "api.config_rules"
	switch r.Method {
	case http.MethodGet:
		role := model.Role(r.URL.Query().Get("role"))
		rules, err := h.deps.DefaultLevelRules(r.Context(), role)
		if err != nil {
			writeEngineError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, rulesResponse{Role: string(role), Rules: rules})
	case http.MethodPut:
		var req rulesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		rules, err := h.deps.SetDefaultLevelRules(r.Context(), model.Role(req.Role), req.Rules)
		if err != nil {
			writeEngineError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, rulesResponse{Role: req.Role, Rules: rules})
	default:
		http.NotFound(w, r)
	}
}

// HandleRuleOverride handles /config/rules/{badge_id} requests: GET returns
// the effective thresholds, PUT installs a per-badge override, DELETE
// removes it.
func (h *AdminHandler) HandleRuleOverride(w http.ResponseWriter, r *http.Request) {
	const op = "api.config_rule_override"
	segments := pathSegments(r.URL.Path, "/config/rules/")
	if len(segments) != 1 || segments[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	badgeID := segments[0]

	switch r.Method {
	case http.MethodGet:
		rules, err := h.deps.LevelRulesForBadge(r.Context(), badgeID)
		if err != nil {
			writeEngineError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, rulesResponse{Rules: rules})
	case http.MethodPut:
		var req rulesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		rules, err := h.deps.SetBadgeRuleOverride(r.Context(), badgeID, req.Rules)
		if err != nil {
			writeEngineError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, rulesResponse{Rules: rules})
	case http.MethodDelete:
		if err := h.deps.ClearBadgeRuleOverride(r.Context(), badgeID); err != nil {
			writeEngineError(w, op, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

type scoreConfigPayload struct {
	ExpectationsWeight *float64           `json:"expectations_weight,omitempty"`
	GrowthWeight       *float64           `json:"growth_weight,omitempty"`
	KindWeights        map[string]float64 `json:"kind_weights,omitempty"`
	LevelMultipliers   []float64          `json:"level_multipliers,omitempty"`
}

type scoreConfigResponse struct {
	ExpectationsWeight float64            `json:"expectations_weight"`
	GrowthWeight       float64            `json:"growth_weight"`
	KindWeights        map[string]float64 `json:"kind_weights"`
	LevelMultipliers   []float64          `json:"level_multipliers"`
}

var allKinds = []model.BadgeKind{
	model.KindBackground,
	model.KindSelectable,
	model.KindSnap,
	model.KindChecker,
}

// HandleScore handles GET and PUT /config/score requests for the blend
// split, kind weights, and level multipliers. PUT applies only the fields
// present in the payload.
func (h *AdminHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.config_score"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.currentScore(r.Context()))
	case http.MethodPut:
		var req scoreConfigPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		ctx := r.Context()
		if req.ExpectationsWeight != nil || req.GrowthWeight != nil {
			exp, growth := h.deps.BlendWeights(ctx)
			if req.ExpectationsWeight != nil {
				exp = *req.ExpectationsWeight
			}
			if req.GrowthWeight != nil {
				growth = *req.GrowthWeight
			}
			if _, _, err := h.deps.SetBlendWeights(ctx, exp, growth); err != nil {
				writeEngineError(w, op, err)
				return
			}
		}
		for kind, weight := range req.KindWeights {
			if _, err := h.deps.SetKindWeight(ctx, model.BadgeKind(kind), weight); err != nil {
				writeEngineError(w, op, err)
				return
			}
		}
		if req.LevelMultipliers != nil {
			if _, err := h.deps.SetLevelMultipliers(ctx, req.LevelMultipliers); err != nil {
				writeEngineError(w, op, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, h.currentScore(ctx))
	default:
		http.NotFound(w, r)
	}
}

func (h *AdminHandler) currentScore(ctx context.Context) scoreConfigResponse {
	exp, growth := h.deps.BlendWeights(ctx)
	kinds := make(map[string]float64, len(allKinds))
	for _, kind := range allKinds {
		kinds[string(kind)] = h.deps.KindWeight(ctx, kind)
	}
	return scoreConfigResponse{
		ExpectationsWeight: exp,
		GrowthWeight:       growth,
		KindWeights:        kinds,
		LevelMultipliers:   h.deps.LevelMultipliers(ctx),
	}
}

type badgeWeightPayload struct {
	Weight float64 `json:"weight"`
}

// HandleBadgeWeight handles /config/score/weights/{badge_id} requests: GET
// returns the effective weight, PUT installs a per-badge override, DELETE
// removes it.
func (h *AdminHandler) HandleBadgeWeight(w http.ResponseWriter, r *http.Request) {
	const op = "api.config_badge_weight"
	segments := pathSegments(r.URL.Path, "/config/score/weights/")
	if len(segments) != 1 || segments[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	badgeID := segments[0]

	switch r.Method {
	case http.MethodGet:
		weight, err := h.deps.BadgeWeight(r.Context(), badgeID)
		if err != nil {
			writeEngineError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, badgeWeightPayload{Weight: weight})
	case http.MethodPut:
		var req badgeWeightPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := h.deps.SetBadgeWeightOverride(r.Context(), badgeID, req.Weight); err != nil {
			writeEngineError(w, op, err)
			return
		}
		weight, err := h.deps.BadgeWeight(r.Context(), badgeID)
		if err != nil {
			writeEngineError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, badgeWeightPayload{Weight: weight})
	case http.MethodDelete:
		if err := h.deps.ClearBadgeWeightOverride(r.Context(), badgeID); err != nil {
			writeEngineError(w, op, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}
