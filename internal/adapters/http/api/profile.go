// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/vouch/internal/app"
	"github.com/okian/vouch/internal/domain/model"
)

// ProfileDependencies defines the interface for per-profile read and
// selection operations.
type ProfileDependencies interface {
	BadgeSummaryForProfile(ctx context.Context, role model.Role, ownerID string) ([]service.BadgeSummary, error)
	ProgressToNextLevel(ctx context.Context, role model.Role, ownerID string) ([]service.LevelProgress, error)
	TrustRatingForProfile(ctx context.Context, role model.Role, ownerID string) (model.TrustRating, error)
	Selection(ctx context.Context, role model.Role, ownerID string) (model.BadgeSelection, error)
	SetActiveBadges(ctx context.Context, role model.Role, ownerID string, ids []string) (model.BadgeSelection, error)
	SetBackgroundBadges(ctx context.Context, role model.Role, ownerID string, ids []string, allowOverride bool) (model.BadgeSelection, error)
	BackgroundLockStatus(ctx context.Context, role model.Role, ownerID string) (service.LockStatus, error)
}

// ProfileHandler handles profile subresource requests.
type ProfileHandler struct {
	deps ProfileDependencies
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps ProfileDependencies) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

type selectionRequest struct {
	BadgeIDs      []string `json:"badge_ids"`
	AllowOverride bool     `json:"allow_override,omitempty"`
}

// HandleProfile routes /profiles/{role}/{owner_id}/{subresource} requests.
//
//	GET  badges               - full badge board with progress
//	GET  progress             - gap to the next achievement tier per badge
//	GET  trust                - blended trust rating
//	GET  selection            - growth and background selections
//	GET  selection/lock       - background lock status
//	PUT  selection/active     - replace growth badges
//	PUT  selection/background - replace background badges (lock-governed)
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.profiles"
	segments := pathSegments(r.URL.Path, "/profiles/")
	if len(segments) < 3 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	role := model.Role(segments[0])
	ownerID := segments[1]
	if !role.Valid() || ownerID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	sub := segments[2]
	rest := segments[3:]
	switch {
	case r.Method == http.MethodGet && sub == "badges" && len(rest) == 0:
		h.getSummary(w, r, role, ownerID)
	case r.Method == http.MethodGet && sub == "progress" && len(rest) == 0:
		h.getProgress(w, r, role, ownerID)
	case r.Method == http.MethodGet && sub == "trust" && len(rest) == 0:
		h.getTrust(w, r, role, ownerID)
	case r.Method == http.MethodGet && sub == "selection" && len(rest) == 0:
		h.getSelection(w, r, role, ownerID)
	case r.Method == http.MethodGet && sub == "selection" && len(rest) == 1 && rest[0] == "lock":
		h.getLock(w, r, role, ownerID)
	case r.Method == http.MethodPut && sub == "selection" && len(rest) == 1 && rest[0] == "active":
		h.putActive(w, r, role, ownerID)
	case r.Method == http.MethodPut && sub == "selection" && len(rest) == 1 && rest[0] == "background":
		h.putBackground(w, r, role, ownerID)
	default:
		http.NotFound(w, r)
	}
}

func (h *ProfileHandler) getSummary(w http.ResponseWriter, r *http.Request, role model.Role, ownerID string) {
	summary, err := h.deps.BadgeSummaryForProfile(r.Context(), role, ownerID)
	if err != nil {
		writeEngineError(w, "api.get_badges", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *ProfileHandler) getProgress(w http.ResponseWriter, r *http.Request, role model.Role, ownerID string) {
	progress, err := h.deps.ProgressToNextLevel(r.Context(), role, ownerID)
	if err != nil {
		writeEngineError(w, "api.get_progress", err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *ProfileHandler) getTrust(w http.ResponseWriter, r *http.Request, role model.Role, ownerID string) {
	rating, err := h.deps.TrustRatingForProfile(r.Context(), role, ownerID)
	if err != nil {
		writeEngineError(w, "api.get_trust", err)
		return
	}
	writeJSON(w, http.StatusOK, rating)
}

func (h *ProfileHandler) getSelection(w http.ResponseWriter, r *http.Request, role model.Role, ownerID string) {
	sel, err := h.deps.Selection(r.Context(), role, ownerID)
	if err != nil {
		writeEngineError(w, "api.get_selection", err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (h *ProfileHandler) getLock(w http.ResponseWriter, r *http.Request, role model.Role, ownerID string) {
	lock, err := h.deps.BackgroundLockStatus(r.Context(), role, ownerID)
	if err != nil {
		writeEngineError(w, "api.get_selection_lock", err)
		return
	}
	writeJSON(w, http.StatusOK, lock)
}

func (h *ProfileHandler) putActive(w http.ResponseWriter, r *http.Request, role model.Role, ownerID string) {
	const op = "api.put_active_selection"
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	sel, err := h.deps.SetActiveBadges(r.Context(), role, ownerID, req.BadgeIDs)
	if err != nil {
		writeEngineError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (h *ProfileHandler) putBackground(w http.ResponseWriter, r *http.Request, role model.Role, ownerID string) {
	const op = "api.put_background_selection"
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	sel, err := h.deps.SetBackgroundBadges(r.Context(), role, ownerID, req.BadgeIDs, req.AllowOverride)
	if err != nil {
		writeEngineError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}
