// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/vouch/internal/domain/model"
)

// GrantDependencies defines the interface for one-shot badge grants.
type GrantDependencies interface {
	GrantSnapBadge(ctx context.Context, role model.Role, ownerID, badgeID string) (model.BadgeProgress, error)
}

// GrantsHandler handles SNAP grant requests.
type GrantsHandler struct {
	deps GrantDependencies
}

// NewGrantsHandler creates a new grants handler.
func NewGrantsHandler(deps GrantDependencies) *GrantsHandler {
	return &GrantsHandler{deps: deps}
}

type grantRequest struct {
	Role    string `json:"role"`
	OwnerID string `json:"owner_id"`
	BadgeID string `json:"badge_id"`
}

func (g grantRequest) validate() error {
	if !model.Role(g.Role).Valid() {
		return errors.New("role must be SEEKER or RETAINER")
	}
	if strings.TrimSpace(g.OwnerID) == "" {
		return errors.New("missing owner_id")
	}
	if strings.TrimSpace(g.BadgeID) == "" {
		return errors.New("missing badge_id")
	}
	return nil
}

// HandleGrant handles POST /snap-grants requests. Granting is idempotent.
func (h *GrantsHandler) HandleGrant(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_snap_grant"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	progress, err := h.deps.GrantSnapBadge(r.Context(), model.Role(req.Role), req.OwnerID, req.BadgeID)
	if err != nil {
		writeEngineError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}
