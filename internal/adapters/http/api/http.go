// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/vouch/internal/adapters/ranking"
	service "github.com/okian/vouch/internal/app"
	"github.com/okian/vouch/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the engine implementation.
type Dependencies interface {
	CheckinDependencies
	GrantDependencies
	ProfileDependencies
	LeaderboardDependencies
	RankDependencies
	AdminDependencies
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = model.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	checkinsHandler    *CheckinsHandler
	grantsHandler      *GrantsHandler
	profileHandler     *ProfileHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	adminHandler       *AdminHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLeaderboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		checkinsHandler:    NewCheckinsHandler(deps),
		grantsHandler:      NewGrantsHandler(deps),
		profileHandler:     NewProfileHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		rankHandler:        NewRankHandler(deps),
		adminHandler:       NewAdminHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/checkins", MetricsMiddleware(s.checkinsHandler.HandleCheckins, "checkins"))
	mux.HandleFunc("/checkins/batch", MetricsMiddleware(s.checkinsHandler.HandleBatch, "checkins_batch"))
	mux.HandleFunc("/checkins/import", MetricsMiddleware(s.checkinsHandler.HandleImport, "checkins_import"))
	mux.HandleFunc("/checkins/", MetricsMiddleware(s.checkinsHandler.HandleStatus, "checkin_status"))
	mux.HandleFunc("/snap-grants", MetricsMiddleware(s.grantsHandler.HandleGrant, "snap_grants"))
	mux.HandleFunc("/profiles/", MetricsMiddleware(s.profileHandler.HandleProfile, "profiles"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/config/rules", MetricsMiddleware(s.adminHandler.HandleRules, "config_rules"))
	mux.HandleFunc("/config/rules/", MetricsMiddleware(s.adminHandler.HandleRuleOverride, "config_rule_override"))
	mux.HandleFunc("/config/score", MetricsMiddleware(s.adminHandler.HandleScore, "config_score"))
	mux.HandleFunc("/config/score/weights/", MetricsMiddleware(s.adminHandler.HandleBadgeWeight, "config_badge_weight"))
}

// checkinRequest mirrors the wire schema for checkin submission. The
// verifier role is always the opposite of the target role and is derived,
// never accepted.
type checkinRequest struct {
	SubmissionID string `json:"submission_id,omitempty"`
	SeekerID     string `json:"seeker_id"`
	RetainerID   string `json:"retainer_id"`
	BadgeID      string `json:"badge_id"`
	TargetRole   string `json:"target_role"`
	Value        string `json:"value"`
	Cadence      string `json:"cadence,omitempty"`
	PeriodKey    string `json:"period_key,omitempty"`
}

func (c checkinRequest) validate() error {
	switch {
	case strings.TrimSpace(c.SeekerID) == "":
		return errors.New("missing seeker_id")
	case strings.TrimSpace(c.RetainerID) == "":
		return errors.New("missing retainer_id")
	case strings.TrimSpace(c.BadgeID) == "":
		return errors.New("missing badge_id")
	}
	if !model.Role(c.TargetRole).Valid() {
		return errors.New("target_role must be SEEKER or RETAINER")
	}
	if v := model.CheckinValue(c.Value); v != model.ValueYes && v != model.ValueNo {
		return errors.New("value must be YES or NO")
	}
	return nil
}

func (c checkinRequest) toSubmission() model.CheckinSubmission {
	targetRole := model.Role(c.TargetRole)
	targetID := c.SeekerID
	if targetRole == model.RoleRetainer {
		targetID = c.RetainerID
	}
	return model.CheckinSubmission{
		SubmissionID: c.SubmissionID,
		SeekerID:     c.SeekerID,
		RetainerID:   c.RetainerID,
		BadgeID:      c.BadgeID,
		TargetRole:   targetRole,
		TargetID:     targetID,
		VerifierRole: targetRole.Opposite(),
		Value:        model.CheckinValue(c.Value),
		Cadence:      model.Cadence(c.Cadence),
		PeriodKey:    c.PeriodKey,
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeEngineError translates engine sentinel errors to HTTP statuses.
func writeEngineError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownBadge),
		errors.Is(err, service.ErrCheckinNotFound),
		errors.Is(err, ranking.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, service.ErrWrongVerifier):
		writeError(w, http.StatusForbidden, "forbidden", Wrap(op, err))
	case errors.Is(err, service.ErrNoActiveLink),
		errors.Is(err, service.ErrNotWorkingTogether):
		writeError(w, http.StatusConflict, "link_precondition", Wrap(op, err))
	case errors.Is(err, service.ErrBadgeRoleMismatch),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidValue),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidPeriodKey),
		errors.Is(err, service.ErrNotSnapBadge),
		errors.Is(err, ranking.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// pathSegments splits the request path after a prefix into its non-empty
// segments.
func pathSegments(path, prefix string) []string {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}
