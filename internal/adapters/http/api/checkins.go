// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/vouch/internal/app"
	"github.com/okian/vouch/internal/domain/model"
)

// CheckinDependencies defines the interface for ledger operations.
type CheckinDependencies interface {
	// Intake idempotency and async handoff.
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)
	Enqueue(ctx context.Context, sub model.CheckinSubmission) bool

	// Synchronous ledger operations.
	Submit(ctx context.Context, sub model.CheckinSubmission) (model.BadgeCheckin, bool, error)
	SubmitBatch(ctx context.Context, subs []model.CheckinSubmission) (model.BatchResult, error)
	Checkins(ctx context.Context, filter service.CheckinFilter) ([]model.BadgeCheckin, error)
	UpdateCheckinStatus(ctx context.Context, checkinID string, status model.CheckinStatus, overrideValue model.CheckinValue, note string) (model.BadgeCheckin, error)
}

// CheckinsHandler handles ledger requests.
type CheckinsHandler struct {
	deps CheckinDependencies
}

// NewCheckinsHandler creates a new checkins handler.
func NewCheckinsHandler(deps CheckinDependencies) *CheckinsHandler {
	return &CheckinsHandler{deps: deps}
}

type checkinResponse struct {
	Checkin model.BadgeCheckin `json:"checkin"`
	Changed bool               `json:"changed"`
}

// HandleCheckins handles POST /checkins (synchronous submission) and
// GET /checkins (filtered ledger listing).
func (h *CheckinsHandler) HandleCheckins(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleSubmit(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *CheckinsHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_checkin"
	var req checkinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	entry, changed, err := h.deps.Submit(r.Context(), req.toSubmission())
	if err != nil {
		writeEngineError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, checkinResponse{Checkin: entry, Changed: changed})
}

func (h *CheckinsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_checkins"
	q := r.URL.Query()
	filter := service.CheckinFilter{
		Role:      model.Role(q.Get("role")),
		OwnerID:   q.Get("owner_id"),
		BadgeID:   q.Get("badge_id"),
		PeriodKey: q.Get("period_key"),
		Status:    model.CheckinStatus(q.Get("status")),
	}
	if filter.Role != "" && !filter.Role.Valid() {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.Checkins(r.Context(), filter)
	if err != nil {
		writeEngineError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleBatch handles POST /checkins/batch requests. The batch is
// best-effort: rejected items are counted, not fatal.
func (h *CheckinsHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_checkin_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var reqs []checkinRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(reqs) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	subs := make([]model.CheckinSubmission, 0, len(reqs))
	for _, req := range reqs {
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		subs = append(subs, req.toSubmission())
	}
	result, err := h.deps.SubmitBatch(r.Context(), subs)
	if err != nil {
		writeEngineError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleImport handles POST /checkins/import requests: the asynchronous
// intake path with submission-id idempotency and queue backpressure.
func (h *CheckinsHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.import_checkin"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req checkinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.SubmissionID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing submission_id")))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first.
	if h.deps.SeenAndRecord(r.Context(), req.SubmissionID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	if ok := h.deps.Enqueue(r.Context(), req.toSubmission()); !ok {
		// Rollback the "seen" status since enqueue failed.
		h.deps.Unrecord(r.Context(), req.SubmissionID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}

type statusRequest struct {
	Status        string `json:"status"`
	OverrideValue string `json:"override_value,omitempty"`
	Note          string `json:"note,omitempty"`
}

// HandleStatus handles PUT /checkins/{id}/status requests: the audit
// surface for disputes and overrides.
func (h *CheckinsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_checkin_status"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	segments := pathSegments(r.URL.Path, "/checkins/")
	if len(segments) != 2 || segments[1] != "status" || segments[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	entry, err := h.deps.UpdateCheckinStatus(
		r.Context(),
		segments[0],
		model.CheckinStatus(req.Status),
		model.CheckinValue(req.OverrideValue),
		req.Note,
	)
	if err != nil {
		writeEngineError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
