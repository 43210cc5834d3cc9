package httptransport

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"machsafe/internal/audit/models"
	dErrors "machsafe/pkg/domain-errors"
	"machsafe/pkg/requestcontext"
)

type recordActionRequest struct {
	Action         string         `json:"action"`
	EntityType     string         `json:"entityType"`
	EntityID       string         `json:"entityId"`
	EntityName     string         `json:"entityName"`
	Before         map[string]any `json:"beforeSnapshot"`
	After          map[string]any `json:"afterSnapshot"`
	ChangesSummary string         `json:"changesSummary"`
}

// handleRecordAction accepts an audit record and returns immediately; the
// write happens on the recorder's worker. A 202 means enqueued, not persisted.
func (h *Handler) handleRecordAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req recordActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	action, ok := models.ParseAction(req.Action)
	if !ok {
		writeError(w, dErrors.New(dErrors.CodeValidation, "unknown action"))
		return
	}
	if req.EntityType == "" {
		writeError(w, dErrors.New(dErrors.CodeValidation, "entityType is required"))
		return
	}

	h.recorder.RecordAction(ctx, action, req.EntityType, req.EntityID, req.EntityName,
		req.Before, req.After, req.ChangesSummary)

	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleAuditList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := auditFilterFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	events, err := h.auditQuery.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit list failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) handleAuditStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.auditQuery.Stats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit stats failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleAuditByEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.auditQuery.ByEntity(ctx, chi.URLParam(r, "entityType"), chi.URLParam(r, "entityID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) handleAuditByActor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, err := uuid.Parse(chi.URLParam(r, "actorID"))
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid actor id"))
		return
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}

	events, err := h.auditQuery.ByActor(ctx, actorID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func auditFilterFromQuery(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	filter := models.Filter{
		EntityType: q.Get("entityType"),
		SearchTerm: q.Get("searchTerm"),
	}

	if raw := q.Get("action"); raw != "" {
		action, ok := models.ParseAction(raw)
		if !ok {
			return models.Filter{}, dErrors.New(dErrors.CodeValidation, "unknown action")
		}
		filter.Action = action
	}
	if raw := q.Get("actorUserId"); raw != "" {
		actorID, err := uuid.Parse(raw)
		if err != nil {
			return models.Filter{}, dErrors.New(dErrors.CodeBadRequest, "invalid actor id")
		}
		filter.ActorUserID = actorID
	}

	var err error
	if filter.StartDate, err = timeQuery(q.Get("startDate")); err != nil {
		return models.Filter{}, err
	}
	if filter.EndDate, err = timeQuery(q.Get("endDate")); err != nil {
		return models.Filter{}, err
	}
	if filter.Limit, err = intQuery(r, "limit"); err != nil {
		return models.Filter{}, err
	}
	if filter.Offset, err = intQuery(r, "offset"); err != nil {
		return models.Filter{}, err
	}
	return filter, nil
}

// timeQuery accepts RFC 3339 timestamps and bare dates.
func timeQuery(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, dErrors.New(dErrors.CodeBadRequest, "invalid date: "+raw)
}

func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid "+name)
	}
	return n, nil
}
