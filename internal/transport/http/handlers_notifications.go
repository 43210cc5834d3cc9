package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	auditModels "machsafe/internal/audit/models"
	notifModels "machsafe/internal/notification/models"
	"machsafe/internal/notification/service"
	dErrors "machsafe/pkg/domain-errors"
)

func (h *Handler) handleNotificationList(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := h.notifications.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": list})
}

func (h *Handler) handleNotificationUnread(w http.ResponseWriter, r *http.Request) {
	list, err := h.notifications.Unread(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": list})
}

func (h *Handler) handleNotificationUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.UnreadCount(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) handleNotificationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.notifications.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleNotificationMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid notification id"))
		return
	}
	n, err := h.notifications.MarkAsRead(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handler) handleNotificationMarkAllRead(w http.ResponseWriter, r *http.Request) {
	marked, err := h.notifications.MarkAllAsRead(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked": marked})
}

func (h *Handler) handleNotificationDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid notification id"))
		return
	}
	if err := h.notifications.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleNotificationDeleteAllRead(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.notifications.DeleteAllRead(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

type createNotificationRequest struct {
	UserID     string `json:"userId"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Priority   string `json:"priority"`
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	LinkURL    string `json:"linkUrl"`
}

func (h *Handler) handleNotificationCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	recipient, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid recipient user id"))
		return
	}

	n, err := h.notifications.Create(ctx, service.CreateInput{
		UserID:     recipient,
		Type:       req.Type,
		Title:      req.Title,
		Message:    req.Message,
		Priority:   notifModels.Priority(req.Priority),
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		LinkURL:    req.LinkURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.recorder.RecordAction(ctx, auditModels.ActionCreate, "notification", n.ID.String(), n.Title,
		nil, map[string]any{"priority": string(n.Priority), "userId": n.UserID.String()},
		"notification created")

	writeJSON(w, http.StatusCreated, n)
}
