package httptransport

import (
	"context"

	"github.com/google/uuid"

	alertModels "machsafe/internal/alerts/models"
	auditModels "machsafe/internal/audit/models"
	notifModels "machsafe/internal/notification/models"
	"machsafe/internal/notification/service"
)

// AlertsService produces the aggregated alert feed.
type AlertsService interface {
	GetAllAlerts(ctx context.Context) (alertModels.Feed, error)
}

// AuditQueryService reads the audit trail.
type AuditQueryService interface {
	List(ctx context.Context, filter auditModels.Filter) ([]auditModels.Event, error)
	ByEntity(ctx context.Context, entityType, entityID string) ([]auditModels.Event, error)
	ByActor(ctx context.Context, actorUserID uuid.UUID, limit int) ([]auditModels.Event, error)
	Stats(ctx context.Context) (auditModels.Stats, error)
}

// AuditRecorder appends audit records as a side effect; it never fails the
// request that triggered it.
type AuditRecorder interface {
	RecordAction(ctx context.Context, action auditModels.Action, entityType, entityID, entityName string, before, after map[string]any, summary string)
}

// NotificationService owns the caller's inbox.
type NotificationService interface {
	List(ctx context.Context, limit int) ([]notifModels.Notification, error)
	Unread(ctx context.Context) ([]notifModels.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) (notifModels.Notification, error)
	MarkAllAsRead(ctx context.Context) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllRead(ctx context.Context) (int, error)
	Stats(ctx context.Context) (notifModels.Stats, error)
	Create(ctx context.Context, input service.CreateInput) (notifModels.Notification, error)
}
