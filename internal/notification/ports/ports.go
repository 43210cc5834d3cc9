package ports

import (
	"context"

	"github.com/google/uuid"

	"machsafe/internal/notification/models"
)

// Store persists notifications. All operations are scoped to a tenant and
// a recipient user; a store must never return another user's rows.
type Store interface {
	Insert(ctx context.Context, n models.Notification) error
	List(ctx context.Context, tenantID, userID uuid.UUID, limit int) ([]models.Notification, error)
	ListUnread(ctx context.Context, tenantID, userID uuid.UUID) ([]models.Notification, error)
	CountUnread(ctx context.Context, tenantID, userID uuid.UUID) (int, error)
	Get(ctx context.Context, tenantID, userID, id uuid.UUID) (models.Notification, error)
	MarkRead(ctx context.Context, tenantID, userID, id uuid.UUID) (models.Notification, error)
	MarkAllRead(ctx context.Context, tenantID, userID uuid.UUID) (int, error)
	Delete(ctx context.Context, tenantID, userID, id uuid.UUID) error
	DeleteAllRead(ctx context.Context, tenantID, userID uuid.UUID) (int, error)
	Stats(ctx context.Context, tenantID, userID uuid.UUID) (models.Stats, error)
}
