// Package ports defines the shared contracts of the audit module.
package ports

import (
	"context"

	"github.com/google/uuid"

	"machsafe/internal/audit/models"
)

//go:generate mockgen -source=ports.go -destination=../mocks/mocks.go -package=mocks Store,Sink

// Store is the append-only audit event store. There is deliberately no
// update or delete: the trail is immutable under normal application flow.
type Store interface {
	Append(ctx context.Context, event models.Event) error
	List(ctx context.Context, tenantID uuid.UUID, filter models.Filter) ([]models.Event, error)
	ListByEntity(ctx context.Context, tenantID uuid.UUID, entityType, entityID string) ([]models.Event, error)
	ListByActor(ctx context.Context, tenantID uuid.UUID, actorUserID uuid.UUID, limit int) ([]models.Event, error)
	ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.Event, error)
}

// Sink receives a copy of every persisted event for export pipelines.
// Publishing is best effort; implementations must not block the recorder.
type Sink interface {
	Publish(ctx context.Context, event models.Event)
}
