// Package postgres persists audit events in the audit_events table. Inserts
// are idempotent on event ID so the recorder's retry cannot double-write.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"machsafe/internal/audit/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const eventColumns = `
	id, tenant_id, actor_user_id, actor_email, action, entity_type,
	entity_id, entity_name, before_snapshot, after_snapshot,
	changes_summary, created_at`

func (s *Store) Append(ctx context.Context, event models.Event) error {
	before, err := marshalSnapshot(event.Before)
	if err != nil {
		return fmt.Errorf("marshal before snapshot: %w", err)
	}
	after, err := marshalSnapshot(event.After)
	if err != nil {
		return fmt.Errorf("marshal after snapshot: %w", err)
	}

	query := `
		INSERT INTO audit_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		event.TenantID,
		event.ActorUserID,
		event.ActorEmail,
		string(event.Action),
		event.EntityType,
		event.EntityID,
		event.EntityName,
		before,
		after,
		event.ChangesSummary,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, tenantID uuid.UUID, filter models.Filter) ([]models.Event, error) {
	var (
		conditions = []string{"tenant_id = $1"}
		args       = []any{tenantID}
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.EntityType != "" {
		conditions = append(conditions, "entity_type = "+arg(filter.EntityType))
	}
	if filter.Action != "" {
		conditions = append(conditions, "action = "+arg(string(filter.Action)))
	}
	if filter.ActorUserID != (uuid.UUID{}) {
		conditions = append(conditions, "actor_user_id = "+arg(filter.ActorUserID))
	}
	if filter.StartDate != nil {
		conditions = append(conditions, "created_at >= "+arg(*filter.StartDate))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "created_at <= "+arg(*filter.EndDate))
	}
	if filter.SearchTerm != "" {
		pattern := arg("%" + filter.SearchTerm + "%")
		conditions = append(conditions,
			"(entity_name ILIKE "+pattern+" OR actor_email ILIKE "+pattern+" OR changes_summary ILIKE "+pattern+")")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY created_at DESC
		LIMIT ` + arg(limit) + ` OFFSET ` + arg(filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *Store) ListByEntity(ctx context.Context, tenantID uuid.UUID, entityType, entityID string) ([]models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, tenantID, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("query audit events by entity: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *Store) ListByActor(ctx context.Context, tenantID uuid.UUID, actorUserID uuid.UUID, limit int) ([]models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		WHERE tenant_id = $1 AND actor_user_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, tenantID, actorUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events by actor: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *Store) ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM audit_events
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query all audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]models.Event, error) {
	var events []models.Event

	for rows.Next() {
		var (
			event       models.Event
			actorUserID *uuid.UUID
			actorEmail  sql.NullString
			entityID    sql.NullString
			entityName  sql.NullString
			summary     sql.NullString
			before      []byte
			after       []byte
			action      string
		)

		err := rows.Scan(
			&event.ID,
			&event.TenantID,
			&actorUserID,
			&actorEmail,
			&action,
			&event.EntityType,
			&entityID,
			&entityName,
			&before,
			&after,
			&summary,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		event.ActorUserID = actorUserID
		event.ActorEmail = actorEmail.String
		event.Action = models.Action(action)
		event.EntityID = entityID.String
		event.EntityName = entityName.String
		event.ChangesSummary = summary.String
		if event.Before, err = unmarshalSnapshot(before); err != nil {
			return nil, fmt.Errorf("unmarshal before snapshot: %w", err)
		}
		if event.After, err = unmarshalSnapshot(after); err != nil {
			return nil, fmt.Errorf("unmarshal after snapshot: %w", err)
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

func marshalSnapshot(snapshot map[string]any) ([]byte, error) {
	if snapshot == nil {
		return nil, nil
	}
	return json.Marshal(snapshot)
}

func unmarshalSnapshot(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
