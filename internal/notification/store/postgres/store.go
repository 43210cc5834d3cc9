package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"machsafe/internal/notification/models"
	"machsafe/pkg/platform/sentinel"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const notificationColumns = `id, tenant_id, user_id, type, title, message, priority,
	entity_type, entity_id, link_url, is_read, read_at, expires_at, created_at`

func (s *Store) Insert(ctx context.Context, n models.Notification) error {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := s.db.ExecContext(ctx, query,
		n.ID, n.TenantID, n.UserID, n.Type, n.Title, n.Message, n.Priority,
		nullString(n.EntityType), nullString(n.EntityID), nullString(n.LinkURL),
		n.IsRead, n.ReadAt, n.ExpiresAt, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, tenantID, userID uuid.UUID, limit int) ([]models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE tenant_id = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT $3`

	rows, err := s.db.QueryContext(ctx, query, tenantID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return scanNotifications(rows)
}

func (s *Store) ListUnread(ctx context.Context, tenantID, userID uuid.UUID) ([]models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE tenant_id = $1 AND user_id = $2 AND is_read = FALSE
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("list unread notifications: %w", err)
	}
	return scanNotifications(rows)
}

func (s *Store) CountUnread(ctx context.Context, tenantID, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE tenant_id = $1 AND user_id = $2 AND is_read = FALSE`

	var count int
	if err := s.db.QueryRowContext(ctx, query, tenantID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *Store) Get(ctx context.Context, tenantID, userID, id uuid.UUID) (models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE tenant_id = $1 AND user_id = $2 AND id = $3`

	row := s.db.QueryRowContext(ctx, query, tenantID, userID, id)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Notification{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Notification{}, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

// MarkRead is idempotent: read_at is only written the first time.
func (s *Store) MarkRead(ctx context.Context, tenantID, userID, id uuid.UUID) (models.Notification, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE tenant_id = $1 AND user_id = $2 AND id = $3
		RETURNING ` + notificationColumns

	row := s.db.QueryRowContext(ctx, query, tenantID, userID, id)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Notification{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.Notification{}, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

func (s *Store) MarkAllRead(ctx context.Context, tenantID, userID uuid.UUID) (int, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE tenant_id = $1 AND user_id = $2 AND is_read = FALSE`

	res, err := s.db.ExecContext(ctx, query, tenantID, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	marked, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return int(marked), nil
}

func (s *Store) Delete(ctx context.Context, tenantID, userID, id uuid.UUID) error {
	query := `DELETE FROM notifications WHERE tenant_id = $1 AND user_id = $2 AND id = $3`

	res, err := s.db.ExecContext(ctx, query, tenantID, userID, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if deleted == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAllRead(ctx context.Context, tenantID, userID uuid.UUID) (int, error) {
	query := `DELETE FROM notifications WHERE tenant_id = $1 AND user_id = $2 AND is_read = TRUE`

	res, err := s.db.ExecContext(ctx, query, tenantID, userID)
	if err != nil {
		return 0, fmt.Errorf("delete read notifications: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete read notifications: %w", err)
	}
	return int(deleted), nil
}

func (s *Store) Stats(ctx context.Context, tenantID, userID uuid.UUID) (models.Stats, error) {
	query := `
		SELECT priority, is_read, COUNT(*)
		FROM notifications
		WHERE tenant_id = $1 AND user_id = $2
		GROUP BY priority, is_read`

	rows, err := s.db.QueryContext(ctx, query, tenantID, userID)
	if err != nil {
		return models.Stats{}, fmt.Errorf("notification stats: %w", err)
	}
	defer rows.Close()

	stats := models.Stats{ByPriority: make(map[models.Priority]int)}
	for rows.Next() {
		var priority models.Priority
		var isRead bool
		var count int
		if err := rows.Scan(&priority, &isRead, &count); err != nil {
			return models.Stats{}, fmt.Errorf("notification stats: %w", err)
		}
		stats.Total += count
		if !isRead {
			stats.Unread += count
			stats.ByPriority[priority] += count
		}
	}
	if err := rows.Err(); err != nil {
		return models.Stats{}, fmt.Errorf("notification stats: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (models.Notification, error) {
	var n models.Notification
	var entityType, entityID, linkURL sql.NullString
	var readAt, expiresAt sql.NullTime
	err := row.Scan(
		&n.ID, &n.TenantID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Priority,
		&entityType, &entityID, &linkURL, &n.IsRead, &readAt, &expiresAt, &n.CreatedAt,
	)
	if err != nil {
		return models.Notification{}, err
	}
	n.EntityType = entityType.String
	n.EntityID = entityID.String
	n.LinkURL = linkURL.String
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		n.ExpiresAt = &t
	}
	return n, nil
}

func scanNotifications(rows *sql.Rows) ([]models.Notification, error) {
	defer rows.Close()
	var out []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
