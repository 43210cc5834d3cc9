// Package postgres implements the alert source ports over the application's
// relational tables. All queries are tenant-scoped and read-only.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"machsafe/internal/alerts/ports"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListExpiringReports(ctx context.Context, tenantID uuid.UUID, now time.Time, window time.Duration, limit int) ([]ports.ReportRow, error) {
	query := `
		SELECT r.id, COALESCE(m.name, ''), COALESCE(c.name, ''), r.valid_until
		FROM reports r
		LEFT JOIN machines m ON m.id = r.machine_id
		LEFT JOIN clients c ON c.id = r.client_id
		WHERE r.tenant_id = $1
		  AND r.status = 'SIGNED'
		  AND r.valid_until BETWEEN $2 AND $3
		ORDER BY r.valid_until ASC
		LIMIT $4
	`

	rows, err := s.db.QueryContext(ctx, query, tenantID, now, now.Add(window), limit)
	if err != nil {
		return nil, fmt.Errorf("query expiring reports: %w", err)
	}
	defer rows.Close()

	var out []ports.ReportRow
	for rows.Next() {
		var row ports.ReportRow
		if err := rows.Scan(&row.ID, &row.MachineName, &row.ClientName, &row.ValidUntil); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}
	return out, nil
}

func (s *Store) ListPendingActions(ctx context.Context, tenantID uuid.UUID, limit int) ([]ports.ActionRow, error) {
	query := `
		SELECT id, COALESCE(description, ''), COALESCE(priority, ''), due_date
		FROM actions
		WHERE tenant_id = $1
		  AND status IN ('OPEN', 'IN_PROGRESS')
		ORDER BY due_date ASC NULLS LAST
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending actions: %w", err)
	}
	defer rows.Close()

	var out []ports.ActionRow
	for rows.Next() {
		var row ports.ActionRow
		var due sql.NullTime
		if err := rows.Scan(&row.ID, &row.Description, &row.Priority, &due); err != nil {
			return nil, fmt.Errorf("scan action row: %w", err)
		}
		if due.Valid {
			row.DueDate = &due.Time
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action rows: %w", err)
	}
	return out, nil
}

func (s *Store) ListExpiringTrainings(ctx context.Context, tenantID uuid.UUID, now time.Time, window time.Duration, limit int) ([]ports.TrainingRow, error) {
	query := `
		SELECT id, COALESCE(employee_name, ''), COALESCE(course_name, ''), valid_until
		FROM trainings
		WHERE tenant_id = $1
		  AND valid_until BETWEEN $2 AND $3
		ORDER BY valid_until ASC
		LIMIT $4
	`

	rows, err := s.db.QueryContext(ctx, query, tenantID, now, now.Add(window), limit)
	if err != nil {
		return nil, fmt.Errorf("query expiring trainings: %w", err)
	}
	defer rows.Close()

	var out []ports.TrainingRow
	for rows.Next() {
		var row ports.TrainingRow
		if err := rows.Scan(&row.ID, &row.EmployeeName, &row.CourseName, &row.ValidUntil); err != nil {
			return nil, fmt.Errorf("scan training row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate training rows: %w", err)
	}
	return out, nil
}

func (s *Store) ListCriticalRisks(ctx context.Context, tenantID uuid.UUID, limit int) ([]ports.RiskRow, error) {
	query := `
		SELECT ra.id, COALESCE(ra.description, ''), COALESCE(m.name, ''), ra.risk_level, COALESCE(ra.risk_number, 0)
		FROM risk_assessments ra
		LEFT JOIN machines m ON m.id = ra.machine_id
		WHERE ra.tenant_id = $1
		  AND ra.risk_level IN ('INACEITAVEL', 'CRITICO')
		ORDER BY ra.risk_number DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("query critical risks: %w", err)
	}
	defer rows.Close()

	var out []ports.RiskRow
	for rows.Next() {
		var row ports.RiskRow
		if err := rows.Scan(&row.ID, &row.Description, &row.MachineName, &row.RiskLevel, &row.RiskNumber); err != nil {
			return nil, fmt.Errorf("scan risk row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate risk rows: %w", err)
	}
	return out, nil
}
