// Package ports defines the read contracts the alert sources consume.
// Implementations live in store/postgres (production) and store/memory
// (tests and fixtures); sources never see SQL or table shapes.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ReportRow is a signed safety report approaching its validity limit.
type ReportRow struct {
	ID          uuid.UUID
	MachineName string
	ClientName  string
	ValidUntil  time.Time
}

// ActionRow is an open or in-progress corrective action.
type ActionRow struct {
	ID          uuid.UUID
	Description string
	Priority    string
	DueDate     *time.Time
}

// TrainingRow is a training certificate approaching its validity limit.
type TrainingRow struct {
	ID           uuid.UUID
	EmployeeName string
	CourseName   string
	ValidUntil   time.Time
}

// RiskRow is a risk assessment finding at an unacceptable or critical level.
type RiskRow struct {
	ID          uuid.UUID
	Description string
	MachineName string
	RiskLevel   string
	RiskNumber  int
}

// ReportSource lists SIGNED reports with validUntil inside [now, now+window],
// soonest first, at most limit rows.
type ReportSource interface {
	ListExpiringReports(ctx context.Context, tenantID uuid.UUID, now time.Time, window time.Duration, limit int) ([]ReportRow, error)
}

// ActionSource lists OPEN and IN_PROGRESS actions, soonest due first with
// undated actions last, at most limit rows.
type ActionSource interface {
	ListPendingActions(ctx context.Context, tenantID uuid.UUID, limit int) ([]ActionRow, error)
}

// TrainingSource lists trainings with validUntil inside [now, now+window],
// soonest first, at most limit rows.
type TrainingSource interface {
	ListExpiringTrainings(ctx context.Context, tenantID uuid.UUID, now time.Time, window time.Duration, limit int) ([]TrainingRow, error)
}

// RiskSource lists INACEITAVEL and CRITICO findings, highest risk number
// first, at most limit rows.
type RiskSource interface {
	ListCriticalRisks(ctx context.Context, tenantID uuid.UUID, limit int) ([]RiskRow, error)
}
