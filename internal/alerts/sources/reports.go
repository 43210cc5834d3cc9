package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"machsafe/internal/alerts/models"
	"machsafe/internal/alerts/ports"
	dErrors "machsafe/pkg/domain-errors"
)

// ExpiringReports surfaces signed safety reports whose validity ends within
// the expiry window.
type ExpiringReports struct {
	store ports.ReportSource
}

func NewExpiringReports(store ports.ReportSource) *ExpiringReports {
	return &ExpiringReports{store: store}
}

func (s *ExpiringReports) Name() string { return "expiring_reports" }

func (s *ExpiringReports) Fetch(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]models.Alert, error) {
	rows, err := s.store.ListExpiringReports(ctx, tenantID, now, expiryWindow, maxPerSource)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list expiring reports")
	}

	alerts := make([]models.Alert, 0, len(rows))
	for _, row := range rows {
		days := daysUntil(now, row.ValidUntil)
		due := row.ValidUntil
		alerts = append(alerts, models.Alert{
			ID:          row.ID.String(),
			Type:        models.TypeReportExpiring,
			Severity:    expirySeverity(days),
			Title:       fmt.Sprintf("Report for %s expires in %dd", truncate(row.MachineName, maxTextLen), days),
			Description: fmt.Sprintf("Client: %s, valid until %s", truncate(row.ClientName, maxTextLen), row.ValidUntil.Format("2006-01-02")),
			EntityID:    row.ID.String(),
			EntityType:  "report",
			DueDate:     &due,
			DaysUntil:   days,
		})
	}
	return alerts, nil
}
