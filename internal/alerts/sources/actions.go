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

// PendingActions surfaces open and in-progress corrective actions.
type PendingActions struct {
	store ports.ActionSource
}

func NewPendingActions(store ports.ActionSource) *PendingActions {
	return &PendingActions{store: store}
}

func (s *PendingActions) Name() string { return "pending_actions" }

func (s *PendingActions) Fetch(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]models.Alert, error) {
	rows, err := s.store.ListPendingActions(ctx, tenantID, maxPerSource)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pending actions")
	}

	alerts := make([]models.Alert, 0, len(rows))
	for _, row := range rows {
		days := models.NoDueDate
		var description string
		if row.DueDate != nil {
			days = daysUntil(now, *row.DueDate)
			description = fmt.Sprintf("Due %s", row.DueDate.Format("2006-01-02"))
		} else {
			description = "No due date"
		}
		alerts = append(alerts, models.Alert{
			ID:          row.ID.String(),
			Type:        models.TypeActionDue,
			Severity:    actionSeverity(row.Priority),
			Title:       "Pending action: " + truncate(row.Description, maxTextLen),
			Description: description,
			EntityID:    row.ID.String(),
			EntityType:  "action",
			DueDate:     row.DueDate,
			DaysUntil:   days,
		})
	}
	return alerts, nil
}

// actionSeverity copies the source priority; anything unmapped reads MEDIUM.
func actionSeverity(priority string) models.Severity {
	switch priority {
	case "CRITICAL":
		return models.SeverityCritical
	case "HIGH":
		return models.SeverityHigh
	case "LOW":
		return models.SeverityLow
	default:
		return models.SeverityMedium
	}
}
