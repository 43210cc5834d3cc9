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

// ExpiringTrainings surfaces training certificates whose validity ends within
// the expiry window. Thresholds match the report source.
type ExpiringTrainings struct {
	store ports.TrainingSource
}

func NewExpiringTrainings(store ports.TrainingSource) *ExpiringTrainings {
	return &ExpiringTrainings{store: store}
}

func (s *ExpiringTrainings) Name() string { return "expiring_trainings" }

func (s *ExpiringTrainings) Fetch(ctx context.Context, tenantID uuid.UUID, now time.Time) ([]models.Alert, error) {
	rows, err := s.store.ListExpiringTrainings(ctx, tenantID, now, expiryWindow, maxPerSource)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list expiring trainings")
	}

	alerts := make([]models.Alert, 0, len(rows))
	for _, row := range rows {
		days := daysUntil(now, row.ValidUntil)
		due := row.ValidUntil
		alerts = append(alerts, models.Alert{
			ID:          row.ID.String(),
			Type:        models.TypeTrainingExpiring,
			Severity:    expirySeverity(days),
			Title:       fmt.Sprintf("Training %s expires in %dd", truncate(row.CourseName, maxTextLen), days),
			Description: fmt.Sprintf("Employee: %s, valid until %s", truncate(row.EmployeeName, maxTextLen), row.ValidUntil.Format("2006-01-02")),
			EntityID:    row.ID.String(),
			EntityType:  "training",
			DueDate:     &due,
			DaysUntil:   days,
		})
	}
	return alerts, nil
}
