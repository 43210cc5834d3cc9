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

// Risk levels carried over from HRN-style assessments. Only these two levels
// produce alerts.
const (
	RiskLevelUnacceptable = "INACEITAVEL"
	RiskLevelCritical     = "CRITICO"
)

// CriticalRisks surfaces unacceptable and critical risk findings. They are
// always immediate: days-until is fixed at zero.
type CriticalRisks struct {
	store ports.RiskSource
}

func NewCriticalRisks(store ports.RiskSource) *CriticalRisks {
	return &CriticalRisks{store: store}
}

func (s *CriticalRisks) Name() string { return "critical_risks" }

func (s *CriticalRisks) Fetch(ctx context.Context, tenantID uuid.UUID, _ time.Time) ([]models.Alert, error) {
	rows, err := s.store.ListCriticalRisks(ctx, tenantID, maxPerSource)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list critical risks")
	}

	alerts := make([]models.Alert, 0, len(rows))
	for _, row := range rows {
		severity := models.SeverityHigh
		if row.RiskLevel == RiskLevelCritical {
			severity = models.SeverityCritical
		}
		alerts = append(alerts, models.Alert{
			ID:          row.ID.String(),
			Type:        models.TypeRiskCritical,
			Severity:    severity,
			Title:       "Critical risk: " + truncate(row.Description, maxTextLen),
			Description: fmt.Sprintf("Machine: %s, level %s (HRN %d)", truncate(row.MachineName, maxTextLen), row.RiskLevel, row.RiskNumber),
			EntityID:    row.ID.String(),
			EntityType:  "risk",
			DaysUntil:   0,
		})
	}
	return alerts, nil
}
