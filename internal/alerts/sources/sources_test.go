package sources

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"machsafe/internal/alerts/models"
	"machsafe/internal/alerts/ports"
	"machsafe/internal/alerts/store/memory"
)

// =============================================================================
// Alert Sources Test Suite
// =============================================================================
// Justification for unit tests: each adapter derives severity and days-until
// from raw rows with exact threshold boundaries. Off-by-one here silently
// misranks the whole feed, so boundaries are pinned at the day level.

type SourcesSuite struct {
	suite.Suite
	store    *memory.Store
	tenantID uuid.UUID
	now      time.Time
}

func TestSourcesSuite(t *testing.T) {
	suite.Run(t, new(SourcesSuite))
}

func (s *SourcesSuite) SetupTest() {
	s.store = memory.New()
	s.tenantID = uuid.New()
	s.now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
}

func (s *SourcesSuite) seedReport(validUntil time.Time, status string) uuid.UUID {
	id := uuid.New()
	s.store.SeedReport(s.tenantID, memory.ReportEntry{
		ReportRow: ports.ReportRow{
			ID:          id,
			MachineName: "Press 4000",
			ClientName:  "Acme Metal",
			ValidUntil:  validUntil,
		},
		Status: status,
	})
	return id
}

// =============================================================================
// Expiring Reports
// =============================================================================

func (s *SourcesSuite) TestExpiringReportsThresholds() {
	src := NewExpiringReports(s.store)
	day := 24 * time.Hour

	s.Run("30 days out is critical", func() {
		s.store = memory.New()
		src = NewExpiringReports(s.store)
		s.seedReport(s.now.Add(30*day), memory.ReportStatusSigned)

		alerts, err := src.Fetch(context.Background(), s.tenantID, s.now)
		s.Require().NoError(err)
		s.Require().Len(alerts, 1)
		s.Equal(models.SeverityCritical, alerts[0].Severity)
		s.Equal(30, alerts[0].DaysUntil)
	})

	s.Run("31 days out is high", func() {
		s.store = memory.New()
		src = NewExpiringReports(s.store)
		s.seedReport(s.now.Add(31*day), memory.ReportStatusSigned)

		alerts, err := src.Fetch(context.Background(), s.tenantID, s.now)
		s.Require().NoError(err)
		s.Require().Len(alerts, 1)
		s.Equal(models.SeverityHigh, alerts[0].Severity)
	})

	s.Run("61 days out is medium", func() {
		s.store = memory.New()
		src = NewExpiringReports(s.store)
		s.seedReport(s.now.Add(61*day), memory.ReportStatusSigned)

		alerts, err := src.Fetch(context.Background(), s.tenantID, s.now)
		s.Require().NoError(err)
		s.Require().Len(alerts, 1)
		s.Equal(models.SeverityMedium, alerts[0].Severity)
	})

	s.Run("91 days out is excluded", func() {
		s.store = memory.New()
		src = NewExpiringReports(s.store)
		s.seedReport(s.now.Add(91*day), memory.ReportStatusSigned)

		alerts, err := src.Fetch(context.Background(), s.tenantID, s.now)
		s.Require().NoError(err)
		s.Empty(alerts)
	})

	s.Run("draft reports are excluded", func() {
		s.store = memory.New()
		src = NewExpiringReports(s.store)
		s.seedReport(s.now.Add(10*day), "DRAFT")

		alerts, err := src.Fetch(context.Background(), s.tenantID, s.now)
		s.Require().NoError(err)
		s.Empty(alerts)
	})
}

func (s *SourcesSuite) TestExpiringReportsPartialDayRoundsUp() {
	src := NewExpiringReports(s.store)
	s.seedReport(s.now.Add(36*time.Hour), memory.ReportStatusSigned)

	alerts, err := src.Fetch(context.Background(), s.tenantID, s.now)
	s.Require().NoError(err)
	s.Require().Len(alerts, 1)
	s.Equal(2, alerts[0].DaysUntil)
}

// =============================================================================
// Pending Actions
// =============================================================================

func (s *SourcesSuite) TestPendingActions() {
	src := NewPendingActions(s.store)

	s.Run("undated action gets sentinel days and source priority", func() {
		s.store.SeedAction(s.tenantID, memory.ActionEntry{
			ActionRow: ports.ActionRow{ID: uuid.New(), Description: "Guard interlock missing", Priority: "HIGH"},
			Status:    memory.ActionStatusOpen,
		})

		alerts, err := src.Fetch(context.Background(), s.tenantID, s.now)
		s.Require().NoError(err)
		s.Require().Len(alerts, 1)
		s.Equal(models.NoDueDate, alerts[0].DaysUntil)
		s.Equal(models.SeverityHigh, alerts[0].Severity)
		s.Nil(alerts[0].DueDate)
	})

	s.Run("unmapped priority defaults to medium", func() {
		s.store = memory.New()
		src = NewPendingActions(s.store)
		s.store.SeedAction(s.tenantID, memory.ActionEntry{
			ActionRow: ports.ActionRow{ID: uuid.New(), Description: "Review lockout", Priority: "URGENTISSIMA"},
			Status:    memory.ActionStatusInProg,
		})

		alerts, err := src.Fetch(context.Background(), s.tenantID, s.now)
		s.Require().NoError(err)
		s.Require().Len(alerts, 1)
		s.Equal(models.SeverityMedium, alerts[0].Severity)
	})

	s.Run("completed actions are excluded", func() {
		s.store = memory.New()
		src = NewPendingActions(s.store)
		s.store.SeedAction(s.tenantID, memory.ActionEntry{
			ActionRow: ports.ActionRow{ID: uuid.New(), Description: "Done", Priority: "LOW"},
			Status:    "COMPLETED",
		})

		alerts, err := src.Fetch(context.Background(), s.tenantID, s.now)
		s.Require().NoError(err)
		s.Empty(alerts)
	})
}

// =============================================================================
// Critical Risks
// =============================================================================

func (s *SourcesSuite) TestCriticalRisks() {
	src := NewCriticalRisks(s.store)

	s.Run("CRITICO maps to critical, INACEITAVEL to high, both immediate", func() {
		s.store.SeedRisk(s.tenantID, ports.RiskRow{
			ID: uuid.New(), Description: "Unguarded blade", MachineName: "Saw 12",
			RiskLevel: RiskLevelCritical, RiskNumber: 720,
		})
		s.store.SeedRisk(s.tenantID, ports.RiskRow{
			ID: uuid.New(), Description: "Pinch point", MachineName: "Roller 3",
			RiskLevel: RiskLevelUnacceptable, RiskNumber: 510,
		})

		alerts, err := src.Fetch(context.Background(), s.tenantID, s.now)
		s.Require().NoError(err)
		s.Require().Len(alerts, 2)
		s.Equal(models.SeverityCritical, alerts[0].Severity)
		s.Equal(models.SeverityHigh, alerts[1].Severity)
		s.Equal(0, alerts[0].DaysUntil)
		s.Equal(0, alerts[1].DaysUntil)
	})
}

// =============================================================================
// Shared text rules
// =============================================================================

func (s *SourcesSuite) TestTextRules() {
	s.Run("long free text is truncated with ellipsis", func() {
		long := strings.Repeat("x", 80)
		src := NewPendingActions(s.store)
		s.store.SeedAction(s.tenantID, memory.ActionEntry{
			ActionRow: ports.ActionRow{ID: uuid.New(), Description: long, Priority: "LOW"},
			Status:    memory.ActionStatusOpen,
		})

		alerts, err := src.Fetch(context.Background(), s.tenantID, s.now)
		s.Require().NoError(err)
		s.Require().Len(alerts, 1)
		s.Contains(alerts[0].Title, strings.Repeat("x", 45)+"...")
		s.NotContains(alerts[0].Title, strings.Repeat("x", 46))
	})

	s.Run("missing related names render as N/A", func() {
		src := NewExpiringReports(s.store)
		s.store.SeedReport(s.tenantID, memory.ReportEntry{
			ReportRow: ports.ReportRow{ID: uuid.New(), ValidUntil: s.now.Add(24 * time.Hour)},
			Status:    memory.ReportStatusSigned,
		})

		alerts, err := src.Fetch(context.Background(), s.tenantID, s.now)
		s.Require().NoError(err)
		s.Require().Len(alerts, 1)
		s.Contains(alerts[0].Title, "N/A")
		s.Contains(alerts[0].Description, "N/A")
	})
}
