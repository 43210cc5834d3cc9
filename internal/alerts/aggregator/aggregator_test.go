package aggregator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"machsafe/internal/alerts/models"
	"machsafe/internal/alerts/ports"
	"machsafe/internal/alerts/sources"
	"machsafe/internal/alerts/store/memory"
	"machsafe/internal/identity"
	"machsafe/pkg/requestcontext"
)

// =============================================================================
// Aggregator Test Suite
// =============================================================================
// Justification for unit tests: the feed's global ordering and its
// partial-failure behavior are cross-source properties that no single
// adapter test can cover.

type AggregatorSuite struct {
	suite.Suite
	store    *memory.Store
	tenantID uuid.UUID
	now      time.Time
	ctx      context.Context
}

func TestAggregatorSuite(t *testing.T) {
	suite.Run(t, new(AggregatorSuite))
}

func (s *AggregatorSuite) SetupTest() {
	s.store = memory.New()
	s.tenantID = uuid.New()
	s.now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *AggregatorSuite) newService(srcs ...sources.Source) *Service {
	resolver := identity.StaticResolver{Actor: identity.Actor{
		UserID:   uuid.New(),
		Email:    "ana@x.com",
		TenantID: s.tenantID,
	}}
	svc, err := New(resolver, srcs, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
	return svc
}

func (s *AggregatorSuite) allSources() []sources.Source {
	return []sources.Source{
		sources.NewExpiringReports(s.store),
		sources.NewPendingActions(s.store),
		sources.NewExpiringTrainings(s.store),
		sources.NewCriticalRisks(s.store),
	}
}

// failingSource always errors, standing in for a broken table.
type failingSource struct{ name string }

func (f failingSource) Name() string { return f.name }

func (f failingSource) Fetch(context.Context, uuid.UUID, time.Time) ([]models.Alert, error) {
	return nil, errors.New("relation does not exist")
}

func (s *AggregatorSuite) TestNew() {
	s.Run("nil resolver returns error", func() {
		_, err := New(nil, s.allSources())
		s.Error(err)
	})

	s.Run("empty sources returns error", func() {
		_, err := New(identity.StaticResolver{}, nil)
		s.Error(err)
	})
}

func (s *AggregatorSuite) TestGlobalOrdering() {
	day := 24 * time.Hour

	// MEDIUM report (65d), HIGH training (40d), CRITICAL risk, HIGH undated action.
	s.store.SeedReport(s.tenantID, memory.ReportEntry{
		ReportRow: ports.ReportRow{ID: uuid.New(), MachineName: "Press", ClientName: "Acme", ValidUntil: s.now.Add(65 * day)},
		Status:    memory.ReportStatusSigned,
	})
	s.store.SeedTraining(s.tenantID, ports.TrainingRow{
		ID: uuid.New(), EmployeeName: "Jo", CourseName: "NR-12", ValidUntil: s.now.Add(40 * day),
	})
	s.store.SeedRisk(s.tenantID, ports.RiskRow{
		ID: uuid.New(), Description: "Blade", MachineName: "Saw", RiskLevel: "CRITICO", RiskNumber: 700,
	})
	s.store.SeedAction(s.tenantID, memory.ActionEntry{
		ActionRow: ports.ActionRow{ID: uuid.New(), Description: "Fix guard", Priority: "HIGH"},
		Status:    memory.ActionStatusOpen,
	})

	feed, err := s.newService(s.allSources()...).GetAllAlerts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(feed.Alerts, 4)
	s.Empty(feed.Failed)

	// Adjacent-pair invariant: severity rank never decreases, days-until
	// never decreases within a rank.
	for i := 1; i < len(feed.Alerts); i++ {
		a, b := feed.Alerts[i-1], feed.Alerts[i]
		s.LessOrEqual(a.Severity.Rank(), b.Severity.Rank())
		if a.Severity.Rank() == b.Severity.Rank() {
			s.LessOrEqual(a.DaysUntil, b.DaysUntil)
		}
	}

	s.Equal(models.TypeRiskCritical, feed.Alerts[0].Type)
	s.Equal(models.SeverityMedium, feed.Alerts[3].Severity)
}

func (s *AggregatorSuite) TestSentinelOrdering() {
	day := 24 * time.Hour

	// HIGH with a concrete due date, HIGH undated, MEDIUM dated.
	s.store.SeedAction(s.tenantID, memory.ActionEntry{
		ActionRow: ports.ActionRow{ID: uuid.New(), Description: "Dated high", Priority: "HIGH", DueDate: ptr(s.now.Add(5 * day))},
		Status:    memory.ActionStatusOpen,
	})
	s.store.SeedAction(s.tenantID, memory.ActionEntry{
		ActionRow: ports.ActionRow{ID: uuid.New(), Description: "Undated high", Priority: "HIGH"},
		Status:    memory.ActionStatusOpen,
	})
	s.store.SeedReport(s.tenantID, memory.ReportEntry{
		ReportRow: ports.ReportRow{ID: uuid.New(), MachineName: "Lathe", ClientName: "Acme", ValidUntil: s.now.Add(70 * day)},
		Status:    memory.ReportStatusSigned,
	})

	feed, err := s.newService(s.allSources()...).GetAllAlerts(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(feed.Alerts, 3)

	s.Contains(feed.Alerts[0].Title, "Dated high")
	s.Contains(feed.Alerts[1].Title, "Undated high")
	s.Equal(models.NoDueDate, feed.Alerts[1].DaysUntil)
	s.Equal(models.SeverityMedium, feed.Alerts[2].Severity)
}

func (s *AggregatorSuite) TestPartialFailure() {
	day := 24 * time.Hour
	s.store.SeedRisk(s.tenantID, ports.RiskRow{
		ID: uuid.New(), Description: "Blade", MachineName: "Saw", RiskLevel: "CRITICO", RiskNumber: 700,
	})
	s.store.SeedTraining(s.tenantID, ports.TrainingRow{
		ID: uuid.New(), EmployeeName: "Jo", CourseName: "NR-12", ValidUntil: s.now.Add(20 * day),
	})

	svc := s.newService(
		failingSource{name: "expiring_reports"},
		sources.NewExpiringTrainings(s.store),
		sources.NewCriticalRisks(s.store),
	)

	feed, err := svc.GetAllAlerts(s.ctx)
	s.Require().NoError(err)
	s.Len(feed.Alerts, 2)
	s.Equal([]string{"expiring_reports"}, feed.Failed)
}

func (s *AggregatorSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.newService(s.allSources()...).GetAllAlerts(ctx)
	s.ErrorIs(err, context.Canceled)
}

func (s *AggregatorSuite) TestDeterministicReads() {
	s.store.SeedRisk(s.tenantID, ports.RiskRow{
		ID: uuid.New(), Description: "Blade", MachineName: "Saw", RiskLevel: "CRITICO", RiskNumber: 700,
	})
	svc := s.newService(s.allSources()...)

	first, err := svc.GetAllAlerts(s.ctx)
	s.Require().NoError(err)
	second, err := svc.GetAllAlerts(s.ctx)
	s.Require().NoError(err)
	s.Equal(first.Alerts, second.Alerts)
}

func ptr(t time.Time) *time.Time { return &t }
