package query

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"machsafe/internal/audit/models"
	auditmemory "machsafe/internal/audit/store/memory"
	"machsafe/internal/identity"
	dErrors "machsafe/pkg/domain-errors"
	"machsafe/pkg/requestcontext"
)

// =============================================================================
// Audit Query Service Test Suite
// =============================================================================
// Justification for unit tests: filter conjunction, the disjunctive search
// term, and the overlapping stats windows all have boundary conditions that
// are cheap to pin here and awkward to reach end to end.

type QueryServiceSuite struct {
	suite.Suite
	store    *auditmemory.InMemoryStore
	service  *Service
	tenantID uuid.UUID
	actorID  uuid.UUID
	now      time.Time
	ctx      context.Context
}

func TestQueryServiceSuite(t *testing.T) {
	suite.Run(t, new(QueryServiceSuite))
}

func (s *QueryServiceSuite) SetupTest() {
	s.store = auditmemory.New()
	s.tenantID = uuid.New()
	s.actorID = uuid.New()
	s.now = time.Date(2026, 7, 15, 14, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	resolver := identity.StaticResolver{Actor: identity.Actor{
		UserID:   s.actorID,
		Email:    "ana@x.com",
		TenantID: s.tenantID,
	}}

	var err error
	s.service, err = New(s.store, resolver)
	s.Require().NoError(err)
}

func (s *QueryServiceSuite) seed(event models.Event) models.Event {
	if event.ID == (uuid.UUID{}) {
		event.ID = uuid.New()
	}
	event.TenantID = s.tenantID
	s.Require().NoError(s.store.Append(context.Background(), event))
	return event
}

func (s *QueryServiceSuite) TestListOrderingAndPagination() {
	for i := 0; i < 5; i++ {
		s.seed(models.Event{
			Action:     models.ActionCreate,
			EntityType: "report",
			CreatedAt:  s.now.Add(-time.Duration(i) * time.Hour),
		})
	}

	s.Run("newest first", func() {
		events, err := s.service.List(s.ctx, models.Filter{})
		s.Require().NoError(err)
		s.Require().Len(events, 5)
		for i := 1; i < len(events); i++ {
			s.False(events[i].CreatedAt.After(events[i-1].CreatedAt))
		}
	})

	s.Run("offset skips newest", func() {
		events, err := s.service.List(s.ctx, models.Filter{Limit: 2, Offset: 2})
		s.Require().NoError(err)
		s.Require().Len(events, 2)
		s.Equal(s.now.Add(-2*time.Hour), events[0].CreatedAt)
	})
}

func (s *QueryServiceSuite) TestListFilters() {
	other := uuid.New()
	s.seed(models.Event{
		Action: models.ActionSign, EntityType: "report",
		ActorUserID: &s.actorID, ActorEmail: "Ana@X.com",
		EntityName: "Laudo Prensa 400", CreatedAt: s.now.Add(-time.Hour),
	})
	s.seed(models.Event{
		Action: models.ActionDelete, EntityType: "machine",
		ActorUserID: &other, ActorEmail: "bob@x.com",
		ChangesSummary: "removed guard spec", CreatedAt: s.now.Add(-2 * time.Hour),
	})

	s.Run("filters are conjunctive", func() {
		events, err := s.service.List(s.ctx, models.Filter{
			EntityType: "report",
			Action:     models.ActionSign,
		})
		s.Require().NoError(err)
		s.Len(events, 1)

		events, err = s.service.List(s.ctx, models.Filter{
			EntityType: "report",
			Action:     models.ActionDelete,
		})
		s.Require().NoError(err)
		s.Empty(events)
	})

	s.Run("search term is case-insensitive and disjunctive", func() {
		events, err := s.service.List(s.ctx, models.Filter{SearchTerm: "ana"})
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal("Ana@X.com", events[0].ActorEmail)

		events, err = s.service.List(s.ctx, models.Filter{SearchTerm: "GUARD"})
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal("machine", events[0].EntityType)
	})

	s.Run("date range is inclusive", func() {
		start := s.now.Add(-time.Hour)
		end := s.now.Add(-time.Hour)
		events, err := s.service.List(s.ctx, models.Filter{StartDate: &start, EndDate: &end})
		s.Require().NoError(err)
		s.Len(events, 1)
	})

	s.Run("inverted range is a validation error", func() {
		start := s.now
		end := s.now.Add(-time.Hour)
		_, err := s.service.List(s.ctx, models.Filter{StartDate: &start, EndDate: &end})
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *QueryServiceSuite) TestByEntity() {
	for i := 0; i < 3; i++ {
		s.seed(models.Event{
			Action: models.ActionUpdate, EntityType: "report", EntityID: "r-1",
			CreatedAt: s.now.Add(-time.Duration(i) * time.Minute),
		})
	}
	s.seed(models.Event{
		Action: models.ActionUpdate, EntityType: "report", EntityID: "r-2",
		CreatedAt: s.now,
	})

	events, err := s.service.ByEntity(s.ctx, "report", "r-1")
	s.Require().NoError(err)
	s.Len(events, 3)

	_, err = s.service.ByEntity(s.ctx, "", "r-1")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *QueryServiceSuite) TestByActor() {
	other := uuid.New()
	s.seed(models.Event{Action: models.ActionLogin, EntityType: "session", ActorUserID: &s.actorID, CreatedAt: s.now})
	s.seed(models.Event{Action: models.ActionLogin, EntityType: "session", ActorUserID: &other, CreatedAt: s.now})

	events, err := s.service.ByActor(s.ctx, s.actorID, 0)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *QueryServiceSuite) TestStatsWindowBoundaries() {
	// One event per window position from the spec'd boundary cases.
	s.seed(models.Event{Action: models.ActionCreate, EntityType: "report", CreatedAt: s.now.Add(-time.Second)})
	s.seed(models.Event{Action: models.ActionUpdate, EntityType: "report", CreatedAt: s.now.AddDate(0, 0, -8)})
	s.seed(models.Event{Action: models.ActionDelete, EntityType: "machine", CreatedAt: s.now.AddDate(0, 0, -40)})

	stats, err := s.service.Stats(s.ctx)
	s.Require().NoError(err)

	s.Equal(1, stats.TotalToday)
	// Week excludes the 8-day-old event; month includes it.
	s.Equal(1, stats.TotalWeek)
	s.Equal(2, stats.TotalMonth)

	// Breakdown maps cover the entire trail regardless of window.
	s.Equal(1, stats.ByAction[models.ActionCreate])
	s.Equal(1, stats.ByAction[models.ActionUpdate])
	s.Equal(1, stats.ByAction[models.ActionDelete])
	s.Equal(2, stats.ByEntityType["report"])
	s.Equal(1, stats.ByEntityType["machine"])
}

func (s *QueryServiceSuite) TestStatsWindowsAreCumulative() {
	s.seed(models.Event{Action: models.ActionView, EntityType: "report", CreatedAt: s.now.Add(-time.Minute)})

	stats, err := s.service.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, stats.TotalToday)
	s.Equal(1, stats.TotalWeek)
	s.Equal(1, stats.TotalMonth)
}
