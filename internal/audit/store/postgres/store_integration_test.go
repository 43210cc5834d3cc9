//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"machsafe/internal/audit/models"
	"machsafe/internal/audit/store/postgres"
	"machsafe/pkg/testutil/containers"
)

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id UUID PRIMARY KEY,
	tenant_id UUID NOT NULL,
	actor_user_id UUID,
	actor_email TEXT,
	action TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT,
	entity_name TEXT,
	before_snapshot JSONB,
	after_snapshot JSONB,
	changes_summary TEXT,
	created_at TIMESTAMPTZ NOT NULL
)`

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
	tenantID uuid.UUID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T(), auditSchema)
	s.store = postgres.New(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_events"))
	s.tenantID = uuid.New()
}

func (s *PostgresStoreSuite) newEvent(action models.Action, createdAt time.Time) models.Event {
	actorID := uuid.New()
	return models.Event{
		ID:          uuid.New(),
		TenantID:    s.tenantID,
		ActorUserID: &actorID,
		ActorEmail:  "ana@x.com",
		Action:      action,
		EntityType:  "report",
		EntityID:    "r-1",
		EntityName:  "Laudo Prensa 400",
		After:       map[string]any{"status": "SIGNED"},
		CreatedAt:   createdAt,
	}
}

func (s *PostgresStoreSuite) TestAppendAndList() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	event := s.newEvent(models.ActionSign, now)
	s.Require().NoError(s.store.Append(ctx, event))

	events, err := s.store.List(ctx, s.tenantID, models.Filter{})
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(event.ID, events[0].ID)
	s.Equal("SIGNED", events[0].After["status"])
	s.WithinDuration(now, events[0].CreatedAt, time.Millisecond)
}

func (s *PostgresStoreSuite) TestAppendIsIdempotentOnID() {
	ctx := context.Background()
	event := s.newEvent(models.ActionCreate, time.Now().UTC())

	s.Require().NoError(s.store.Append(ctx, event))
	s.Require().NoError(s.store.Append(ctx, event))

	events, err := s.store.ListAll(ctx, s.tenantID)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *PostgresStoreSuite) TestSearchTermMatchesAcrossColumns() {
	ctx := context.Background()
	now := time.Now().UTC()

	s.Require().NoError(s.store.Append(ctx, s.newEvent(models.ActionSign, now)))

	other := s.newEvent(models.ActionDelete, now.Add(-time.Hour))
	other.ActorEmail = "bob@x.com"
	other.EntityName = "Torno 7"
	s.Require().NoError(s.store.Append(ctx, other))

	events, err := s.store.List(ctx, s.tenantID, models.Filter{SearchTerm: "ANA"})
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("ana@x.com", events[0].ActorEmail)
}

func (s *PostgresStoreSuite) TestTenantIsolation() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, s.newEvent(models.ActionCreate, time.Now().UTC())))

	events, err := s.store.ListAll(ctx, uuid.New())
	s.Require().NoError(err)
	s.Empty(events)
}
