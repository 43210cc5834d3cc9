// Package query provides filtered, paginated retrieval and aggregate
// statistics over the recorded audit trail. Unlike the recorder, failures
// here propagate: callers present a retry affordance.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"machsafe/internal/audit/models"
	"machsafe/internal/audit/ports"
	"machsafe/internal/identity"
	dErrors "machsafe/pkg/domain-errors"
	"machsafe/pkg/requestcontext"
)

const (
	defaultListLimit  = 100
	defaultActorLimit = 50
)

type Service struct {
	store    ports.Store
	resolver identity.Resolver
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store ports.Store, resolver identity.Resolver, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("audit store is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("identity resolver is required")
	}

	svc := &Service{store: store, resolver: resolver}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// List returns events newest first. All populated filter fields are ANDed;
// SearchTerm alone matches disjunctively across entity name, actor email and
// changes summary, case-insensitively.
func (s *Service) List(ctx context.Context, filter models.Filter) ([]models.Event, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, dErrors.New(dErrors.CodeValidation, "end date before start date")
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	actor := s.resolver.CurrentActor(ctx)
	events, err := s.store.List(ctx, actor.TenantID, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events")
	}
	return events, nil
}

// ByEntity returns the full unfiltered history of one entity, newest first.
func (s *Service) ByEntity(ctx context.Context, entityType, entityID string) ([]models.Event, error) {
	if entityType == "" || entityID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "entity type and id are required")
	}

	actor := s.resolver.CurrentActor(ctx)
	events, err := s.store.ListByEntity(ctx, actor.TenantID, entityType, entityID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events by entity")
	}
	return events, nil
}

// ByActor returns one user's recent activity, newest first.
func (s *Service) ByActor(ctx context.Context, actorUserID uuid.UUID, limit int) ([]models.Event, error) {
	if actorUserID == (uuid.UUID{}) {
		return nil, dErrors.New(dErrors.CodeValidation, "actor user id is required")
	}
	if limit <= 0 {
		limit = defaultActorLimit
	}

	actor := s.resolver.CurrentActor(ctx)
	events, err := s.store.ListByActor(ctx, actor.TenantID, actorUserID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events by actor")
	}
	return events, nil
}

// Stats scans the tenant's whole trail, not the paginated view, and counts
// events into cumulative windows anchored on the local calendar day: today,
// the trailing 7 days, and the trailing calendar month (day-of-month
// preserved, time.AddDate semantics).
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	actor := s.resolver.CurrentActor(ctx)
	events, err := s.store.ListAll(ctx, actor.TenantID)
	if err != nil {
		return models.Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit events for stats")
	}

	now := requestcontext.Now(ctx)
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := startOfToday.AddDate(0, 0, -7)
	startOfMonth := startOfToday.AddDate(0, -1, 0)

	stats := models.Stats{
		ByAction:     make(map[models.Action]int),
		ByEntityType: make(map[string]int),
	}
	for _, event := range events {
		if !event.CreatedAt.Before(startOfToday) {
			stats.TotalToday++
		}
		if !event.CreatedAt.Before(startOfWeek) {
			stats.TotalWeek++
		}
		if !event.CreatedAt.Before(startOfMonth) {
			stats.TotalMonth++
		}
		stats.ByAction[event.Action]++
		stats.ByEntityType[event.EntityType]++
	}
	return stats, nil
}
