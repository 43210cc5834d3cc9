package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"machsafe/internal/identity"
	"machsafe/internal/notification/cache"
	"machsafe/internal/notification/metrics"
	"machsafe/internal/notification/models"
	"machsafe/internal/notification/ports"
	dErrors "machsafe/pkg/domain-errors"
	"machsafe/pkg/platform/sentinel"
	"machsafe/pkg/requestcontext"
)

const defaultListLimit = 50

// Service owns the read-state lifecycle of a user's notifications. Every
// operation is scoped to the caller resolved from the identity port; a
// caller can never see or mutate another user's inbox.
type Service struct {
	store    ports.Store
	resolver identity.Resolver
	unread   *cache.UnreadCounter
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithUnreadCache wires the redis unread-count cache. A nil counter is
// accepted and leaves the service on the store-only path.
func WithUnreadCache(c *cache.UnreadCounter) Option {
	return func(s *Service) {
		s.unread = c
	}
}

func New(store ports.Store, resolver identity.Resolver, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "notification store is required")
	}
	if resolver == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "identity resolver is required")
	}
	s := &Service{
		store:    store,
		resolver: resolver,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) caller(ctx context.Context) (identity.Actor, error) {
	actor := s.resolver.CurrentActor(ctx)
	if actor.UserID == uuid.Nil || actor.TenantID == uuid.Nil {
		return identity.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "caller identity not resolved")
	}
	return actor, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]models.Notification, error) {
	actor, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	list, err := s.store.List(ctx, actor.TenantID, actor.UserID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list notifications")
	}
	return list, nil
}

func (s *Service) Unread(ctx context.Context) ([]models.Notification, error) {
	actor, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListUnread(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list unread notifications")
	}
	return list, nil
}

// UnreadCount serves the badge polling path. It prefers the cached count
// and falls back to the store on a miss; cache errors are logged and
// otherwise ignored so redis outages never break the badge.
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	actor, err := s.caller(ctx)
	if err != nil {
		return 0, err
	}

	count, cacheErr := s.unread.Get(ctx, actor.TenantID, actor.UserID)
	if cacheErr == nil {
		if s.metrics != nil {
			s.metrics.IncrementCacheHit()
		}
		return count, nil
	}
	if !errors.Is(cacheErr, cache.ErrMiss) {
		s.logger.Warn("unread count cache lookup failed", "error", cacheErr)
	}
	if s.metrics != nil {
		s.metrics.IncrementCacheMiss()
	}

	count, err = s.store.CountUnread(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count unread notifications")
	}
	if err := s.unread.Set(ctx, actor.TenantID, actor.UserID, count); err != nil {
		s.logger.Warn("unread count cache write failed", "error", err)
	}
	return count, nil
}

func (s *Service) MarkAsRead(ctx context.Context, id uuid.UUID) (models.Notification, error) {
	actor, err := s.caller(ctx)
	if err != nil {
		return models.Notification{}, err
	}
	n, err := s.store.MarkRead(ctx, actor.TenantID, actor.UserID, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Notification{}, dErrors.Wrap(err, dErrors.CodeNotFound, "notification not found")
	}
	if err != nil {
		return models.Notification{}, dErrors.Wrap(err, dErrors.CodeInternal, "mark notification read")
	}
	if s.metrics != nil {
		s.metrics.IncrementMarkedRead(1)
	}
	s.invalidate(ctx, actor)
	return n, nil
}

func (s *Service) MarkAllAsRead(ctx context.Context) (int, error) {
	actor, err := s.caller(ctx)
	if err != nil {
		return 0, err
	}
	marked, err := s.store.MarkAllRead(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "mark all notifications read")
	}
	if s.metrics != nil && marked > 0 {
		s.metrics.IncrementMarkedRead(marked)
	}
	s.invalidate(ctx, actor)
	return marked, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	actor, err := s.caller(ctx)
	if err != nil {
		return err
	}
	err = s.store.Delete(ctx, actor.TenantID, actor.UserID, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "notification not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete notification")
	}
	s.invalidate(ctx, actor)
	return nil
}

func (s *Service) DeleteAllRead(ctx context.Context) (int, error) {
	actor, err := s.caller(ctx)
	if err != nil {
		return 0, err
	}
	deleted, err := s.store.DeleteAllRead(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "delete read notifications")
	}
	return deleted, nil
}

func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	actor, err := s.caller(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	stats, err := s.store.Stats(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return models.Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "notification stats")
	}
	return stats, nil
}

// CreateInput carries the caller-supplied fields of a new notification.
// The recipient may be any user within the caller's tenant.
type CreateInput struct {
	UserID     uuid.UUID
	Type       string
	Title      string
	Message    string
	Priority   models.Priority
	EntityType string
	EntityID   string
	LinkURL    string
}

func (s *Service) Create(ctx context.Context, input CreateInput) (models.Notification, error) {
	actor, err := s.caller(ctx)
	if err != nil {
		return models.Notification{}, err
	}
	if input.UserID == uuid.Nil {
		return models.Notification{}, dErrors.New(dErrors.CodeValidation, "recipient user id is required")
	}
	if input.Title == "" {
		return models.Notification{}, dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if input.Priority == "" {
		input.Priority = models.PriorityNormal
	}

	n := models.Notification{
		ID:         uuid.New(),
		TenantID:   actor.TenantID,
		UserID:     input.UserID,
		Type:       input.Type,
		Title:      input.Title,
		Message:    input.Message,
		Priority:   input.Priority,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		LinkURL:    input.LinkURL,
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return models.Notification{}, dErrors.Wrap(err, dErrors.CodeInternal, "create notification")
	}
	if s.metrics != nil {
		s.metrics.IncrementCreated(string(n.Priority))
	}
	s.invalidate(ctx, identity.Actor{TenantID: actor.TenantID, UserID: input.UserID})
	return n, nil
}

func (s *Service) invalidate(ctx context.Context, actor identity.Actor) {
	if err := s.unread.Invalidate(ctx, actor.TenantID, actor.UserID); err != nil {
		s.logger.Warn("unread count cache invalidation failed", "error", err)
	}
}
