// Package aggregator fans out to every alert source concurrently and merges
// the results into one globally ranked feed.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"machsafe/internal/alerts/metrics"
	"machsafe/internal/alerts/models"
	"machsafe/internal/alerts/sources"
	"machsafe/internal/identity"
	"machsafe/pkg/requestcontext"
)

type Service struct {
	sources  []sources.Source
	resolver identity.Resolver
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

func New(resolver identity.Resolver, srcs []sources.Source, opts ...Option) (*Service, error) {
	if resolver == nil {
		return nil, fmt.Errorf("identity resolver is required")
	}
	if len(srcs) == 0 {
		return nil, fmt.Errorf("at least one alert source is required")
	}

	svc := &Service{
		sources:  srcs,
		resolver: resolver,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// sourceResult captures one source's outcome; exactly one of alerts/err is
// meaningful.
type sourceResult struct {
	name   string
	alerts []models.Alert
	err    error
}

// GetAllAlerts queries every source concurrently, waits for all of them to
// settle, and returns the union of the successful results sorted by severity
// rank, ties broken by days-until. A failed source is reported in
// Feed.Failed instead of aborting the feed, so one slow or broken table
// cannot blank the whole dashboard. The only hard error is a canceled
// context. Results are never cached; every call re-queries the store.
func (s *Service) GetAllAlerts(ctx context.Context) (models.Feed, error) {
	actor := s.resolver.CurrentActor(ctx)
	now := requestcontext.Now(ctx)

	results := make([]sourceResult, len(s.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		g.Go(func() error {
			start := time.Now()
			alerts, err := src.Fetch(gctx, actor.TenantID, now)
			if s.metrics != nil {
				s.metrics.ObserveFetch(src.Name(), time.Since(start))
			}
			// Capture the outcome instead of returning it: the group is a
			// join barrier here, not a fail-fast race.
			results[i] = sourceResult{name: src.Name(), alerts: alerts, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.Feed{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.Feed{}, err
	}

	feed := models.Feed{FetchedAt: now}
	for _, res := range results {
		if res.err != nil {
			feed.Failed = append(feed.Failed, res.name)
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "alert source failed",
					"source", res.name,
					"tenant_id", actor.TenantID,
					"error", res.err,
				)
			}
			if s.metrics != nil {
				s.metrics.IncrementFailures(res.name)
			}
			continue
		}
		feed.Alerts = append(feed.Alerts, res.alerts...)
	}

	sort.SliceStable(feed.Alerts, func(i, j int) bool {
		a, b := feed.Alerts[i], feed.Alerts[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		return a.DaysUntil < b.DaysUntil
	})

	if s.metrics != nil {
		s.metrics.ObserveFeedSize(len(feed.Alerts))
	}
	return feed, nil
}
