// Package recorder appends immutable audit events as a detached side effect.
//
// The contract is strict: recording must never fail the business operation it
// accompanies. Log and RecordAction enqueue and return immediately; a worker
// goroutine drains the buffer into the store with one bounded retry. Failures
// surface only through the diagnostic logger and prometheus counters.
package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"machsafe/internal/audit/metrics"
	"machsafe/internal/audit/models"
	"machsafe/internal/audit/ports"
	"machsafe/internal/identity"
	"machsafe/pkg/requestcontext"
)

const (
	drainBatchSize = 256
	// maxAttempts bounds the best-effort retry: one write, one retry, drop.
	maxAttempts = 2
)

type Recorder struct {
	store         ports.Store
	resolver      identity.Resolver
	buffer        *ringBuffer
	logger        *slog.Logger
	metrics       *metrics.Metrics
	sink          ports.Sink
	drainInterval time.Duration
}

type Option func(*Recorder)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

func WithSink(sink ports.Sink) Option {
	return func(r *Recorder) {
		r.sink = sink
	}
}

func WithBufferSize(capacity int) Option {
	return func(r *Recorder) {
		r.buffer = newRingBuffer(capacity)
	}
}

func WithDrainInterval(d time.Duration) Option {
	return func(r *Recorder) {
		r.drainInterval = d
	}
}

func New(store ports.Store, resolver identity.Resolver, opts ...Option) (*Recorder, error) {
	if store == nil {
		return nil, fmt.Errorf("audit store is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("identity resolver is required")
	}

	r := &Recorder{
		store:         store,
		resolver:      resolver,
		buffer:        newRingBuffer(0),
		drainInterval: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Log enqueues one audit event. Actor and tenant attribution comes from the
// identity port, overriding whatever the caller put in those fields, so an
// event can never claim to be someone else's. Log never returns an error and
// never blocks on the store.
func (r *Recorder) Log(ctx context.Context, event models.Event) {
	actor := r.resolver.CurrentActor(ctx)

	event.TenantID = actor.TenantID
	event.ActorEmail = actor.Email
	event.ActorUserID = nil
	if actor.UserID != (uuid.UUID{}) {
		userID := actor.UserID
		event.ActorUserID = &userID
	}
	if event.ID == (uuid.UUID{}) {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = requestcontext.Now(ctx)
	}

	if evicted := r.buffer.enqueue(entry{event: event}); evicted && r.metrics != nil {
		r.metrics.IncrementDropped()
	}
	if r.metrics != nil {
		r.metrics.SetBufferDepth(r.buffer.len())
	}
}

// RecordAction is the convenience form of Log for the common case.
func (r *Recorder) RecordAction(ctx context.Context, action models.Action, entityType, entityID, entityName string, before, after map[string]any, summary string) {
	r.Log(ctx, models.Event{
		Action:         action,
		EntityType:     entityType,
		EntityID:       entityID,
		EntityName:     entityName,
		Before:         before,
		After:          after,
		ChangesSummary: summary,
	})
}

// Run drains the buffer until the context is canceled, then makes one final
// drain pass so a clean shutdown does not strand buffered events.
func (r *Recorder) Run(ctx context.Context) {
	ticker := time.NewTicker(r.drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.drain(context.WithoutCancel(ctx))
			return
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

// Drain flushes pending events once. Exposed for tests and shutdown paths.
func (r *Recorder) Drain(ctx context.Context) {
	r.drain(ctx)
}

func (r *Recorder) drain(ctx context.Context) {
	for {
		batch := r.buffer.dequeueBatch(drainBatchSize)
		if len(batch) == 0 {
			break
		}
		for _, e := range batch {
			r.persist(ctx, e)
		}
	}
	if r.metrics != nil {
		r.metrics.SetBufferDepth(r.buffer.len())
	}
}

func (r *Recorder) persist(ctx context.Context, e entry) {
	err := r.store.Append(ctx, e.event)
	if err == nil {
		if r.metrics != nil {
			r.metrics.IncrementWrites()
		}
		if r.sink != nil {
			r.sink.Publish(ctx, e.event)
		}
		return
	}

	e.attempt++
	if e.attempt < maxAttempts {
		r.buffer.enqueue(e)
		return
	}

	// Out of attempts. The event is lost; say so where monitoring can see it.
	if r.metrics != nil {
		r.metrics.IncrementWriteFailures()
	}
	if r.logger != nil {
		r.logger.ErrorContext(ctx, "audit write dropped after retry",
			"event_id", e.event.ID,
			"action", e.event.Action,
			"entity_type", e.event.EntityType,
			"error", err,
		)
	}
}

// Dropped reports how many events the buffer evicted under pressure.
func (r *Recorder) Dropped() int64 {
	return r.buffer.droppedCount()
}
