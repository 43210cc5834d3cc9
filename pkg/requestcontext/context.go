// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// This package defines context keys and getter/setter functions for values that are
// typically set by middleware but consumed by services. By keeping this package free
// of net/http dependencies, services can import only what they need without pulling
// in HTTP-related code.
//
// Usage in services (read values):
//
//	userID := requestcontext.ActorUserID(ctx)
//	tenantID := requestcontext.TenantID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithActor(ctx, userID, email)
//	ctx = requestcontext.WithTenantID(ctx, tenantID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Context key types (unexported for encapsulation).
type (
	actorUserIDKey struct{}
	actorEmailKey  struct{}
	tenantIDKey    struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyActorUserID = actorUserIDKey{}
	ContextKeyActorEmail  = actorEmailKey{}
	ContextKeyTenantID    = tenantIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// -----------------------------------------------------------------------------
// Actor context (user id, email, tenant)
// -----------------------------------------------------------------------------

// ActorUserID retrieves the authenticated user ID from the context.
// Returns the zero value (nil UUID) if not set.
func ActorUserID(ctx context.Context) uuid.UUID {
	if userID, ok := ctx.Value(ContextKeyActorUserID).(uuid.UUID); ok {
		return userID
	}
	return uuid.UUID{}
}

// ActorEmail retrieves the authenticated user's email from the context.
// Returns the empty string if not set.
func ActorEmail(ctx context.Context) string {
	if email, ok := ctx.Value(ContextKeyActorEmail).(string); ok {
		return email
	}
	return ""
}

// WithActor injects the authenticated actor's identity into the context.
func WithActor(ctx context.Context, userID uuid.UUID, email string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyActorUserID, userID)
	return context.WithValue(ctx, ContextKeyActorEmail, email)
}

// TenantID retrieves the tenant scope from the context.
// Returns the zero value (nil UUID) if not set.
func TenantID(ctx context.Context) uuid.UUID {
	if tenantID, ok := ctx.Value(ContextKeyTenantID).(uuid.UUID); ok {
		return tenantID
	}
	return uuid.UUID{}
}

// WithTenantID injects the tenant scope into the context.
func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextKeyTenantID, tenantID)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the correlation ID from the context.
func RequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// -----------------------------------------------------------------------------
// Time injection
// -----------------------------------------------------------------------------

// Now returns the request time from the context, or time.Now() if none was
// injected. Services use this instead of time.Now() so expiry-window and
// calendar-boundary logic is deterministic in tests.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the request time in the context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
