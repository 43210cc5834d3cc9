// Package identity resolves the current actor for attribution. Services take a
// Resolver instead of reading the context directly so tests can substitute a
// fixed actor and the audit recorder cannot be fed caller-supplied identities.
package identity

import (
	"context"

	"github.com/google/uuid"

	"machsafe/pkg/requestcontext"
)

// Actor identifies who is performing the current operation and under which
// tenant scope. UserID and Email may be zero for unauthenticated system work.
type Actor struct {
	UserID   uuid.UUID
	Email    string
	TenantID uuid.UUID
}

// Resolver supplies the current actor.
type Resolver interface {
	CurrentActor(ctx context.Context) Actor
}

// ContextResolver reads the actor stamped into the request context by the
// auth middleware.
type ContextResolver struct{}

func NewContextResolver() ContextResolver { return ContextResolver{} }

func (ContextResolver) CurrentActor(ctx context.Context) Actor {
	return Actor{
		UserID:   requestcontext.ActorUserID(ctx),
		Email:    requestcontext.ActorEmail(ctx),
		TenantID: requestcontext.TenantID(ctx),
	}
}

// StaticResolver returns a fixed actor. Useful in tests and batch jobs.
type StaticResolver struct {
	Actor Actor
}

func (r StaticResolver) CurrentActor(context.Context) Actor { return r.Actor }
