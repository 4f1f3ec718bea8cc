package http

import (
	"context"

	"membership-portal-backend/internal/domain"
)

type actorKey struct{}

func withActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the caller identity placed by the auth middleware.
// The zero Actor (UserID 0) means an anonymous caller.
func ActorFromContext(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(actorKey{}).(domain.Actor)
	return actor
}

// optionalActor is for routes that serve both anonymous and signed-in callers.
func optionalActor(ctx context.Context) *domain.Actor {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	if !ok || actor.UserID == 0 {
		return nil
	}
	return &actor
}
