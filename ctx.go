package useradmin

import (
	"context"

	"github.com/goliatone/go-router"
)

// ActorContextKey is the router locals key the auth gate stores the actor under
const ActorContextKey = "actor"

var actorCtxKey = &contextKey{"actor"}

type contextKey struct {
	name string
}

// Actor identifies the authenticated caller of a request
type Actor struct {
	PrincipalID string `json:"principal_id"`
	Email       string `json:"email"`
}

// WithActor sets the Actor in the given context
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey, actor)
}

// ActorFromContext finds the actor in the standard context
func ActorFromContext(ctx context.Context) (*Actor, bool) {
	raw, ok := ctx.Value(actorCtxKey).(*Actor)
	return raw, ok
}

// ActorFromRouter finds the actor in the router context locals
func ActorFromRouter(c router.Context) (*Actor, bool) {
	raw := c.Locals(ActorContextKey)
	if raw == nil {
		return nil, false
	}
	actor, ok := raw.(*Actor)
	return actor, ok
}
