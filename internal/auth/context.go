package auth

import "context"

type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

type contextKey struct{}

// Actor is whoever is driving the board for the current request.
type Actor struct {
	ID   string
	Role Role
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(contextKey{}).(Actor)
	return a, ok
}

func IsParent(ctx context.Context) bool {
	a, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return a.Role == RoleParent
}

// ActorID returns the actor's id, or fallback when none is set.
func ActorID(ctx context.Context, fallback string) string {
	a, ok := FromContext(ctx)
	if !ok || a.ID == "" {
		return fallback
	}
	return a.ID
}
