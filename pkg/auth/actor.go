package auth

import "context"

// Actor is the authenticated caller on whose behalf an operation runs.
type Actor struct {
	UserID   int
	Email    string
	IsStaff  bool
	UserType string
}

func (a Actor) IsFinancier() bool {
	return a.UserType == "financier"
}

// Label names the actor in audit notes.
func (a Actor) Label() string {
	if a.Email != "" {
		return a.Email
	}
	return "system"
}

type ContextKey string

const (
	UserIDKey ContextKey = "userID"
	ActorKey  ContextKey = "actor"
)

func WithActor(ctx context.Context, actor Actor) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, actor.UserID)
	return context.WithValue(ctx, ActorKey, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(Actor)
	return actor, ok
}
