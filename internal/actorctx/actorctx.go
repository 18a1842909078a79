package actorctx

import "context"

type ctxKey struct{}

type Actor struct {
	UserID int64
	Email  string
}

// WithActor attaches the authenticated user to ctx so code below the HTTP
// layer (logging, notifications) can read it without gin.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func From(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)

	return a, ok && a.UserID != 0
}
