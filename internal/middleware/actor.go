package middleware

import (
	"context"

	"github.com/google/uuid"
)

type actorKey struct{}

// WithActor stores the authenticated user's ID in the request context.
// The history recorder reads it back when attributing change entries;
// scoping it to the context keeps concurrent requests isolated.
func WithActor(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFrom returns the acting user's ID, or nil when the operation is
// system-initiated or unauthenticated. Callers must not fabricate one.
func ActorFrom(ctx context.Context) *uuid.UUID {
	if id, ok := ctx.Value(actorKey{}).(uuid.UUID); ok {
		return &id
	}
	return nil
}
