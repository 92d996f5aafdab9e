package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const businessIDKey contextKey = "business_id"

// ErrBusinessIDNotFound is returned when no business ID exists in the request
// context. Handlers should return 401 when this error occurs.
var ErrBusinessIDNotFound = errors.New("business_id not found in context")

// BusinessIDFromCtx extracts the authenticated business ID from the request context.
// Returns uuid.Nil and ErrBusinessIDNotFound if none is set.
func BusinessIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	businessID, ok := ctx.Value(businessIDKey).(uuid.UUID)
	if !ok || businessID == uuid.Nil {
		return uuid.Nil, ErrBusinessIDNotFound
	}
	return businessID, nil
}

// WithBusinessID returns a new context with the given business ID attached.
// Used by the authentication middleware after validating the session.
func WithBusinessID(ctx context.Context, businessID uuid.UUID) context.Context {
	return context.WithValue(ctx, businessIDKey, businessID)
}
