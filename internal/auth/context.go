// Package auth carries the caller's session identity: signed bearer tokens
// and the request context that holds the verified identity.
package auth

import (
	"context"

	"github.com/Sobot/zbor-gradjana/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityContextKey contextKey = "identity"

// ContextWithIdentity adds the verified caller identity to the context.
func ContextWithIdentity(ctx context.Context, id *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext retrieves the caller identity.
// Returns nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *model.Identity {
	id, ok := ctx.Value(identityContextKey).(*model.Identity)
	if !ok {
		return nil
	}
	return id
}

// UserIDFromContext returns the caller's user id, or "" when anonymous.
func UserIDFromContext(ctx context.Context) string {
	id := IdentityFromContext(ctx)
	if id == nil {
		return ""
	}
	return id.UserID
}
