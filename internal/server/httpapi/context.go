package httpapi

import (
	"context"

	"github.com/Batajoo/youtube-backend-clone/internal/server/models"
)

type identityKey struct{}

// ContextWithIdentity returns a copy of ctx carrying the authenticated identity.
func ContextWithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity stored by the auth gate.
func IdentityFromContext(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*models.Identity)
	return identity, ok && identity != nil
}
