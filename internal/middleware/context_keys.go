package middleware

import (
	"context"

	"github.com/Joshua-Peter7/reconsys/internal/core/domain"
)

// identityCtxKey is the key used to store the authenticated identity in the
// request context.
const identityCtxKey = contextKey("identity")

// GetIdentityFromCtx retrieves the authenticated identity from the context.
// It returns the identity and a boolean indicating if it was found.
func GetIdentityFromCtx(ctx context.Context) (domain.Identity, bool) {
	identityVal := ctx.Value(identityCtxKey)
	if identityVal == nil {
		return domain.Identity{}, false
	}

	identity, ok := identityVal.(domain.Identity)
	if !ok {
		// Should not happen if the auth middleware sets it correctly
		return domain.Identity{}, false
	}

	return identity, true
}
