// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package httpapi

import (
	"context"

	"github.com/questboard/questboard/internal/auth"
)

// Identity is the authenticated account extracted from the access token
// cookie. It is populated by the authorization middlewares and retrieved
// from the request context in handlers.
type Identity struct {
	ID   int32
	Role auth.Role
}

type identityKey struct{}

// WithIdentity returns a new context with the Identity attached.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext retrieves the Identity from the context. The second
// return is false when no middleware ran for this request.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
