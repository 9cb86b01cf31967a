// Package authcontext carries the authenticated caller identity through
// request contexts. The identity itself is established by the upstream auth
// layer; this service only consumes it.
package authcontext

import (
	"context"
	"strings"
)

const (
	RoleAdministrator = "administrator"
	RoleUser          = "user"
	RoleViewer        = "viewer"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Role   string
}

func (i Identity) IsAdministrator() bool {
	return i.Role == RoleAdministrator
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleAdministrator, RoleUser, RoleViewer:
		return true
	default:
		return false
	}
}
