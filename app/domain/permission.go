package domain

import (
	"user-service/app/utils/errors"
)

// Service permissions granted through the static allowlist.
const (
	PermissionUserRead   = "user:read"
	PermissionUserCreate = "user:create"
)

// AuthorizeOwner decides whether a principal may act on the resource
// owned by targetExternalAuthID. Only a user principal whose external
// auth ID matches the target is allowed; service principals are never
// granted per-user resource access through this guard, their access is
// limited to the allowlisted resource-creation endpoints.
//
// Denial is FORBIDDEN (403), distinct from an authentication failure.
func AuthorizeOwner(p Principal, targetExternalAuthID string) error {
	if p == nil {
		return errors.ErrUnauthenticated
	}

	user, ok := p.(*UserPrincipal)
	if !ok {
		return errors.NewForbidden("service credentials cannot access user-owned resources")
	}

	if user.ExternalAuthID != targetExternalAuthID {
		return errors.NewForbidden("you can only access your own profile")
	}

	return nil
}
