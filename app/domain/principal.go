package domain

import (
	"context"

	"user-service/app/utils/errors"
)

// PrincipalKind identifies the kind of authenticated caller.
type PrincipalKind string

const (
	PrincipalKindUser    PrincipalKind = "user"
	PrincipalKindService PrincipalKind = "service"
)

// Principal is a verified caller identity, either an end user or a
// trusted backend service. Principals are created per request by the
// credential verifier, are immutable, and are never persisted.
type Principal interface {
	Kind() PrincipalKind
}

// UserPrincipal identifies an authenticated end user.
type UserPrincipal struct {
	ExternalAuthID string
	AuthProvider   string
	Claims         map[string]string
}

// Kind implements Principal
func (p *UserPrincipal) Kind() PrincipalKind {
	return PrincipalKindUser
}

// ServicePrincipal identifies a trusted backend caller.
type ServicePrincipal struct {
	ServiceName string
	Permissions map[string]struct{}
}

// Kind implements Principal
func (p *ServicePrincipal) Kind() PrincipalKind {
	return PrincipalKindService
}

// HasPermission reports whether the service holds the named permission.
func (p *ServicePrincipal) HasPermission(permission string) bool {
	_, ok := p.Permissions[permission]
	return ok
}

type principalContextKey struct{}

// WithPrincipal attaches a principal to the request context. The
// extraction middleware calls this before any handler logic runs.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from the request context.
func PrincipalFromContext(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	if !ok {
		return nil, errors.ErrUnauthenticated
	}
	return p, nil
}

// UserFromContext extracts a user principal from the request context.
func UserFromContext(ctx context.Context) (*UserPrincipal, error) {
	p, err := PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	user, ok := p.(*UserPrincipal)
	if !ok {
		return nil, errors.ErrUnauthenticated
	}
	return user, nil
}

// ServiceFromContext extracts a service principal from the request context.
func ServiceFromContext(ctx context.Context) (*ServicePrincipal, error) {
	p, err := PrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	service, ok := p.(*ServicePrincipal)
	if !ok {
		return nil, errors.ErrUnauthenticated
	}
	return service, nil
}
