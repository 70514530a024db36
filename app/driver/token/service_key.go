package token

import (
	"crypto/subtle"

	"user-service/app/config"
	"user-service/app/domain"
	apperrors "user-service/app/utils/errors"
)

// ServiceKeyVerifier matches presented shared-secret keys against the
// static service allowlist. The allowlist is loaded once at process
// start and never mutated, so concurrent reads need no locking.
type ServiceKeyVerifier struct {
	services []config.ServiceIdentity
}

// NewServiceKeyVerifier creates a verifier over the configured allowlist.
func NewServiceKeyVerifier(services []config.ServiceIdentity) *ServiceKeyVerifier {
	return &ServiceKeyVerifier{services: services}
}

// VerifyServiceKey compares the presented key against every allowlisted
// service. Comparison is constant time to prevent timing attacks; the
// whole allowlist is always scanned so the response time does not
// reveal which entry matched.
func (v *ServiceKeyVerifier) VerifyServiceKey(rawKey string) (*domain.ServicePrincipal, error) {
	if rawKey == "" {
		return nil, apperrors.ErrMissingToken
	}

	presented := []byte(rawKey)
	var matched *config.ServiceIdentity
	for i := range v.services {
		if subtle.ConstantTimeCompare(presented, []byte(v.services[i].Key)) == 1 {
			matched = &v.services[i]
		}
	}

	if matched == nil {
		return nil, apperrors.ErrInvalidServiceKey
	}

	permissions := make(map[string]struct{}, len(matched.Permissions))
	for _, permission := range matched.Permissions {
		permissions[permission] = struct{}{}
	}

	return &domain.ServicePrincipal{
		ServiceName: matched.Name,
		Permissions: permissions,
	}, nil
}
