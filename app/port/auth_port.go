package port

//go:generate mockgen -source=auth_port.go -destination=../mocks/mock_auth_port.go

import (
	"user-service/app/domain"
)

// CredentialVerifier validates raw credentials and produces typed
// principals. Implementations never contact the persistence layer;
// verification is a pure function over configuration.
type CredentialVerifier interface {
	// VerifyUserToken validates a bearer token issued by the external
	// identity provider and extracts the user principal from its claims.
	VerifyUserToken(rawToken string) (*domain.UserPrincipal, error)

	// VerifyServiceKey matches a shared-secret key against the static
	// service allowlist loaded at process start.
	VerifyServiceKey(rawKey string) (*domain.ServicePrincipal, error)
}
