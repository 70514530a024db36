package token

import (
	"user-service/app/config"
	"user-service/app/domain"
	"user-service/app/port"
)

// Verifier combines user-token and service-key verification behind the
// port.CredentialVerifier interface. Each request goes through exactly
// one of the two paths; there is no fallback between them.
type Verifier struct {
	jwt         *JWTVerifier
	serviceKeys *ServiceKeyVerifier
}

// NewVerifier creates the credential verifier from configuration.
func NewVerifier(cfg *config.Config) port.CredentialVerifier {
	return &Verifier{
		jwt: NewJWTVerifier(VerifierConfig{
			Secret:          cfg.JWTSecret,
			Issuer:          cfg.JWTIssuer,
			DefaultProvider: cfg.DefaultAuthProvider,
		}),
		serviceKeys: NewServiceKeyVerifier(cfg.Services),
	}
}

// VerifyUserToken implements port.CredentialVerifier
func (v *Verifier) VerifyUserToken(rawToken string) (*domain.UserPrincipal, error) {
	return v.jwt.VerifyUserToken(rawToken)
}

// VerifyServiceKey implements port.CredentialVerifier
func (v *Verifier) VerifyServiceKey(rawKey string) (*domain.ServicePrincipal, error) {
	return v.serviceKeys.VerifyServiceKey(rawKey)
}
