package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"user-service/app/domain"
	apperrors "user-service/app/utils/errors"
)

// VerifierConfig holds token validation configuration. The signing key
// and issuer belong to the upstream identity provider; the claim shape
// assumed here is limited to subject plus an optional provider claim.
type VerifierConfig struct {
	Secret          string
	Issuer          string
	DefaultProvider string
}

// JWTVerifier validates bearer tokens issued by the external identity
// provider and extracts user principals from their claims. It has no
// side effects and never contacts the persistence layer.
type JWTVerifier struct {
	cfg    VerifierConfig
	parser *jwt.Parser
}

// NewJWTVerifier creates a new JWT verifier.
func NewJWTVerifier(cfg VerifierConfig) *JWTVerifier {
	return &JWTVerifier{
		cfg: cfg,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// VerifyUserToken validates the token's signature, expiry and issuer,
// and builds a user principal from its claims. The subject claim is
// the external auth ID; a "provider" claim selects the auth provider,
// falling back to the configured default.
func (v *JWTVerifier) VerifyUserToken(rawToken string) (*domain.UserPrincipal, error) {
	if rawToken == "" {
		return nil, apperrors.ErrMissingToken
	}

	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(v.cfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Wrap(apperrors.ErrCodeTokenExpired, "authentication token has expired", err)
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidToken, "invalid authentication token", err)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidToken, "invalid authentication token").
			WithDetails("token has no subject claim")
	}

	provider := v.cfg.DefaultProvider
	if p, ok := claims["provider"].(string); ok && p != "" {
		provider = p
	}

	principalClaims := make(map[string]string, len(claims))
	for key, value := range claims {
		switch v := value.(type) {
		case string:
			principalClaims[key] = v
		case float64:
			principalClaims[key] = fmt.Sprintf("%.0f", v)
		}
	}

	return &domain.UserPrincipal{
		ExternalAuthID: subject,
		AuthProvider:   provider,
		Claims:         principalClaims,
	}, nil
}
