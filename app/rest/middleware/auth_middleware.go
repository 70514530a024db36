package middleware

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	"user-service/app/domain"
	"user-service/app/port"
	apperrors "user-service/app/utils/errors"
)

// ServiceKeyHeader carries the shared key identifying a calling
// backend service.
const ServiceKeyHeader = "X-API-Key"

// AuthMiddleware binds verified principals to the request context.
// Each route declares exactly one principal kind; there is no
// fallback from one credential type to the other.
type AuthMiddleware struct {
	verifier port.CredentialVerifier
	logger   *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(verifier port.CredentialVerifier, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger.With("component", "auth_middleware"),
	}
}

// RequireUser accepts only a bearer JWT and attaches the resulting
// user principal. Service keys are ignored here even when present.
func (m *AuthMiddleware) RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := m.verifier.VerifyUserToken(extractBearerToken(c))
			if err != nil {
				m.logger.Warn("user authentication failed",
					"path", c.Path(), "error", err)
				return err
			}

			ctx := domain.WithPrincipal(c.Request().Context(), principal)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireService accepts only a shared service key and attaches the
// resulting service principal. Bearer tokens are ignored here.
func (m *AuthMiddleware) RequireService(requiredPermission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := m.verifier.VerifyServiceKey(c.Request().Header.Get(ServiceKeyHeader))
			if err != nil {
				m.logger.Warn("service authentication failed",
					"path", c.Path(), "error", err)
				return err
			}

			if requiredPermission != "" && !principal.HasPermission(requiredPermission) {
				m.logger.Warn("service lacks permission",
					"service", principal.ServiceName, "permission", requiredPermission)
				return apperrors.NewForbidden("service lacks required permission")
			}

			ctx := domain.WithPrincipal(c.Request().Context(), principal)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// extractBearerToken pulls the raw JWT out of the Authorization
// header. A missing or non-Bearer header yields the empty string,
// which the verifier reports as a missing token.
func extractBearerToken(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if auth == "" {
		return ""
	}
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}
