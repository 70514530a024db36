package rest

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"user-service/app/domain"
	"user-service/app/driver/postgres"
	"user-service/app/port"
	"user-service/app/rest/handlers"
	custommw "user-service/app/rest/middleware"
	apperrors "user-service/app/utils/errors"
	"user-service/app/utils/validator"
)

// RouterConfig holds router configuration
type RouterConfig struct {
	Logger      *slog.Logger
	Verifier    port.CredentialVerifier
	UserUsecase port.UserUsecase
	DB          postgres.DatabaseIface
	EnableDebug bool
}

// NewRouter creates and configures the Echo router
func NewRouter(config RouterConfig) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.Debug = config.EnableDebug
	e.HTTPErrorHandler = newErrorHandler(config.Logger)

	// Create handlers
	userHandler := handlers.NewUserHandler(config.UserUsecase, validator.New(), config.Logger)
	healthHandler := handlers.NewHealthHandler(config.DB, config.Logger)

	// Create middleware
	authMiddleware := custommw.NewAuthMiddleware(config.Verifier, config.Logger)
	rateLimiter := custommw.NewRateLimiter()

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(custommw.DefaultCORS())
	e.Use(custommw.SecurityHeaders())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}, latency=${latency_human}, error=${error}\n",
	}))

	// Health endpoints (no auth required)
	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/ready", healthHandler.ReadinessCheck)
	e.GET("/live", healthHandler.LivenessCheck)

	users := e.Group("/users")

	// Service-to-service endpoints. Each route accepts exactly one
	// credential kind; a valid user token never satisfies these.
	users.GET("/id", userHandler.ResolveID, authMiddleware.RequireService(domain.PermissionUserRead))
	users.POST("/", userHandler.CreateUser, authMiddleware.RequireService(domain.PermissionUserCreate))

	// End-user endpoints
	userRoutes := users.Group("")
	userRoutes.Use(authMiddleware.RequireUser())
	userRoutes.GET("/me", userHandler.GetMe)
	userRoutes.GET("/search", userHandler.SearchUsers)
	userRoutes.GET("/:user_id", userHandler.GetUser)
	userRoutes.PUT("/:user_id", userHandler.UpdateUser)
	userRoutes.DELETE("/:user_id", userHandler.DeleteUser)
	userRoutes.PUT("/:user_id/onboarding", userHandler.UpdateOnboarding)

	return e
}

// newErrorHandler renders every error through the closed error
// taxonomy. Errors that are not AppErrors fall back to a generic 500
// so internal detail never leaks to callers.
func newErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := handlers.ErrorResponse{
			Error: "internal server error",
			Code:  string(apperrors.ErrCodeInternalError),
		}

		if appErr, ok := apperrors.AsAppError(err); ok {
			status = appErr.StatusCode
			body = handlers.ErrorResponse{
				Error:   appErr.Message,
				Code:    string(appErr.Code),
				Details: appErr.Details,
				Context: appErr.Context,
			}
		} else if httpErr, ok := err.(*echo.HTTPError); ok {
			// Echo's own routing errors (404, 405) pass through.
			status = httpErr.Code
			body = handlers.ErrorResponse{
				Error: http.StatusText(httpErr.Code),
				Code:  string(apperrors.ErrCodeNotFound),
			}
			if httpErr.Code != http.StatusNotFound {
				body.Code = string(apperrors.ErrCodeInternalError)
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "path", c.Path(), "error", err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}
