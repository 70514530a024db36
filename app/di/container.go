package di

import (
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"

	"user-service/app/config"
	"user-service/app/driver/postgres"
	"user-service/app/driver/token"
	"user-service/app/port"
	"user-service/app/rest"
	"user-service/app/usecase"
)

// Container holds all dependencies for the application
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Drivers
	DB       *postgres.DB
	Verifier port.CredentialVerifier

	// Usecases
	UserUsecase port.UserUsecase
}

// NewContainer creates and initializes a new dependency injection container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	container := &Container{
		Config: cfg,
		Logger: logger,
	}

	var err error
	container.DB, err = postgres.NewConnection(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	container.Verifier = token.NewVerifier(cfg)

	userRepository := postgres.NewUserRepository(container.DB.Pool(), logger)
	container.UserUsecase = usecase.NewUserUseCase(userRepository, logger)

	logger.Info("Container initialized with full dependency stack")

	return container, nil
}

// CreateRouter creates and returns a fully configured Echo router
func (c *Container) CreateRouter() *echo.Echo {
	routerConfig := rest.RouterConfig{
		Logger:      c.Logger,
		Verifier:    c.Verifier,
		UserUsecase: c.UserUsecase,
		DB:          c.DB.Pool(),
		EnableDebug: c.Config.LogLevel == "debug",
	}

	router := rest.NewRouter(routerConfig)

	c.Logger.Info("Full API router created")
	return router
}

// Close closes all resources
func (c *Container) Close() error {
	if c.DB != nil {
		c.DB.Close()
	}

	c.Logger.Info("Container closed successfully")
	return nil
}
