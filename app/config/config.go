package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServiceIdentity is one entry of the static service allowlist: a named
// backend caller, its shared-secret key, and the permissions it holds.
type ServiceIdentity struct {
	Name        string   `yaml:"name"`
	Key         string   `yaml:"key"`
	Permissions []string `yaml:"permissions"`
}

// Config holds all configuration for the user service. The service
// allowlist is loaded once here and shared read-only across request
// handlers; nothing mutates it after Load returns.
type Config struct {
	// Server
	Port     string
	Host     string
	LogLevel string

	// Database
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseSSLMode  string

	// Identity provider token validation
	JWTSecret           string
	JWTIssuer           string
	DefaultAuthProvider string

	// Service-to-service authentication
	Services []ServiceIdentity
}

// defaultServicePermissions is granted to services configured through
// per-service environment keys rather than the allowlist file.
var defaultServicePermissions = []string{"user:read", "user:create"}

// envKeyServices are the first-party callers recognized via
// SERVICE_KEY_<NAME> environment variables.
var envKeyServices = []string{"frontend", "chat", "office"}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{}

	// Server configuration
	config.Port = getEnvOrDefault("PORT", "9500")
	config.Host = getEnvOrDefault("HOST", "0.0.0.0")
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// Database configuration
	config.DatabaseHost = getEnvOrDefault("DB_HOST", "user-postgres")
	config.DatabasePort = getEnvOrDefault("DB_PORT", "5432")
	config.DatabaseName = getEnvOrDefault("DB_NAME", "user_db")
	config.DatabaseUser = getEnvOrDefault("DB_USER", "user_service")
	config.DatabasePassword = os.Getenv("DB_PASSWORD")
	if config.DatabasePassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	config.DatabaseSSLMode = getEnvOrDefault("DB_SSL_MODE", "require")

	// Token validation configuration. The signing key and issuer belong
	// to the external identity provider; nothing else about its claim
	// shape is assumed here.
	config.JWTSecret = os.Getenv("JWT_SECRET")
	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	config.JWTIssuer = os.Getenv("JWT_ISSUER")
	if config.JWTIssuer == "" {
		return nil, fmt.Errorf("JWT_ISSUER is required")
	}
	config.DefaultAuthProvider = getEnvOrDefault("DEFAULT_AUTH_PROVIDER", "google")

	// Service allowlist
	services, err := loadServiceAllowlist()
	if err != nil {
		return nil, fmt.Errorf("failed to load service allowlist: %w", err)
	}
	config.Services = services

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadServiceAllowlist reads the allowlist from SERVICE_KEYS_FILE when
// set, otherwise from SERVICE_KEY_<NAME> environment variables for the
// known first-party callers.
func loadServiceAllowlist() ([]ServiceIdentity, error) {
	if path := os.Getenv("SERVICE_KEYS_FILE"); path != "" {
		return loadServiceAllowlistFile(path)
	}

	var services []ServiceIdentity
	for _, name := range envKeyServices {
		envKey := "SERVICE_KEY_" + strings.ToUpper(name)
		if key := os.Getenv(envKey); key != "" {
			services = append(services, ServiceIdentity{
				Name:        name,
				Key:         key,
				Permissions: defaultServicePermissions,
			})
		}
	}
	return services, nil
}

func loadServiceAllowlistFile(path string) ([]ServiceIdentity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file struct {
		Services []ServiceIdentity `yaml:"services"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for i, service := range file.Services {
		if service.Name == "" || service.Key == "" {
			return nil, fmt.Errorf("service entry %d is missing name or key", i)
		}
	}

	return file.Services, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate port range (1-65535)
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("invalid port: %s", c.Port)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535: %s", c.Port)
	}

	// Validate log level
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	// JWT secrets shorter than 32 bytes are trivially brute-forceable
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters, got: %d", len(c.JWTSecret))
	}

	if len(c.Services) == 0 {
		return fmt.Errorf("at least one service credential must be configured")
	}

	seen := make(map[string]bool)
	for _, service := range c.Services {
		if seen[service.Name] {
			return fmt.Errorf("duplicate service name in allowlist: %s", service.Name)
		}
		seen[service.Name] = true
	}

	return nil
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
