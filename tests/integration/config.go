package integration

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"user-service/app/config"
)

const (
	// Test environment configuration
	TestPostgresHost     = "localhost"
	TestPostgresPort     = "5433"
	TestPostgresDB       = "user_test_db"
	TestPostgresUser     = "user_test_user"
	TestPostgresPassword = "test_password"
	TestPostgresSSLMode  = "disable"
)

// TestConfig creates a configuration for integration tests
func TestConfig() *config.Config {
	return &config.Config{
		Port:     "9500",
		Host:     "0.0.0.0",
		LogLevel: "debug",

		DatabaseHost:     TestPostgresHost,
		DatabasePort:     TestPostgresPort,
		DatabaseName:     TestPostgresDB,
		DatabaseUser:     TestPostgresUser,
		DatabasePassword: TestPostgresPassword,
		DatabaseSSLMode:  TestPostgresSSLMode,

		JWTSecret:           "integration-test-secret-0123456789ab",
		JWTIssuer:           "https://id.example.com",
		DefaultAuthProvider: "google",
		Services: []config.ServiceIdentity{
			{Name: "frontend", Key: "frontend-key-123", Permissions: []string{"user:read", "user:create"}},
		},
	}
}

// TestDatabaseConnection opens a pgx pool against the test database
func TestDatabaseConnection() (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		TestPostgresUser, TestPostgresPassword,
		TestPostgresHost, TestPostgresPort,
		TestPostgresDB, TestPostgresSSLMode)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return pgxpool.New(ctx, dsn)
}

// WaitForDatabase blocks until the test database answers pings or the
// retry budget runs out.
func WaitForDatabase(ctx context.Context) error {
	pool, err := TestDatabaseConnection()
	if err != nil {
		return err
	}
	defer pool.Close()

	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		time.Sleep(time.Second)
	}
	return fmt.Errorf("database did not become ready")
}
