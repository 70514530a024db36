package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-service/app/domain"
	apperrors "user-service/app/utils/errors"
	"user-service/app/utils/logger"
)

// Helper function to create a test user repository with mocked database
func createTestUserRepository(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)

	testLogger, err := logger.New("debug")
	require.NoError(t, err)

	repo := NewUserRepository(mockDB, testLogger).(*UserRepository)

	return repo, mockDB
}

// Helper function to create a test user
func createTestUser(t *testing.T) *domain.User {
	t.Helper()

	user, err := domain.NewUser("abc123", domain.AuthProviderGoogle, "a@x.com", "Ada")
	require.NoError(t, err)

	return user
}

func userRows(user *domain.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "external_auth_id", "auth_provider", "email", "normalized_email",
		"display_name", "onboarding_completed", "onboarding_step",
		"created_at", "updated_at", "deleted_at",
	}).AddRow(
		user.ID, user.ExternalAuthID, user.AuthProvider, user.Email, user.NormalizedEmail,
		user.DisplayName, user.OnboardingCompleted, user.OnboardingStep,
		user.CreatedAt, user.UpdatedAt, user.DeletedAt,
	)
}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name     string
		setupDB  func(pgxmock.PgxPoolIface, *domain.User)
		wantCode apperrors.ErrorCode
	}{
		{
			name: "successful creation",
			setupDB: func(mockDB pgxmock.PgxPoolIface, user *domain.User) {
				mockDB.ExpectExec("INSERT INTO users").
					WithArgs(
						user.ID, user.ExternalAuthID, user.AuthProvider,
						user.Email, user.NormalizedEmail, user.DisplayName,
						user.OnboardingCompleted, user.OnboardingStep,
						user.CreatedAt, user.UpdatedAt,
					).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "auth id unique violation maps to conflict",
			setupDB: func(mockDB pgxmock.PgxPoolIface, user *domain.User) {
				mockDB.ExpectExec("INSERT INTO users").
					WithArgs(
						user.ID, user.ExternalAuthID, user.AuthProvider,
						user.Email, user.NormalizedEmail, user.DisplayName,
						user.OnboardingCompleted, user.OnboardingStep,
						user.CreatedAt, user.UpdatedAt,
					).
					WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: constraintAuthID})
			},
			wantCode: apperrors.ErrCodeConflict,
		},
		{
			name: "email unique violation maps to email collision",
			setupDB: func(mockDB pgxmock.PgxPoolIface, user *domain.User) {
				mockDB.ExpectExec("INSERT INTO users").
					WithArgs(
						user.ID, user.ExternalAuthID, user.AuthProvider,
						user.Email, user.NormalizedEmail, user.DisplayName,
						user.OnboardingCompleted, user.OnboardingStep,
						user.CreatedAt, user.UpdatedAt,
					).
					WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: constraintEmail})
			},
			wantCode: apperrors.ErrCodeEmailCollision,
		},
		{
			name: "other database error",
			setupDB: func(mockDB pgxmock.PgxPoolIface, user *domain.User) {
				mockDB.ExpectExec("INSERT INTO users").
					WithArgs(
						user.ID, user.ExternalAuthID, user.AuthProvider,
						user.Email, user.NormalizedEmail, user.DisplayName,
						user.OnboardingCompleted, user.OnboardingStep,
						user.CreatedAt, user.UpdatedAt,
					).
					WillReturnError(pgx.ErrTxClosed)
			},
			wantCode: apperrors.ErrCodeDatabaseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mockDB := createTestUserRepository(t)
			defer mockDB.Close()

			user := createTestUser(t)
			tt.setupDB(mockDB, user)

			err := repo.Create(context.Background(), user)

			if tt.wantCode == "" {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantCode, apperrors.GetErrorCode(err))
			}
			assert.NoError(t, mockDB.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByAuthID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mockDB := createTestUserRepository(t)
		defer mockDB.Close()

		user := createTestUser(t)
		mockDB.ExpectQuery("SELECT (.+) FROM users").
			WithArgs(user.ExternalAuthID, user.AuthProvider).
			WillReturnRows(userRows(user))

		got, err := repo.GetByAuthID(context.Background(), user.ExternalAuthID, user.AuthProvider)
		require.NoError(t, err)
		assert.Equal(t, user.ExternalAuthID, got.ExternalAuthID)
		assert.Equal(t, user.NormalizedEmail, got.NormalizedEmail)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mockDB := createTestUserRepository(t)
		defer mockDB.Close()

		mockDB.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("missing", domain.AuthProviderGoogle).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByAuthID(context.Background(), "missing", domain.AuthProviderGoogle)
		assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.GetErrorCode(err))
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByNormalizedEmail(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mockDB := createTestUserRepository(t)
		defer mockDB.Close()

		user := createTestUser(t)
		mockDB.ExpectQuery("SELECT (.+) FROM users").
			WithArgs(user.NormalizedEmail).
			WillReturnRows(userRows(user))

		got, err := repo.GetByNormalizedEmail(context.Background(), user.NormalizedEmail)
		require.NoError(t, err)
		assert.Equal(t, user.ExternalAuthID, got.ExternalAuthID)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mockDB := createTestUserRepository(t)
		defer mockDB.Close()

		mockDB.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("nobody@x.com").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByNormalizedEmail(context.Background(), "nobody@x.com")
		assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.GetErrorCode(err))
	})
}

func TestUserRepository_Update(t *testing.T) {
	t.Run("successful update", func(t *testing.T) {
		repo, mockDB := createTestUserRepository(t)
		defer mockDB.Close()

		user := createTestUser(t)
		mockDB.ExpectExec("UPDATE users SET").
			WithArgs(
				user.Email, user.NormalizedEmail, user.DisplayName,
				user.OnboardingCompleted, user.OnboardingStep, user.UpdatedAt,
				user.ExternalAuthID, user.AuthProvider,
			).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.Update(context.Background(), user))
	})

	t.Run("no rows updated means not found", func(t *testing.T) {
		repo, mockDB := createTestUserRepository(t)
		defer mockDB.Close()

		user := createTestUser(t)
		mockDB.ExpectExec("UPDATE users SET").
			WithArgs(
				user.Email, user.NormalizedEmail, user.DisplayName,
				user.OnboardingCompleted, user.OnboardingStep, user.UpdatedAt,
				user.ExternalAuthID, user.AuthProvider,
			).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(context.Background(), user)
		assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.GetErrorCode(err))
	})
}

func TestUserRepository_SoftDelete(t *testing.T) {
	t.Run("successful soft delete", func(t *testing.T) {
		repo, mockDB := createTestUserRepository(t)
		defer mockDB.Close()

		mockDB.ExpectExec("UPDATE users SET").
			WithArgs("abc123", domain.AuthProviderGoogle).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.SoftDelete(context.Background(), "abc123", domain.AuthProviderGoogle))
	})

	t.Run("already deleted means not found", func(t *testing.T) {
		repo, mockDB := createTestUserRepository(t)
		defer mockDB.Close()

		mockDB.ExpectExec("UPDATE users SET").
			WithArgs("abc123", domain.AuthProviderGoogle).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.SoftDelete(context.Background(), "abc123", domain.AuthProviderGoogle)
		assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.GetErrorCode(err))
	})
}

func TestUserRepository_Search(t *testing.T) {
	t.Run("search with filters and pagination", func(t *testing.T) {
		repo, mockDB := createTestUserRepository(t)
		defer mockDB.Close()

		user := createTestUser(t)
		completed := false

		mockDB.ExpectQuery("SELECT COUNT(.+) FROM users").
			WithArgs("%ada%", completed).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
		mockDB.ExpectQuery("SELECT (.+) FROM users").
			WithArgs("%ada%", completed, 20, 0).
			WillReturnRows(userRows(user))

		users, total, err := repo.Search(context.Background(), &domain.UserSearchRequest{
			Query:               "Ada",
			OnboardingCompleted: &completed,
			Page:                1,
			PageSize:            20,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, users, 1)
		assert.Equal(t, user.ExternalAuthID, users[0].ExternalAuthID)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("empty result", func(t *testing.T) {
		repo, mockDB := createTestUserRepository(t)
		defer mockDB.Close()

		mockDB.ExpectQuery("SELECT COUNT(.+) FROM users").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
		mockDB.ExpectQuery("SELECT (.+) FROM users").
			WithArgs(50, 50).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "external_auth_id", "auth_provider", "email", "normalized_email",
				"display_name", "onboarding_completed", "onboarding_step",
				"created_at", "updated_at", "deleted_at",
			}))

		users, total, err := repo.Search(context.Background(), &domain.UserSearchRequest{
			Page:     2,
			PageSize: 50,
		})
		require.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Empty(t, users)
	})
}
