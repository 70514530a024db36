package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"user-service/app/domain"
	"user-service/app/port"
	apperrors "user-service/app/utils/errors"
)

// Unique constraints enforced by the users schema. The auth-id
// constraint is the authoritative guard against duplicate provisioning
// under concurrent identical requests; the email index is a partial
// unique index over non-deleted rows.
const (
	constraintAuthID = "users_external_auth_id_auth_provider_key"
	constraintEmail  = "users_normalized_email_active_idx"
)

const userColumns = `
	id, external_auth_id, auth_provider, email, normalized_email,
	display_name, onboarding_completed, onboarding_step,
	created_at, updated_at, deleted_at`

// UserRepository implements port.UserRepository for PostgreSQL
type UserRepository struct {
	db     DatabaseIface
	logger *slog.Logger
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db DatabaseIface, logger *slog.Logger) port.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger.With("component", "user_repository"),
	}
}

// Create inserts a new user identity. A unique violation on the
// auth-id constraint surfaces as CONFLICT (the caller lost a
// provisioning race); a violation on the email index surfaces as
// EMAIL_COLLISION.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			id, external_auth_id, auth_provider, email, normalized_email,
			display_name, onboarding_completed, onboarding_step,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.ExternalAuthID,
		user.AuthProvider,
		user.Email,
		user.NormalizedEmail,
		user.DisplayName,
		user.OnboardingCompleted,
		user.OnboardingStep,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if appErr := translateUniqueViolation(err, user); appErr != nil {
			return appErr
		}
		r.logger.Error("failed to create user", "external_auth_id", user.ExternalAuthID, "error", err)
		return apperrors.NewDatabaseError(fmt.Errorf("failed to create user: %w", err))
	}

	r.logger.Info("user created", "external_auth_id", user.ExternalAuthID, "auth_provider", user.AuthProvider)
	return nil
}

// GetByAuthID fetches the non-deleted identity for an exact
// (external_auth_id, auth_provider) pair.
func (r *UserRepository) GetByAuthID(ctx context.Context, externalAuthID string, provider domain.AuthProvider) (*domain.User, error) {
	query := `
		SELECT` + userColumns + `
		FROM users
		WHERE external_auth_id = $1 AND auth_provider = $2 AND deleted_at IS NULL`

	return r.scanUser(r.db.QueryRow(ctx, query, externalAuthID, provider))
}

// GetByAuthIDAnyProvider fetches the non-deleted identity for an
// external auth ID without knowing which provider minted it.
func (r *UserRepository) GetByAuthIDAnyProvider(ctx context.Context, externalAuthID string) (*domain.User, error) {
	query := `
		SELECT` + userColumns + `
		FROM users
		WHERE external_auth_id = $1 AND deleted_at IS NULL
		ORDER BY created_at
		LIMIT 1`

	return r.scanUser(r.db.QueryRow(ctx, query, externalAuthID))
}

// GetByNormalizedEmail fetches the unique non-deleted identity owning a
// normalized email address. Soft-deleted rows never match.
func (r *UserRepository) GetByNormalizedEmail(ctx context.Context, normalizedEmail string) (*domain.User, error) {
	query := `
		SELECT` + userColumns + `
		FROM users
		WHERE normalized_email = $1 AND deleted_at IS NULL`

	return r.scanUser(r.db.QueryRow(ctx, query, normalizedEmail))
}

// Update writes profile fields back to the store.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users SET
			email = $1,
			normalized_email = $2,
			display_name = $3,
			onboarding_completed = $4,
			onboarding_step = $5,
			updated_at = $6
		WHERE external_auth_id = $7 AND auth_provider = $8 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query,
		user.Email,
		user.NormalizedEmail,
		user.DisplayName,
		user.OnboardingCompleted,
		user.OnboardingStep,
		user.UpdatedAt,
		user.ExternalAuthID,
		user.AuthProvider,
	)

	if err != nil {
		if appErr := translateUniqueViolation(err, user); appErr != nil {
			return appErr
		}
		r.logger.Error("failed to update user", "external_auth_id", user.ExternalAuthID, "error", err)
		return apperrors.NewDatabaseError(fmt.Errorf("failed to update user: %w", err))
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	r.logger.Info("user updated", "external_auth_id", user.ExternalAuthID)
	return nil
}

// SoftDelete marks the identity deleted. Lookups treat the row as
// absent from then on.
func (r *UserRepository) SoftDelete(ctx context.Context, externalAuthID string, provider domain.AuthProvider) error {
	query := `
		UPDATE users SET
			deleted_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE external_auth_id = $1 AND auth_provider = $2 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, externalAuthID, provider)
	if err != nil {
		r.logger.Error("failed to soft delete user", "external_auth_id", externalAuthID, "error", err)
		return apperrors.NewDatabaseError(fmt.Errorf("failed to soft delete user: %w", err))
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	r.logger.Info("user soft deleted", "external_auth_id", externalAuthID)
	return nil
}

// Search lists non-deleted users matching the filters, newest first,
// and returns the total match count for pagination.
func (r *UserRepository) Search(ctx context.Context, req *domain.UserSearchRequest) ([]*domain.User, int, error) {
	where := []string{"deleted_at IS NULL"}
	args := []interface{}{}

	if req.Query != "" {
		args = append(args, "%"+strings.ToLower(req.Query)+"%")
		where = append(where, fmt.Sprintf("(LOWER(email) LIKE $%d OR LOWER(display_name) LIKE $%d)", len(args), len(args)))
	}
	if req.Email != "" {
		args = append(args, strings.ToLower(req.Email))
		where = append(where, fmt.Sprintf("LOWER(email) = $%d", len(args)))
	}
	if req.OnboardingCompleted != nil {
		args = append(args, *req.OnboardingCompleted)
		where = append(where, fmt.Sprintf("onboarding_completed = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	countQuery := "SELECT COUNT(*) FROM users WHERE " + whereClause
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("failed to count users", "error", err)
		return nil, 0, apperrors.NewDatabaseError(fmt.Errorf("failed to count users: %w", err))
	}

	args = append(args, req.PageSize, (req.Page-1)*req.PageSize)
	listQuery := fmt.Sprintf(`
		SELECT`+userColumns+`
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, whereClause, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, listQuery, args...)
	if err != nil {
		r.logger.Error("failed to search users", "error", err)
		return nil, 0, apperrors.NewDatabaseError(fmt.Errorf("failed to search users: %w", err))
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := r.scanUserRow(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewDatabaseError(fmt.Errorf("error iterating user rows: %w", err))
	}

	return users, total, nil
}

// scanUser scans a single-row query, translating pgx.ErrNoRows into the
// not-found kind.
func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.ExternalAuthID,
		&user.AuthProvider,
		&user.Email,
		&user.NormalizedEmail,
		&user.DisplayName,
		&user.OnboardingCompleted,
		&user.OnboardingStep,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		r.logger.Error("failed to scan user", "error", err)
		return nil, apperrors.NewDatabaseError(fmt.Errorf("failed to scan user: %w", err))
	}
	return user, nil
}

func (r *UserRepository) scanUserRow(rows pgx.Rows) (*domain.User, error) {
	user := &domain.User{}
	err := rows.Scan(
		&user.ID,
		&user.ExternalAuthID,
		&user.AuthProvider,
		&user.Email,
		&user.NormalizedEmail,
		&user.DisplayName,
		&user.OnboardingCompleted,
		&user.OnboardingStep,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
	)
	if err != nil {
		return nil, apperrors.NewDatabaseError(fmt.Errorf("failed to scan user row: %w", err))
	}
	return user, nil
}

// translateUniqueViolation maps a PostgreSQL unique violation to the
// error kind the upsert protocol distinguishes on. Returns nil when the
// error is not a unique violation.
func translateUniqueViolation(err error, user *domain.User) *apperrors.AppError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}

	switch pgErr.ConstraintName {
	case constraintEmail:
		return apperrors.NewEmailCollision(user.Email, "").WithCause(err)
	default:
		// Auth-id constraint, or an unnamed unique index: someone else
		// created this identity concurrently.
		return apperrors.Wrap(apperrors.ErrCodeConflict, "user already exists", err).
			WithContext("external_auth_id", user.ExternalAuthID)
	}
}
