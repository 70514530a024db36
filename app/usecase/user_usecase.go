package usecase

import (
	"context"
	"log/slog"
	"net/mail"
	"time"

	"user-service/app/domain"
	"user-service/app/port"
	apperrors "user-service/app/utils/errors"
)

// UserUseCase implements identity resolution business logic: email
// resolution, idempotent find-or-create provisioning, and the profile
// operations keyed by external auth ID.
type UserUseCase struct {
	userRepo port.UserRepository
	logger   *slog.Logger
}

// NewUserUseCase creates a new UserUseCase instance
func NewUserUseCase(userRepo port.UserRepository, logger *slog.Logger) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		logger:   logger.With("component", "user_usecase"),
	}
}

// CreateOrUpsertUser provisions a user identity idempotently. An
// existing identity for the (external_auth_id, auth_provider) pair is
// returned unchanged. Creation relies on the store's uniqueness
// constraints as the authoritative guard: losing the provisioning race
// resolves to the winner's identity, while an email owned by a
// different external auth ID is a true collision.
func (uc *UserUseCase) CreateOrUpsertUser(ctx context.Context, req *domain.UserCreate) (*domain.User, bool, error) {
	provider := domain.AuthProvider(req.AuthProvider)

	existing, err := uc.userRepo.GetByAuthID(ctx, req.ExternalAuthID, provider)
	if err == nil {
		uc.logger.Info("existing user returned for upsert",
			"external_auth_id", req.ExternalAuthID, "auth_provider", provider)
		return existing, false, nil
	}
	if apperrors.GetErrorCode(err) != apperrors.ErrCodeUserNotFound {
		return nil, false, err
	}

	user, err := domain.NewUser(req.ExternalAuthID, provider, req.Email, req.DisplayName)
	if err != nil {
		return nil, false, translateDomainError(err)
	}

	// Check-then-act email pre-check. Races slipping through are caught
	// by the partial unique index on creation below.
	if owner, err := uc.userRepo.GetByNormalizedEmail(ctx, user.NormalizedEmail); err == nil {
		if !owner.OwnedBy(req.ExternalAuthID) {
			uc.logger.Warn("email collision during user creation",
				"email", req.Email, "conflicting_external_auth_id", owner.ExternalAuthID)
			return nil, false, apperrors.NewEmailCollision(req.Email, owner.ExternalAuthID)
		}
	} else if apperrors.GetErrorCode(err) != apperrors.ErrCodeUserNotFound {
		return nil, false, err
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return uc.resolveCreateConflict(ctx, req, provider, err)
	}

	uc.logger.Info("user created",
		"external_auth_id", req.ExternalAuthID, "auth_provider", provider)
	return user, true, nil
}

// resolveCreateConflict handles a uniqueness violation raised by the
// creation attempt itself. A violation on the auth-id constraint means
// someone else won the race, so the now-existing identity is fetched
// and returned. A violation on the email index is re-checked: if the
// winning row belongs to the same external auth ID it is still a lost
// race, otherwise it is a genuine email collision.
func (uc *UserUseCase) resolveCreateConflict(ctx context.Context, req *domain.UserCreate, provider domain.AuthProvider, createErr error) (*domain.User, bool, error) {
	switch apperrors.GetErrorCode(createErr) {
	case apperrors.ErrCodeConflict:
		winner, err := uc.userRepo.GetByAuthID(ctx, req.ExternalAuthID, provider)
		if err != nil {
			return nil, false, apperrors.NewInternalError(err)
		}
		uc.logger.Info("upsert race lost, returning winner",
			"external_auth_id", req.ExternalAuthID, "auth_provider", provider)
		return winner, false, nil

	case apperrors.ErrCodeEmailCollision:
		normalized, err := domain.NormalizeEmail(req.Email, provider)
		if err != nil {
			return nil, false, apperrors.ErrMalformedEmail
		}
		owner, err := uc.userRepo.GetByNormalizedEmail(ctx, normalized)
		if err != nil {
			return nil, false, apperrors.NewEmailCollision(req.Email, "")
		}
		if owner.OwnedBy(req.ExternalAuthID) && owner.AuthProvider == provider {
			return owner, false, nil
		}
		uc.logger.Warn("email collision surfaced by storage constraint",
			"email", req.Email, "conflicting_external_auth_id", owner.ExternalAuthID)
		return nil, false, apperrors.NewEmailCollision(req.Email, owner.ExternalAuthID)

	default:
		return nil, false, createErr
	}
}

// ResolveEmail resolves an email address to the canonical identity
// owning it. The address is format-checked before normalization is
// attempted; soft-deleted identities never resolve.
func (uc *UserUseCase) ResolveEmail(ctx context.Context, req *domain.EmailResolutionRequest) (*domain.EmailResolution, error) {
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeMalformedEmail, "email fails format checks")
	}

	normalized, err := domain.NormalizeEmail(req.Email, domain.AuthProvider(req.Provider))
	if err != nil {
		return nil, apperrors.ErrMalformedEmail
	}

	user, err := uc.userRepo.GetByNormalizedEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}

	return &domain.EmailResolution{
		ExternalAuthID: user.ExternalAuthID,
		AuthProvider:   user.AuthProvider,
	}, nil
}

// GetUserByAuthID fetches a user profile by external auth ID without
// knowing which provider minted the ID.
func (uc *UserUseCase) GetUserByAuthID(ctx context.Context, externalAuthID string) (*domain.User, error) {
	return uc.userRepo.GetByAuthIDAnyProvider(ctx, externalAuthID)
}

// UpdateUser applies a partial profile update. Changing the email
// re-runs normalization and collision checks against other identities.
func (uc *UserUseCase) UpdateUser(ctx context.Context, externalAuthID string, update *domain.UserUpdate) (*domain.User, error) {
	user, err := uc.userRepo.GetByAuthIDAnyProvider(ctx, externalAuthID)
	if err != nil {
		return nil, err
	}

	if update.Email != nil {
		if _, err := mail.ParseAddress(*update.Email); err != nil {
			return nil, apperrors.ErrMalformedEmail
		}
		normalized, err := domain.NormalizeEmail(*update.Email, user.AuthProvider)
		if err != nil {
			return nil, apperrors.ErrMalformedEmail
		}
		if owner, err := uc.userRepo.GetByNormalizedEmail(ctx, normalized); err == nil {
			if !owner.OwnedBy(externalAuthID) {
				return nil, apperrors.NewEmailCollision(*update.Email, owner.ExternalAuthID)
			}
		} else if apperrors.GetErrorCode(err) != apperrors.ErrCodeUserNotFound {
			return nil, err
		}
		user.Email = *update.Email
		user.NormalizedEmail = normalized
	}
	if update.DisplayName != nil {
		user.DisplayName = *update.DisplayName
	}
	user.UpdatedAt = time.Now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("user profile updated", "external_auth_id", externalAuthID)
	return user, nil
}

// UpdateOnboarding updates onboarding progress for a user.
func (uc *UserUseCase) UpdateOnboarding(ctx context.Context, externalAuthID string, update *domain.UserOnboardingUpdate) (*domain.User, error) {
	user, err := uc.userRepo.GetByAuthIDAnyProvider(ctx, externalAuthID)
	if err != nil {
		return nil, err
	}

	user.OnboardingCompleted = update.OnboardingCompleted
	user.OnboardingStep = update.OnboardingStep
	user.UpdatedAt = time.Now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("user onboarding updated",
		"external_auth_id", externalAuthID, "completed", update.OnboardingCompleted)
	return user, nil
}

// DeleteUser soft-deletes a user profile. Subsequent lookups by email
// or auth ID behave as not found.
func (uc *UserUseCase) DeleteUser(ctx context.Context, externalAuthID string) (*domain.UserDeleteResponse, error) {
	user, err := uc.userRepo.GetByAuthIDAnyProvider(ctx, externalAuthID)
	if err != nil {
		return nil, err
	}

	if err := uc.userRepo.SoftDelete(ctx, user.ExternalAuthID, user.AuthProvider); err != nil {
		return nil, err
	}

	uc.logger.Info("user soft deleted", "external_auth_id", externalAuthID)
	return &domain.UserDeleteResponse{
		Success:        true,
		ExternalAuthID: externalAuthID,
		Message:        "user profile deleted",
	}, nil
}

// SearchUsers lists users with filtering and pagination. Pagination
// bounds are validated again here in case a caller bypasses the
// transport-level checks.
func (uc *UserUseCase) SearchUsers(ctx context.Context, req *domain.UserSearchRequest) (*domain.UserListResponse, error) {
	if req.Page < 1 {
		return nil, apperrors.NewValidationError("page must be at least 1")
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		return nil, apperrors.NewValidationError("page_size must be between 1 and 100")
	}

	users, total, err := uc.userRepo.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	return &domain.UserListResponse{
		Users:    users,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		HasNext:  req.Page*req.PageSize < total,
	}, nil
}

// translateDomainError maps domain validation sentinels to the public
// error taxonomy.
func translateDomainError(err error) error {
	switch err {
	case domain.ErrInvalidEmailFormat:
		return apperrors.ErrMalformedEmail
	case domain.ErrEmptyAuthID:
		return apperrors.NewValidationError("external_auth_id is required")
	case domain.ErrEmptyAuthProvider:
		return apperrors.NewValidationError("auth_provider is required")
	default:
		return apperrors.NewValidationError(err.Error())
	}
}
