package port

//go:generate mockgen -source=user_port.go -destination=../mocks/mock_user_port.go

import (
	"context"

	"user-service/app/domain"
)

// UserUsecase defines the identity resolution business logic interface
type UserUsecase interface {
	// CreateOrUpsertUser provisions a user identity idempotently: the
	// returned bool is true when a new identity was created and false
	// when the identity already existed.
	CreateOrUpsertUser(ctx context.Context, req *domain.UserCreate) (*domain.User, bool, error)

	// ResolveEmail resolves a (possibly denormalized) email address to
	// the canonical identity owning it.
	ResolveEmail(ctx context.Context, req *domain.EmailResolutionRequest) (*domain.EmailResolution, error)

	// Profile operations, all keyed by external auth ID
	GetUserByAuthID(ctx context.Context, externalAuthID string) (*domain.User, error)
	UpdateUser(ctx context.Context, externalAuthID string, update *domain.UserUpdate) (*domain.User, error)
	UpdateOnboarding(ctx context.Context, externalAuthID string, update *domain.UserOnboardingUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, externalAuthID string) (*domain.UserDeleteResponse, error)

	// SearchUsers lists users with filtering and pagination
	SearchUsers(ctx context.Context, req *domain.UserSearchRequest) (*domain.UserListResponse, error)
}

// UserRepository defines user data access. All read paths exclude
// soft-deleted rows.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByAuthID(ctx context.Context, externalAuthID string, provider domain.AuthProvider) (*domain.User, error)
	GetByAuthIDAnyProvider(ctx context.Context, externalAuthID string) (*domain.User, error)
	GetByNormalizedEmail(ctx context.Context, normalizedEmail string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	SoftDelete(ctx context.Context, externalAuthID string, provider domain.AuthProvider) error
	Search(ctx context.Context, req *domain.UserSearchRequest) ([]*domain.User, int, error)
}
