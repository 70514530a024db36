package domain

import (
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// AuthProvider identifies the upstream identity provider that minted a
// user's external auth ID.
type AuthProvider string

const (
	AuthProviderGoogle    AuthProvider = "google"
	AuthProviderMicrosoft AuthProvider = "microsoft"
	AuthProviderYahoo     AuthProvider = "yahoo"
)

// KnownAuthProviders lists the providers lookups auto-detect across.
var KnownAuthProviders = []AuthProvider{AuthProviderGoogle, AuthProviderMicrosoft, AuthProviderYahoo}

// User represents a user identity in the profile store. Exactly one
// row exists per (external_auth_id, auth_provider) pair; the storage
// layer enforces that uniqueness authoritatively.
type User struct {
	ID                  uuid.UUID    `json:"id"`
	ExternalAuthID      string       `json:"external_auth_id"`
	AuthProvider        AuthProvider `json:"auth_provider"`
	Email               string       `json:"email"`
	NormalizedEmail     string       `json:"-"`
	DisplayName         string       `json:"display_name,omitempty"`
	OnboardingCompleted bool         `json:"onboarding_completed"`
	OnboardingStep      *string      `json:"onboarding_step,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
	DeletedAt           *time.Time   `json:"deleted_at,omitempty"`
}

// NewUser creates a new user identity with validation. The email is
// normalized for the provider before storage so collision checks see a
// canonical form.
func NewUser(externalAuthID string, provider AuthProvider, email, displayName string) (*User, error) {
	if externalAuthID == "" {
		return nil, ErrEmptyAuthID
	}
	if provider == "" {
		return nil, ErrEmptyAuthProvider
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmailFormat
	}

	normalized, err := NormalizeEmail(email, provider)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	return &User{
		ID:              uuid.New(),
		ExternalAuthID:  externalAuthID,
		AuthProvider:    provider,
		Email:           email,
		NormalizedEmail: normalized,
		DisplayName:     displayName,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// SoftDelete marks the user as deleted without removing the row.
func (u *User) SoftDelete() {
	now := time.Now()
	u.DeletedAt = &now
	u.UpdatedAt = now
}

// IsDeleted returns true if the user is soft deleted
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// OwnedBy reports whether the identity belongs to the given external auth ID.
func (u *User) OwnedBy(externalAuthID string) bool {
	return u.ExternalAuthID == externalAuthID
}

// UserCreate is the provisioning payload for the find-or-create flow.
type UserCreate struct {
	ExternalAuthID string `json:"external_auth_id" validate:"required,max=255"`
	AuthProvider   string `json:"auth_provider" validate:"required,auth_provider"`
	Email          string `json:"email" validate:"required,email"`
	DisplayName    string `json:"display_name,omitempty" validate:"max=255"`
}

// UserUpdate carries a partial profile update. Nil fields are untouched.
type UserUpdate struct {
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=255"`
}

// UserOnboardingUpdate updates onboarding progress.
type UserOnboardingUpdate struct {
	OnboardingCompleted bool    `json:"onboarding_completed"`
	OnboardingStep      *string `json:"onboarding_step,omitempty" validate:"omitempty,onboarding_step"`
}

// UserSearchRequest carries search filters and pagination. Page and
// page size bounds are contract constraints enforced before the
// resolution service is reached.
type UserSearchRequest struct {
	Query               string `json:"query,omitempty" validate:"max=255"`
	Email               string `json:"email,omitempty" validate:"omitempty,email"`
	OnboardingCompleted *bool  `json:"onboarding_completed,omitempty"`
	Page                int    `json:"page" validate:"min=1"`
	PageSize            int    `json:"page_size" validate:"min=1,max=100"`
}

// UserListResponse is a paginated search result.
type UserListResponse struct {
	Users    []*User `json:"users"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
	HasNext  bool    `json:"has_next"`
}

// UserDeleteResponse acknowledges a soft delete.
type UserDeleteResponse struct {
	Success        bool   `json:"success"`
	ExternalAuthID string `json:"external_auth_id"`
	Message        string `json:"message,omitempty"`
}

// EmailResolutionRequest asks which identity owns an email address.
type EmailResolutionRequest struct {
	Email    string `json:"email" validate:"required"`
	Provider string `json:"provider,omitempty"`
}

// EmailResolution is the answer: the canonical identity for the email.
type EmailResolution struct {
	ExternalAuthID string       `json:"external_auth_id"`
	AuthProvider   AuthProvider `json:"auth_provider"`
}
