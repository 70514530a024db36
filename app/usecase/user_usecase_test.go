package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"user-service/app/domain"
	mock_port "user-service/app/mocks"
	apperrors "user-service/app/utils/errors"
	"user-service/app/utils/logger"
)

func newTestUseCase(t *testing.T) (*UserUseCase, *mock_port.MockUserRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockRepo := mock_port.NewMockUserRepository(ctrl)

	testLogger, err := logger.New("debug")
	require.NoError(t, err)

	return NewUserUseCase(mockRepo, testLogger), mockRepo
}

func testUser(t *testing.T) *domain.User {
	t.Helper()

	user, err := domain.NewUser("abc123", domain.AuthProviderGoogle, "Ada.Lovelace+tag@gmail.com", "Ada")
	require.NoError(t, err)
	return user
}

func TestUserUseCase_CreateOrUpsertUser(t *testing.T) {
	validReq := &domain.UserCreate{
		ExternalAuthID: "abc123",
		AuthProvider:   "google",
		Email:          "Ada.Lovelace+tag@gmail.com",
		DisplayName:    "Ada",
	}

	tests := []struct {
		name        string
		req         *domain.UserCreate
		setupMocks  func(*mock_port.MockUserRepository)
		wantCreated bool
		wantCode    apperrors.ErrorCode
	}{
		{
			name: "existing user returned unchanged",
			req:  validReq,
			setupMocks: func(repo *mock_port.MockUserRepository) {
				repo.EXPECT().GetByAuthID(gomock.Any(), "abc123", domain.AuthProviderGoogle).
					Return(&domain.User{ExternalAuthID: "abc123"}, nil)
			},
			wantCreated: false,
		},
		{
			name: "new user created",
			req:  validReq,
			setupMocks: func(repo *mock_port.MockUserRepository) {
				repo.EXPECT().GetByAuthID(gomock.Any(), "abc123", domain.AuthProviderGoogle).
					Return(nil, apperrors.ErrUserNotFound)
				repo.EXPECT().GetByNormalizedEmail(gomock.Any(), "adalovelace@gmail.com").
					Return(nil, apperrors.ErrUserNotFound)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCreated: true,
		},
		{
			name: "email owned by someone else is a collision",
			req:  validReq,
			setupMocks: func(repo *mock_port.MockUserRepository) {
				repo.EXPECT().GetByAuthID(gomock.Any(), "abc123", domain.AuthProviderGoogle).
					Return(nil, apperrors.ErrUserNotFound)
				repo.EXPECT().GetByNormalizedEmail(gomock.Any(), "adalovelace@gmail.com").
					Return(&domain.User{ExternalAuthID: "someone-else"}, nil)
			},
			wantCode: apperrors.ErrCodeEmailCollision,
		},
		{
			name: "lost race on auth id constraint returns winner",
			req:  validReq,
			setupMocks: func(repo *mock_port.MockUserRepository) {
				repo.EXPECT().GetByAuthID(gomock.Any(), "abc123", domain.AuthProviderGoogle).
					Return(nil, apperrors.ErrUserNotFound)
				repo.EXPECT().GetByNormalizedEmail(gomock.Any(), "adalovelace@gmail.com").
					Return(nil, apperrors.ErrUserNotFound)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(apperrors.New(apperrors.ErrCodeConflict, "user already exists"))
				repo.EXPECT().GetByAuthID(gomock.Any(), "abc123", domain.AuthProviderGoogle).
					Return(&domain.User{ExternalAuthID: "abc123"}, nil)
			},
			wantCreated: false,
		},
		{
			name: "email constraint violation by same identity is a lost race",
			req:  validReq,
			setupMocks: func(repo *mock_port.MockUserRepository) {
				repo.EXPECT().GetByAuthID(gomock.Any(), "abc123", domain.AuthProviderGoogle).
					Return(nil, apperrors.ErrUserNotFound)
				repo.EXPECT().GetByNormalizedEmail(gomock.Any(), "adalovelace@gmail.com").
					Return(nil, apperrors.ErrUserNotFound)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(apperrors.NewEmailCollision("Ada.Lovelace+tag@gmail.com", ""))
				repo.EXPECT().GetByNormalizedEmail(gomock.Any(), "adalovelace@gmail.com").
					Return(&domain.User{ExternalAuthID: "abc123", AuthProvider: domain.AuthProviderGoogle}, nil)
			},
			wantCreated: false,
		},
		{
			name: "email constraint violation by another identity stays a collision",
			req:  validReq,
			setupMocks: func(repo *mock_port.MockUserRepository) {
				repo.EXPECT().GetByAuthID(gomock.Any(), "abc123", domain.AuthProviderGoogle).
					Return(nil, apperrors.ErrUserNotFound)
				repo.EXPECT().GetByNormalizedEmail(gomock.Any(), "adalovelace@gmail.com").
					Return(nil, apperrors.ErrUserNotFound)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(apperrors.NewEmailCollision("Ada.Lovelace+tag@gmail.com", ""))
				repo.EXPECT().GetByNormalizedEmail(gomock.Any(), "adalovelace@gmail.com").
					Return(&domain.User{ExternalAuthID: "someone-else", AuthProvider: domain.AuthProviderGoogle}, nil)
			},
			wantCode: apperrors.ErrCodeEmailCollision,
		},
		{
			name: "malformed email",
			req: &domain.UserCreate{
				ExternalAuthID: "abc123",
				AuthProvider:   "google",
				Email:          "not-an-email",
				DisplayName:    "Ada",
			},
			setupMocks: func(repo *mock_port.MockUserRepository) {
				repo.EXPECT().GetByAuthID(gomock.Any(), "abc123", domain.AuthProviderGoogle).
					Return(nil, apperrors.ErrUserNotFound)
			},
			wantCode: apperrors.ErrCodeMalformedEmail,
		},
		{
			name: "lookup failure propagates",
			req:  validReq,
			setupMocks: func(repo *mock_port.MockUserRepository) {
				repo.EXPECT().GetByAuthID(gomock.Any(), "abc123", domain.AuthProviderGoogle).
					Return(nil, apperrors.NewDatabaseError(assert.AnError))
			},
			wantCode: apperrors.ErrCodeDatabaseError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCase, mockRepo := newTestUseCase(t)
			tt.setupMocks(mockRepo)

			user, created, err := useCase.CreateOrUpsertUser(context.Background(), tt.req)

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, apperrors.GetErrorCode(err))
				return
			}
			require.NoError(t, err)
			require.NotNil(t, user)
			assert.Equal(t, tt.wantCreated, created)
			assert.Equal(t, "abc123", user.ExternalAuthID)
		})
	}
}

func TestUserUseCase_CreateOrUpsertUser_CollisionCarriesOwner(t *testing.T) {
	useCase, mockRepo := newTestUseCase(t)

	mockRepo.EXPECT().GetByAuthID(gomock.Any(), "abc123", domain.AuthProviderGoogle).
		Return(nil, apperrors.ErrUserNotFound)
	mockRepo.EXPECT().GetByNormalizedEmail(gomock.Any(), "adalovelace@gmail.com").
		Return(&domain.User{ExternalAuthID: "owner-42"}, nil)

	_, _, err := useCase.CreateOrUpsertUser(context.Background(), &domain.UserCreate{
		ExternalAuthID: "abc123",
		AuthProvider:   "google",
		Email:          "Ada.Lovelace+tag@gmail.com",
		DisplayName:    "Ada",
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeEmailCollision, appErr.Code)
	assert.Equal(t, "owner-42", appErr.Context["conflicting_external_auth_id"])
}

func TestUserUseCase_ResolveEmail(t *testing.T) {
	tests := []struct {
		name       string
		req        *domain.EmailResolutionRequest
		setupMocks func(*mock_port.MockUserRepository)
		wantAuthID string
		wantCode   apperrors.ErrorCode
	}{
		{
			name: "resolves dotted gmail variant to canonical owner",
			req:  &domain.EmailResolutionRequest{Email: "Ada.Lovelace+news@gmail.com", Provider: "google"},
			setupMocks: func(repo *mock_port.MockUserRepository) {
				repo.EXPECT().GetByNormalizedEmail(gomock.Any(), "adalovelace@gmail.com").
					Return(&domain.User{ExternalAuthID: "abc123", AuthProvider: domain.AuthProviderGoogle}, nil)
			},
			wantAuthID: "abc123",
		},
		{
			name: "microsoft strips plus suffix only",
			req:  &domain.EmailResolutionRequest{Email: "Ada.L+x@outlook.com", Provider: "microsoft"},
			setupMocks: func(repo *mock_port.MockUserRepository) {
				repo.EXPECT().GetByNormalizedEmail(gomock.Any(), "ada.l@outlook.com").
					Return(&domain.User{ExternalAuthID: "ms-1", AuthProvider: domain.AuthProviderMicrosoft}, nil)
			},
			wantAuthID: "ms-1",
		},
		{
			name:       "malformed email",
			req:        &domain.EmailResolutionRequest{Email: "nope", Provider: "google"},
			setupMocks: func(repo *mock_port.MockUserRepository) {},
			wantCode:   apperrors.ErrCodeMalformedEmail,
		},
		{
			name: "unknown email",
			req:  &domain.EmailResolutionRequest{Email: "nobody@x.com", Provider: "google"},
			setupMocks: func(repo *mock_port.MockUserRepository) {
				repo.EXPECT().GetByNormalizedEmail(gomock.Any(), "nobody@x.com").
					Return(nil, apperrors.ErrUserNotFound)
			},
			wantCode: apperrors.ErrCodeUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCase, mockRepo := newTestUseCase(t)
			tt.setupMocks(mockRepo)

			resolution, err := useCase.ResolveEmail(context.Background(), tt.req)

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, apperrors.GetErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAuthID, resolution.ExternalAuthID)
		})
	}
}

func TestUserUseCase_UpdateUser(t *testing.T) {
	t.Run("updates display name", func(t *testing.T) {
		useCase, mockRepo := newTestUseCase(t)
		user := testUser(t)

		mockRepo.EXPECT().GetByAuthIDAnyProvider(gomock.Any(), "abc123").Return(user, nil)
		mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		name := "Countess"
		updated, err := useCase.UpdateUser(context.Background(), "abc123", &domain.UserUpdate{DisplayName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Countess", updated.DisplayName)
	})

	t.Run("email change renormalizes and checks collisions", func(t *testing.T) {
		useCase, mockRepo := newTestUseCase(t)
		user := testUser(t)

		mockRepo.EXPECT().GetByAuthIDAnyProvider(gomock.Any(), "abc123").Return(user, nil)
		mockRepo.EXPECT().GetByNormalizedEmail(gomock.Any(), "adaking@gmail.com").
			Return(nil, apperrors.ErrUserNotFound)
		mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		email := "Ada.King@gmail.com"
		updated, err := useCase.UpdateUser(context.Background(), "abc123", &domain.UserUpdate{Email: &email})
		require.NoError(t, err)
		assert.Equal(t, "Ada.King@gmail.com", updated.Email)
		assert.Equal(t, "adaking@gmail.com", updated.NormalizedEmail)
	})

	t.Run("email change to someone else's address is a collision", func(t *testing.T) {
		useCase, mockRepo := newTestUseCase(t)
		user := testUser(t)

		mockRepo.EXPECT().GetByAuthIDAnyProvider(gomock.Any(), "abc123").Return(user, nil)
		mockRepo.EXPECT().GetByNormalizedEmail(gomock.Any(), "adaking@gmail.com").
			Return(&domain.User{ExternalAuthID: "someone-else"}, nil)

		email := "Ada.King@gmail.com"
		_, err := useCase.UpdateUser(context.Background(), "abc123", &domain.UserUpdate{Email: &email})
		assert.Equal(t, apperrors.ErrCodeEmailCollision, apperrors.GetErrorCode(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		useCase, mockRepo := newTestUseCase(t)

		mockRepo.EXPECT().GetByAuthIDAnyProvider(gomock.Any(), "missing").
			Return(nil, apperrors.ErrUserNotFound)

		name := "x"
		_, err := useCase.UpdateUser(context.Background(), "missing", &domain.UserUpdate{DisplayName: &name})
		assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.GetErrorCode(err))
	})
}

func TestUserUseCase_UpdateOnboarding(t *testing.T) {
	useCase, mockRepo := newTestUseCase(t)
	user := testUser(t)

	mockRepo.EXPECT().GetByAuthIDAnyProvider(gomock.Any(), "abc123").Return(user, nil)
	mockRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	step := "completed"
	updated, err := useCase.UpdateOnboarding(context.Background(), "abc123", &domain.UserOnboardingUpdate{
		OnboardingCompleted: true,
		OnboardingStep:      &step,
	})
	require.NoError(t, err)
	assert.True(t, updated.OnboardingCompleted)
	require.NotNil(t, updated.OnboardingStep)
	assert.Equal(t, "completed", *updated.OnboardingStep)
}

func TestUserUseCase_DeleteUser(t *testing.T) {
	t.Run("soft deletes existing user", func(t *testing.T) {
		useCase, mockRepo := newTestUseCase(t)
		user := testUser(t)

		mockRepo.EXPECT().GetByAuthIDAnyProvider(gomock.Any(), "abc123").Return(user, nil)
		mockRepo.EXPECT().SoftDelete(gomock.Any(), "abc123", domain.AuthProviderGoogle).Return(nil)

		resp, err := useCase.DeleteUser(context.Background(), "abc123")
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, "abc123", resp.ExternalAuthID)
	})

	t.Run("unknown user", func(t *testing.T) {
		useCase, mockRepo := newTestUseCase(t)

		mockRepo.EXPECT().GetByAuthIDAnyProvider(gomock.Any(), "missing").
			Return(nil, apperrors.ErrUserNotFound)

		_, err := useCase.DeleteUser(context.Background(), "missing")
		assert.Equal(t, apperrors.ErrCodeUserNotFound, apperrors.GetErrorCode(err))
	})
}

func TestUserUseCase_SearchUsers(t *testing.T) {
	t.Run("paginates and reports has_next", func(t *testing.T) {
		useCase, mockRepo := newTestUseCase(t)
		user := testUser(t)

		mockRepo.EXPECT().Search(gomock.Any(), gomock.Any()).
			Return([]*domain.User{user}, 45, nil)

		resp, err := useCase.SearchUsers(context.Background(), &domain.UserSearchRequest{Page: 2, PageSize: 20})
		require.NoError(t, err)
		assert.Equal(t, 45, resp.Total)
		assert.Equal(t, 2, resp.Page)
		assert.True(t, resp.HasNext)
	})

	t.Run("last page has no next", func(t *testing.T) {
		useCase, mockRepo := newTestUseCase(t)

		mockRepo.EXPECT().Search(gomock.Any(), gomock.Any()).
			Return([]*domain.User{}, 40, nil)

		resp, err := useCase.SearchUsers(context.Background(), &domain.UserSearchRequest{Page: 2, PageSize: 20})
		require.NoError(t, err)
		assert.False(t, resp.HasNext)
	})

	t.Run("page below 1 rejected", func(t *testing.T) {
		useCase, _ := newTestUseCase(t)

		_, err := useCase.SearchUsers(context.Background(), &domain.UserSearchRequest{Page: 0, PageSize: 20})
		assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.GetErrorCode(err))
	})

	t.Run("page size above 100 rejected", func(t *testing.T) {
		useCase, _ := newTestUseCase(t)

		_, err := useCase.SearchUsers(context.Background(), &domain.UserSearchRequest{Page: 1, PageSize: 101})
		assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.GetErrorCode(err))
	})
}
