package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"user-service/app/utils/errors"
)

func TestAuthorizeOwner(t *testing.T) {
	tests := []struct {
		name      string
		principal Principal
		target    string
		wantCode  errors.ErrorCode
	}{
		{
			name:      "user accessing own resource",
			principal: &UserPrincipal{ExternalAuthID: "abc123", AuthProvider: "google"},
			target:    "abc123",
		},
		{
			name:      "user accessing another user's resource",
			principal: &UserPrincipal{ExternalAuthID: "abc123", AuthProvider: "google"},
			target:    "xyz789",
			wantCode:  errors.ErrCodeForbidden,
		},
		{
			name:      "service principal is never an owner",
			principal: &ServicePrincipal{ServiceName: "frontend"},
			target:    "abc123",
			wantCode:  errors.ErrCodeForbidden,
		},
		{
			name:     "nil principal is unauthenticated, not forbidden",
			target:   "abc123",
			wantCode: errors.ErrCodeUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeOwner(tt.principal, tt.target)

			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetErrorCode(err))
		})
	}
}

func TestServicePrincipal_HasPermission(t *testing.T) {
	p := &ServicePrincipal{
		ServiceName: "frontend",
		Permissions: map[string]struct{}{
			PermissionUserRead:   {},
			PermissionUserCreate: {},
		},
	}

	assert.True(t, p.HasPermission(PermissionUserRead))
	assert.True(t, p.HasPermission(PermissionUserCreate))
	assert.False(t, p.HasPermission("user:delete"))
}

func TestPrincipalContext(t *testing.T) {
	t.Run("round trip user principal", func(t *testing.T) {
		ctx := WithPrincipal(t.Context(), &UserPrincipal{ExternalAuthID: "abc123"})

		user, err := UserFromContext(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "abc123", user.ExternalAuthID)
	})

	t.Run("round trip service principal", func(t *testing.T) {
		ctx := WithPrincipal(t.Context(), &ServicePrincipal{ServiceName: "chat"})

		service, err := ServiceFromContext(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "chat", service.ServiceName)
	})

	t.Run("missing principal", func(t *testing.T) {
		_, err := PrincipalFromContext(t.Context())
		assert.Equal(t, errors.ErrCodeUnauthenticated, errors.GetErrorCode(err))
	})

	t.Run("kind mismatch does not fall back", func(t *testing.T) {
		ctx := WithPrincipal(t.Context(), &ServicePrincipal{ServiceName: "office"})

		_, err := UserFromContext(ctx)
		assert.Equal(t, errors.ErrCodeUnauthenticated, errors.GetErrorCode(err))
	})
}
