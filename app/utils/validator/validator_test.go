package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Validate(t *testing.T) {
	type createRequest struct {
		ExternalAuthID string `json:"external_auth_id" validate:"required"`
		AuthProvider   string `json:"auth_provider" validate:"required,auth_provider"`
		Email          string `json:"email" validate:"required,email"`
	}

	v := New()

	tests := []struct {
		name      string
		input     createRequest
		wantErr   bool
		wantField string
	}{
		{
			name: "valid request",
			input: createRequest{
				ExternalAuthID: "abc123",
				AuthProvider:   "google",
				Email:          "a@x.com",
			},
			wantErr: false,
		},
		{
			name: "missing external auth id",
			input: createRequest{
				AuthProvider: "google",
				Email:        "a@x.com",
			},
			wantErr:   true,
			wantField: "external_auth_id",
		},
		{
			name: "unknown provider",
			input: createRequest{
				ExternalAuthID: "abc123",
				AuthProvider:   "myspace",
				Email:          "a@x.com",
			},
			wantErr:   true,
			wantField: "auth_provider",
		},
		{
			name: "invalid email",
			input: createRequest{
				ExternalAuthID: "abc123",
				AuthProvider:   "google",
				Email:          "not-an-email",
			},
			wantErr:   true,
			wantField: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			validationErr, ok := err.(*ValidationError)
			require.True(t, ok)
			assert.Contains(t, validationErr.Errors, tt.wantField)
		})
	}
}

func TestValidator_PaginationBounds(t *testing.T) {
	type searchRequest struct {
		Page     int `json:"page" validate:"min=1"`
		PageSize int `json:"page_size" validate:"min=1,max=100"`
	}

	v := New()

	assert.NoError(t, v.Validate(searchRequest{Page: 1, PageSize: 20}))
	assert.NoError(t, v.Validate(searchRequest{Page: 1, PageSize: 100}))
	assert.Error(t, v.Validate(searchRequest{Page: 0, PageSize: 20}))
	assert.Error(t, v.Validate(searchRequest{Page: 1, PageSize: 0}))
	assert.Error(t, v.Validate(searchRequest{Page: 1, PageSize: 101}))
}

func TestValidator_OnboardingStep(t *testing.T) {
	v := New()

	for _, step := range []string{"welcome", "profile", "integrations", "preferences", "completed"} {
		assert.NoError(t, v.ValidateVar(step, "onboarding_step"), step)
	}
	assert.Error(t, v.ValidateVar("teleportation", "onboarding_step"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("user@example.com"))
	assert.True(t, IsValidEmail("user+tag@example.com"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail(""))
	assert.False(t, IsValidEmail("@example.com"))
}

func TestIsValidAuthProvider(t *testing.T) {
	assert.True(t, IsValidAuthProvider("google"))
	assert.True(t, IsValidAuthProvider("microsoft"))
	assert.False(t, IsValidAuthProvider(""))
	assert.False(t, IsValidAuthProvider("geocities"))
}
