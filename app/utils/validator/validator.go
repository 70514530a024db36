package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with custom rules
type Validator struct {
	validator *validator.Validate
}

// New creates a new validator instance with custom rules
func New() *Validator {
	validate := validator.New()

	// Register custom validators
	registerCustomValidators(validate)

	// Use JSON field names for validation error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{
		validator: validate,
	}
}

// Validate validates a struct and returns validation errors
func (v *Validator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return NewValidationError(err.(validator.ValidationErrors))
	}
	return nil
}

// ValidateVar validates a single variable
func (v *Validator) ValidateVar(field interface{}, tag string) error {
	return v.validator.Var(field, tag)
}

// ValidationError represents a validation error with user-friendly messages
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

// Error implements the error interface
func (e ValidationError) Error() string {
	var messages []string
	for field, message := range e.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", field, message))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, ", "))
}

// NewValidationError creates a ValidationError from validator.ValidationErrors
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	errors := make(map[string]string)

	for _, err := range errs {
		field := err.Field()
		tag := err.Tag()

		switch tag {
		case "required":
			errors[field] = fmt.Sprintf("%s is required", field)
		case "email":
			errors[field] = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			errors[field] = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max":
			errors[field] = fmt.Sprintf("%s must be at most %s", field, err.Param())
		case "auth_provider":
			errors[field] = fmt.Sprintf("%s must be a known auth provider", field)
		case "onboarding_step":
			errors[field] = fmt.Sprintf("%s must be a known onboarding step", field)
		default:
			errors[field] = fmt.Sprintf("%s is invalid", field)
		}
	}

	return &ValidationError{Errors: errors}
}

// registerCustomValidators registers custom validation rules
func registerCustomValidators(validate *validator.Validate) {
	// Auth provider validation: identity providers we know how to normalize
	validate.RegisterValidation("auth_provider", func(fl validator.FieldLevel) bool {
		provider := fl.Field().String()
		validProviders := []string{"google", "microsoft", "yahoo"}
		for _, validProvider := range validProviders {
			if provider == validProvider {
				return true
			}
		}
		return false
	})

	// Onboarding step validation: steps of the onboarding flow
	validate.RegisterValidation("onboarding_step", func(fl validator.FieldLevel) bool {
		step := fl.Field().String()
		validSteps := []string{"welcome", "profile", "integrations", "preferences", "completed"}
		for _, validStep := range validSteps {
			if step == validStep {
				return true
			}
		}
		return false
	})
}

// Helper validation functions

// IsValidEmail checks if an email is valid
func IsValidEmail(email string) bool {
	v := New()
	return v.ValidateVar(email, "required,email") == nil
}

// IsValidAuthProvider checks if a provider name is known
func IsValidAuthProvider(provider string) bool {
	v := New()
	return v.ValidateVar(provider, "required,auth_provider") == nil
}

// Common validation tags constants
const (
	TagRequired       = "required"
	TagEmail          = "email"
	TagAuthProvider   = "auth_provider"
	TagOnboardingStep = "onboarding_step"
	TagMin            = "min"
	TagMax            = "max"
)
