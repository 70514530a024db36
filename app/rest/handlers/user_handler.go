package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"user-service/app/domain"
	"user-service/app/port"
	apperrors "user-service/app/utils/errors"
	"user-service/app/utils/validator"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// UserHandler handles user profile HTTP requests
type UserHandler struct {
	userUsecase port.UserUsecase
	validator   *validator.Validator
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userUsecase port.UserUsecase, validator *validator.Validator, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUsecase: userUsecase,
		validator:   validator,
		logger:      logger,
	}
}

// GetMe returns the profile of the authenticated user
// @Summary Get own profile
// @Description Get the profile belonging to the bearer token's subject
// @Tags user
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) GetMe(c echo.Context) error {
	ctx := c.Request().Context()

	principal, err := domain.UserFromContext(ctx)
	if err != nil {
		return err
	}

	user, err := h.userUsecase.GetUserByAuthID(ctx, principal.ExternalAuthID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// ResolveID resolves an email address to an external auth ID
// @Summary Resolve email to identity
// @Description Resolve an email address to the canonical identity owning it (service callers only)
// @Tags user
// @Produce json
// @Param email query string true "Email address"
// @Param provider query string false "Auth provider hint"
// @Success 200 {object} domain.EmailResolution
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /users/id [get]
func (h *UserHandler) ResolveID(c echo.Context) error {
	ctx := c.Request().Context()

	req := &domain.EmailResolutionRequest{
		Email:    c.QueryParam("email"),
		Provider: c.QueryParam("provider"),
	}
	if err := h.validator.Validate(req); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	resolution, err := h.userUsecase.ResolveEmail(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resolution)
}

// SearchUsers lists user profiles with filters and pagination
// @Summary Search users
// @Description List user profiles matching the filters
// @Tags user
// @Produce json
// @Param q query string false "Free text match on email or display name"
// @Param email query string false "Exact email match"
// @Param onboarding_completed query bool false "Onboarding state filter"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} domain.UserListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /users/search [get]
func (h *UserHandler) SearchUsers(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := domain.UserFromContext(ctx); err != nil {
		return err
	}

	req, err := h.parseSearchRequest(c)
	if err != nil {
		return err
	}

	resp, err := h.userUsecase.SearchUsers(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// GetUser returns a user profile by external auth ID
// @Summary Get user profile
// @Description Get a user profile; callers may only read their own
// @Tags user
// @Produce json
// @Param user_id path string true "External auth ID"
// @Success 200 {object} domain.User
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{user_id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()

	externalAuthID := c.Param("user_id")
	if err := h.authorizeOwner(ctx, externalAuthID); err != nil {
		return err
	}

	user, err := h.userUsecase.GetUserByAuthID(ctx, externalAuthID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateUser updates a user profile
// @Summary Update user profile
// @Description Update a user profile; callers may only update their own
// @Tags user
// @Accept json
// @Produce json
// @Param user_id path string true "External auth ID"
// @Param body body domain.UserUpdate true "Fields to update"
// @Success 200 {object} domain.User
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /users/{user_id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()

	externalAuthID := c.Param("user_id")
	if err := h.authorizeOwner(ctx, externalAuthID); err != nil {
		return err
	}

	var req domain.UserUpdate
	if err := c.Bind(&req); err != nil {
		return apperrors.NewValidationError("invalid request body")
	}
	if err := h.validator.Validate(&req); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	user, err := h.userUsecase.UpdateUser(ctx, externalAuthID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateOnboarding updates a user's onboarding progress
// @Summary Update onboarding state
// @Description Update onboarding progress; callers may only update their own
// @Tags user
// @Accept json
// @Produce json
// @Param user_id path string true "External auth ID"
// @Param body body domain.UserOnboardingUpdate true "Onboarding state"
// @Success 200 {object} domain.User
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /users/{user_id}/onboarding [put]
func (h *UserHandler) UpdateOnboarding(c echo.Context) error {
	ctx := c.Request().Context()

	externalAuthID := c.Param("user_id")
	if err := h.authorizeOwner(ctx, externalAuthID); err != nil {
		return err
	}

	var req domain.UserOnboardingUpdate
	if err := c.Bind(&req); err != nil {
		return apperrors.NewValidationError("invalid request body")
	}
	if err := h.validator.Validate(&req); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	user, err := h.userUsecase.UpdateOnboarding(ctx, externalAuthID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// DeleteUser soft-deletes a user profile
// @Summary Delete user profile
// @Description Delete a user profile; callers may only delete their own
// @Tags user
// @Produce json
// @Param user_id path string true "External auth ID"
// @Success 200 {object} domain.UserDeleteResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{user_id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()

	externalAuthID := c.Param("user_id")
	if err := h.authorizeOwner(ctx, externalAuthID); err != nil {
		return err
	}

	resp, err := h.userUsecase.DeleteUser(ctx, externalAuthID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// CreateUser provisions a user identity (service callers only)
// @Summary Provision user
// @Description Create a user identity, or return the existing one for the same auth ID
// @Tags user
// @Accept json
// @Produce json
// @Param body body domain.UserCreate true "Identity to provision"
// @Success 200 {object} domain.User "Identity already existed"
// @Success 201 {object} domain.User "Identity created"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /users/ [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()

	service, err := domain.ServiceFromContext(ctx)
	if err != nil {
		return err
	}

	var req domain.UserCreate
	if err := c.Bind(&req); err != nil {
		return apperrors.NewValidationError("invalid request body")
	}
	if err := h.validator.Validate(&req); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	user, created, err := h.userUsecase.CreateOrUpsertUser(ctx, &req)
	if err != nil {
		return err
	}

	h.logger.Info("user provisioning request handled",
		"service", service.ServiceName,
		"external_auth_id", req.ExternalAuthID,
		"created", created)

	if created {
		return c.JSON(http.StatusCreated, user)
	}
	return c.JSON(http.StatusOK, user)
}

// authorizeOwner enforces the owner-only access rule for profile routes.
func (h *UserHandler) authorizeOwner(ctx context.Context, externalAuthID string) error {
	principal, err := domain.PrincipalFromContext(ctx)
	if err != nil {
		return err
	}
	return domain.AuthorizeOwner(principal, externalAuthID)
}

// parseSearchRequest builds a search request from query parameters,
// rejecting out-of-range pagination instead of clamping it.
func (h *UserHandler) parseSearchRequest(c echo.Context) (*domain.UserSearchRequest, error) {
	req := &domain.UserSearchRequest{
		Query:    c.QueryParam("q"),
		Email:    c.QueryParam("email"),
		Page:     1,
		PageSize: defaultPageSize,
	}

	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.NewValidationError("page must be an integer")
		}
		req.Page = page
	}
	if raw := c.QueryParam("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperrors.NewValidationError("page_size must be an integer")
		}
		req.PageSize = size
	}
	if raw := c.QueryParam("onboarding_completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperrors.NewValidationError("onboarding_completed must be a boolean")
		}
		req.OnboardingCompleted = &completed
	}

	if err := h.validator.Validate(req); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	return req, nil
}
