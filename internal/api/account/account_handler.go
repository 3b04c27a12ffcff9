package account

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-account-api/internal/api"
	"github.com/FACorreiaa/go-account-api/internal/types"
	"github.com/FACorreiaa/go-account-api/internal/validate"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	GetProfile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	DeleteAccount(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	accountService AccountService
	logger         *slog.Logger
}

// NewHandlerImpl creates a new account HandlerImpl instance.
func NewHandlerImpl(accountService AccountService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		accountService: accountService,
		logger:         logger,
	}
}

// identityFromContext resolves the identity set by the Authenticate
// middleware; handlers on protected routes can assume it is present.
func (h *HandlerImpl) identityFromContext(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := GetUserIDFromContext(r.Context())
	if !ok || userIDStr == "" {
		h.logger.ErrorContext(r.Context(), "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Not authenticated")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Invalid user ID format", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Not authenticated")
		return uuid.Nil, false
	}
	return userID, true
}

// Register godoc
// @Summary      Register a new account
// @Description  Creates a user record and returns it with a bearer token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Router       /auth/register [post]
func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Register"))

	var req types.RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	fieldErrors := validate.RegisterRules().Apply(map[string]*string{
		"name":     &req.Name,
		"email":    &req.Email,
		"password": &req.Password,
	})
	if len(fieldErrors) > 0 {
		api.ValidationErrorResponse(w, r, fieldErrors)
		return
	}

	payload, err := h.accountService.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			api.ErrorResponse(w, r, http.StatusConflict, "Email already registered")
			return
		}
		l.ErrorContext(ctx, "Registration failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to register user")
		return
	}

	api.SuccessResponse(w, r, http.StatusCreated, "User registered successfully", payload)
}

// Login godoc
// @Summary      Log in
// @Description  Verifies credentials and returns the user with a fresh bearer token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Router       /auth/login [post]
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	fieldErrors := validate.LoginRules().Apply(map[string]*string{
		"email":    &req.Email,
		"password": &req.Password,
	})
	if len(fieldErrors) > 0 {
		api.ValidationErrorResponse(w, r, fieldErrors)
		return
	}

	payload, err := h.accountService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrUnauthenticated) {
			// Same message for unknown email and wrong password.
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to log in")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Login successful", payload)
}

// GetProfile godoc
// @Summary      Get profile
// @Description  Returns the authenticated user's profile.
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Router       /auth/profile [get]
func (h *HandlerImpl) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetProfile"))

	userID, ok := h.identityFromContext(w, r)
	if !ok {
		return
	}

	user, err := h.accountService.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get profile", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve profile")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "", &types.ProfilePayload{User: user})
}

// UpdateProfile godoc
// @Summary      Update profile
// @Description  Mutates the supplied profile fields (name, email).
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Router       /auth/profile [put]
func (h *HandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateProfile"))

	userID, ok := h.identityFromContext(w, r)
	if !ok {
		return
	}

	var req types.UpdateProfileRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	fieldErrors := validate.UpdateProfileRules().Apply(map[string]*string{
		"name":  req.Name,
		"email": req.Email,
	})
	if len(fieldErrors) > 0 {
		api.ValidationErrorResponse(w, r, fieldErrors)
		return
	}

	user, err := h.accountService.UpdateProfile(ctx, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrConflict):
			api.ErrorResponse(w, r, http.StatusConflict, "Email already registered")
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
		default:
			l.ErrorContext(ctx, "Failed to update profile", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update profile")
		}
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Profile updated successfully", &types.ProfilePayload{User: user})
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Replaces the stored password hash after verifying the current password.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Router       /auth/change-password [put]
func (h *HandlerImpl) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "ChangePassword"))

	userID, ok := h.identityFromContext(w, r)
	if !ok {
		return
	}

	var req types.ChangePasswordRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	fieldErrors := validate.ChangePasswordRules().Apply(map[string]*string{
		"currentPassword": &req.CurrentPassword,
		"newPassword":     &req.NewPassword,
	})
	if len(fieldErrors) > 0 {
		api.ValidationErrorResponse(w, r, fieldErrors)
		return
	}

	err := h.accountService.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrUnauthenticated):
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Current password is incorrect")
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
		default:
			l.ErrorContext(ctx, "Failed to change password", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to change password")
		}
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Password changed successfully", nil)
}

// Logout godoc
// @Summary      Log out
// @Description  No server-side token invalidation; exists for symmetry and audit.
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *HandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.identityFromContext(w, r)
	if !ok {
		return
	}

	if err := h.accountService.Logout(ctx, userID); err != nil {
		h.logger.ErrorContext(ctx, "Logout failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to log out")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Logged out successfully", nil)
}

// DeleteAccount godoc
// @Summary      Delete account
// @Description  Removes the user record permanently. Irreversible.
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Router       /auth/profile [delete]
func (h *HandlerImpl) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "DeleteAccount"))

	userID, ok := h.identityFromContext(w, r)
	if !ok {
		return
	}

	if err := h.accountService.DeleteAccount(ctx, userID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete account", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete account")
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Account deleted successfully", nil)
}
