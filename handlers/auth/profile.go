package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/naeemsabir/sopcraft-api/model"
	authutil "github.com/naeemsabir/sopcraft-api/utils/auth"
	"github.com/naeemsabir/sopcraft-api/utils/middleware"
	"github.com/naeemsabir/sopcraft-api/utils/response"
)

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	FullName string `json:"full_name,omitempty"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// GetProfile retrieves the current user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	return response.Success(c, toUserResponse(user))
}

// UpdateProfile updates the current user's profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.FullName != "" {
		if err := h.db.Model(&model.User{}).
			Where("id = ?", user.ID).
			UpdateColumn("full_name", req.FullName).Error; err != nil {
			return response.InternalServerError(c, "Failed to update profile")
		}
		user.FullName = req.FullName
	}

	return response.Success(c, toUserResponse(user))
}

// ChangePassword updates the user's password and invalidates existing tokens
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Old and new passwords are required")
	}

	// Verify current password
	if err := authutil.VerifyPassword(user.PasswordHash, req.OldPassword); err != nil {
		return response.Unauthorized(c, "Current password is incorrect")
	}

	if !authutil.IsPasswordValid(req.NewPassword) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	hashedPassword, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	if err := h.db.Model(&model.User{}).
		Where("id = ?", user.ID).
		UpdateColumn("password_hash", hashedPassword).Error; err != nil {
		return response.InternalServerError(c, "Failed to change password")
	}

	// Invalidate every outstanding token for this user
	if err := h.blacklistService.RevokeAllUserTokens(c.Context(), user.ID); err != nil {
		return response.InternalServerError(c, "Failed to invalidate sessions")
	}

	return response.Success(c, fiber.Map{
		"message": "Password changed successfully. Please log in again.",
	})
}
