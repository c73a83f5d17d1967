package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/service"
	"github.com/berea-app/berea-api/internal/utils"
)

// AuthHandler exposes registration, login and profile endpoints.
type AuthHandler struct {
	auth   service.AuthService
	logger zerolog.Logger
}

// NewAuthHandler constructs the auth handler.
func NewAuthHandler(auth service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger.With().Str("component", "auth_handler").Logger()}
}

// Signup registers a new account.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.auth.Signup(c.UserContext(), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", response)
}

// Login exchanges credentials for a token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "logged in", response)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	response, err := h.auth.Profile(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "profile", response)
}

// UpdateMe applies partial profile updates.
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.auth.UpdateProfile(c.UserContext(), userIDFromContext(c), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "profile updated", response)
}

// ChangePassword rotates the caller's password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.auth.ChangePassword(c.UserContext(), userIDFromContext(c), req); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "password changed", nil)
}
