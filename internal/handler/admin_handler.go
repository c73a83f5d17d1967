package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/service"
	"github.com/berea-app/berea-api/internal/utils"
)

// AdminHandler exposes administrative endpoints, mounted behind the ADMIN
// role check.
type AdminHandler struct {
	admin  service.AdminService
	logger zerolog.Logger
}

// NewAdminHandler constructs the admin handler.
func NewAdminHandler(admin service.AdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger.With().Str("component", "admin_handler").Logger()}
}

// ListUsers returns all accounts.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	response, err := h.admin.ListUsers(c.UserContext())
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "users", response)
}

// UpdateUserRole changes another user's role.
func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	var req dto.UpdateUserRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.admin.UpdateUserRole(c.UserContext(), userIDFromContext(c), c.Params("id"), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "role updated", response)
}

// DeleteUser removes another user's account.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	if err := h.admin.DeleteUser(c.UserContext(), userIDFromContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "user deleted", nil)
}

// ListSessions returns all sessions, join codes included.
func (h *AdminHandler) ListSessions(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	response, err := h.admin.ListSessions(c.UserContext(), limit, offset)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "sessions", response)
}

// DeleteSession removes a session regardless of ownership.
func (h *AdminHandler) DeleteSession(c *fiber.Ctx) error {
	if err := h.admin.DeleteSession(c.UserContext(), c.Params("id")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "session deleted", nil)
}

// ListGroups returns all groups.
func (h *AdminHandler) ListGroups(c *fiber.Ctx) error {
	response, err := h.admin.ListGroups(c.UserContext())
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "groups", response)
}

// DeleteGroup removes a group regardless of ownership.
func (h *AdminHandler) DeleteGroup(c *fiber.Ctx) error {
	if err := h.admin.DeleteGroup(c.UserContext(), c.Params("id")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "group deleted", nil)
}

// DeleteSeries removes a series regardless of ownership.
func (h *AdminHandler) DeleteSeries(c *fiber.Ctx) error {
	if err := h.admin.DeleteSeries(c.UserContext(), c.Params("id")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "series deleted", nil)
}

// Stats returns platform-wide counts, cached briefly.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	response, err := h.admin.Stats(c.UserContext())
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "stats", response)
}
