package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/service"
	"github.com/berea-app/berea-api/internal/utils"
)

// GroupHandler exposes study group endpoints.
type GroupHandler struct {
	groups service.GroupService
	logger zerolog.Logger
}

// NewGroupHandler constructs the group handler.
func NewGroupHandler(groups service.GroupService, logger zerolog.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, logger: logger.With().Str("component", "group_handler").Logger()}
}

// Create makes a new group led by the caller.
func (h *GroupHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.groups.Create(c.UserContext(), userIDFromContext(c), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "group created", response)
}

// Get returns one group with members if the caller may see it.
func (h *GroupHandler) Get(c *fiber.Ctx) error {
	response, err := h.groups.Get(c.UserContext(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "group", response)
}

// Update applies partial updates, leader only.
func (h *GroupHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.groups.Update(c.UserContext(), userIDFromContext(c), c.Params("id"), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "group updated", response)
}

// Delete removes a group, leader only.
func (h *GroupHandler) Delete(c *fiber.Ctx) error {
	if err := h.groups.Delete(c.UserContext(), userIDFromContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "group deleted", nil)
}

// List returns groups visible to the caller.
func (h *GroupHandler) List(c *fiber.Ctx) error {
	response, err := h.groups.List(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "groups", response)
}

// ListPublic returns publicly visible groups.
func (h *GroupHandler) ListPublic(c *fiber.Ctx) error {
	response, err := h.groups.ListPublic(c.UserContext())
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "groups", response)
}

// ListMine returns groups the caller belongs to.
func (h *GroupHandler) ListMine(c *fiber.Ctx) error {
	response, err := h.groups.ListMine(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "groups", response)
}

// Join adds the caller to a public group.
func (h *GroupHandler) Join(c *fiber.Ctx) error {
	response, err := h.groups.Join(c.UserContext(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "joined group", response)
}

// AddMember adds a user to the group, leader only.
func (h *GroupHandler) AddMember(c *fiber.Ctx) error {
	var req dto.AddGroupMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.groups.AddMember(c.UserContext(), userIDFromContext(c), c.Params("id"), req.UserID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "member added", response)
}

// RemoveMember removes a user from the group.
func (h *GroupHandler) RemoveMember(c *fiber.Ctx) error {
	if err := h.groups.RemoveMember(c.UserContext(), userIDFromContext(c), c.Params("id"), c.Params("userId")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "member removed", nil)
}

// AssignToSession adds every current group member to a session.
func (h *GroupHandler) AssignToSession(c *fiber.Ctx) error {
	response, err := h.groups.AssignToSession(c.UserContext(), userIDFromContext(c), c.Params("id"), c.Params("sessionId"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "group assigned to session", response)
}

// AssignToSeries adds every current group member to all sessions in a series.
func (h *GroupHandler) AssignToSeries(c *fiber.Ctx) error {
	response, err := h.groups.AssignToSeries(c.UserContext(), userIDFromContext(c), c.Params("id"), c.Params("seriesId"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "group assigned to series", response)
}

// UnassignFromSession drops the group-session link. Seats already granted stay.
func (h *GroupHandler) UnassignFromSession(c *fiber.Ctx) error {
	if err := h.groups.UnassignFromSession(c.UserContext(), userIDFromContext(c), c.Params("id"), c.Params("sessionId")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "group unassigned from session", nil)
}

// UnassignFromSeries drops the group-series link. Seats already granted stay.
func (h *GroupHandler) UnassignFromSeries(c *fiber.Ctx) error {
	if err := h.groups.UnassignFromSeries(c.UserContext(), userIDFromContext(c), c.Params("id"), c.Params("seriesId")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "group unassigned from series", nil)
}
