package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/service"
	"github.com/berea-app/berea-api/internal/utils"
)

// ContentHandler exposes passage and resource endpoints.
type ContentHandler struct {
	content service.ContentService
	logger  zerolog.Logger
}

// NewContentHandler constructs the content handler.
func NewContentHandler(content service.ContentService, logger zerolog.Logger) *ContentHandler {
	return &ContentHandler{content: content, logger: logger.With().Str("component", "content_handler").Logger()}
}

// AddPassage attaches a scripture passage to a session, leader only.
func (h *ContentHandler) AddPassage(c *fiber.Ctx) error {
	var req dto.AddPassageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.content.AddPassage(c.UserContext(), userIDFromContext(c), c.Params("id"), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "passage added", response)
}

// RemovePassage removes a passage, leader only.
func (h *ContentHandler) RemovePassage(c *fiber.Ctx) error {
	if err := h.content.RemovePassage(c.UserContext(), userIDFromContext(c), c.Params("passageId")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "passage removed", nil)
}

// ListPassages returns a session's passages in reading order.
func (h *ContentHandler) ListPassages(c *fiber.Ctx) error {
	response, err := h.content.ListPassages(c.UserContext(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "passages", response)
}

// AddResource attaches a study material reference, leader only.
func (h *ContentHandler) AddResource(c *fiber.Ctx) error {
	var req dto.AddResourceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.content.AddResource(c.UserContext(), userIDFromContext(c), c.Params("id"), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "resource added", response)
}

// RemoveResource removes a resource, leader only.
func (h *ContentHandler) RemoveResource(c *fiber.Ctx) error {
	if err := h.content.RemoveResource(c.UserContext(), userIDFromContext(c), c.Params("resourceId")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "resource removed", nil)
}

// ListResources returns a session's resources.
func (h *ContentHandler) ListResources(c *fiber.Ctx) error {
	response, err := h.content.ListResources(c.UserContext(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "resources", response)
}
