package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/service"
	"github.com/berea-app/berea-api/internal/utils"
)

// PrayerHandler exposes prayer request endpoints.
type PrayerHandler struct {
	prayers service.PrayerService
	logger  zerolog.Logger
}

// NewPrayerHandler constructs the prayer handler.
func NewPrayerHandler(prayers service.PrayerService, logger zerolog.Logger) *PrayerHandler {
	return &PrayerHandler{prayers: prayers, logger: logger.With().Str("component", "prayer_handler").Logger()}
}

// Create posts a prayer request, optionally anonymous.
func (h *PrayerHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePrayerRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.prayers.Create(c.UserContext(), userIDFromContext(c), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "prayer request created", response)
}

// Get returns one prayer request with its reactions.
func (h *PrayerHandler) Get(c *fiber.Ctx) error {
	response, err := h.prayers.Get(c.UserContext(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "prayer request", response)
}

// Delete removes the caller's own prayer request.
func (h *PrayerHandler) Delete(c *fiber.Ctx) error {
	if err := h.prayers.Delete(c.UserContext(), userIDFromContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "prayer request deleted", nil)
}

// List returns prayer requests, newest first.
func (h *PrayerHandler) List(c *fiber.Ctx) error {
	response, err := h.prayers.List(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "prayer requests", response)
}

// ToggleReaction adds or removes the caller's reaction.
func (h *PrayerHandler) ToggleReaction(c *fiber.Ctx) error {
	var req dto.TogglePrayerReactionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.prayers.ToggleReaction(c.UserContext(), userIDFromContext(c), c.Params("id"), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "reaction toggled", response)
}
