package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/service"
	"github.com/berea-app/berea-api/internal/utils"
)

// SeriesHandler exposes study series endpoints.
type SeriesHandler struct {
	series service.SeriesService
	logger zerolog.Logger
}

// NewSeriesHandler constructs the series handler.
func NewSeriesHandler(series service.SeriesService, logger zerolog.Logger) *SeriesHandler {
	return &SeriesHandler{series: series, logger: logger.With().Str("component", "series_handler").Logger()}
}

// Create makes a new series led by the caller.
func (h *SeriesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSeriesRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.series.Create(c.UserContext(), userIDFromContext(c), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "series created", response)
}

// Get returns one series with its sessions.
func (h *SeriesHandler) Get(c *fiber.Ctx) error {
	response, err := h.series.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "series", response)
}

// Update applies partial updates, leader only.
func (h *SeriesHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateSeriesRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.series.Update(c.UserContext(), userIDFromContext(c), c.Params("id"), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "series updated", response)
}

// Delete removes a series, leader only. Sessions survive detached.
func (h *SeriesHandler) Delete(c *fiber.Ctx) error {
	if err := h.series.Delete(c.UserContext(), userIDFromContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "series deleted", nil)
}

// List returns every series on the platform.
func (h *SeriesHandler) List(c *fiber.Ctx) error {
	response, err := h.series.List(c.UserContext())
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "series", response)
}

// ListMine returns series led by the caller.
func (h *SeriesHandler) ListMine(c *fiber.Ctx) error {
	response, err := h.series.ListMine(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "series", response)
}
