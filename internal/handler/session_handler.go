package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/service"
	"github.com/berea-app/berea-api/internal/utils"
)

// SessionHandler exposes study session endpoints.
type SessionHandler struct {
	sessions service.SessionService
	logger   zerolog.Logger
}

// NewSessionHandler constructs the session handler.
func NewSessionHandler(sessions service.SessionService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger.With().Str("component", "session_handler").Logger()}
}

// Create makes a new session led by the caller.
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.sessions.Create(c.UserContext(), userIDFromContext(c), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session created", response)
}

// Get returns one session if the caller may see it.
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	response, err := h.sessions.Get(c.UserContext(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "session", response)
}

// Update applies partial updates, leader only.
func (h *SessionHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.sessions.Update(c.UserContext(), userIDFromContext(c), c.Params("id"), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "session updated", response)
}

// Delete removes a session, leader only.
func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	if err := h.sessions.Delete(c.UserContext(), userIDFromContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "session deleted", nil)
}

// List returns all sessions, paginated. Join codes stay hidden except on
// sessions the caller leads.
func (h *SessionHandler) List(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	response, err := h.sessions.List(c.UserContext(), userIDFromContext(c), limit, offset)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "sessions", response)
}

// ListMine returns sessions the caller leads or participates in.
func (h *SessionHandler) ListMine(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	response, err := h.sessions.ListMine(c.UserContext(), userIDFromContext(c), limit, offset)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "sessions", response)
}

// ListPublic returns publicly visible sessions.
func (h *SessionHandler) ListPublic(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	response, err := h.sessions.ListPublic(c.UserContext(), userIDFromContext(c), limit, offset)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "sessions", response)
}

// RegenerateJoinCode mints a fresh join code, invalidating the old one.
func (h *SessionHandler) RegenerateJoinCode(c *fiber.Ctx) error {
	response, err := h.sessions.RegenerateJoinCode(c.UserContext(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "join code regenerated", response)
}
