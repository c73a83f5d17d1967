package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/service"
	"github.com/berea-app/berea-api/internal/utils"
)

// ChatHandler exposes the REST side of chat: sending and history. Live
// delivery happens over the websocket stream endpoints.
type ChatHandler struct {
	chat   service.ChatService
	logger zerolog.Logger
}

// NewChatHandler constructs the chat handler.
func NewChatHandler(chat service.ChatService, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger.With().Str("component", "chat_handler").Logger()}
}

// SendToSession posts a message to a session room.
func (h *ChatHandler) SendToSession(c *fiber.Ctx) error {
	var req dto.SendChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.chat.SendToSession(c.UserContext(), userIDFromContext(c), c.Params("id"), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message sent", response)
}

// SessionHistory returns a session room's recent messages.
func (h *ChatHandler) SessionHistory(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	response, err := h.chat.SessionHistory(c.UserContext(), userIDFromContext(c), c.Params("id"), limit)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "chat history", response)
}

// SendToGroup posts a message to a group room.
func (h *ChatHandler) SendToGroup(c *fiber.Ctx) error {
	var req dto.SendChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.chat.SendToGroup(c.UserContext(), userIDFromContext(c), c.Params("id"), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message sent", response)
}

// GroupHistory returns a group room's recent messages.
func (h *ChatHandler) GroupHistory(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	response, err := h.chat.GroupHistory(c.UserContext(), userIDFromContext(c), c.Params("id"), limit)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "chat history", response)
}
