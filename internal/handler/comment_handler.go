package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/service"
	"github.com/berea-app/berea-api/internal/utils"
)

// CommentHandler exposes passage discussion endpoints.
type CommentHandler struct {
	comments service.CommentService
	logger   zerolog.Logger
}

// NewCommentHandler constructs the comment handler.
func NewCommentHandler(comments service.CommentService, logger zerolog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger.With().Str("component", "comment_handler").Logger()}
}

// Add posts a comment or a reply on a passage.
func (h *CommentHandler) Add(c *fiber.Ctx) error {
	var req dto.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.comments.Add(c.UserContext(), userIDFromContext(c), c.Params("id"), c.Params("passageId"), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "comment added", response)
}

// Update edits the caller's own comment.
func (h *CommentHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.comments.Update(c.UserContext(), userIDFromContext(c), c.Params("commentId"), req)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "comment updated", response)
}

// Delete removes a comment. Authors delete their own, session leaders any.
func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	if err := h.comments.Delete(c.UserContext(), userIDFromContext(c), c.Params("commentId")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "comment deleted", nil)
}

// Thread returns the passage's comment tree with authors resolved.
func (h *CommentHandler) Thread(c *fiber.Ctx) error {
	response, err := h.comments.Thread(c.UserContext(), userIDFromContext(c), c.Params("passageId"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "comments", response)
}

// SessionThread returns every comment tree in the session.
func (h *CommentHandler) SessionThread(c *fiber.Ctx) error {
	response, err := h.comments.SessionThread(c.UserContext(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "comments", response)
}
