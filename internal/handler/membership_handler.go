package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/service"
	"github.com/berea-app/berea-api/internal/utils"
)

// MembershipHandler exposes join/leave and invite endpoints.
type MembershipHandler struct {
	membership service.MembershipService
	logger     zerolog.Logger
}

// NewMembershipHandler constructs the membership handler.
func NewMembershipHandler(membership service.MembershipService, logger zerolog.Logger) *MembershipHandler {
	return &MembershipHandler{membership: membership, logger: logger.With().Str("component", "membership_handler").Logger()}
}

// Join adds the caller to a session directly.
func (h *MembershipHandler) Join(c *fiber.Ctx) error {
	response, err := h.membership.Join(c.UserContext(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "joined session", response)
}

// JoinByCode joins via a shareable code and fans out across the series.
func (h *MembershipHandler) JoinByCode(c *fiber.Ctx) error {
	var req dto.JoinByCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.membership.JoinByCode(c.UserContext(), userIDFromContext(c), req.JoinCode)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "joined by code", response)
}

// Leave removes the caller from a session.
func (h *MembershipHandler) Leave(c *fiber.Ctx) error {
	if err := h.membership.Leave(c.UserContext(), userIDFromContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "left session", nil)
}

// Invite creates a join request for a private session, leader only.
func (h *MembershipHandler) Invite(c *fiber.Ctx) error {
	var req dto.CreateJoinRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.membership.Invite(c.UserContext(), userIDFromContext(c), c.Params("id"), req.ToID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "invitation sent", response)
}

// Respond accepts or rejects an invite addressed to the caller.
func (h *MembershipHandler) Respond(c *fiber.Ctx) error {
	var req dto.RespondJoinRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.membership.Respond(c.UserContext(), userIDFromContext(c), c.Params("id"), req.Status)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "invitation updated", response)
}

// ListMyInvites returns invites addressed to the caller.
func (h *MembershipHandler) ListMyInvites(c *fiber.Ctx) error {
	response, err := h.membership.ListMyInvites(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "invitations", response)
}

// ListSessionInvites returns a session's invites, leader only.
func (h *MembershipHandler) ListSessionInvites(c *fiber.Ctx) error {
	response, err := h.membership.ListSessionInvites(c.UserContext(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}
	return utils.SendSuccess(c, "invitations", response)
}
