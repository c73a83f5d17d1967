package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/handler"
	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/service"
)

type mockMembershipService struct {
	lastCode   string
	joinByCode dto.JoinByCodeResponse
	err        error
}

func (m *mockMembershipService) Join(_ context.Context, userID, sessionID string) (dto.ParticipantResponse, error) {
	return dto.ParticipantResponse{SessionID: sessionID, UserID: userID}, m.err
}

func (m *mockMembershipService) JoinByCode(_ context.Context, _ string, code string) (dto.JoinByCodeResponse, error) {
	m.lastCode = code
	return m.joinByCode, m.err
}

func (m *mockMembershipService) Leave(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockMembershipService) Invite(_ context.Context, _, _, _ string) (dto.JoinRequestResponse, error) {
	return dto.JoinRequestResponse{}, m.err
}

func (m *mockMembershipService) Respond(_ context.Context, _, _, _ string) (dto.JoinRequestResponse, error) {
	return dto.JoinRequestResponse{}, m.err
}

func (m *mockMembershipService) ListMyInvites(_ context.Context, _ string) ([]dto.JoinRequestResponse, error) {
	return nil, m.err
}

func (m *mockMembershipService) ListSessionInvites(_ context.Context, _, _ string) ([]dto.JoinRequestResponse, error) {
	return nil, m.err
}

func newMembershipApp(svc service.MembershipService) *fiber.App {
	app := newTestApp("user-1", models.RoleMember)
	h := handler.NewMembershipHandler(svc, zerolog.Nop())
	app.Post("/sessions/join-by-code", h.JoinByCode)
	app.Post("/sessions/:id/join", h.Join)
	app.Delete("/sessions/:id/join", h.Leave)
	return app
}

func TestMembershipHandler_JoinByCode(t *testing.T) {
	svc := &mockMembershipService{joinByCode: dto.JoinByCodeResponse{
		Session:             dto.SessionResponse{ID: "s-1"},
		TotalSessionsJoined: 3,
	}}
	app := newMembershipApp(svc)

	req := jsonRequest(t, http.MethodPost, "/sessions/join-by-code", dto.JoinByCodeRequest{JoinCode: "ABC123"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "ABC123", svc.lastCode)

	var body struct {
		Success bool                   `json:"success"`
		Data    dto.JoinByCodeResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, 3, body.Data.TotalSessionsJoined)
}

func TestMembershipHandler_JoinByCodeUnknown(t *testing.T) {
	svc := &mockMembershipService{err: service.ErrInvalidJoinCode}
	app := newMembershipApp(svc)

	req := jsonRequest(t, http.MethodPost, "/sessions/join-by-code", dto.JoinByCodeRequest{JoinCode: "NOPE99"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestMembershipHandler_JoinConflict(t *testing.T) {
	svc := &mockMembershipService{err: service.ErrAlreadyJoined}
	app := newMembershipApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/sessions/s-1/join", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestMembershipHandler_JoinPrivate(t *testing.T) {
	svc := &mockMembershipService{err: service.ErrPrivateSession}
	app := newMembershipApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/sessions/s-1/join", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
