package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/handler"
	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/service"
)

type mockSessionService struct {
	lastCallerID string
	lastReq      dto.CreateSessionRequest
	response     dto.SessionResponse
	err          error
}

func (m *mockSessionService) Create(_ context.Context, leaderID string, req dto.CreateSessionRequest) (dto.SessionResponse, error) {
	m.lastCallerID = leaderID
	m.lastReq = req
	return m.response, m.err
}

func (m *mockSessionService) Get(_ context.Context, viewerID, _ string) (dto.SessionResponse, error) {
	m.lastCallerID = viewerID
	return m.response, m.err
}

func (m *mockSessionService) Update(_ context.Context, callerID, _ string, _ dto.UpdateSessionRequest) (dto.SessionResponse, error) {
	m.lastCallerID = callerID
	return m.response, m.err
}

func (m *mockSessionService) Delete(_ context.Context, callerID, _ string) error {
	m.lastCallerID = callerID
	return m.err
}

func (m *mockSessionService) List(_ context.Context, _ string, _, _ int) ([]dto.SessionResponse, error) {
	return []dto.SessionResponse{m.response}, m.err
}

func (m *mockSessionService) ListMine(_ context.Context, _ string, _, _ int) ([]dto.SessionResponse, error) {
	return []dto.SessionResponse{m.response}, m.err
}

func (m *mockSessionService) ListPublic(_ context.Context, _ string, _, _ int) ([]dto.SessionResponse, error) {
	return []dto.SessionResponse{m.response}, m.err
}

func (m *mockSessionService) RegenerateJoinCode(_ context.Context, callerID, _ string) (dto.SessionResponse, error) {
	m.lastCallerID = callerID
	return m.response, m.err
}

func (m *mockSessionService) Authorize(_ context.Context, _ string, _ models.Session) error {
	return m.err
}

func newSessionApp(svc service.SessionService) *fiber.App {
	app := newTestApp("user-1", models.RoleLeader)
	h := handler.NewSessionHandler(svc, zerolog.Nop())
	app.Post("/sessions", h.Create)
	app.Get("/sessions/mine", h.ListMine)
	app.Get("/sessions/:id", h.Get)
	app.Delete("/sessions/:id", h.Delete)
	return app
}

func TestSessionHandler_Create(t *testing.T) {
	svc := &mockSessionService{response: dto.SessionResponse{ID: "s-1", Title: "Romans 1", JoinCode: "ABC123"}}
	app := newSessionApp(svc)

	req := jsonRequest(t, http.MethodPost, "/sessions", dto.CreateSessionRequest{
		Title:     "Romans 1",
		StartDate: time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC),
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "user-1", svc.lastCallerID)
	require.Equal(t, "Romans 1", svc.lastReq.Title)

	var body struct {
		Success bool                `json:"success"`
		Data    dto.SessionResponse `json:"data"`
		Message string              `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "session created", body.Message)
	require.Equal(t, "ABC123", body.Data.JoinCode)
}

func TestSessionHandler_CreateInvalidBody(t *testing.T) {
	svc := &mockSessionService{}
	app := newSessionApp(svc)

	req := jsonRequest(t, http.MethodPost, "/sessions", nil)
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSessionHandler_GetForbidden(t *testing.T) {
	svc := &mockSessionService{err: service.ErrForbidden}
	app := newSessionApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/sessions/s-1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSessionHandler_GetNotFound(t *testing.T) {
	svc := &mockSessionService{err: service.ErrNotFound}
	app := newSessionApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/sessions/missing", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSessionHandler_ListMineBadLimit(t *testing.T) {
	svc := &mockSessionService{}
	app := newSessionApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/sessions/mine?limit=oops", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
