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

type mockNotificationService struct {
	lastUnreadOnly bool
	lastLimit      int
	markedAll      bool
	response       []dto.NotificationResponse
	count          int64
	err            error
}

func (m *mockNotificationService) Publish(_ context.Context, _, _, _ string, _ map[string]any) error {
	return m.err
}

func (m *mockNotificationService) List(_ context.Context, _ string, unreadOnly bool, limit int) ([]dto.NotificationResponse, error) {
	m.lastUnreadOnly = unreadOnly
	m.lastLimit = limit
	return m.response, m.err
}

func (m *mockNotificationService) UnreadCount(_ context.Context, _ string) (int64, error) {
	return m.count, m.err
}

func (m *mockNotificationService) MarkRead(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockNotificationService) MarkAllRead(_ context.Context, _ string) error {
	m.markedAll = true
	return m.err
}

func newNotificationApp(svc service.NotificationService) *fiber.App {
	app := newTestApp("user-1", models.RoleMember)
	h := handler.NewNotificationHandler(svc, zerolog.Nop())
	app.Get("/notifications", h.List)
	app.Get("/notifications/unread-count", h.UnreadCount)
	app.Post("/notifications/read-all", h.MarkAllRead)
	app.Post("/notifications/:id/read", h.MarkRead)
	return app
}

func TestNotificationHandler_ListUnreadOnly(t *testing.T) {
	svc := &mockNotificationService{response: []dto.NotificationResponse{{ID: "n-1", Message: "hello"}}}
	app := newNotificationApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/notifications?unread_only=true&limit=5", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, svc.lastUnreadOnly)
	require.Equal(t, 5, svc.lastLimit)

	var body struct {
		Data []dto.NotificationResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data, 1)
}

func TestNotificationHandler_UnreadCount(t *testing.T) {
	svc := &mockNotificationService{count: 7}
	app := newNotificationApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/notifications/unread-count", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Count int64 `json:"count"`
		} `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, int64(7), body.Data.Count)
}

func TestNotificationHandler_MarkReadNotFound(t *testing.T) {
	svc := &mockNotificationService{err: service.ErrNotFound}
	app := newNotificationApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/notifications/n-404/read", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestNotificationHandler_MarkAllRead(t *testing.T) {
	svc := &mockNotificationService{}
	app := newNotificationApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/notifications/read-all", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, svc.markedAll)
}
