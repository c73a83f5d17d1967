package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea-api/internal/realtime"
	"github.com/berea-app/berea-api/internal/service"
)

const (
	streamWriteWait    = 10 * time.Second
	streamPingInterval = 30 * time.Second
)

// StreamHandler upgrades HTTP requests to websocket streams fed by the
// realtime broker. Each endpoint authorizes the caller against the entity
// before subscribing, so the stream never leaks events the REST surface
// would refuse to serve.
type StreamHandler struct {
	broker   *realtime.Broker
	chat     service.ChatService
	comments service.CommentService
	logger   zerolog.Logger
}

// NewStreamHandler constructs the stream handler.
func NewStreamHandler(broker *realtime.Broker, chat service.ChatService, comments service.CommentService, logger zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		broker:   broker,
		chat:     chat,
		comments: comments,
		logger:   logger.With().Str("component", "stream_handler").Logger(),
	}
}

// Upgrade gates websocket routes: non-upgrade requests get 426 and upgrade
// requests carry their context into the connection's locals.
func (h *StreamHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	c.Locals("stream_ctx", ctx)
	return c.Next()
}

// SessionChat streams chat messages for one session room.
func (h *StreamHandler) SessionChat() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		h.serve(conn, "id", func(ctx context.Context, userID, sessionID string) (string, error) {
			if err := h.chat.AuthorizeSessionRoom(ctx, userID, sessionID); err != nil {
				return "", err
			}
			return realtime.ChatMessageAddedTopic(sessionID), nil
		})
	})
}

// GroupChat streams chat messages for one group room.
func (h *StreamHandler) GroupChat() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		h.serve(conn, "id", func(ctx context.Context, userID, groupID string) (string, error) {
			if err := h.chat.AuthorizeGroupRoom(ctx, userID, groupID); err != nil {
				return "", err
			}
			return realtime.GroupChatMessageAddedTopic(groupID), nil
		})
	})
}

// Comments streams new comments for one session, across all its passages.
func (h *StreamHandler) Comments() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		h.serve(conn, "id", func(ctx context.Context, userID, sessionID string) (string, error) {
			if err := h.comments.AuthorizeStream(ctx, userID, sessionID); err != nil {
				return "", err
			}
			return realtime.CommentAddedTopic(sessionID), nil
		})
	})
}

// Notifications streams the caller's own notifications; no entity param, the
// topic is derived from the authenticated user.
func (h *StreamHandler) Notifications() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		h.serve(conn, "", func(ctx context.Context, userID, _ string) (string, error) {
			return realtime.NotificationTopic(userID), nil
		})
	})
}

// serve runs a single websocket stream: authorize, subscribe, then pump
// broker messages to the peer until either side goes away.
func (h *StreamHandler) serve(conn *websocket.Conn, param string, topicFor func(ctx context.Context, userID, entityID string) (string, error)) {
	defer func() {
		_ = conn.Close()
	}()

	userID := websocketUserID(conn)
	if userID == "" {
		h.closeWith(conn, websocket.ClosePolicyViolation, "unauthenticated")
		return
	}

	entityID := ""
	if param != "" {
		entityID = strings.TrimSpace(conn.Params(param))
		if entityID == "" {
			h.closeWith(conn, websocket.CloseUnsupportedData, param+" required")
			return
		}
	}

	ctx, _ := conn.Locals("stream_ctx").(context.Context)
	if ctx == nil {
		ctx = context.Background()
	}

	topic, err := topicFor(ctx, userID, entityID)
	if err != nil {
		h.logger.Debug().Err(err).Str("user_id", userID).Msg("stream authorization refused")
		h.closeWith(conn, websocket.ClosePolicyViolation, "forbidden")
		return
	}

	sub := h.broker.Subscribe(topic)
	defer sub.Close()

	h.logger.Info().Str("user_id", userID).Str("topic", topic).Msg("stream connected")
	defer h.logger.Info().Str("user_id", userID).Str("topic", topic).Msg("stream disconnected")

	// Reader only exists to observe the close handshake; inbound frames are
	// ignored, the stream is one-way.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-sub.C:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *StreamHandler) closeWith(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}

func websocketUserID(conn *websocket.Conn) string {
	if value, ok := conn.Locals("user_id").(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}
