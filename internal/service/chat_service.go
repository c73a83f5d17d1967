package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/observability"
	"github.com/berea-app/berea-api/internal/realtime"
	"github.com/berea-app/berea-api/internal/repository"
)

// ChatService persists live chat messages and broadcasts them on the room's
// realtime topic. Session rooms admit the leader and participants; group
// rooms admit group members.
type ChatService interface {
	SendToSession(ctx context.Context, userID, sessionID string, req dto.SendChatMessageRequest) (dto.ChatMessageResponse, error)
	SessionHistory(ctx context.Context, viewerID, sessionID string, limit int) ([]dto.ChatMessageResponse, error)
	SendToGroup(ctx context.Context, userID, groupID string, req dto.SendChatMessageRequest) (dto.GroupChatMessageResponse, error)
	GroupHistory(ctx context.Context, viewerID, groupID string, limit int) ([]dto.GroupChatMessageResponse, error)

	// Room authorization for the websocket upgrade path.
	AuthorizeSessionRoom(ctx context.Context, userID, sessionID string) error
	AuthorizeGroupRoom(ctx context.Context, userID, groupID string) error
}

type chatService struct {
	chats        repository.ChatRepository
	sessions     repository.SessionRepository
	participants repository.ParticipantRepository
	groups       repository.GroupRepository
	broker       *realtime.Broker
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	logger       zerolog.Logger
}

// NewChatService constructs the chat service.
func NewChatService(
	chats repository.ChatRepository,
	sessions repository.SessionRepository,
	participants repository.ParticipantRepository,
	groups repository.GroupRepository,
	broker *realtime.Broker,
	validate *validator.Validate,
	logger zerolog.Logger,
) ChatService {
	sanitizer := bluemonday.UGCPolicy()
	sanitizer.AllowElements("br")

	return &chatService{
		chats:        chats,
		sessions:     sessions,
		participants: participants,
		groups:       groups,
		broker:       broker,
		validator:    validate,
		sanitizer:    sanitizer,
		logger:       logger.With().Str("component", "chat_service").Logger(),
	}
}

func (s *chatService) SendToSession(ctx context.Context, userID, sessionID string, req dto.SendChatMessageRequest) (dto.ChatMessageResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ChatMessageResponse{}, err
	}
	if err := s.authorizeSessionRoom(ctx, userID, sessionID); err != nil {
		return dto.ChatMessageResponse{}, err
	}

	clean, err := s.clean(req.Message)
	if err != nil {
		return dto.ChatMessageResponse{}, err
	}

	message := models.ChatMessage{SessionID: sessionID, UserID: userID, Message: clean}
	if err := s.chats.CreateSessionMessage(ctx, &message); err != nil {
		return dto.ChatMessageResponse{}, err
	}
	observability.ChatMessagesSent().WithLabelValues("session").Inc()

	response := dto.NewChatMessageResponse(message)
	if s.broker != nil {
		if err := s.broker.Publish(ctx, realtime.ChatMessageAddedTopic(sessionID), response); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to broadcast chat message")
		}
	}
	return response, nil
}

func (s *chatService) SessionHistory(ctx context.Context, viewerID, sessionID string, limit int) ([]dto.ChatMessageResponse, error) {
	if err := s.authorizeSessionRoom(ctx, viewerID, sessionID); err != nil {
		return nil, err
	}
	messages, err := s.chats.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewChatMessageResponseSlice(messages), nil
}

func (s *chatService) SendToGroup(ctx context.Context, userID, groupID string, req dto.SendChatMessageRequest) (dto.GroupChatMessageResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.GroupChatMessageResponse{}, err
	}
	if err := s.authorizeGroupRoom(ctx, userID, groupID); err != nil {
		return dto.GroupChatMessageResponse{}, err
	}

	clean, err := s.clean(req.Message)
	if err != nil {
		return dto.GroupChatMessageResponse{}, err
	}

	message := models.GroupChatMessage{GroupID: groupID, UserID: userID, Message: clean}
	if err := s.chats.CreateGroupMessage(ctx, &message); err != nil {
		return dto.GroupChatMessageResponse{}, err
	}
	observability.ChatMessagesSent().WithLabelValues("group").Inc()

	response := dto.NewGroupChatMessageResponse(message)
	if s.broker != nil {
		if err := s.broker.Publish(ctx, realtime.GroupChatMessageAddedTopic(groupID), response); err != nil {
			s.logger.Warn().Err(err).Str("group_id", groupID).Msg("failed to broadcast group chat message")
		}
	}
	return response, nil
}

func (s *chatService) GroupHistory(ctx context.Context, viewerID, groupID string, limit int) ([]dto.GroupChatMessageResponse, error) {
	if err := s.authorizeGroupRoom(ctx, viewerID, groupID); err != nil {
		return nil, err
	}
	messages, err := s.chats.ListByGroup(ctx, groupID, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewGroupChatMessageResponseSlice(messages), nil
}

func (s *chatService) AuthorizeSessionRoom(ctx context.Context, userID, sessionID string) error {
	return s.authorizeSessionRoom(ctx, userID, sessionID)
}

func (s *chatService) AuthorizeGroupRoom(ctx context.Context, userID, groupID string) error {
	return s.authorizeGroupRoom(ctx, userID, groupID)
}

func (s *chatService) authorizeSessionRoom(ctx context.Context, userID, sessionID string) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if session.LeaderID == userID {
		return nil
	}
	member, err := s.participants.Exists(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrForbidden
	}
	return nil
}

func (s *chatService) authorizeGroupRoom(ctx context.Context, userID, groupID string) error {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if group.LeaderID == userID {
		return nil
	}
	member, err := s.groups.MemberExists(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrForbidden
	}
	return nil
}

func (s *chatService) clean(message string) (string, error) {
	clean := strings.TrimSpace(s.sanitizer.Sanitize(message))
	if clean == "" {
		return "", fmt.Errorf("message content empty after sanitization")
	}
	return clean, nil
}
