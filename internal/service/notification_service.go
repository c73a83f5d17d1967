package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/dto"
	"github.com/berea-app/berea-api/internal/models"
	"github.com/berea-app/berea-api/internal/realtime"
	"github.com/berea-app/berea-api/internal/repository"
)

// Notification type values.
const (
	NotificationJoinRequest     = "JOIN_REQUEST"
	NotificationRequestAccepted = "REQUEST_ACCEPTED"
	NotificationRequestRejected = "REQUEST_REJECTED"
	NotificationCommentReply    = "COMMENT_REPLY"
	NotificationGroupAssigned   = "GROUP_ASSIGNED"
)

// NotificationService stores durable notifications and streams them to the
// recipient's realtime topic.
type NotificationService interface {
	Publish(ctx context.Context, userID, notificationType, message string, data map[string]any) error
	List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]dto.NotificationResponse, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationService struct {
	repo   repository.NotificationRepository
	broker *realtime.Broker
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewNotificationService constructs the notification service.
func NewNotificationService(repo repository.NotificationRepository, broker *realtime.Broker, logger zerolog.Logger) NotificationService {
	return &notificationService{
		repo:   repo,
		broker: broker,
		tracer: otel.Tracer("github.com/berea-app/berea-api/internal/service/notification"),
		logger: logger.With().Str("component", "notification_service").Logger(),
	}
}

// Publish persists first, then broadcasts. A broadcast failure is logged and
// swallowed; the durable copy is the source of truth.
func (s *notificationService) Publish(ctx context.Context, userID, notificationType, message string, data map[string]any) error {
	ctx, span := s.tracer.Start(ctx, "notifications.publish", trace.WithAttributes(
		attribute.String("notification.type", notificationType),
	))
	defer span.End()

	notification := models.Notification{
		UserID:  userID,
		Type:    notificationType,
		Message: message,
		Data:    datatypes.JSONMap(data),
	}
	if err := s.repo.Create(ctx, &notification); err != nil {
		span.RecordError(err)
		return err
	}

	if s.broker != nil {
		payload := dto.NewNotificationResponse(notification)
		if err := s.broker.Publish(ctx, realtime.NotificationTopic(userID), payload); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to broadcast notification")
		}
	}
	return nil
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.repo.MarkRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}
