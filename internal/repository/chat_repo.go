package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/models"
)

// ChatRepository persists session and group chat messages.
type ChatRepository interface {
	CreateSessionMessage(ctx context.Context, message *models.ChatMessage) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error)
	CreateGroupMessage(ctx context.Context, message *models.GroupChatMessage) error
	ListByGroup(ctx context.Context, groupID string, limit int) ([]models.GroupChatMessage, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository constructs a GORM-backed chat repository.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateSessionMessage(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *chatRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Limit(normalizeLimit(limit)).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatRepository) CreateGroupMessage(ctx context.Context, message *models.GroupChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *chatRepository) ListByGroup(ctx context.Context, groupID string, limit int) ([]models.GroupChatMessage, error) {
	var messages []models.GroupChatMessage
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Limit(normalizeLimit(limit)).
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
