package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/models"
)

// PassageRepository persists scripture passages attached to sessions.
type PassageRepository interface {
	Create(ctx context.Context, passage *models.ScripturePassage) error
	GetByID(ctx context.Context, id string) (models.ScripturePassage, error)
	Delete(ctx context.Context, id string) error
	ListBySession(ctx context.Context, sessionID string) ([]models.ScripturePassage, error)
}

type passageRepository struct {
	db *gorm.DB
}

// NewPassageRepository constructs a GORM-backed passage repository.
func NewPassageRepository(db *gorm.DB) PassageRepository {
	return &passageRepository{db: db}
}

func (r *passageRepository) Create(ctx context.Context, passage *models.ScripturePassage) error {
	return r.db.WithContext(ctx).Create(passage).Error
}

func (r *passageRepository) GetByID(ctx context.Context, id string) (models.ScripturePassage, error) {
	var passage models.ScripturePassage
	if err := r.db.WithContext(ctx).First(&passage, "id = ?", id).Error; err != nil {
		return models.ScripturePassage{}, err
	}
	return passage, nil
}

func (r *passageRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.ScripturePassage{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *passageRepository) ListBySession(ctx context.Context, sessionID string) ([]models.ScripturePassage, error) {
	var passages []models.ScripturePassage
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("sort_order ASC").
		Find(&passages).Error; err != nil {
		return nil, err
	}
	return passages, nil
}
