package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/models"
)

// ResourceRepository persists session resource references.
type ResourceRepository interface {
	Create(ctx context.Context, resource *models.SessionResource) error
	GetByID(ctx context.Context, id string) (models.SessionResource, error)
	Delete(ctx context.Context, id string) error
	ListBySession(ctx context.Context, sessionID string) ([]models.SessionResource, error)
}

type resourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository constructs a GORM-backed resource repository.
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(ctx context.Context, resource *models.SessionResource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *resourceRepository) GetByID(ctx context.Context, id string) (models.SessionResource, error) {
	var resource models.SessionResource
	if err := r.db.WithContext(ctx).First(&resource, "id = ?", id).Error; err != nil {
		return models.SessionResource{}, err
	}
	return resource, nil
}

func (r *resourceRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.SessionResource{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *resourceRepository) ListBySession(ctx context.Context, sessionID string) ([]models.SessionResource, error) {
	var resources []models.SessionResource
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}
