package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/models"
)

// PrayerRepository persists prayer requests and their reactions.
type PrayerRepository interface {
	Create(ctx context.Context, request *models.PrayerRequest) error
	GetByID(ctx context.Context, id string) (models.PrayerRequest, error)
	GetWithReactions(ctx context.Context, id string) (models.PrayerRequest, error)
	Update(ctx context.Context, request *models.PrayerRequest) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.PrayerRequest, error)

	GetReaction(ctx context.Context, requestID, userID, reactionType string) (models.PrayerReaction, error)
	CreateReaction(ctx context.Context, reaction *models.PrayerReaction) error
	DeleteReaction(ctx context.Context, id string) error
	ListReactions(ctx context.Context, requestID string) ([]models.PrayerReaction, error)
	CountReactions(ctx context.Context, requestID, reactionType string) (int64, error)
}

type prayerRepository struct {
	db *gorm.DB
}

// NewPrayerRepository constructs a GORM-backed prayer repository.
func NewPrayerRepository(db *gorm.DB) PrayerRepository {
	return &prayerRepository{db: db}
}

func (r *prayerRepository) Create(ctx context.Context, request *models.PrayerRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *prayerRepository) GetByID(ctx context.Context, id string) (models.PrayerRequest, error) {
	var request models.PrayerRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return models.PrayerRequest{}, err
	}
	return request, nil
}

func (r *prayerRepository) GetWithReactions(ctx context.Context, id string) (models.PrayerRequest, error) {
	var request models.PrayerRequest
	if err := r.db.WithContext(ctx).
		Preload("Reactions").
		First(&request, "id = ?", id).Error; err != nil {
		return models.PrayerRequest{}, err
	}
	return request, nil
}

func (r *prayerRepository) Update(ctx context.Context, request *models.PrayerRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *prayerRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.PrayerRequest{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *prayerRepository) List(ctx context.Context) ([]models.PrayerRequest, error) {
	var requests []models.PrayerRequest
	if err := r.db.WithContext(ctx).
		Preload("Reactions").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *prayerRepository) GetReaction(ctx context.Context, requestID, userID, reactionType string) (models.PrayerReaction, error) {
	var reaction models.PrayerReaction
	if err := r.db.WithContext(ctx).
		First(&reaction, "prayer_request_id = ? AND user_id = ? AND reaction_type = ?", requestID, userID, reactionType).Error; err != nil {
		return models.PrayerReaction{}, err
	}
	return reaction, nil
}

func (r *prayerRepository) CreateReaction(ctx context.Context, reaction *models.PrayerReaction) error {
	return r.db.WithContext(ctx).Create(reaction).Error
}

func (r *prayerRepository) DeleteReaction(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.PrayerReaction{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *prayerRepository) ListReactions(ctx context.Context, requestID string) ([]models.PrayerReaction, error) {
	var reactions []models.PrayerReaction
	if err := r.db.WithContext(ctx).
		Where("prayer_request_id = ?", requestID).
		Order("created_at ASC").
		Find(&reactions).Error; err != nil {
		return nil, err
	}
	return reactions, nil
}

func (r *prayerRepository) CountReactions(ctx context.Context, requestID, reactionType string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PrayerReaction{}).
		Where("prayer_request_id = ? AND reaction_type = ?", requestID, reactionType).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
