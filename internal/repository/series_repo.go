package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/models"
)

// SeriesRepository persists study series.
type SeriesRepository interface {
	Create(ctx context.Context, series *models.Series) error
	GetByID(ctx context.Context, id string) (models.Series, error)
	Update(ctx context.Context, series *models.Series) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Series, error)
	ListForUser(ctx context.Context, userID string) ([]models.Series, error)
}

type seriesRepository struct {
	db *gorm.DB
}

// NewSeriesRepository constructs a GORM-backed series repository.
func NewSeriesRepository(db *gorm.DB) SeriesRepository {
	return &seriesRepository{db: db}
}

func (r *seriesRepository) Create(ctx context.Context, series *models.Series) error {
	return r.db.WithContext(ctx).Create(series).Error
}

func (r *seriesRepository) GetByID(ctx context.Context, id string) (models.Series, error) {
	var series models.Series
	if err := r.db.WithContext(ctx).First(&series, "id = ?", id).Error; err != nil {
		return models.Series{}, err
	}
	return series, nil
}

func (r *seriesRepository) Update(ctx context.Context, series *models.Series) error {
	return r.db.WithContext(ctx).Save(series).Error
}

func (r *seriesRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Series{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *seriesRepository) List(ctx context.Context) ([]models.Series, error) {
	var series []models.Series
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&series).Error; err != nil {
		return nil, err
	}
	return series, nil
}

// ListForUser returns series the user leads plus series where the user
// participates in at least one session.
func (r *seriesRepository) ListForUser(ctx context.Context, userID string) ([]models.Series, error) {
	participantSeries := r.db.Model(&models.Session{}).
		Select("series_id").
		Where("series_id IS NOT NULL").
		Where("id IN (?)", r.db.Model(&models.SessionParticipant{}).Select("session_id").Where("user_id = ?", userID))

	var series []models.Series
	if err := r.db.WithContext(ctx).
		Where("leader_id = ? OR id IN (?)", userID, participantSeries).
		Order("created_at DESC").
		Find(&series).Error; err != nil {
		return nil, err
	}
	return series, nil
}
