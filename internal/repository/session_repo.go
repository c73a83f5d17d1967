package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/models"
)

// SessionRepository persists study sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (models.Session, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Session, error)
	GetByJoinCode(ctx context.Context, code string) (models.Session, error)
	JoinCodeExists(ctx context.Context, code string) (bool, error)
	Update(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]models.Session, error)
	ListPublic(ctx context.Context, limit, offset int) ([]models.Session, error)
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Session, error)
	ListBySeries(ctx context.Context, seriesID string, excludeID string) ([]models.Session, error)
	Count(ctx context.Context) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository constructs a GORM-backed session repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (r *sessionRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Session, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var sessions []models.Session
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) GetByJoinCode(ctx context.Context, code string) (models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, "join_code = ?", code).Error; err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (r *sessionRepository) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Session{}).Where("join_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *sessionRepository) Update(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *sessionRepository) List(ctx context.Context, limit, offset int) ([]models.Session, error) {
	var sessions []models.Session
	if err := r.db.WithContext(ctx).
		Order("start_date DESC").
		Offset(normalizeOffset(offset)).
		Limit(normalizeLimit(limit)).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) ListPublic(ctx context.Context, limit, offset int) ([]models.Session, error) {
	var sessions []models.Session
	if err := r.db.WithContext(ctx).
		Where("visibility = ?", models.VisibilityPublic).
		Order("start_date DESC").
		Offset(normalizeOffset(offset)).
		Limit(normalizeLimit(limit)).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Session, error) {
	var sessions []models.Session
	if err := r.db.WithContext(ctx).
		Where("leader_id = ? OR id IN (?)", userID,
			r.db.Model(&models.SessionParticipant{}).Select("session_id").Where("user_id = ?", userID)).
		Order("start_date DESC").
		Offset(normalizeOffset(offset)).
		Limit(normalizeLimit(limit)).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) ListBySeries(ctx context.Context, seriesID string, excludeID string) ([]models.Session, error) {
	query := r.db.WithContext(ctx).Where("series_id = ?", seriesID)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var sessions []models.Session
	if err := query.Order("start_date ASC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Session{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
