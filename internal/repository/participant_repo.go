package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/berea-app/berea-api/internal/models"
)

// ParticipantRepository persists session membership rows and join requests.
type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.SessionParticipant) error
	CreateSkipDuplicates(ctx context.Context, participants []models.SessionParticipant) error
	Exists(ctx context.Context, sessionID, userID string) (bool, error)
	Delete(ctx context.Context, sessionID, userID string) error
	ListBySession(ctx context.Context, sessionID string) ([]models.SessionParticipant, error)
	DistinctUserIDsBySeries(ctx context.Context, seriesID string) ([]string, error)

	CreateJoinRequest(ctx context.Context, request *models.JoinRequest) error
	GetJoinRequest(ctx context.Context, id string) (models.JoinRequest, error)
	JoinRequestExists(ctx context.Context, sessionID, toID string) (bool, error)
	HasAcceptedJoinRequest(ctx context.Context, sessionID, userID string) (bool, error)
	UpdateJoinRequestStatus(ctx context.Context, id, status string) (models.JoinRequest, error)
	ListJoinRequestsForUser(ctx context.Context, toID string) ([]models.JoinRequest, error)
	ListJoinRequestsBySession(ctx context.Context, sessionID string) ([]models.JoinRequest, error)
}

type participantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository constructs a GORM-backed participant repository.
func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(ctx context.Context, participant *models.SessionParticipant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

// CreateSkipDuplicates bulk-inserts membership rows, silently ignoring rows
// that collide with the (session_id, user_id) unique index. Series and group
// fan-out rely on this being idempotent.
func (r *participantRepository) CreateSkipDuplicates(ctx context.Context, participants []models.SessionParticipant) error {
	if len(participants) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&participants).Error
}

func (r *participantRepository) Exists(ctx context.Context, sessionID, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SessionParticipant{}).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *participantRepository) Delete(ctx context.Context, sessionID, userID string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Delete(&models.SessionParticipant{}).Error
}

func (r *participantRepository) ListBySession(ctx context.Context, sessionID string) ([]models.SessionParticipant, error) {
	var participants []models.SessionParticipant
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("joined_at ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

// DistinctUserIDsBySeries returns every user currently participating in any
// session of the series, deduplicated.
func (r *participantRepository) DistinctUserIDsBySeries(ctx context.Context, seriesID string) ([]string, error) {
	var userIDs []string
	if err := r.db.WithContext(ctx).Model(&models.SessionParticipant{}).
		Distinct("session_participants.user_id").
		Joins("JOIN sessions ON sessions.id = session_participants.session_id").
		Where("sessions.series_id = ?", seriesID).
		Pluck("session_participants.user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	return userIDs, nil
}

func (r *participantRepository) CreateJoinRequest(ctx context.Context, request *models.JoinRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *participantRepository) GetJoinRequest(ctx context.Context, id string) (models.JoinRequest, error) {
	var request models.JoinRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return models.JoinRequest{}, err
	}
	return request, nil
}

func (r *participantRepository) JoinRequestExists(ctx context.Context, sessionID, toID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.JoinRequest{}).
		Where("session_id = ? AND to_id = ?", sessionID, toID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *participantRepository) HasAcceptedJoinRequest(ctx context.Context, sessionID, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.JoinRequest{}).
		Where("session_id = ? AND to_id = ? AND status = ?", sessionID, userID, models.JoinRequestAccepted).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *participantRepository) UpdateJoinRequestStatus(ctx context.Context, id, status string) (models.JoinRequest, error) {
	request, err := r.GetJoinRequest(ctx, id)
	if err != nil {
		return models.JoinRequest{}, err
	}

	request.Status = status
	if err := r.db.WithContext(ctx).Save(&request).Error; err != nil {
		return models.JoinRequest{}, err
	}
	return request, nil
}

func (r *participantRepository) ListJoinRequestsForUser(ctx context.Context, toID string) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest
	if err := r.db.WithContext(ctx).
		Where("to_id = ?", toID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *participantRepository) ListJoinRequestsBySession(ctx context.Context, sessionID string) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
