package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/berea-app/berea-api/internal/models"
)

// GroupRepository persists groups, their membership and their assignments.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id string) (models.Group, error)
	GetWithMembers(ctx context.Context, id string) (models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id string) error
	ListVisibleTo(ctx context.Context, userID string) ([]models.Group, error)
	ListForUser(ctx context.Context, userID string) ([]models.Group, error)
	ListPublic(ctx context.Context) ([]models.Group, error)
	List(ctx context.Context) ([]models.Group, error)
	Count(ctx context.Context) (int64, error)

	AddMember(ctx context.Context, member *models.GroupMember) error
	MemberExists(ctx context.Context, groupID, userID string) (bool, error)
	RemoveMember(ctx context.Context, groupID, userID string) error
	ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error)

	CreateSessionAssignment(ctx context.Context, assignment *models.GroupSession) error
	SessionAssignmentExists(ctx context.Context, groupID, sessionID string) (bool, error)
	DeleteSessionAssignment(ctx context.Context, groupID, sessionID string) error
	CreateSeriesAssignment(ctx context.Context, assignment *models.GroupSeries) error
	SeriesAssignmentExists(ctx context.Context, groupID, seriesID string) (bool, error)
	DeleteSeriesAssignment(ctx context.Context, groupID, seriesID string) error
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository constructs a GORM-backed group repository.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return models.Group{}, err
	}
	return group, nil
}

func (r *groupRepository) GetWithMembers(ctx context.Context, id string) (models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("joined_at ASC")
	}).First(&group, "id = ?", id).Error; err != nil {
		return models.Group{}, err
	}
	return group, nil
}

func (r *groupRepository) Update(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *groupRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Group{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListVisibleTo returns public groups plus groups the user leads or belongs to.
func (r *groupRepository) ListVisibleTo(ctx context.Context, userID string) ([]models.Group, error) {
	membership := r.db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)

	var groups []models.Group
	if err := r.db.WithContext(ctx).
		Where("visibility = ? OR leader_id = ? OR id IN (?)", models.VisibilityPublic, userID, membership).
		Order("created_at DESC").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) ListForUser(ctx context.Context, userID string) ([]models.Group, error) {
	membership := r.db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)

	var groups []models.Group
	if err := r.db.WithContext(ctx).
		Where("leader_id = ? OR id IN (?)", userID, membership).
		Order("created_at DESC").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) ListPublic(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.WithContext(ctx).
		Where("visibility = ?", models.VisibilityPublic).
		Order("created_at DESC").
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) List(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Group{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *groupRepository) AddMember(ctx context.Context, member *models.GroupMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *groupRepository) MemberExists(ctx context.Context, groupID, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	return r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{}).Error
}

func (r *groupRepository) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	var members []models.GroupMember
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *groupRepository) CreateSessionAssignment(ctx context.Context, assignment *models.GroupSession) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *groupRepository) SessionAssignmentExists(ctx context.Context, groupID, sessionID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.GroupSession{}).
		Where("group_id = ? AND session_id = ?", groupID, sessionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *groupRepository) DeleteSessionAssignment(ctx context.Context, groupID, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("group_id = ? AND session_id = ?", groupID, sessionID).
		Delete(&models.GroupSession{}).Error
}

func (r *groupRepository) CreateSeriesAssignment(ctx context.Context, assignment *models.GroupSeries) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *groupRepository) SeriesAssignmentExists(ctx context.Context, groupID, seriesID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.GroupSeries{}).
		Where("group_id = ? AND series_id = ?", groupID, seriesID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *groupRepository) DeleteSeriesAssignment(ctx context.Context, groupID, seriesID string) error {
	return r.db.WithContext(ctx).
		Where("group_id = ? AND series_id = ?", groupID, seriesID).
		Delete(&models.GroupSeries{}).Error
}
