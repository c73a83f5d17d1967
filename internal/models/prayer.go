package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Prayer reaction kinds.
const (
	ReactionHeart        = "HEART"
	ReactionPrayingHands = "PRAYING_HANDS"
)

// PrayerRequest is a community prayer item, optionally anonymous.
type PrayerRequest struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:36;index;not null" json:"user_id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	IsAnonymous bool      `gorm:"not null;default:false" json:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Reactions []PrayerReaction `gorm:"foreignKey:PrayerRequestID;constraint:OnDelete:CASCADE" json:"reactions,omitempty"`
}

func (p *PrayerRequest) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PrayerReaction is a toggleable per-user reaction, unique per
// (request, user, type).
type PrayerReaction struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	PrayerRequestID string    `gorm:"size:36;not null;uniqueIndex:idx_prayer_user_type" json:"prayer_request_id"`
	UserID          string    `gorm:"size:36;not null;uniqueIndex:idx_prayer_user_type" json:"user_id"`
	ReactionType    string    `gorm:"size:32;not null;uniqueIndex:idx_prayer_user_type" json:"reaction_type"`
	CreatedAt       time.Time `json:"created_at"`
}

func (r *PrayerReaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
