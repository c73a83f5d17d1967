package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group is a named membership circle that can be attached to sessions and series.
type Group struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	ImageURL    string    `gorm:"size:512" json:"image_url,omitempty"`
	Visibility  string    `gorm:"size:16;not null;default:PUBLIC" json:"visibility"`
	LeaderID    string    `gorm:"size:36;index;not null" json:"leader_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Members []GroupMember `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// GroupMember records group membership. The leader is always a member.
type GroupMember struct {
	ID       string    `gorm:"primaryKey;size:36" json:"id"`
	GroupID  string    `gorm:"size:36;not null;uniqueIndex:idx_group_user" json:"group_id"`
	UserID   string    `gorm:"size:36;not null;uniqueIndex:idx_group_user" json:"user_id"`
	Role     string    `gorm:"size:16;not null;default:MEMBER" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

func (m *GroupMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// GroupSession records a point-in-time assignment of a group to a session.
type GroupSession struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	GroupID    string    `gorm:"size:36;not null;uniqueIndex:idx_group_session" json:"group_id"`
	SessionID  string    `gorm:"size:36;not null;uniqueIndex:idx_group_session" json:"session_id"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`
}

func (a *GroupSession) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// GroupSeries records a point-in-time assignment of a group to a series.
type GroupSeries struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	GroupID    string    `gorm:"size:36;not null;uniqueIndex:idx_group_series" json:"group_id"`
	SeriesID   string    `gorm:"size:36;not null;uniqueIndex:idx_group_series" json:"series_id"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`
}

func (a *GroupSeries) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
